package assessments

import (
	"context"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/integrations/userservice"
)

// AssessmentRepository интерфейс репозитория заданий
type AssessmentRepository interface {
	Create(ctx context.Context, a *domain.Assessment) (*domain.Assessment, error)
	GetByID(ctx context.Context, id int64) (*domain.Assessment, error)
	List(ctx context.Context, filter domain.AssessmentsFilter) ([]*domain.Assessment, error)
	Update(ctx context.Context, id int64, update *domain.AssessmentUpdate, now time.Time) (*domain.Assessment, error)
	MarkCompleted(ctx context.Context, id int64, at time.Time) (*domain.Assessment, error)
	Grade(ctx context.Context, id int64, score, maxScore float64, feedback *string, now time.Time) (*domain.Assessment, error)
	MarkOverdue(ctx context.Context, today time.Time, now time.Time) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUser(ctx context.Context, userID int64) (*userservice.User, error)
}

// Metrics счетчики заданий
type Metrics interface {
	AddAssessmentsOverdue(n int)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
