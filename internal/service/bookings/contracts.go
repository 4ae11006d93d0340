package bookings

import (
	"context"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/infra/events"
	"github.com/m04kA/DrivingSchool-BookingService/internal/integrations/courseservice"
	"github.com/m04kA/DrivingSchool-BookingService/internal/integrations/userservice"
	"github.com/m04kA/DrivingSchool-BookingService/internal/usecase/sweep_expired"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	GetActiveByInstructorAndDate(ctx context.Context, instructorID int64, date time.Time) ([]*domain.Booking, error)
	LockInstructor(ctx context.Context, instructorID int64) error
	UpdateFields(ctx context.Context, id int64, update *domain.BookingUpdate, now time.Time) (*domain.Booking, error)
	SumCompleted(ctx context.Context, instructorID int64, from, to time.Time) (int, int, error)
	Delete(ctx context.Context, id int64) error
}

// Sweeper переводит устаревшие бронирования в missed перед чтением
type Sweeper interface {
	Execute(ctx context.Context) (*sweep_expired.Response, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	// GetUserWithGracefulDegradation возвращает userservice.ErrServiceDegraded, если сервис недоступен
	GetUserWithGracefulDegradation(ctx context.Context, userID int64) (*userservice.User, error)
}

// CourseServiceClient интерфейс клиента для CourseService
type CourseServiceClient interface {
	GetCourse(ctx context.Context, courseID int64) (*courseservice.Course, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher интерфейс публикации доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
