package create_booking

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
	// LockInstructor берет транзакционную блокировку на расписание инструктора
	LockInstructor(ctx context.Context, instructorID int64) error
	// GetActiveByInstructorAndDate получает активные бронирования инструктора на дату
	GetActiveByInstructorAndDate(ctx context.Context, instructorID int64, date time.Time) ([]*domain.Booking, error)
	// Create создает новое бронирование
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
}

// Sweeper переводит устаревшие бронирования в missed перед проверкой пересечений
type Sweeper interface {
	Execute(ctx context.Context) (*sweep_expired.Response, error)
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUser(ctx context.Context, userID int64) (*userservice.User, error)
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

// Metrics счетчики создания бронирований
type Metrics interface {
	IncBookingsCreated()
	IncBookingConflicts()
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
