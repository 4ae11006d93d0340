package check_availability

import (
	"context"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/integrations/scheduleservice"
	"github.com/m04kA/DrivingSchool-BookingService/internal/usecase/sweep_expired"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// GetActiveByInstructorAndDate получает scheduled/in-progress бронирования инструктора на дату
	GetActiveByInstructorAndDate(ctx context.Context, instructorID int64, date time.Time) ([]*domain.Booking, error)
}

// Sweeper переводит устаревшие бронирования в missed перед чтением
type Sweeper interface {
	Execute(ctx context.Context) (*sweep_expired.Response, error)
}

// ScheduleServiceClient интерфейс клиента для ScheduleService
type ScheduleServiceClient interface {
	GetWorkingHours(ctx context.Context, instructorID int64) (*scheduleservice.WorkingHours, error)
}

// Metrics счетчики проверок доступности
type Metrics interface {
	ObserveAvailabilityCheck(available bool)
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
