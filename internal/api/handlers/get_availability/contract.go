package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
)

type AvailabilityUseCase interface {
	Summary(ctx context.Context, instructorID int64, date time.Time) (*domain.DayAvailability, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
