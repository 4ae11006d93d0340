package delete_booking

import (
	"context"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
)

type BookingService interface {
	DeleteByID(ctx context.Context, id int64, caller domain.Caller) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
