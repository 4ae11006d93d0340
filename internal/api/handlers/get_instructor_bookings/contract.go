package get_instructor_bookings

import (
	"context"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetInstructorBookings(ctx context.Context, instructorID int64) (*models.BookingListResponse, error)
	GetInstructorBookingsForDate(ctx context.Context, instructorID int64, date time.Time) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
