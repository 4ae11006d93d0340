package get_upcoming

import (
	"context"

	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetUpcomingForInstructor(ctx context.Context, instructorID int64) (*models.BookingListResponse, error)
	GetUpcomingForStudent(ctx context.Context, studentID int64) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
