package create_booking

import (
	"errors"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
	createBooking "github.com/m04kA/DrivingSchool-BookingService/internal/usecase/create_booking"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	InstructorID int64   `json:"instructorId" validate:"required,gt=0"`
	StudentID    *int64  `json:"studentId,omitempty" validate:"omitempty,gt=0"`
	CourseID     *int64  `json:"courseId,omitempty" validate:"omitempty,gt=0"`
	Date         string  `json:"date" validate:"required"` // "2025-06-01"
	Time         string  `json:"time" validate:"required"` // "09:00"
	Duration     *int    `json:"duration,omitempty" validate:"omitempty,gt=0,lte=480"`
	Type         *string `json:"type,omitempty" validate:"omitempty,oneof=practical theory"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Location     *string `json:"location,omitempty" validate:"omitempty,max=255"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case (с парсингом даты и времени)
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, errInvalidDate
	}

	startTime, err := types.NewTimeStringFromString(r.Time)
	if err != nil {
		return nil, errInvalidTime
	}

	return &createBooking.Request{
		InstructorID:    r.InstructorID,
		StudentID:       r.StudentID,
		CourseID:        r.CourseID,
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: r.Duration,
		Type:            r.Type,
		Notes:           r.Notes,
		Location:        r.Location,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *models.BookingResponse {
	return models.FromDomainBooking(resp.Booking)
}
