package check_availability

import (
	"errors"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/internal/service/bookings/models"
	checkAvailability "github.com/m04kA/DrivingSchool-BookingService/internal/usecase/check_availability"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/types"
)

var (
	errInvalidDate = errors.New("invalid date")
	errInvalidTime = errors.New("invalid time")
)

// CheckAvailabilityRequest HTTP request model
type CheckAvailabilityRequest struct {
	InstructorID int64  `json:"instructorId" validate:"required,gt=0"`
	Date         string `json:"date" validate:"required"`
	Time         string `json:"time" validate:"required"`
	Duration     *int   `json:"duration,omitempty" validate:"omitempty,gt=0,lte=480"`
}

// CheckAvailabilityResponse HTTP response model
type CheckAvailabilityResponse struct {
	Available bool                     `json:"available"`
	Conflicts []models.BookingResponse `json:"conflicts,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CheckAvailabilityRequest) ToUseCaseRequest() (*checkAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, errInvalidDate
	}

	startTime, err := types.NewTimeStringFromString(r.Time)
	if err != nil {
		return nil, errInvalidTime
	}

	return &checkAvailability.Request{
		InstructorID:    r.InstructorID,
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: r.Duration,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *CheckAvailabilityResponse {
	return &CheckAvailabilityResponse{
		Available: resp.Available,
		Conflicts: models.FromDomainBookingList(resp.Conflicts).Bookings,
	}
}
