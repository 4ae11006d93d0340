package check_availability

import (
	"fmt"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
)

// validateRequest проверяет входные данные проверки слота
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}

	if req.InstructorID <= 0 {
		return fmt.Errorf("%w: instructorId must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
		}
		if *req.DurationMinutes > domain.MaxDurationMinutes {
			return fmt.Errorf("%w: duration must not exceed %d minutes", ErrInvalidInput, domain.MaxDurationMinutes)
		}
	}

	return nil
}
