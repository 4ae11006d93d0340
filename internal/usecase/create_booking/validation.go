package create_booking

import (
	"fmt"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}

	if req.InstructorID <= 0 {
		return fmt.Errorf("%w: instructorId must be positive", ErrInvalidInput)
	}

	if req.StudentID != nil && *req.StudentID <= 0 {
		return fmt.Errorf("%w: studentId must be positive", ErrInvalidInput)
	}

	if req.CourseID != nil && *req.CourseID <= 0 {
		return fmt.Errorf("%w: courseId must be positive", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: time is required", ErrInvalidInput)
	}

	// Валидируем формат времени
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid time format: %v", ErrInvalidInput, err)
	}

	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
		}
		if *req.DurationMinutes > domain.MaxDurationMinutes {
			return fmt.Errorf("%w: duration must not exceed %d minutes", ErrInvalidInput, domain.MaxDurationMinutes)
		}
	}

	if req.Type != nil && !domain.LessonType(*req.Type).IsValid() {
		return fmt.Errorf("%w: unknown lesson type %q", ErrInvalidInput, *req.Type)
	}

	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.Location != nil && len(*req.Location) > domain.MaxLocationLength {
		return fmt.Errorf("%w: location must not exceed %d characters", ErrInvalidInput, domain.MaxLocationLength)
	}

	return nil
}
