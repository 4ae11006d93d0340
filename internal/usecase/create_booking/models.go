package create_booking

import (
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	InstructorID    int64            // ID инструктора (обязательно)
	StudentID       *int64           // ID студента (опционально)
	CourseID        *int64           // ID курса (опционально)
	Date            time.Time        // Дата занятия (без времени)
	StartTime       types.TimeString // Время начала "HH:MM"
	DurationMinutes *int             // nil = длительность по умолчанию
	Type            *string          // nil = тип по умолчанию
	Notes           *string
	Location        *string
}

// Response модель ответа
type Response struct {
	Booking *domain.Booking
}
