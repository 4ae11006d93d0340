package check_availability

import (
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/types"
)

// Request запрос на проверку слота
type Request struct {
	InstructorID    int64
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes *int // nil = длительность по умолчанию
}

// Response результат проверки слота
type Response struct {
	Available bool
	Conflicts []*domain.Booking // пересекающиеся активные бронирования
}
