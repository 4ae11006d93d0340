package events

import (
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
)

// NewBookingEvent собирает событие из бронирования
func NewBookingEvent(eventType EventType, booking *domain.Booking, occurredAt time.Time) BookingEvent {
	return BookingEvent{
		Type:         eventType,
		BookingID:    booking.ID,
		InstructorID: booking.InstructorID,
		StudentID:    booking.StudentID,
		Date:         booking.BookingDate.Format(domain.DateFormat),
		Time:         booking.StartTime.String(),
		Status:       string(booking.Status),
		OccurredAt:   occurredAt,
	}
}
