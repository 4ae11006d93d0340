package events

import "time"

// EventType тип доменного события, используется как routing key
type EventType string

const (
	BookingCreated   EventType = "booking.created"
	BookingCancelled EventType = "booking.cancelled"
	BookingCompleted EventType = "booking.completed"
	BookingMissed    EventType = "booking.missed"
)

// BookingEvent событие жизненного цикла бронирования для сервиса уведомлений
type BookingEvent struct {
	Type         EventType `json:"type"`
	BookingID    int64     `json:"bookingId"`
	InstructorID int64     `json:"instructorId"`
	StudentID    *int64    `json:"studentId,omitempty"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurredAt"`
}
