package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/DrivingSchool-BookingService/internal/domain"
)

func TestNewBookingEvent(t *testing.T) {
	studentID := int64(21)
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	booking := &domain.Booking{
		ID:           5,
		InstructorID: 7,
		StudentID:    &studentID,
		BookingDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		StartTime:    "09:00",
		Status:       domain.StatusMissed,
	}

	event := NewBookingEvent(BookingMissed, booking, at)

	body, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "booking.missed",
		"bookingId": 5,
		"instructorId": 7,
		"studentId": 21,
		"date": "2025-06-01",
		"time": "09:00",
		"status": "missed",
		"occurredAt": "2025-06-01T09:00:00Z"
	}`, string(body))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), BookingEvent{Type: BookingCreated}))
	assert.NoError(t, p.Close())
}
