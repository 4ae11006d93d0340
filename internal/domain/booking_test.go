package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/DrivingSchool-BookingService/pkg/ptr"
	"github.com/m04kA/DrivingSchool-BookingService/pkg/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsPast_CombinesDateAndTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsPast(day(2025, 6, 1), "11:59", now))
	assert.False(t, IsPast(day(2025, 6, 1), "12:00", now))
	assert.False(t, IsPast(day(2025, 6, 1), "18:00", now), "later today is not past")
	assert.True(t, IsPast(day(2025, 5, 31), "23:00", now), "yesterday late evening is past")
	assert.False(t, IsPast(day(2025, 6, 2), "08:00", now), "tomorrow morning is not past")
}

func TestBooking_IsStale(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	scheduled := &Booking{BookingDate: day(2025, 6, 1), StartTime: "10:00", DurationMinutes: 60, Status: StatusScheduled}
	assert.True(t, scheduled.IsStale(now))

	inProgress := &Booking{BookingDate: day(2025, 6, 1), StartTime: "10:00", DurationMinutes: 60, Status: StatusInProgress}
	assert.False(t, inProgress.IsStale(now), "lesson still running")
	assert.True(t, inProgress.IsStale(now.Add(time.Hour)))

	later := &Booking{BookingDate: day(2025, 6, 1), StartTime: "11:00", DurationMinutes: 60, Status: StatusScheduled}
	assert.False(t, later.IsStale(now))

	cancelled := &Booking{BookingDate: day(2025, 5, 1), StartTime: "10:00", DurationMinutes: 60, Status: StatusCancelled}
	assert.False(t, cancelled.IsStale(now))
}

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{StatusScheduled, StatusInProgress, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusMissed, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusMissed, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusCompleted, StatusScheduled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusMissed, StatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestBookingUpdate_OnlyCancels(t *testing.T) {
	cancel := StatusCancelled
	complete := StatusCompleted

	assert.True(t, (&BookingUpdate{Status: &cancel}).OnlyCancels())
	assert.False(t, (&BookingUpdate{Status: &complete}).OnlyCancels())
	assert.False(t, (&BookingUpdate{Status: &cancel, Notes: ptr.Ptr("late")}).OnlyCancels())
	assert.False(t, (&BookingUpdate{}).OnlyCancels())
}

func TestBookingUpdate_ApplyTo(t *testing.T) {
	original := &Booking{ID: 1, InstructorID: 7, StartTime: "10:00", DurationMinutes: 60, Status: StatusScheduled}
	update := &BookingUpdate{StartTime: ptr.Ptr[types.TimeString]("11:00"), Location: ptr.Ptr("Main st. 1")}

	updated := update.ApplyTo(original)

	assert.Equal(t, "11:00", updated.StartTime.String())
	assert.Equal(t, "Main st. 1", *updated.Location)
	assert.Equal(t, "10:00", original.StartTime.String(), "original is not modified")
	assert.True(t, update.ChangesSchedule())
}

func TestAssessment_IsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	pending := &Assessment{Status: AssessmentPending, DueDate: day(2025, 6, 9)}
	assert.True(t, pending.IsOverdue(now))

	dueToday := &Assessment{Status: AssessmentPending, DueDate: day(2025, 6, 10)}
	assert.False(t, dueToday.IsOverdue(now))

	completed := &Assessment{Status: AssessmentCompleted, DueDate: day(2025, 6, 1)}
	assert.False(t, completed.IsOverdue(now))
}

func TestAssessment_Percentage(t *testing.T) {
	a := &Assessment{Score: ptr.Ptr(42.0), MaxScore: 50}
	assert.InDelta(t, 84.0, *a.Percentage(), 0.001)

	assert.Nil(t, (&Assessment{MaxScore: 100}).Percentage())
}
