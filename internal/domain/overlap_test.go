package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlappingBookings(t *testing.T) {
	date := day(2025, 6, 1)
	bookings := []*Booking{
		{ID: 1, BookingDate: date, StartTime: "09:00", DurationMinutes: 60, Status: StatusScheduled},
		{ID: 2, BookingDate: date, StartTime: "12:00", DurationMinutes: 90, Status: StatusInProgress},
		{ID: 3, BookingDate: date, StartTime: "09:30", DurationMinutes: 60, Status: StatusCancelled},
	}

	// [570,600) overlaps [540,600)
	overlaps, err := OverlappingBookings("09:30", 30, bookings, 0)
	require.NoError(t, err)
	require.Len(t, overlaps, 1)
	assert.Equal(t, int64(1), overlaps[0].ID)

	// [600,630) touches [540,600) only
	overlaps, err = OverlappingBookings("10:00", 30, bookings, 0)
	require.NoError(t, err)
	assert.Empty(t, overlaps)

	overlaps, err = OverlappingBookings("08:00", 60, bookings, 0)
	require.NoError(t, err)
	assert.Empty(t, overlaps, "back-to-back before is allowed")

	overlaps, err = OverlappingBookings("09:00", 60, bookings, 1)
	require.NoError(t, err)
	assert.Empty(t, overlaps, "excluded booking does not conflict with itself")

	overlaps, err = OverlappingBookings("13:00", 15, bookings, 0)
	require.NoError(t, err)
	require.Len(t, overlaps, 1)
	assert.Equal(t, int64(2), overlaps[0].ID)

	_, err = OverlappingBookings("9:5", 30, bookings, 0)
	assert.Error(t, err)
}

func TestSortByDateTime(t *testing.T) {
	bookings := []*Booking{
		{ID: 1, BookingDate: day(2025, 6, 2), StartTime: "08:00"},
		{ID: 2, BookingDate: day(2025, 6, 1), StartTime: "15:00"},
		{ID: 3, BookingDate: day(2025, 6, 1), StartTime: "09:00"},
	}

	SortByDateTime(bookings)

	ids := []int64{bookings[0].ID, bookings[1].ID, bookings[2].ID}
	assert.Equal(t, []int64{3, 2, 1}, ids)
}

func TestWithoutStale(t *testing.T) {
	date := day(2025, 6, 1)
	now := date.Add(12 * time.Hour)
	bookings := []*Booking{
		{ID: 1, BookingDate: date, StartTime: "11:00", DurationMinutes: 90, Status: StatusScheduled},
		{ID: 2, BookingDate: date, StartTime: "11:30", DurationMinutes: 60, Status: StatusInProgress},
		{ID: 3, BookingDate: date, StartTime: "10:00", DurationMinutes: 60, Status: StatusInProgress},
		{ID: 4, BookingDate: date, StartTime: "14:00", DurationMinutes: 60, Status: StatusScheduled},
	}

	fresh := WithoutStale(bookings, now)

	require.Len(t, fresh, 2)
	assert.Equal(t, int64(2), fresh[0].ID, "in-progress lesson still running")
	assert.Equal(t, int64(4), fresh[1].ID)
}
