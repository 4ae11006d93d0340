package domain

import (
	"sort"
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/pkg/types"
)

// OverlappingBookings returns active bookings whose interval overlaps [start, start+duration).
// The booking with excludeID is skipped, pass 0 to check every booking.
// Bookings with a malformed time are treated as overlapping so they never hide a conflict.
func OverlappingBookings(start types.TimeString, durationMinutes int, bookings []*Booking, excludeID int64) ([]*Booking, error) {
	candidate, err := types.IntervalFor(start, durationMinutes)
	if err != nil {
		return nil, err
	}

	overlapping := make([]*Booking, 0)
	for _, b := range bookings {
		if b.ID == excludeID && excludeID != 0 {
			continue
		}
		if !b.IsActive() {
			continue
		}

		existing, err := b.Interval()
		if err != nil {
			overlapping = append(overlapping, b)
			continue
		}

		if candidate.Overlaps(existing) {
			overlapping = append(overlapping, b)
		}
	}

	return overlapping, nil
}

// WithoutStale drops bookings the sweeper would mark as missed at now
func WithoutStale(bookings []*Booking, now time.Time) []*Booking {
	fresh := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if !b.IsStale(now) {
			fresh = append(fresh, b)
		}
	}
	return fresh
}

// SortByDateTime sorts bookings by date, then start time, then id
func SortByDateTime(bookings []*Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if !a.BookingDate.Equal(b.BookingDate) {
			return a.BookingDate.Before(b.BookingDate)
		}
		am, _ := a.StartTime.Minutes()
		bm, _ := b.StartTime.Minutes()
		if am != bm {
			return am < bm
		}
		return a.ID < b.ID
	})
}
