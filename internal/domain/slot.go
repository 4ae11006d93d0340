package domain

import "github.com/m04kA/DrivingSchool-BookingService/pkg/types"

// AvailableSlot a candidate slot inside the instructor's working hours
type AvailableSlot struct {
	StartTime       types.TimeString
	DurationMinutes int
	Available       bool
}

// DaySchedule declared working hours of an instructor for one weekday
type DaySchedule struct {
	IsOpen    bool
	OpenTime  types.TimeString
	CloseTime types.TimeString
}

// DayAvailability summary of an instructor's day
type DayAvailability struct {
	InstructorID int64
	Date         string
	Bookings     []*Booking
	WorkingHours *DaySchedule   // nil when schedule is unknown
	Slots        []AvailableSlot // empty when working hours are unknown or the day is off
}

// FreeSlotsCount returns the number of available candidate slots
func (d *DayAvailability) FreeSlotsCount() int {
	count := 0
	for _, s := range d.Slots {
		if s.Available {
			count++
		}
	}
	return count
}

// MonthlyHours aggregate of completed lessons of an instructor for a month
type MonthlyHours struct {
	InstructorID int64
	Month        string // YYYY-MM
	Lessons      int
	TotalMinutes int
}

// Hours returns TotalMinutes in hours
func (m *MonthlyHours) Hours() float64 {
	return float64(m.TotalMinutes) / 60
}
