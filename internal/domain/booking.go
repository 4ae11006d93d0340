package domain

import (
	"time"

	"github.com/m04kA/DrivingSchool-BookingService/pkg/types"
)

// BookingStatus represents the lifecycle status of a lesson booking
type BookingStatus string

const (
	StatusScheduled  BookingStatus = "scheduled"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusMissed     BookingStatus = "missed"
)

// LessonType represents the kind of lesson
type LessonType string

const (
	LessonPractical LessonType = "practical"
	LessonTheory    LessonType = "theory"
)

// Attendance records whether the student showed up
type Attendance string

const (
	AttendanceAttended    Attendance = "attended"
	AttendanceNotAttended Attendance = "not-attended"
)

// Booking represents a lesson slot linking an instructor and optionally a student and a course
type Booking struct {
	ID              int64
	InstructorID    int64
	StudentID       *int64 // NULL = slot not assigned to a student yet
	CourseID        *int64
	BookingDate     time.Time // calendar day, time part is ignored
	StartTime       types.TimeString
	DurationMinutes int
	Type            LessonType
	Status          BookingStatus
	Attendance      *Attendance
	Notes           *string
	Location        *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking still occupies a time slot
func (b *Booking) IsActive() bool {
	return b.Status.IsActive()
}

// IsTerminal returns true if no further status changes are allowed
func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}

// Interval returns the half-open minute interval the booking occupies
func (b *Booking) Interval() (types.Interval, error) {
	return types.IntervalFor(b.StartTime, b.DurationMinutes)
}

// StartsAt returns the absolute start instant in loc
func (b *Booking) StartsAt(loc *time.Location) (time.Time, error) {
	return b.StartTime.OnDate(b.BookingDate, loc)
}

// EndsAt returns the absolute end instant in loc
func (b *Booking) EndsAt(loc *time.Location) (time.Time, error) {
	start, err := b.StartsAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(b.DurationMinutes) * time.Minute), nil
}

// IsPast returns true when the booking start is strictly before now.
// Date and time are combined in now's location before comparing.
func (b *Booking) IsPast(now time.Time) bool {
	return IsPast(b.BookingDate, b.StartTime, now)
}

// IsStale returns true when the sweeper should mark the booking as missed:
// a scheduled lesson whose start has passed, or an in-progress lesson whose end has passed.
// In-progress lessons are checked against the end instant: their start is always in the past.
func (b *Booking) IsStale(now time.Time) bool {
	switch b.Status {
	case StatusScheduled:
		return b.IsPast(now)
	case StatusInProgress:
		end, err := b.EndsAt(now.Location())
		if err != nil {
			return false
		}
		return end.Before(now)
	default:
		return false
	}
}

// IsOwnedBy returns true if the booking is assigned to the student
func (b *Booking) IsOwnedBy(studentID int64) bool {
	return b.StudentID != nil && *b.StudentID == studentID
}

// CanRecordAttendance returns true if attendance can be set for the booking
func (b *Booking) CanRecordAttendance() bool {
	return b.Status == StatusInProgress || b.Status == StatusCompleted || b.Status == StatusMissed
}

// CanBeCompleted returns true if the lesson can be closed out as completed
func (b *Booking) CanBeCompleted() bool {
	return b.Status == StatusScheduled || b.Status == StatusInProgress
}

// IsPast reports whether the (date, time) instant is strictly before now
func IsPast(date time.Time, start types.TimeString, now time.Time) bool {
	at, err := start.OnDate(date, now.Location())
	if err != nil {
		return false
	}
	return at.Before(now)
}

// IsActive returns true for statuses that occupy a time slot
func (s BookingStatus) IsActive() bool {
	return s == StatusScheduled || s == StatusInProgress
}

// IsTerminal returns true for statuses with no outgoing transitions
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusMissed
}

// IsValid returns true for known statuses
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusMissed:
		return true
	}
	return false
}

// allowedTransitions lists explicit status changes made through an update.
// scheduled -> completed goes through Complete only.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusScheduled:  {StatusInProgress, StatusCancelled, StatusMissed},
	StatusInProgress: {StatusCompleted, StatusMissed},
}

// CanTransitionTo returns true if an update may move the booking from s to next
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid returns true for known lesson types
func (t LessonType) IsValid() bool {
	return t == LessonPractical || t == LessonTheory
}

// IsValid returns true for known attendance values
func (a Attendance) IsValid() bool {
	return a == AttendanceAttended || a == AttendanceNotAttended
}

// BookingsFilter filter for listing bookings
type BookingsFilter struct {
	InstructorID *int64
	StudentID    *int64
	CourseID     *int64
	Status       *BookingStatus
	DateFrom     *time.Time // inclusive
	DateTo       *time.Time // inclusive
	ActiveOnly   bool       // only scheduled and in-progress, ignored when Status is set
}

// BookingUpdate partial update of a booking. Nil fields are left unchanged.
type BookingUpdate struct {
	InstructorID    *int64
	StudentID       *int64
	CourseID        *int64
	BookingDate     *time.Time
	StartTime       *types.TimeString
	DurationMinutes *int
	Type            *LessonType
	Status          *BookingStatus
	Attendance      *Attendance
	Notes           *string
	Location        *string
}

// IsEmpty returns true if no field is set
func (u *BookingUpdate) IsEmpty() bool {
	return u.InstructorID == nil && u.StudentID == nil && u.CourseID == nil &&
		u.BookingDate == nil && u.StartTime == nil && u.DurationMinutes == nil &&
		u.Type == nil && u.Status == nil && u.Attendance == nil &&
		u.Notes == nil && u.Location == nil
}

// ChangesSchedule returns true if the update moves the booking in time or to another instructor
func (u *BookingUpdate) ChangesSchedule() bool {
	return u.InstructorID != nil || u.BookingDate != nil || u.StartTime != nil || u.DurationMinutes != nil
}

// OnlyCancels returns true if the update sets status=cancelled and nothing else
func (u *BookingUpdate) OnlyCancels() bool {
	if u.Status == nil || *u.Status != StatusCancelled {
		return false
	}
	rest := *u
	rest.Status = nil
	return rest.IsEmpty()
}

// ApplyTo returns a copy of b with the update applied
func (u *BookingUpdate) ApplyTo(b *Booking) *Booking {
	updated := *b
	if u.InstructorID != nil {
		updated.InstructorID = *u.InstructorID
	}
	if u.StudentID != nil {
		updated.StudentID = u.StudentID
	}
	if u.CourseID != nil {
		updated.CourseID = u.CourseID
	}
	if u.BookingDate != nil {
		updated.BookingDate = *u.BookingDate
	}
	if u.StartTime != nil {
		updated.StartTime = *u.StartTime
	}
	if u.DurationMinutes != nil {
		updated.DurationMinutes = *u.DurationMinutes
	}
	if u.Type != nil {
		updated.Type = *u.Type
	}
	if u.Status != nil {
		updated.Status = *u.Status
	}
	if u.Attendance != nil {
		updated.Attendance = u.Attendance
	}
	if u.Notes != nil {
		updated.Notes = u.Notes
	}
	if u.Location != nil {
		updated.Location = u.Location
	}
	return &updated
}
