package domain

// Default values
const (
	DefaultDurationMinutes = 60
	DefaultLessonType      = LessonPractical
	DefaultMaxScore        = 100
)

// Business validation constants
const (
	MaxDurationMinutes = 480 // 8 hours
	MaxNotesLength     = 1000
	MaxLocationLength  = 255
	MaxTitleLength     = 255
)

// Time format constants
const (
	TimeFormat  = "15:04"      // HH:MM
	DateFormat  = "2006-01-02" // YYYY-MM-DD
	MonthFormat = "2006-01"
)

// ActiveStatuses statuses of bookings that occupy a time slot
// Used for overlap checks and the sweeper
var ActiveStatuses = []BookingStatus{
	StatusScheduled,
	StatusInProgress,
}

// InactiveStatuses terminal statuses
var InactiveStatuses = []BookingStatus{
	StatusCompleted,
	StatusCancelled,
	StatusMissed,
}

// ActiveStatusStrings returns ActiveStatuses as plain strings for SQL filters
func ActiveStatusStrings() []string {
	out := make([]string, len(ActiveStatuses))
	for i, s := range ActiveStatuses {
		out[i] = string(s)
	}
	return out
}
