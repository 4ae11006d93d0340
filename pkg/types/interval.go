package types

import "fmt"

// Interval полуоткрытый интервал [Start, End) в минутах от полуночи.
// End может превышать 24:00, если занятие заканчивается после полуночи.
type Interval struct {
	Start int
	End   int
}

// IntervalFor строит интервал занятия по времени начала и длительности
func IntervalFor(start TimeString, durationMinutes int) (Interval, error) {
	if durationMinutes <= 0 {
		return Interval{}, fmt.Errorf("duration must be positive, got %d", durationMinutes)
	}
	startMinutes, err := start.Minutes()
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: startMinutes, End: startMinutes + durationMinutes}, nil
}

// Overlaps строгая проверка пересечения: касание границ пересечением не считается
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// Length длительность интервала в минутах
func (i Interval) Length() int {
	return i.End - i.Start
}
