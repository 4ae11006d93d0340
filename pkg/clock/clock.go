package clock

import "time"

// Real текущее время в заданном часовом поясе
type Real struct {
	Location *time.Location
}

// NewReal создает часы. nil loc означает time.Local.
func NewReal(loc *time.Location) *Real {
	if loc == nil {
		loc = time.Local
	}
	return &Real{Location: loc}
}

// Now возвращает текущее время
func (c *Real) Now() time.Time {
	return time.Now().In(c.Location)
}

// Fixed часы с фиксированным временем (для тестов)
type Fixed struct {
	T time.Time
}

// Now возвращает зафиксированное время
func (c *Fixed) Now() time.Time {
	return c.T
}

// Advance сдвигает время вперед
func (c *Fixed) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}

// StartOfDay полночь дня t в его часовом поясе
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MonthBounds первый и последний день месяца, в который попадает t
func MonthBounds(t time.Time) (first, last time.Time) {
	y, m, _ := t.Date()
	first = time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	last = first.AddDate(0, 1, -1)
	return first, last
}
