package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(time.Date(2024, 2, 17, 15, 4, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), last)
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, loc), StartOfDay(time.Date(2025, 6, 1, 23, 59, 0, 0, loc)))
}

func TestFixed(t *testing.T) {
	c := &Fixed{T: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	c.Advance(90 * time.Minute)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC), c.Now())
}

func TestReal_UsesLocation(t *testing.T) {
	loc := time.FixedZone("Test", 5*60*60)
	assert.Equal(t, loc, NewReal(loc).Now().Location())
	assert.Equal(t, time.Local, NewReal(nil).Location)
}
