package clock

import (
	"time"

	"github.com/mcclellann/telecare/pkg/models"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Fixed always reports the same instant. Used by tests and seeding.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}

// Today returns the calendar day of c.Now().
func Today(c Clock) models.Date {
	return models.NewDate(c.Now())
}
