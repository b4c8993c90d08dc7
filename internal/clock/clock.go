package clock

import (
	"time"

	"cloud.google.com/go/civil"
)

// Clock supplies the current calendar date.
type Clock interface {
	Today() civil.Date
}

// System reads the wall clock in a location. A nil Location means local time.
type System struct {
	Location *time.Location
}

// Today implements Clock.
func (s System) Today() civil.Date {
	now := time.Now()
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return civil.DateOf(now)
}

// Fixed always returns the same date.
type Fixed civil.Date

// Today implements Clock.
func (f Fixed) Today() civil.Date { return civil.Date(f) }
