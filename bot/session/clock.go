package session

import "time"

// Clock yields the current instant and the local calendar day.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a wall clock in loc.
func NewClock(loc *time.Location) Clock {
	return Clock{loc: loc, now: time.Now}
}

// FixedClock always returns t. Tests use it to pin the day.
func FixedClock(t time.Time) Clock {
	return Clock{loc: t.Location(), now: func() time.Time { return t }}
}

// Now returns the current instant in the clock's zone.
func (c Clock) Now() time.Time {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	return now().In(c.Location())
}

// Today formats the local calendar day.
func (c Clock) Today() string {
	return c.Now().Format(DateLayout)
}

// Location returns the clock's zone.
func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}
