package clock

import "time"

// Clock is the source of "now" for every time-based decision in the services.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type realClock struct {
	loc *time.Location
}

// New returns a wall clock reporting times in loc. A nil loc means time.Local.
func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return realClock{loc: loc}
}

func (c realClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c realClock) Location() *time.Location {
	return c.loc
}

// Fixed always reports the same instant. Used in tests.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time {
	return f.At
}

func (f Fixed) Location() *time.Location {
	return f.At.Location()
}

// StartOfDay returns 00:00:00.000 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
