// Package timeutil provides calendar-day arithmetic over an explicit, injected
// time zone. Streak math depends on day boundaries, so every comparison goes
// through a Calendar instead of ambient server-local time.
// No external dependencies - uses only standard library.
package timeutil

import (
	"math"
	"time"
)

// Calendar performs day-boundary computations in a fixed location.
// The zero value is not usable; construct with NewCalendar or UTC.
type Calendar struct {
	loc *time.Location
}

// NewCalendar creates a Calendar for the given location.
// A nil location falls back to UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// UTC returns a Calendar operating in UTC.
func UTC() Calendar {
	return Calendar{loc: time.UTC}
}

// Location returns the calendar's location.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// StartOfDay returns midnight of t's calendar day in the calendar's location.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	local := t.In(c.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.Location())
}

// SameDay checks if two times fall on the same calendar day.
func (c Calendar) SameDay(t1, t2 time.Time) bool {
	a1 := t1.In(c.Location())
	a2 := t2.In(c.Location())
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// DayDiff returns the number of calendar days from `from` to `to`.
// Positive when `to` is on a later day, negative when earlier. The
// midnight-to-midnight span is rounded, not truncated: in a DST zone a
// calendar day can be 23 or 25 hours long.
func (c Calendar) DayDiff(from, to time.Time) int {
	start := c.StartOfDay(from)
	end := c.StartOfDay(to)
	return int(math.Round(end.Sub(start).Hours() / 24))
}

// IsNextDay checks if `to` falls on the calendar day right after `from`.
func (c Calendar) IsNextDay(from, to time.Time) bool {
	return c.DayDiff(from, to) == 1
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04:05"
)

// FormatDay formats t's calendar day as YYYY-MM-DD in the calendar's location.
func (c Calendar) FormatDay(t time.Time) string {
	return t.In(c.Location()).Format(FormatDate)
}

// Clock supplies the current time. Production code uses time.Now; tests
// substitute a fixed instant.
type Clock func() time.Time

// SystemClock returns the real current time.
func SystemClock() time.Time {
	return time.Now()
}
