package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	cal := UTC()
	in := time.Date(2024, 3, 10, 17, 45, 12, 999, time.UTC)

	got := cal.StartOfDay(in)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestStartOfDay_ConvertsToCalendarZone(t *testing.T) {
	east := time.FixedZone("UTC+5", 5*3600)
	cal := NewCalendar(east)

	// 23:00 UTC on March 10 is already 04:00 March 11 in UTC+5.
	in := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)

	got := cal.StartOfDay(in)

	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, east), got)
}

func TestSameDay(t *testing.T) {
	cal := UTC()

	morning := time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)
	night := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)
	nextDay := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	assert.True(t, cal.SameDay(morning, night))
	assert.False(t, cal.SameDay(night, nextDay))
}

func TestSameDay_YearBoundary(t *testing.T) {
	cal := UTC()

	// Same YearDay, different years.
	a := time.Date(2023, 3, 10, 12, 0, 0, 0, time.UTC)
	b := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.False(t, cal.SameDay(a, b))
}

func TestDayDiff(t *testing.T) {
	cal := UTC()
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same instant", base, 0},
		{"later same day", base.Add(11 * time.Hour), 0},
		{"minutes across midnight", time.Date(2024, 3, 11, 0, 5, 0, 0, time.UTC), 1},
		{"three days later", time.Date(2024, 3, 13, 1, 0, 0, 0, time.UTC), 3},
		{"earlier day is negative", time.Date(2024, 3, 8, 23, 0, 0, 0, time.UTC), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.DayDiff(base, tt.to))
		})
	}
}

func TestDayDiff_MonthBoundary(t *testing.T) {
	cal := UTC()

	from := time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, cal.DayDiff(from, to))
}

func TestDayDiff_DependsOnZone(t *testing.T) {
	// The same two instants are one day apart in UTC and same-day in UTC-3.
	west := NewCalendar(time.FixedZone("UTC-3", -3*3600))

	from := time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, UTC().DayDiff(from, to))
	assert.Equal(t, 0, west.DayDiff(from, to))
}

func TestDayDiff_DSTSpringForward(t *testing.T) {
	// US DST starts 2024-03-10; that calendar day is only 23 hours long.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	cal := NewCalendar(loc)

	from := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
	to := time.Date(2024, 3, 11, 12, 0, 0, 0, loc)

	assert.Equal(t, 1, cal.DayDiff(from, to))
	assert.True(t, cal.IsNextDay(from, to))
}

func TestDayDiff_DSTFallBack(t *testing.T) {
	// US DST ends 2024-11-03; that calendar day is 25 hours long.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	cal := NewCalendar(loc)

	from := time.Date(2024, 11, 3, 12, 0, 0, 0, loc)
	to := time.Date(2024, 11, 4, 12, 0, 0, 0, loc)

	assert.Equal(t, 1, cal.DayDiff(from, to))
	assert.True(t, cal.IsNextDay(from, to))
}

func TestIsNextDay(t *testing.T) {
	cal := UTC()
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, cal.IsNextDay(base, time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC)))
	assert.False(t, cal.IsNextDay(base, base.Add(time.Hour)))
	assert.False(t, cal.IsNextDay(base, time.Date(2024, 3, 12, 12, 0, 0, 0, time.UTC)))
}

func TestNewCalendar_NilLocationFallsBackToUTC(t *testing.T) {
	cal := NewCalendar(nil)

	assert.Equal(t, time.UTC, cal.Location())
}

func TestFormatDay(t *testing.T) {
	east := NewCalendar(time.FixedZone("UTC+5", 5*3600))
	in := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-10", UTC().FormatDay(in))
	assert.Equal(t, "2024-03-11", east.FormatDay(in))
}
