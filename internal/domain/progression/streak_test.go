package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/studyloop/studyloop/pkg/timeutil"
)

func TestNextStreak_FirstActivity(t *testing.T) {
	now := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

	got := NextStreak(0, 0, nil, now, timeutil.UTC())

	assert.Equal(t, 1, got.Current)
	assert.Equal(t, 1, got.Longest)
}

func TestNextStreak_FirstActivityKeepsLongerRecord(t *testing.T) {
	// A reset ledger can still carry a historical longest streak.
	now := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

	got := NextStreak(0, 9, nil, now, timeutil.UTC())

	assert.Equal(t, 1, got.Current)
	assert.Equal(t, 9, got.Longest)
}

func TestNextStreak_SameDayUnchanged(t *testing.T) {
	last := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)

	got := NextStreak(3, 5, &last, now, timeutil.UTC())

	assert.Equal(t, 3, got.Current)
	assert.Equal(t, 5, got.Longest)
}

func TestNextStreak_NextDayIncrements(t *testing.T) {
	last := time.Date(2024, 3, 10, 23, 50, 0, 0, time.UTC)
	now := time.Date(2024, 3, 11, 0, 10, 0, 0, time.UTC)

	got := NextStreak(3, 3, &last, now, timeutil.UTC())

	assert.Equal(t, 4, got.Current)
	assert.Equal(t, 4, got.Longest, "longest follows a new record")
}

func TestNextStreak_GapResets(t *testing.T) {
	last := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	got := NextStreak(6, 8, &last, now, timeutil.UTC())

	assert.Equal(t, 1, got.Current)
	assert.Equal(t, 8, got.Longest, "longest survives a reset")
}

func TestNextStreak_CalendarDayNotDuration(t *testing.T) {
	// 23:00 to 01:00 is two hours but crosses a day boundary.
	last := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC)

	got := NextStreak(1, 1, &last, now, timeutil.UTC())

	assert.Equal(t, 2, got.Current)
}

func TestNextStreak_TimezoneBoundary(t *testing.T) {
	// In UTC both instants fall on March 10; one hour east they span
	// midnight and count as consecutive days.
	east := time.FixedZone("UTC+1", 3600)
	last := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)

	utcGot := NextStreak(2, 2, &last, now, timeutil.UTC())
	eastGot := NextStreak(2, 2, &last, now, timeutil.NewCalendar(east))

	assert.Equal(t, 2, utcGot.Current)
	assert.Equal(t, 3, eastGot.Current)
}
