package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel_Thresholds(t *testing.T) {
	tests := []struct {
		name    string
		totalXP int
		want    int
	}{
		{"zero XP is level 1", 0, 1},
		{"just below level 2", 99, 1},
		{"exactly level 2", 100, 2},
		{"mid level 2", 180, 2},
		{"exactly level 3", 250, 3},
		{"just below cap", 34999, 19},
		{"exactly at cap", 35000, 20},
		{"far beyond cap", 10_000_000, 20},
		{"negative treated as floor", -50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Level(tt.totalXP))
		})
	}
}

func TestLevel_MonotonicOverCurve(t *testing.T) {
	prev := Level(0)
	for xp := 1; xp <= 36000; xp += 7 {
		got := Level(xp)
		assert.GreaterOrEqual(t, got, prev, "level dropped at %d XP", xp)
		prev = got
	}
}

func TestProgress_WithinLevel(t *testing.T) {
	p := Progress(150)

	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 150, p.CurrentXP)
	assert.Equal(t, 100, p.XPForCurrentLevel)
	assert.Equal(t, 250, p.XPForNextLevel)
	assert.Equal(t, 33, p.ProgressPercent)
}

func TestProgress_FreshAccount(t *testing.T) {
	p := Progress(0)

	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.XPForCurrentLevel)
	assert.Equal(t, 100, p.XPForNextLevel)
	assert.Equal(t, 0, p.ProgressPercent)
}

func TestProgress_AtCap(t *testing.T) {
	p := Progress(40000)

	assert.Equal(t, MaxLevel, p.Level)
	assert.Equal(t, 35000, p.XPForCurrentLevel)
	assert.Equal(t, 35000, p.XPForNextLevel)
	assert.Equal(t, 100, p.ProgressPercent)
}

func TestProgress_PercentBounds(t *testing.T) {
	for xp := 0; xp <= 36000; xp += 13 {
		p := Progress(xp)
		assert.GreaterOrEqual(t, p.ProgressPercent, 0, "at %d XP", xp)
		assert.LessOrEqual(t, p.ProgressPercent, 100, "at %d XP", xp)
	}
}
