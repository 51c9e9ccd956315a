package progression

import (
	"time"

	"github.com/studyloop/studyloop/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// STREAK TRACKER
// ═══════════════════════════════════════════════════════════════════════════

// StreakState is the result of advancing a streak for one activity.
type StreakState struct {
	Current int
	Longest int
}

// NextStreak advances a calendar-day streak for activity at `now`.
//
//   - no prior activity: streak starts at 1
//   - same calendar day: unchanged (repeat activity does not increment)
//   - next calendar day: streak + 1
//   - gap of more than one day: streak resets to 1, longest untouched
//
// Day boundaries come from the injected calendar, never server-local time.
// Longest is a running maximum and never decreases. Callers guarantee
// now >= lastActivity.
func NextStreak(current, longest int, lastActivity *time.Time, now time.Time, cal timeutil.Calendar) StreakState {
	if lastActivity == nil {
		return StreakState{Current: 1, Longest: maxInt(longest, 1)}
	}

	switch diff := cal.DayDiff(*lastActivity, now); {
	case diff == 0:
		return StreakState{Current: current, Longest: longest}
	case diff == 1:
		next := current + 1
		return StreakState{Current: next, Longest: maxInt(longest, next)}
	default:
		return StreakState{Current: 1, Longest: longest}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
