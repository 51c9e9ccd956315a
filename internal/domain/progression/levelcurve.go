package progression

import "math"

// ═══════════════════════════════════════════════════════════════════════════
// LEVEL CURVE
// ═══════════════════════════════════════════════════════════════════════════

// levelThresholds holds the total XP required to reach each level:
// level N requires levelThresholds[N-1] XP. The curve is quadratic-ish for
// increasing difficulty and caps at level 20.
var levelThresholds = [...]int{
	0,     // Level 1
	100,   // Level 2
	250,   // Level 3
	500,   // Level 4
	800,   // Level 5
	1200,  // Level 6
	1700,  // Level 7
	2300,  // Level 8
	3000,  // Level 9
	4000,  // Level 10
	5200,  // Level 11
	6600,  // Level 12
	8200,  // Level 13
	10000, // Level 14
	12500, // Level 15
	15500, // Level 16
	19000, // Level 17
	23000, // Level 18
	28000, // Level 19
	35000, // Level 20
}

// MaxLevel is the level cap.
const MaxLevel = len(levelThresholds)

// Level returns the level for a total XP amount: the highest level whose
// threshold is at or below xp, capped at MaxLevel. Total function; negative
// input is treated as zero.
func Level(totalXP int) int {
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if totalXP >= levelThresholds[i] {
			return i + 1
		}
	}
	return 1
}

// LevelProgress describes where a total XP amount sits on the curve.
type LevelProgress struct {
	Level             int `json:"level"`
	CurrentXP         int `json:"currentXp"`
	XPForCurrentLevel int `json:"xpForCurrentLevel"`
	XPForNextLevel    int `json:"xpForNextLevel"`
	ProgressPercent   int `json:"progressPercent"`
}

// Progress computes level progress for a total XP amount. At the level cap
// the next-level threshold collapses onto the current one and progress
// reads 100%.
func Progress(totalXP int) LevelProgress {
	level := Level(totalXP)
	floor := levelThresholds[level-1]

	ceil := floor
	if level < MaxLevel {
		ceil = levelThresholds[level]
	}

	percent := 100
	if ceil > floor {
		percent = int(math.Round(float64(totalXP-floor) / float64(ceil-floor) * 100))
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
	}

	return LevelProgress{
		Level:             level,
		CurrentXP:         totalXP,
		XPForCurrentLevel: floor,
		XPForNextLevel:    ceil,
		ProgressPercent:   percent,
	}
}
