// Package progression contains the progression engine's core aggregates:
// attempts, completions, the per-(user, class) ledger, the level curve,
// streak arithmetic, and the sequential unlock gate.
package progression

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ENTITIES
// ═══════════════════════════════════════════════════════════════════════════

// Attempt is one graded answer submission. Attempts are append-only history:
// they are never updated or deleted.
type Attempt struct {
	// ID - unique attempt identifier.
	ID uuid.UUID

	// LessonID - the attempted lesson.
	LessonID uuid.UUID

	// UserID - the submitting student.
	UserID uuid.UUID

	// SubmittedAnswer - the raw answer as submitted, stored verbatim.
	SubmittedAnswer json.RawMessage

	// IsCorrect - grading outcome.
	IsCorrect bool

	// Score - 0-100 grade.
	Score shared.Score

	// TimeSpentSeconds - optional client-reported time on task.
	TimeSpentSeconds *int

	// IdentifiedWeaknesses - target attributes flagged on an incorrect answer.
	IdentifiedWeaknesses []string

	// AttemptedAt - submission timestamp.
	AttemptedAt time.Time
}

// Completion records the first successful attempt on a lesson for a user.
// At most one exists per (lesson, user) pair, ever; it is created exactly
// once and never mutated afterward.
type Completion struct {
	// ID - unique completion identifier.
	ID uuid.UUID

	// LessonID - the completed lesson.
	LessonID uuid.UUID

	// UserID - the completing student.
	UserID uuid.UUID

	// FinalScore - the score of the qualifying attempt.
	FinalScore shared.Score

	// AttemptsCount - attempts on this lesson up to and including the
	// qualifying one.
	AttemptsCount int

	// CompletedAt - creation timestamp.
	CompletedAt time.Time
}

// Ledger is the per-(user, class) progression aggregate. It is created
// lazily on the first completion in a class and mutated transactionally on
// every subsequent one.
type Ledger struct {
	// UserID / ClassID - the aggregate key.
	UserID  uuid.UUID
	ClassID uuid.UUID

	// TotalXP - sum of xpReward over all completions in this class.
	TotalXP int

	// CurrentLevel - cached Level(TotalXP); never drifts independently.
	CurrentLevel int

	// LessonsCompleted - count of completions in this class.
	LessonsCompleted int

	// CurrentStreak - consecutive calendar days with at least one completion.
	CurrentStreak int

	// LongestStreak - non-decreasing running maximum of CurrentStreak.
	LongestStreak int

	// LastActivityDate - timestamp of the most recent completion; nil before
	// the first one.
	LastActivityDate *time.Time

	// CreatedAt / UpdatedAt - row bookkeeping.
	CreatedAt time.Time
	UpdatedAt time.Time
}
