// Package achievement contains the badge catalog, the predicate registry,
// and the idempotent awarding engine.
package achievement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Achievement is one entry of the static, admin-managed badge catalog.
type Achievement struct {
	// ID - unique achievement identifier.
	ID uuid.UUID

	// Name - unique display name; also the lookup key for predicates.
	Name string

	// Description - what the badge is for.
	Description string

	// Icon - display icon (emoji or URL).
	Icon string

	// CreatedAt - catalog insertion time; drives display order.
	CreatedAt time.Time
}

// Earned pairs a catalog entry with the moment a user earned it.
// UserAchievement membership is monotonic: the set only grows.
type Earned struct {
	Achievement Achievement
	EarnedAt    time.Time
}

// Context is the immutable snapshot a completion event exposes to the
// predicate catalog. Predicates are stateless evaluations of this snapshot,
// so the order they run in cannot affect the outcome set.
type Context struct {
	// TotalXP - ledger XP after the credit.
	TotalXP int

	// LessonsCompleted - ledger completion count after the credit.
	LessonsCompleted int

	// CurrentStreak / LongestStreak - streak state after the credit.
	CurrentStreak int
	LongestStreak int

	// CurrentLevel - level after the credit.
	CurrentLevel int

	// IsPerfectScore - the qualifying attempt scored 100.
	IsPerfectScore bool

	// FirstCompletion - this credit took LessonsCompleted from 0 to 1.
	FirstCompletion bool

	// TotalAttempts - the user's attempts across all lessons.
	TotalAttempts int

	// UniqueTracksCompleted - tracks in which the user completed every lesson.
	UniqueTracksCompleted int
}

// Store defines achievement persistence. Award must be an idempotent
// insert: racing awards of the same (user, achievement) pair resolve to a
// single row.
type Store interface {
	// ListCatalog returns the full catalog in display order.
	ListCatalog(ctx context.Context) ([]Achievement, error)

	// EarnedNames returns the set of achievement names the user has earned.
	EarnedNames(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error)

	// Award inserts a UserAchievement if absent; reports whether this call
	// created it.
	Award(ctx context.Context, userID, achievementID uuid.UUID, earnedAt time.Time) (bool, error)

	// ListEarned returns the user's earned achievements, newest first.
	ListEarned(ctx context.Context, userID uuid.UUID) ([]Earned, error)
}
