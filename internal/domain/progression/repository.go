package progression

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CreditResult is the ledger state right after the atomic completion credit:
// new totals plus the pre-credit activity date the streak math needs.
type CreditResult struct {
	// Ledger carries the post-increment TotalXP and LessonsCompleted and
	// the pre-credit streak fields.
	Ledger Ledger

	// PriorActivityDate is the lastActivityDate before this credit; nil on
	// the lazily created first ledger row.
	PriorActivityDate *time.Time
}

// Repository defines the persistence contract of the progression engine.
// All write methods participate in an active transaction carried in ctx,
// so a submission either fully commits or fully aborts.
type Repository interface {
	// InsertAttempt appends one attempt to the history. Attempts are
	// recorded unconditionally, correct or not.
	InsertAttempt(ctx context.Context, attempt *Attempt) error

	// CountLessonAttempts counts the user's attempts on one lesson.
	CountLessonAttempts(ctx context.Context, lessonID, userID uuid.UUID) (int, error)

	// CountUserAttempts counts the user's attempts across all lessons.
	CountUserAttempts(ctx context.Context, userID uuid.UUID) (int, error)

	// CreateCompletion performs the optimistic completion insert guarded by
	// the (lessonID, userID) uniqueness constraint. It reports created=false
	// when a completion already exists - including one committed by a
	// concurrent winner - without treating that as an error.
	CreateCompletion(ctx context.Context, completion *Completion) (created bool, err error)

	// CountCompleted counts the user's completions among the given lessons.
	CountCompleted(ctx context.Context, userID uuid.UUID, lessonIDs []uuid.UUID) (int, error)

	// CreditCompletion applies the XP and lesson-count increment for one
	// winning completion as a single transactional upsert (never
	// read-modify-write at the application layer), creating the ledger row
	// lazily on the user's first completion in the class.
	CreditCompletion(ctx context.Context, userID, classID uuid.UUID, xp int, now time.Time) (*CreditResult, error)

	// FinalizeLedger stores the derived fields (level, streak, activity
	// date) computed from the credit result.
	FinalizeLedger(ctx context.Context, userID, classID uuid.UUID, level, streak, longest int, now time.Time) error

	// GetLedger returns the ledger for (user, class), or
	// shared.ErrLedgerNotFound when none exists yet.
	GetLedger(ctx context.Context, userID, classID uuid.UUID) (*Ledger, error)

	// ListLedgers returns all of the user's ledgers across classes.
	ListLedgers(ctx context.Context, userID uuid.UUID) ([]*Ledger, error)

	// TracksWithCompletions lists the distinct tracks in which the user has
	// at least one completion.
	TracksWithCompletions(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// CountTrackCompletions counts the user's completions inside one track.
	CountTrackCompletions(ctx context.Context, trackID, userID uuid.UUID) (int, error)
}
