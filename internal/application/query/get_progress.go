// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain/progression"
	"github.com/studyloop/studyloop/internal/domain/shared"
	"github.com/studyloop/studyloop/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS QUERY
// Read-only ledger snapshot plus level progress. With a class ID it returns
// that class's ledger; without one it aggregates across all of the user's
// classes the way the profile screen shows it.
// ══════════════════════════════════════════════════════════════════════════════

// ProgressSnapshot is the gamification profile payload.
type ProgressSnapshot struct {
	progression.LevelProgress

	LessonsCompleted int     `json:"lessonsCompleted"`
	CurrentStreak    int     `json:"currentStreak"`
	LongestStreak    int     `json:"longestStreak"`
	LastActivityDate *string `json:"lastActivityDate"`
}

// ProgressCache is the read-side cache for progress snapshots.
type ProgressCache interface {
	Get(ctx context.Context, userID uuid.UUID, classID *uuid.UUID) (*ProgressSnapshot, bool)
	Set(ctx context.Context, userID uuid.UUID, classID *uuid.UUID, snapshot *ProgressSnapshot)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// GetProgressQuery contains the query parameters.
type GetProgressQuery struct {
	// UserID - the user whose progress to read.
	UserID uuid.UUID

	// ClassID - the class scope; nil aggregates across all classes.
	ClassID *uuid.UUID
}

// Validate checks the query parameters.
func (q GetProgressQuery) Validate() error {
	if q.UserID == uuid.Nil {
		return shared.NewDomainError("progression", "GetProgress", shared.ErrInvalidID, "user ID is required")
	}
	return nil
}

// GetProgressHandler serves progress snapshots.
type GetProgressHandler struct {
	progressions progression.Repository
	cache        ProgressCache
	log          *logger.Logger
}

// NewGetProgressHandler wires the handler. The cache is optional.
func NewGetProgressHandler(progressions progression.Repository, cache ProgressCache, log *logger.Logger) *GetProgressHandler {
	return &GetProgressHandler{
		progressions: progressions,
		cache:        cache,
		log:          log.With(logger.Component("get_progress")),
	}
}

// Handle returns the snapshot. A user with no ledger yet gets the zero
// profile (level 1, next level at 100 XP) rather than an error.
func (h *GetProgressHandler) Handle(ctx context.Context, q GetProgressQuery) (*ProgressSnapshot, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if snapshot, ok := h.cache.Get(ctx, q.UserID, q.ClassID); ok {
			return snapshot, nil
		}
	}

	var snapshot *ProgressSnapshot
	if q.ClassID != nil {
		ledger, err := h.progressions.GetLedger(ctx, q.UserID, *q.ClassID)
		if err != nil {
			if shared.IsNotFound(err) {
				return emptySnapshot(), nil
			}
			return nil, err
		}
		snapshot = snapshotFromLedger(ledger)
	} else {
		ledgers, err := h.progressions.ListLedgers(ctx, q.UserID)
		if err != nil {
			return nil, err
		}
		if len(ledgers) == 0 {
			return emptySnapshot(), nil
		}
		snapshot = aggregateSnapshot(ledgers)
	}

	if h.cache != nil {
		h.cache.Set(ctx, q.UserID, q.ClassID, snapshot)
	}
	return snapshot, nil
}

func emptySnapshot() *ProgressSnapshot {
	return &ProgressSnapshot{
		LevelProgress: progression.Progress(0),
	}
}

func snapshotFromLedger(ledger *progression.Ledger) *ProgressSnapshot {
	snapshot := &ProgressSnapshot{
		LevelProgress:    progression.Progress(ledger.TotalXP),
		LessonsCompleted: ledger.LessonsCompleted,
		CurrentStreak:    ledger.CurrentStreak,
		LongestStreak:    ledger.LongestStreak,
	}
	if ledger.LastActivityDate != nil {
		formatted := ledger.LastActivityDate.UTC().Format("2006-01-02T15:04:05Z07:00")
		snapshot.LastActivityDate = &formatted
	}
	return snapshot
}

// aggregateSnapshot sums XP and lesson counts across ledgers and takes the
// maximum of the streak fields, mirroring the class-less profile view.
func aggregateSnapshot(ledgers []*progression.Ledger) *ProgressSnapshot {
	totalXP := 0
	lessons := 0
	currentStreak := 0
	longestStreak := 0
	var lastActivity *string

	var latest int64
	for _, ledger := range ledgers {
		totalXP += ledger.TotalXP
		lessons += ledger.LessonsCompleted
		if ledger.CurrentStreak > currentStreak {
			currentStreak = ledger.CurrentStreak
		}
		if ledger.LongestStreak > longestStreak {
			longestStreak = ledger.LongestStreak
		}
		if ledger.LastActivityDate != nil && ledger.LastActivityDate.Unix() > latest {
			latest = ledger.LastActivityDate.Unix()
			formatted := ledger.LastActivityDate.UTC().Format("2006-01-02T15:04:05Z07:00")
			lastActivity = &formatted
		}
	}

	return &ProgressSnapshot{
		LevelProgress:    progression.Progress(totalXP),
		LessonsCompleted: lessons,
		CurrentStreak:    currentStreak,
		LongestStreak:    longestStreak,
		LastActivityDate: lastActivity,
	}
}
