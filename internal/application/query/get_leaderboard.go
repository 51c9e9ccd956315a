package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain/progression"
	"github.com/studyloop/studyloop/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Top students of a class by ledger XP. Served from the hot cache; the
// cache rebuilds itself from storage on a miss.
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank    int       `json:"rank"`
	UserID  uuid.UUID `json:"userId"`
	TotalXP int       `json:"totalXp"`
	Level   int       `json:"level"`
}

// LeaderboardSource serves ranked (userID, totalXP) pairs for a class.
type LeaderboardSource interface {
	TopByClass(ctx context.Context, classID uuid.UUID, limit int) ([]RankedScore, error)
}

// RankedScore is the raw source row before presentation.
type RankedScore struct {
	UserID  uuid.UUID
	TotalXP int
}

// GetLeaderboardQuery contains the query parameters.
type GetLeaderboardQuery struct {
	ClassID uuid.UUID
	Limit   int
}

const defaultLeaderboardLimit = 10

// GetLeaderboardHandler serves class leaderboards.
type GetLeaderboardHandler struct {
	source LeaderboardSource
}

// NewGetLeaderboardHandler wires the handler.
func NewGetLeaderboardHandler(source LeaderboardSource) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{source: source}
}

// Handle returns the top entries for a class, highest XP first.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) ([]LeaderboardEntry, error) {
	if q.ClassID == uuid.Nil {
		return nil, shared.NewDomainError("progression", "GetLeaderboard", shared.ErrInvalidID, "class ID is required")
	}
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultLeaderboardLimit
	}

	scores, err := h.source.TopByClass(ctx, q.ClassID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(scores))
	for i, s := range scores {
		entries = append(entries, LeaderboardEntry{
			Rank:    i + 1,
			UserID:  s.UserID,
			TotalXP: s.TotalXP,
			Level:   progression.Level(s.TotalXP),
		})
	}
	return entries, nil
}
