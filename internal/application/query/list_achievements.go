package query

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain/achievement"
	"github.com/studyloop/studyloop/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST ACHIEVEMENTS QUERY
// The full catalog with per-user earned flags, for the achievements screen.
// ══════════════════════════════════════════════════════════════════════════════

// AchievementEntry is one catalog row with the user's earned state.
type AchievementEntry struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	IsEarned    bool       `json:"isEarned"`
	EarnedAt    *time.Time `json:"earnedAt"`
}

// AchievementList is the query result.
type AchievementList struct {
	Achievements []AchievementEntry `json:"achievements"`
	EarnedCount  int                `json:"earnedCount"`
	TotalCount   int                `json:"totalCount"`
}

// ListAchievementsHandler serves the achievement catalog.
type ListAchievementsHandler struct {
	achievements achievement.Store
}

// NewListAchievementsHandler wires the handler.
func NewListAchievementsHandler(achievements achievement.Store) *ListAchievementsHandler {
	return &ListAchievementsHandler{achievements: achievements}
}

// Handle returns every catalog entry with the user's earned flag and date.
func (h *ListAchievementsHandler) Handle(ctx context.Context, userID uuid.UUID) (*AchievementList, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("achievement", "List", shared.ErrInvalidID, "user ID is required")
	}

	catalog, err := h.achievements.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	earned, err := h.achievements.ListEarned(ctx, userID)
	if err != nil {
		return nil, err
	}

	earnedAt := make(map[uuid.UUID]time.Time, len(earned))
	for _, e := range earned {
		earnedAt[e.Achievement.ID] = e.EarnedAt
	}

	entries := make([]AchievementEntry, 0, len(catalog))
	for _, a := range catalog {
		entry := AchievementEntry{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
		}
		if at, ok := earnedAt[a.ID]; ok {
			entry.IsEarned = true
			t := at
			entry.EarnedAt = &t
		}
		entries = append(entries, entry)
	}

	return &AchievementList{
		Achievements: entries,
		EarnedCount:  len(earned),
		TotalCount:   len(catalog),
	}, nil
}
