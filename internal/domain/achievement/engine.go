package achievement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ═══════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT ENGINE
// ═══════════════════════════════════════════════════════════════════════════

// Engine evaluates the predicate catalog against a context snapshot and
// awards newly satisfied achievements. One completion event may unlock
// several badges at once (a large XP jump can cross multiple thresholds),
// so the engine always returns the full newly earned list.
type Engine struct {
	catalog Catalog
}

// NewEngine creates an Engine over the given registry.
func NewEngine(catalog Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// EvaluateAndAward runs every not-yet-earned predicate against the snapshot
// and awards the satisfied ones idempotently. Catalog entries without a
// seeded database row are skipped. Awards lost to a concurrent racer are
// silently dropped from the result.
func (e *Engine) EvaluateAndAward(ctx context.Context, store Store, userID uuid.UUID, snapshot Context, now time.Time) ([]Achievement, error) {
	earned, err := store.EarnedNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading earned achievements: %w", err)
	}

	rows, err := store.ListCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading achievement catalog: %w", err)
	}
	byName := make(map[string]Achievement, len(rows))
	for _, row := range rows {
		byName[row.Name] = row
	}

	var newlyEarned []Achievement
	for _, def := range e.catalog {
		if _, already := earned[def.Key]; already {
			continue
		}
		row, seeded := byName[def.Key]
		if !seeded {
			continue
		}
		if !def.Check(snapshot) {
			continue
		}

		created, err := store.Award(ctx, userID, row.ID, now)
		if err != nil {
			return nil, fmt.Errorf("awarding %q: %w", def.Key, err)
		}
		if created {
			newlyEarned = append(newlyEarned, row)
		}
	}
	return newlyEarned, nil
}
