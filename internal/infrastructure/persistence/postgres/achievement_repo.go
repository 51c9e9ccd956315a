package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AchievementStore implements achievement.Store for PostgreSQL.
type AchievementStore struct {
	conn *Connection
}

// NewAchievementStore creates a new AchievementStore.
func NewAchievementStore(conn *Connection) *AchievementStore {
	return &AchievementStore{conn: conn}
}

// ListCatalog returns the full catalog in insertion order.
func (s *AchievementStore) ListCatalog(ctx context.Context) ([]achievement.Achievement, error) {
	query := `
		SELECT id, name, description, icon, created_at
		FROM achievements
		ORDER BY created_at, name
	`

	rows, err := s.conn.querier(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	var catalog []achievement.Achievement
	for rows.Next() {
		var a achievement.Achievement
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Icon, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		catalog = append(catalog, a)
	}
	return catalog, rows.Err()
}

// EarnedNames returns the set of achievement names the user holds.
func (s *AchievementStore) EarnedNames(ctx context.Context, userID uuid.UUID) (map[string]struct{}, error) {
	query := `
		SELECT a.name
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
	`

	rows, err := s.conn.querier(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned names: %w", err)
	}
	defer rows.Close()

	earned := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan earned name: %w", err)
		}
		earned[name] = struct{}{}
	}
	return earned, rows.Err()
}

// Award inserts the (user, achievement) row if absent. ON CONFLICT DO
// NOTHING makes racing awards collapse to a single winner; RowsAffected
// tells this call whether it was the one.
func (s *AchievementStore) Award(ctx context.Context, userID, achievementID uuid.UUID, earnedAt time.Time) (bool, error) {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`

	tag, err := s.conn.querier(ctx).Exec(ctx, query, userID, achievementID, earnedAt)
	if err != nil {
		return false, fmt.Errorf("failed to award achievement: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListEarned returns the user's earned achievements, newest first.
func (s *AchievementStore) ListEarned(ctx context.Context, userID uuid.UUID) ([]achievement.Earned, error) {
	query := `
		SELECT a.id, a.name, a.description, a.icon, a.created_at, ua.earned_at
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
		ORDER BY ua.earned_at DESC
	`

	rows, err := s.conn.querier(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list earned achievements: %w", err)
	}
	defer rows.Close()

	var earned []achievement.Earned
	for rows.Next() {
		var e achievement.Earned
		if err := rows.Scan(
			&e.Achievement.ID, &e.Achievement.Name, &e.Achievement.Description,
			&e.Achievement.Icon, &e.Achievement.CreatedAt, &e.EarnedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan earned achievement: %w", err)
		}
		earned = append(earned, e)
	}
	return earned, rows.Err()
}

// seedAchievements inserts the static catalog rows, keyed by unique name.
// Existing rows keep their description and icon up to date.
func seedAchievements(ctx context.Context, conn *Connection) error {
	query := `
		INSERT INTO achievements (name, description, icon)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			icon = EXCLUDED.icon
	`

	for _, entry := range achievement.SeedCatalog() {
		if _, err := conn.pool.Exec(ctx, query, entry.Name, entry.Description, entry.Icon); err != nil {
			return fmt.Errorf("failed to seed achievement %q: %w", entry.Name, err)
		}
	}
	return nil
}
