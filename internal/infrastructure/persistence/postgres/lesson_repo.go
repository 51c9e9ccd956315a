package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/studyloop/studyloop/internal/domain/lesson"
	"github.com/studyloop/studyloop/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSON REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LessonRepository implements lesson.Repository for PostgreSQL.
type LessonRepository struct {
	conn *Connection
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(conn *Connection) *LessonRepository {
	return &LessonRepository{conn: conn}
}

// GetForAttempt returns a lesson joined with its track and owning class.
// An unpublished track is indistinguishable from a missing lesson.
func (r *LessonRepository) GetForAttempt(ctx context.Context, lessonID uuid.UUID) (*lesson.WithTrack, error) {
	query := `
		SELECT l.id, l.track_id, l.position, l.title, l.kind, l.difficulty,
		       l.xp_reward, l.content, l.target_attributes, l.created_at,
		       t.id, t.subject_id, s.class_id, t.title, t.is_published
		FROM lessons l
		JOIN tracks t ON t.id = l.track_id
		JOIN subjects s ON s.id = t.subject_id
		WHERE l.id = $1
	`

	var (
		l          lesson.Lesson
		t          lesson.Track
		kind       string
		rawContent []byte
	)
	row := r.conn.querier(ctx).QueryRow(ctx, query, lessonID)
	err := row.Scan(
		&l.ID, &l.TrackID, &l.Position, &l.Title, &kind, &l.Difficulty,
		&l.XPReward, &rawContent, &l.TargetAttributes, &l.CreatedAt,
		&t.ID, &t.SubjectID, &t.ClassID, &t.Title, &t.IsPublished,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to load lesson: %w", err)
	}
	if !t.IsPublished {
		return nil, shared.ErrLessonNotFound
	}

	content, err := lesson.UnmarshalContent(lesson.Kind(kind), rawContent)
	if err != nil {
		return nil, err
	}
	l.Content = content

	return &lesson.WithTrack{Lesson: &l, Track: &t}, nil
}

// PriorLessonIDs lists lessons of the track below the given position.
func (r *LessonRepository) PriorLessonIDs(ctx context.Context, trackID uuid.UUID, position int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM lessons
		WHERE track_id = $1 AND position < $2
		ORDER BY position
	`

	rows, err := r.conn.querier(ctx).Query(ctx, query, trackID, position)
	if err != nil {
		return nil, fmt.Errorf("failed to list prior lessons: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan lesson id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountByTrack returns the total number of lessons in a track.
func (r *LessonRepository) CountByTrack(ctx context.Context, trackID uuid.UUID) (int, error) {
	var count int
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lessons WHERE track_id = $1`, trackID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count track lessons: %w", err)
	}
	return count, nil
}

// IsEnrolled reports whether the user has an enrollment in the class.
func (r *LessonRepository) IsEnrolled(ctx context.Context, classID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE class_id = $1 AND user_id = $2)`,
		classID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}
