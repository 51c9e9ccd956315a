package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/studyloop/studyloop/internal/application/query"
	"github.com/studyloop/studyloop/internal/domain/progression"
	"github.com/studyloop/studyloop/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressionRepository implements progression.Repository for PostgreSQL.
type ProgressionRepository struct {
	conn *Connection
}

// NewProgressionRepository creates a new ProgressionRepository.
func NewProgressionRepository(conn *Connection) *ProgressionRepository {
	return &ProgressionRepository{conn: conn}
}

// InsertAttempt appends one attempt row.
func (r *ProgressionRepository) InsertAttempt(ctx context.Context, attempt *progression.Attempt) error {
	query := `
		INSERT INTO lesson_attempts (
			id, lesson_id, user_id, submitted_answer, is_correct, score,
			time_spent_seconds, identified_weaknesses, attempted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	weaknesses := attempt.IdentifiedWeaknesses
	if weaknesses == nil {
		weaknesses = []string{}
	}

	_, err := r.conn.querier(ctx).Exec(ctx, query,
		attempt.ID, attempt.LessonID, attempt.UserID,
		attempt.SubmittedAnswer, attempt.IsCorrect, int(attempt.Score),
		attempt.TimeSpentSeconds, weaknesses, attempt.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	return nil
}

// CountLessonAttempts counts the user's attempts on one lesson.
func (r *ProgressionRepository) CountLessonAttempts(ctx context.Context, lessonID, userID uuid.UUID) (int, error) {
	var count int
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lesson_attempts WHERE lesson_id = $1 AND user_id = $2`,
		lessonID, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lesson attempts: %w", err)
	}
	return count, nil
}

// CountUserAttempts counts the user's attempts across all lessons.
func (r *ProgressionRepository) CountUserAttempts(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lesson_attempts WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user attempts: %w", err)
	}
	return count, nil
}

// insertCompletionQuery arbitrates the at-most-once completion via
// ON CONFLICT DO NOTHING. The statement must never raise a unique
// violation: a failed statement aborts the enclosing transaction and
// would take the already-inserted attempt row down with it.
const insertCompletionQuery = `
	INSERT INTO lesson_completions (
		id, lesson_id, user_id, final_score, attempts_count, completed_at
	) VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (lesson_id, user_id) DO NOTHING
`

// CreateCompletion inserts the completion row. An existing completion for
// (lesson_id, user_id), including one committed by a concurrent winner, is
// reported as created=false, not as an error.
func (r *ProgressionRepository) CreateCompletion(ctx context.Context, completion *progression.Completion) (bool, error) {
	tag, err := r.conn.querier(ctx).Exec(ctx, insertCompletionQuery,
		completion.ID, completion.LessonID, completion.UserID,
		int(completion.FinalScore), completion.AttemptsCount, completion.CompletedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create completion: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountCompleted counts the user's completions among the given lessons.
func (r *ProgressionRepository) CountCompleted(ctx context.Context, userID uuid.UUID, lessonIDs []uuid.UUID) (int, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}

	var count int
	err := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM lesson_completions WHERE user_id = $1 AND lesson_id = ANY($2)`,
		userID, lessonIDs,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return count, nil
}

// CreditCompletion increments the ledger totals in a single upsert. Only
// total_xp and lessons_completed change here; the streak columns and
// last_activity_date are left untouched so the RETURNING clause yields the
// pre-credit values the streak math needs. FinalizeLedger writes the
// derived fields afterwards, inside the same transaction.
func (r *ProgressionRepository) CreditCompletion(ctx context.Context, userID, classID uuid.UUID, xp int, now time.Time) (*progression.CreditResult, error) {
	query := `
		INSERT INTO progression_ledgers (
			user_id, class_id, total_xp, current_level, lessons_completed,
			current_streak, longest_streak, created_at, updated_at
		) VALUES ($1, $2, $3, 1, 1, 0, 0, $4, $4)
		ON CONFLICT (user_id, class_id) DO UPDATE SET
			total_xp = progression_ledgers.total_xp + EXCLUDED.total_xp,
			lessons_completed = progression_ledgers.lessons_completed + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING total_xp, current_level, lessons_completed,
		          current_streak, longest_streak, last_activity_date,
		          created_at, updated_at
	`

	ledger := progression.Ledger{UserID: userID, ClassID: classID}
	var priorActivity *time.Time
	err := r.conn.querier(ctx).QueryRow(ctx, query, userID, classID, xp, now).Scan(
		&ledger.TotalXP, &ledger.CurrentLevel, &ledger.LessonsCompleted,
		&ledger.CurrentStreak, &ledger.LongestStreak, &priorActivity,
		&ledger.CreatedAt, &ledger.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to credit completion: %w", err)
	}

	ledger.LastActivityDate = priorActivity
	return &progression.CreditResult{Ledger: ledger, PriorActivityDate: priorActivity}, nil
}

// FinalizeLedger stores the derived level and streak state for the credit
// just applied.
func (r *ProgressionRepository) FinalizeLedger(ctx context.Context, userID, classID uuid.UUID, level, streak, longest int, now time.Time) error {
	query := `
		UPDATE progression_ledgers
		SET current_level = $3,
		    current_streak = $4,
		    longest_streak = $5,
		    last_activity_date = $6,
		    updated_at = $6
		WHERE user_id = $1 AND class_id = $2
	`

	tag, err := r.conn.querier(ctx).Exec(ctx, query, userID, classID, level, streak, longest, now)
	if err != nil {
		return fmt.Errorf("failed to finalize ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrLedgerNotFound
	}
	return nil
}

// GetLedger returns the (user, class) ledger.
func (r *ProgressionRepository) GetLedger(ctx context.Context, userID, classID uuid.UUID) (*progression.Ledger, error) {
	query := `
		SELECT user_id, class_id, total_xp, current_level, lessons_completed,
		       current_streak, longest_streak, last_activity_date,
		       created_at, updated_at
		FROM progression_ledgers
		WHERE user_id = $1 AND class_id = $2
	`

	var l progression.Ledger
	err := r.conn.querier(ctx).QueryRow(ctx, query, userID, classID).Scan(
		&l.UserID, &l.ClassID, &l.TotalXP, &l.CurrentLevel, &l.LessonsCompleted,
		&l.CurrentStreak, &l.LongestStreak, &l.LastActivityDate,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrLedgerNotFound
		}
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return &l, nil
}

// ListLedgers returns all of the user's ledgers across classes.
func (r *ProgressionRepository) ListLedgers(ctx context.Context, userID uuid.UUID) ([]*progression.Ledger, error) {
	query := `
		SELECT user_id, class_id, total_xp, current_level, lessons_completed,
		       current_streak, longest_streak, last_activity_date,
		       created_at, updated_at
		FROM progression_ledgers
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.conn.querier(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*progression.Ledger
	for rows.Next() {
		var l progression.Ledger
		if err := rows.Scan(
			&l.UserID, &l.ClassID, &l.TotalXP, &l.CurrentLevel, &l.LessonsCompleted,
			&l.CurrentStreak, &l.LongestStreak, &l.LastActivityDate,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		ledgers = append(ledgers, &l)
	}
	return ledgers, rows.Err()
}

// TracksWithCompletions lists the distinct tracks the user has completed at
// least one lesson in.
func (r *ProgressionRepository) TracksWithCompletions(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT l.track_id
		FROM lesson_completions c
		JOIN lessons l ON l.id = c.lesson_id
		WHERE c.user_id = $1
	`

	rows, err := r.conn.querier(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed tracks: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan track id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountTrackCompletions counts the user's completions inside one track.
func (r *ProgressionRepository) CountTrackCompletions(ctx context.Context, trackID, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM lesson_completions c
		JOIN lessons l ON l.id = c.lesson_id
		WHERE l.track_id = $1 AND c.user_id = $2
	`

	var count int
	if err := r.conn.querier(ctx).QueryRow(ctx, query, trackID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count track completions: %w", err)
	}
	return count, nil
}

// TopByClass returns the class leaderboard rows straight from the ledgers.
// The Redis cache uses this as its rebuild source on a miss.
func (r *ProgressionRepository) TopByClass(ctx context.Context, classID uuid.UUID, limit int) ([]query.RankedScore, error) {
	sqlQuery := `
		SELECT user_id, total_xp
		FROM progression_ledgers
		WHERE class_id = $1
		ORDER BY total_xp DESC, user_id
		LIMIT $2
	`

	rows, err := r.conn.querier(ctx).Query(ctx, sqlQuery, classID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var scores []query.RankedScore
	for rows.Next() {
		var s query.RankedScore
		if err := rows.Scan(&s.UserID, &s.TotalXP); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
