package postgres

import (
	"context"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: ACCOUNTS AND CURRICULUM
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: users, classes, enrollment, curriculum
-- Version: 001

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(255) NOT NULL,
    first_name VARCHAR(100) NOT NULL DEFAULT '',
    last_name VARCHAR(100) NOT NULL DEFAULT '',
    role VARCHAR(20) NOT NULL DEFAULT 'STUDENT',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_role CHECK (role IN ('STUDENT', 'TEACHER', 'ADMIN'))
);

CREATE TABLE IF NOT EXISTS classes (
    id UUID PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    teacher_id UUID NOT NULL REFERENCES users(id),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS enrollments (
    class_id UUID NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    enrolled_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (class_id, user_id)
);

CREATE TABLE IF NOT EXISTS subjects (
    id UUID PRIMARY KEY,
    class_id UUID NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
    name VARCHAR(200) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS tracks (
    id UUID PRIMARY KEY,
    subject_id UUID NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
    title VARCHAR(200) NOT NULL,
    is_published BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS lessons (
    id UUID PRIMARY KEY,
    track_id UUID NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    title VARCHAR(200) NOT NULL DEFAULT '',
    kind VARCHAR(20) NOT NULL,
    difficulty INTEGER NOT NULL DEFAULT 1,
    xp_reward INTEGER NOT NULL DEFAULT 0,
    content JSONB NOT NULL,
    target_attributes TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_kind CHECK (kind IN ('QUIZ', 'YES_NO', 'SHORT_ANSWER')),
    CONSTRAINT valid_difficulty CHECK (difficulty BETWEEN 1 AND 3),
    CONSTRAINT valid_position CHECK (position >= 1),
    CONSTRAINT valid_xp_reward CHECK (xp_reward >= 0),
    CONSTRAINT unique_track_position UNIQUE (track_id, position) DEFERRABLE INITIALLY DEFERRED
);

CREATE INDEX IF NOT EXISTS idx_lessons_track_position ON lessons(track_id, position);
CREATE INDEX IF NOT EXISTS idx_tracks_subject ON tracks(subject_id);
CREATE INDEX IF NOT EXISTS idx_subjects_class ON subjects(class_id);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: PROGRESSION
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: attempts, completions, ledgers
-- Version: 002

-- Append-only attempt history; rows are never updated or deleted.
CREATE TABLE IF NOT EXISTS lesson_attempts (
    id UUID PRIMARY KEY,
    lesson_id UUID NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    submitted_answer JSONB NOT NULL,
    is_correct BOOLEAN NOT NULL,
    score INTEGER NOT NULL,
    time_spent_seconds INTEGER,
    identified_weaknesses TEXT[] NOT NULL DEFAULT '{}',
    attempted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_score CHECK (score BETWEEN 0 AND 100)
);

CREATE INDEX IF NOT EXISTS idx_attempts_lesson_user ON lesson_attempts(lesson_id, user_id);
CREATE INDEX IF NOT EXISTS idx_attempts_user ON lesson_attempts(user_id);

-- At most one completion per (lesson, user), ever. The unique constraint is
-- the arbiter for concurrent correct submissions.
CREATE TABLE IF NOT EXISTS lesson_completions (
    id UUID PRIMARY KEY,
    lesson_id UUID NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    final_score INTEGER NOT NULL,
    attempts_count INTEGER NOT NULL,
    completed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT unique_lesson_completion UNIQUE (lesson_id, user_id),
    CONSTRAINT valid_final_score CHECK (final_score BETWEEN 0 AND 100)
);

CREATE INDEX IF NOT EXISTS idx_completions_user ON lesson_completions(user_id);

CREATE TABLE IF NOT EXISTS progression_ledgers (
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    class_id UUID NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
    total_xp INTEGER NOT NULL DEFAULT 0,
    current_level INTEGER NOT NULL DEFAULT 1,
    lessons_completed INTEGER NOT NULL DEFAULT 0,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_activity_date TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, class_id),
    CONSTRAINT valid_total_xp CHECK (total_xp >= 0)
);

CREATE INDEX IF NOT EXISTS idx_ledgers_class_xp ON progression_ledgers(class_id, total_xp DESC);
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: achievement catalog and earned badges
-- Version: 003

CREATE TABLE IF NOT EXISTS achievements (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(100) NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    icon VARCHAR(50) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Monotonic set: rows are only ever inserted.
CREATE TABLE IF NOT EXISTS user_achievements (
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    achievement_id UUID NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
    earned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, achievement_id)
);

CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id, earned_at DESC);
`

// Migrate applies all migrations in order and seeds the achievement catalog.
// Statements are idempotent, so re-running on startup is safe.
func Migrate(ctx context.Context, conn *Connection) error {
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Up},
		{2, migration002Up},
		{3, migration003Up},
	}

	for _, m := range migrations {
		if _, err := conn.pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, m.version, err)
		}
	}
	return seedAchievements(ctx, conn)
}
