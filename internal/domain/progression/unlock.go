package progression

import (
	"context"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain/lesson"
	"github.com/studyloop/studyloop/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// SEQUENTIAL UNLOCK GATE
// ═══════════════════════════════════════════════════════════════════════════

// LessonDirectory lists the lessons that precede a position in a track.
type LessonDirectory interface {
	PriorLessonIDs(ctx context.Context, trackID uuid.UUID, position int) ([]uuid.UUID, error)
}

// CompletionCounter counts a user's completions among a set of lessons.
type CompletionCounter interface {
	CountCompleted(ctx context.Context, userID uuid.UUID, lessonIDs []uuid.UUID) (int, error)
}

// UnlockGate enforces sequential unlocking: a lesson at position P is
// attemptable only when every lower-position lesson of the same track is
// completed. The check is recomputed fresh on every call - completions can
// be created out of strict order (data imports), so there is no cached
// "current position" pointer to trust.
type UnlockGate struct {
	lessons     LessonDirectory
	completions CompletionCounter
}

// NewUnlockGate creates an UnlockGate over the given lookups.
func NewUnlockGate(lessons LessonDirectory, completions CompletionCounter) *UnlockGate {
	return &UnlockGate{lessons: lessons, completions: completions}
}

// Check returns nil when the user may attempt the lesson, or
// shared.ErrLessonLocked when prior lessons remain incomplete.
func (g *UnlockGate) Check(ctx context.Context, l *lesson.Lesson, userID uuid.UUID) error {
	if l.IsFirst() {
		return nil
	}

	priorIDs, err := g.lessons.PriorLessonIDs(ctx, l.TrackID, l.Position)
	if err != nil {
		return shared.WrapError("progression", "Unlock", shared.ErrInternal, "listing prior lessons failed", err)
	}
	if len(priorIDs) == 0 {
		return nil
	}

	completed, err := g.completions.CountCompleted(ctx, userID, priorIDs)
	if err != nil {
		return shared.WrapError("progression", "Unlock", shared.ErrInternal, "counting completions failed", err)
	}
	if completed < len(priorIDs) {
		return shared.ErrLessonLocked
	}
	return nil
}
