package progression

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/studyloop/studyloop/internal/domain/lesson"
	"github.com/studyloop/studyloop/internal/domain/shared"
)

type fakeDirectory struct {
	prior []uuid.UUID
	err   error
}

func (f *fakeDirectory) PriorLessonIDs(_ context.Context, _ uuid.UUID, _ int) ([]uuid.UUID, error) {
	return f.prior, f.err
}

type fakeCounter struct {
	completed int
	err       error
}

func (f *fakeCounter) CountCompleted(_ context.Context, _ uuid.UUID, _ []uuid.UUID) (int, error) {
	return f.completed, f.err
}

func lessonAt(position int) *lesson.Lesson {
	return &lesson.Lesson{
		ID:       uuid.New(),
		TrackID:  uuid.New(),
		Position: position,
	}
}

func TestUnlockGate_FirstLessonAlwaysOpen(t *testing.T) {
	// The directory must not even be consulted for position 1.
	gate := NewUnlockGate(&fakeDirectory{err: errors.New("should not be called")}, &fakeCounter{})

	err := gate.Check(context.Background(), lessonAt(1), uuid.New())

	assert.NoError(t, err)
}

func TestUnlockGate_LockedWhenPriorIncomplete(t *testing.T) {
	prior := []uuid.UUID{uuid.New(), uuid.New()}
	gate := NewUnlockGate(&fakeDirectory{prior: prior}, &fakeCounter{completed: 1})

	err := gate.Check(context.Background(), lessonAt(3), uuid.New())

	assert.ErrorIs(t, err, shared.ErrLessonLocked)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUnlockGate_OpenWhenAllPriorComplete(t *testing.T) {
	prior := []uuid.UUID{uuid.New(), uuid.New()}
	gate := NewUnlockGate(&fakeDirectory{prior: prior}, &fakeCounter{completed: 2})

	err := gate.Check(context.Background(), lessonAt(3), uuid.New())

	assert.NoError(t, err)
}

func TestUnlockGate_NoPriorLessonsOpen(t *testing.T) {
	// A track whose numbering starts past 1 still opens its lowest lesson.
	gate := NewUnlockGate(&fakeDirectory{prior: nil}, &fakeCounter{})

	err := gate.Check(context.Background(), lessonAt(2), uuid.New())

	assert.NoError(t, err)
}

func TestUnlockGate_LookupFailureIsInternal(t *testing.T) {
	gate := NewUnlockGate(&fakeDirectory{err: errors.New("connection refused")}, &fakeCounter{})

	err := gate.Check(context.Background(), lessonAt(2), uuid.New())

	assert.ErrorIs(t, err, shared.ErrInternal)
	assert.NotErrorIs(t, err, shared.ErrLessonLocked)
}
