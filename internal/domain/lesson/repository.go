package lesson

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines lesson and track lookups needed by the progression
// engine. Implementations must respect an active transaction carried in ctx.
type Repository interface {
	// GetForAttempt returns the lesson together with its resolved track.
	// Returns shared.ErrLessonNotFound when the lesson is absent or its
	// track is unpublished.
	GetForAttempt(ctx context.Context, lessonID uuid.UUID) (*WithTrack, error)

	// PriorLessonIDs returns the IDs of all lessons in the track with a
	// position strictly below the given one.
	PriorLessonIDs(ctx context.Context, trackID uuid.UUID, position int) ([]uuid.UUID, error)

	// CountByTrack returns the total number of lessons in a track.
	CountByTrack(ctx context.Context, trackID uuid.UUID) (int, error)

	// IsEnrolled reports whether the user has an enrollment in the class.
	IsEnrolled(ctx context.Context, classID, userID uuid.UUID) (bool, error)
}
