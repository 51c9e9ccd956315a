// Package lesson contains the lesson aggregate: kind-specific content,
// answer evaluation, and the repository contract for lesson/track lookups.
package lesson

import (
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ENTITIES
// ═══════════════════════════════════════════════════════════════════════════

// Track is the ordered container of lessons inside a subject.
type Track struct {
	// ID - unique track identifier.
	ID uuid.UUID

	// SubjectID - owning subject.
	SubjectID uuid.UUID

	// ClassID - class the track ultimately belongs to (via subject).
	ClassID uuid.UUID

	// Title - display name.
	Title string

	// IsPublished - unpublished tracks are invisible to students.
	IsPublished bool
}

// Lesson is one attemptable unit inside a track. Positions are dense 1..N
// within a track; deleting a lesson renumbers the remainder.
type Lesson struct {
	// ID - unique lesson identifier.
	ID uuid.UUID

	// TrackID - owning track.
	TrackID uuid.UUID

	// Position - 1-based position within the track.
	Position int

	// Title - display name.
	Title string

	// Difficulty - 1 (easy) to 3 (hard).
	Difficulty shared.Difficulty

	// XPReward - XP credited on first completion.
	XPReward int

	// Content - kind-specific body (quiz, yes/no, short answer).
	Content Content

	// TargetAttributes - weakness tags attributed on incorrect attempts.
	TargetAttributes []string

	// CreatedAt - creation timestamp.
	CreatedAt time.Time
}

// Kind returns the lesson kind derived from its content.
func (l *Lesson) Kind() Kind {
	if l.Content == nil {
		return ""
	}
	return l.Content.Kind()
}

// Explanation returns the feedback text from the lesson content.
func (l *Lesson) Explanation() string {
	if l.Content == nil {
		return ""
	}
	return l.Content.Explanation()
}

// IsFirst reports whether the lesson opens its track.
func (l *Lesson) IsFirst() bool {
	return l.Position == 1
}

// Validate checks entity invariants.
func (l *Lesson) Validate() error {
	if l.ID == uuid.Nil {
		return shared.NewDomainError("lesson", "Validate", shared.ErrInvalidID, "lesson ID is required")
	}
	if l.TrackID == uuid.Nil {
		return shared.NewDomainError("lesson", "Validate", shared.ErrInvalidID, "track ID is required")
	}
	if l.Position < 1 {
		return shared.NewDomainError("lesson", "Validate", shared.ErrValueOutOfRange, "position must be >= 1")
	}
	if !l.Difficulty.IsValid() {
		return shared.NewDomainError("lesson", "Validate", shared.ErrValueOutOfRange, "difficulty must be between 1 and 3")
	}
	if l.XPReward < 0 {
		return shared.NewDomainError("lesson", "Validate", shared.ErrValueOutOfRange, "xp reward cannot be negative")
	}
	if l.Content == nil {
		return shared.NewDomainError("lesson", "Validate", shared.ErrEmptyValue, "lesson content is required")
	}
	return l.Content.Validate()
}

// WithTrack bundles a lesson with its resolved track for access checks.
type WithTrack struct {
	Lesson *Lesson
	Track  *Track
}
