// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import "strings"

// ═══════════════════════════════════════════════════════════════════════════
// Role Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Role represents a platform role resolved by the auth layer.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// NewRole parses a role string with validation.
func NewRole(value string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(value)))
	if !r.IsValid() {
		return "", NewDomainError("shared", "NewRole", ErrInvalidInput, "unknown role")
	}
	return r, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Score Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Score represents a graded result on the 0-100 scale.
type Score int

const (
	MinScore Score = 0
	MaxScore Score = 100

	// PassingScore is the inclusive boundary at which a short-answer
	// submission counts as correct.
	PassingScore Score = 50
)

// IsValid checks if the score is within the 0-100 range.
func (s Score) IsValid() bool {
	return s >= MinScore && s <= MaxScore
}

// Int returns the underlying int value.
func (s Score) Int() int {
	return int(s)
}

// IsPerfect reports whether the score is a full 100.
func (s Score) IsPerfect() bool {
	return s == MaxScore
}

// IsPassing reports whether the score meets the passing boundary.
func (s Score) IsPassing() bool {
	return s >= PassingScore
}

// ClampScore clamps an int to the valid score range.
func ClampScore(value int) Score {
	if value < int(MinScore) {
		return MinScore
	}
	if value > int(MaxScore) {
		return MaxScore
	}
	return Score(value)
}

// ═══════════════════════════════════════════════════════════════════════════
// Difficulty Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Difficulty represents lesson difficulty on a 1-3 scale.
type Difficulty int

const (
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
)

// IsValid checks if the difficulty is within range.
func (d Difficulty) IsValid() bool {
	return d >= DifficultyEasy && d <= DifficultyHard
}

// Int returns the underlying int value.
func (d Difficulty) Int() int {
	return int(d)
}

// NewDifficulty creates a Difficulty with validation.
func NewDifficulty(value int) (Difficulty, error) {
	d := Difficulty(value)
	if !d.IsValid() {
		return 0, NewDomainError("shared", "NewDifficulty", ErrValueOutOfRange, "difficulty must be between 1 and 3")
	}
	return d, nil
}
