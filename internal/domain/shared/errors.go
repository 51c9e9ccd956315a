// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Storage errors
	ErrConflict = errors.New("storage conflict")
	ErrInternal = errors.New("internal error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "lesson", "progression", "achievement"
	Op      string // Operation that failed, e.g., "Submit", "Unlock"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Lesson domain errors
var (
	ErrLessonNotFound    = NewDomainError("lesson", "Find", ErrNotFound, "lesson not found")
	ErrTrackNotFound     = NewDomainError("lesson", "FindTrack", ErrNotFound, "track not found")
	ErrTrackNotPublished = NewDomainError("lesson", "CheckPublished", ErrNotFound, "track is not published")
	ErrAnswerMissing     = NewDomainError("lesson", "Evaluate", ErrValidation, "submitted answer is required")
	ErrAnswerShape       = NewDomainError("lesson", "Evaluate", ErrValidation, "submitted answer has the wrong shape for this lesson kind")
	ErrUnknownLessonKind = NewDomainError("lesson", "Evaluate", ErrValidation, "unsupported lesson kind")
	ErrLessonLocked      = NewDomainError("lesson", "Unlock", ErrForbidden, "previous lessons must be completed first")
)

// Progression domain errors
var (
	ErrLedgerNotFound   = NewDomainError("progression", "FindLedger", ErrNotFound, "progression ledger not found")
	ErrCompletionExists = NewDomainError("progression", "CreateCompletion", ErrAlreadyExists, "lesson already completed")
	ErrNotEnrolled      = NewDomainError("progression", "CheckEnrollment", ErrForbidden, "user is not enrolled in this class")
	ErrNotStudent       = NewDomainError("progression", "CheckRole", ErrForbidden, "only students can attempt lessons")
)

// Achievement domain errors
var (
	ErrAchievementNotFound = NewDomainError("achievement", "Find", ErrNotFound, "achievement not found")
	ErrAlreadyEarned       = NewDomainError("achievement", "Award", ErrAlreadyExists, "achievement already earned")
)

// User domain errors
var (
	ErrUserNotFound   = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrEmailTaken     = NewDomainError("user", "Create", ErrAlreadyExists, "email is already registered")
	ErrBadCredentials = NewDomainError("user", "Login", ErrUnauthorized, "invalid email or password")
	ErrClassNotFound  = NewDomainError("user", "FindClass", ErrNotFound, "class not found")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsForbidden checks if the error is an authorization failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
