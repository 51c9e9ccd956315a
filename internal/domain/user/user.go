// Package user contains the platform account entity and its repository
// contract. Session resolution itself lives at the HTTP boundary; the
// engine only consumes a resolved (userID, role) pair.
package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain/shared"
)

// User is a platform account.
type User struct {
	// ID - unique user identifier.
	ID uuid.UUID

	// Email - unique login identifier.
	Email string

	// PasswordHash - bcrypt hash of the password.
	PasswordHash string

	// FirstName / LastName - display name parts.
	FirstName string
	LastName  string

	// Role - STUDENT, TEACHER or ADMIN.
	Role shared.Role

	// CreatedAt - registration timestamp.
	CreatedAt time.Time
}

// FullName returns the display name.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Validate checks entity invariants.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return shared.NewDomainError("user", "Validate", shared.ErrInvalidID, "user ID is required")
	}
	if u.Email == "" {
		return shared.NewDomainError("user", "Validate", shared.ErrEmptyValue, "email is required")
	}
	if u.PasswordHash == "" {
		return shared.NewDomainError("user", "Validate", shared.ErrEmptyValue, "password hash is required")
	}
	if !u.Role.IsValid() {
		return shared.NewDomainError("user", "Validate", shared.ErrInvalidInput, "unknown role")
	}
	return nil
}

// Repository defines user persistence.
type Repository interface {
	// Create inserts a new user. Returns shared.ErrEmailTaken when the
	// email is already registered.
	Create(ctx context.Context, u *User) error

	// GetByID returns a user by ID, or shared.ErrUserNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail returns a user by email, or shared.ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)
}
