package command

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/studyloop/studyloop/internal/domain/shared"
	"github.com/studyloop/studyloop/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER USER / LOGIN COMMANDS
// Account creation and credential verification backing the auth endpoints.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterUserCommand contains signup data.
type RegisterUserCommand struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// Validate checks the command fields.
func (c *RegisterUserCommand) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return shared.NewDomainError("user", "Register", shared.ErrEmptyValue, "email is required")
	}
	if len(c.Password) < 8 {
		return shared.NewDomainError("user", "Register", shared.ErrInvalidInput, "password must be at least 8 characters")
	}
	if c.Role == "" {
		c.Role = shared.RoleStudent.String()
	}
	return nil
}

// RegisterUserHandler creates accounts.
type RegisterUserHandler struct {
	users user.Repository
	clock func() time.Time
}

// NewRegisterUserHandler wires the handler.
func NewRegisterUserHandler(users user.Repository) *RegisterUserHandler {
	return &RegisterUserHandler{users: users, clock: time.Now}
}

// Handle registers a new account with a bcrypt password hash.
func (h *RegisterUserHandler) Handle(ctx context.Context, cmd RegisterUserCommand) (*user.User, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	role, err := shared.NewRole(cmd.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.WrapError("user", "Register", shared.ErrInternal, "hashing password failed", err)
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(cmd.Email)),
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(cmd.FirstName),
		LastName:     strings.TrimSpace(cmd.LastName),
		Role:         role,
		CreatedAt:    h.clock().UTC(),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := h.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LoginHandler verifies credentials.
type LoginHandler struct {
	users user.Repository
}

// NewLoginHandler wires the handler.
func NewLoginHandler(users user.Repository) *LoginHandler {
	return &LoginHandler{users: users}
}

// Handle returns the user when the email/password pair is valid. Wrong
// email and wrong password are indistinguishable to the caller.
func (h *LoginHandler) Handle(ctx context.Context, email, password string) (*user.User, error) {
	u, err := h.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, shared.ErrBadCredentials
	}
	return u, nil
}
