// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultFullname is used when registration supplies no display name.
const DefaultFullname = "Anonymous User"

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// User represents a registered account. The core never mutates a User after
// creation except for the best-effort hash upgrade on login.
type User struct {
	ID           string
	Fullname     string
	Username     string
	Email        *string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a validated User with a server-assigned ULID identifier.
// Email is optional and may be nil. An empty fullname falls back to
// DefaultFullname.
func NewUser(fullname, username, passwordHash string, email *string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if email != nil && *email == "" {
		return nil, oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty when provided")
	}
	if fullname == "" {
		fullname = DefaultFullname
	}

	now := time.Now().UTC()
	return &User{
		ID:           ulid.Make().String(),
		Fullname:     fullname,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateUsername validates a username against rules.
// Username requirements:
// - Length: MinUsernameLength to MaxUsernameLength characters
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// UserRepository manages user persistence. The storage layer enforces
// uniqueness of username and email; Create surfaces a unique-constraint
// violation as ErrUsernameTaken or ErrEmailTaken.
type UserRepository interface {
	// Create stores a new user.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByUsernameOrEmail retrieves a user whose username or email exactly
	// matches the identifier. Returns ErrNotFound when no user matches.
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*User, error)

	// UpdatePasswordHash replaces only the stored password hash for a user.
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}
