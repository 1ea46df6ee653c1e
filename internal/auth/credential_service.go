// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// CredentialService verifies stored credentials and registers new users.
type CredentialService struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(users UserRepository, hasher PasswordHasher) (*CredentialService, error) {
	return NewCredentialServiceWithLogger(users, hasher, slog.New(slog.DiscardHandler))
}

// NewCredentialServiceWithLogger creates a new CredentialService with a logger.
func NewCredentialServiceWithLogger(users UserRepository, hasher PasswordHasher, logger *slog.Logger) (*CredentialService, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &CredentialService{users: users, hasher: hasher, logger: logger}, nil
}

// Authenticate looks up a user by username or email and verifies the
// password. An unknown identifier and a wrong password both return
// ErrInvalidCredentials; the two are indistinguishable to the caller.
// Uses constant-time operations to prevent timing-based username enumeration.
func (s *CredentialService) Authenticate(ctx context.Context, identifier, password string) (*User, error) {
	user, lookupErr := s.users.GetByUsernameOrEmail(ctx, identifier)

	// Determine which hash to verify against (real or dummy for timing attack prevention)
	targetHash := dummyPasswordHash
	userExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOOKUP_FAILED").
				With("operation", "get user by identifier").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	// Always verify, even against the dummy hash, to keep response time flat.
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		// A malformed stored hash counts as a failed match, not an internal error.
		s.logger.WarnContext(ctx, "password verification failed",
			"user_exists", userExists,
			"error", verifyErr)
		valid = false
	}

	if !userExists || !valid {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	// Check the active flag only after verification to maintain constant time.
	if !user.Active {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	// Upgrade legacy hashes on successful login. Best effort - authentication
	// succeeds even if the write-back fails.
	if s.hasher.NeedsRehash(user.PasswordHash) {
		if newHash, hashErr := s.hasher.Hash(password); hashErr == nil {
			if updErr := s.users.UpdatePasswordHash(ctx, user.ID, newHash); updErr != nil {
				s.logger.WarnContext(ctx, "password hash upgrade failed",
					"user_id", user.ID,
					"error", updErr)
			} else {
				user.PasswordHash = newHash
			}
		}
	}

	return user, nil
}

// Register hashes the password and inserts a new user. The username and, when
// supplied, the email are pre-checked for fast feedback, but the storage
// unique constraint is the authoritative signal: a violation at insert time
// surfaces as ErrUsernameTaken or ErrEmailTaken rather than a crash, which
// covers the register/register race.
func (s *CredentialService) Register(ctx context.Context, fullname, username, password string, email *string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsernameOrEmail(ctx, username); err == nil {
		return nil, oops.Code("AUTH_USERNAME_TAKEN").
			With("username", username).
			Wrap(ErrUsernameTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check username").
			Wrap(err)
	}

	if email != nil {
		if _, err := s.users.GetByUsernameOrEmail(ctx, *email); err == nil {
			return nil, oops.Code("AUTH_EMAIL_TAKEN").Wrap(ErrEmailTaken)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_REGISTER_FAILED").
				With("operation", "check email").
				Wrap(err)
		}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(fullname, username, hash, email)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The repository maps unique violations onto the taxonomy; pass them
		// through unchanged.
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert user").
			With("username", username).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"username", user.Username)

	return user, nil
}
