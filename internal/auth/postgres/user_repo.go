// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package postgres implements auth repositories on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/tollgate/tollgate/internal/auth"
)

// Unique constraint names from the users table migration.
const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
)

// pool is the subset of pgxpool.Pool used by repositories. Declared as an
// interface so tests can substitute pgxmock.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(p pool) *UserRepository {
	return &UserRepository{pool: p}
}

// Create stores a new user. The users table carries unique constraints on
// username and email; a violation is the authoritative duplicate signal and
// maps onto auth.ErrUsernameTaken / auth.ErrEmailTaken, which covers
// concurrent registrations that slip past the service-level pre-check.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (
			id, fullname, username, email, password_hash, active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		user.ID,
		user.Fullname,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if taken := uniqueViolation(err); taken != nil {
			return oops.Code("USER_DUPLICATE").
				With("username", user.Username).
				Wrap(taken)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("username", user.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, fullname, username, email, password_hash, active,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return user, nil
}

// GetByUsernameOrEmail retrieves a user whose username or email exactly
// matches the identifier. Matching is case-sensitive.
func (r *UserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, fullname, username, email, password_hash, active,
		       created_at, updated_at
		FROM users
		WHERE username = $1 OR email = $1
	`, identifier)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("identifier", identifier).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_IDENTIFIER_FAILED").
			With("operation", "get user by username or email").
			Wrap(err)
	}
	return user, nil
}

// UpdatePasswordHash replaces only the stored password hash for a user.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, id, passwordHash, time.Now().UTC())
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password hash").
			With("id", id).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser scans one users row.
func scanUser(row pgx.Row) (*auth.User, error) {
	var user auth.User
	err := row.Scan(
		&user.ID,
		&user.Fullname,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers map pgx.ErrNoRows themselves
	}
	return &user, nil
}

// uniqueViolation maps a unique-constraint violation onto the auth taxonomy,
// or returns nil if the error is something else.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch {
	case pgErr.ConstraintName == usernameConstraint:
		return auth.ErrUsernameTaken
	case pgErr.ConstraintName == emailConstraint:
		return auth.ErrEmailTaken
	case strings.Contains(pgErr.ConstraintName, "email"):
		return auth.ErrEmailTaken
	default:
		return auth.ErrUsernameTaken
	}
}
