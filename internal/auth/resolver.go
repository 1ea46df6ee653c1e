// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// Resolver is the per-request identity gate: it decodes a bearer access
// token and loads the identified user. It performs exactly one store lookup
// and is otherwise side-effect-free.
type Resolver struct {
	codec *TokenCodec
	users UserRepository
}

// NewResolver creates a new Resolver.
func NewResolver(codec *TokenCodec, users UserRepository) (*Resolver, error) {
	if codec == nil {
		return nil, oops.Errorf("token codec is required")
	}
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	return &Resolver{codec: codec, users: users}, nil
}

// Resolve returns the user identified by the access token.
// Fails with ErrMissingToken when no token was supplied, ErrInvalidToken when
// the token does not parse as a valid access token, and ErrUserNotFound when
// the subject decodes but no longer exists (e.g. deleted after issuance).
func (r *Resolver) Resolve(ctx context.Context, tokenString string) (*User, error) {
	if tokenString == "" {
		return nil, oops.Code("AUTH_MISSING_TOKEN").Wrap(ErrMissingToken)
	}

	subject, err := r.codec.Parse(tokenString, TokenKindAccess)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil, err
		}
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "parse access token").
			Wrap(err)
	}

	user, err := r.users.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_USER_NOT_FOUND").
				With("user_id", subject).
				Wrap(ErrUserNotFound)
		}
		return nil, oops.Code("AUTH_RESOLVE_FAILED").
			With("operation", "get user by id").
			With("user_id", subject).
			Wrap(err)
	}

	// An inactive subject is treated the same as a deleted one.
	if !user.Active {
		return nil, oops.Code("AUTH_USER_NOT_FOUND").
			With("user_id", subject).
			Wrap(ErrUserNotFound)
	}

	return user, nil
}
