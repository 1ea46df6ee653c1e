// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package auth

import "errors"

// ErrNotFound is returned by repositories when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Sentinel errors forming the caller-visible failure taxonomy. Services wrap
// these with oops codes; boundary layers match them with errors.Is.
var (
	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// password. The two cases are never distinguished in results.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsernameTaken is returned when registering with an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned when registering with an existing email.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidToken covers bad signature, expired, malformed, and
	// wrong-kind tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingToken is returned when no token string was supplied at all.
	ErrMissingToken = errors.New("missing token")

	// ErrUserNotFound is returned when a token decodes successfully but its
	// subject no longer exists in the store.
	ErrUserNotFound = errors.New("user not found")
)
