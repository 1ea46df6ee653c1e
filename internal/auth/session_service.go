// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// TokenPair is the access/refresh credential pair minted at login. The two
// tokens are independent bearer values and are never combined into one string.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// CredentialVerifier is the authentication dependency of SessionService.
type CredentialVerifier interface {
	// Authenticate verifies an identifier/password pair and returns the user.
	Authenticate(ctx context.Context, identifier, password string) (*User, error)
}

// SessionService mints token pairs for authenticated users and rotates
// access tokens from refresh tokens. Tokens are immutable once issued;
// refreshing always issues a brand-new access token.
type SessionService struct {
	creds  CredentialVerifier
	codec  *TokenCodec
	logger *slog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(creds CredentialVerifier, codec *TokenCodec) (*SessionService, error) {
	return NewSessionServiceWithLogger(creds, codec, slog.New(slog.DiscardHandler))
}

// NewSessionServiceWithLogger creates a new SessionService with a logger.
func NewSessionServiceWithLogger(creds CredentialVerifier, codec *TokenCodec, logger *slog.Logger) (*SessionService, error) {
	if creds == nil {
		return nil, oops.Errorf("credential verifier is required")
	}
	if codec == nil {
		return nil, oops.Errorf("token codec is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &SessionService{creds: creds, codec: codec, logger: logger}, nil
}

// Login authenticates the identifier/password pair and issues an
// access+refresh token pair for the user. ErrInvalidCredentials propagates
// unchanged. No token is issued on any failure.
func (s *SessionService) Login(ctx context.Context, identifier, password string) (*User, TokenPair, error) {
	user, err := s.creds.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, TokenPair{}, err
	}

	access, err := s.codec.Issue(TokenKindAccess, user.ID)
	if err != nil {
		return nil, TokenPair{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue access token").
			Wrap(err)
	}

	refresh, err := s.codec.Issue(TokenKindRefresh, user.ID)
	if err != nil {
		return nil, TokenPair{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "issue refresh token").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "session issued", "user_id", user.ID)

	return user, TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh parses the refresh token and issues a new access token for the
// same subject. An access-kind token is rejected here with ErrInvalidToken.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", oops.Code("AUTH_MISSING_TOKEN").Wrap(ErrMissingToken)
	}

	subject, err := s.codec.Parse(refreshToken, TokenKindRefresh)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return "", err
		}
		return "", oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "parse refresh token").
			Wrap(err)
	}

	access, err := s.codec.Issue(TokenKindAccess, subject)
	if err != nil {
		return "", oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "issue access token").
			Wrap(err)
	}

	s.logger.DebugContext(ctx, "access token refreshed", "user_id", subject)

	return access, nil
}
