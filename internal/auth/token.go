// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// TokenKind discriminates access tokens from refresh tokens. The kind claim
// is checked at parse time so a refresh token can never be presented where an
// access token is expected, and vice versa.
type TokenKind string

// Supported token kinds.
const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Default token lifetimes.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// signingMethod is fixed; parsing rejects any other algorithm, including
// "none".
var signingMethod = jwt.SigningMethodHS256

// TokenConfig holds the per-kind secrets and lifetimes. Access and refresh
// kinds are signed with independent secrets so a compromised access secret
// does not allow refresh-token forgery.
type TokenConfig struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
}

// tokenClaims is the signed claim set: subject, expiry, and the kind
// discriminant.
type tokenClaims struct {
	jwt.RegisteredClaims
	Kind string `json:"token_type"`
}

// TokenCodec builds and parses signed, expiring, typed tokens.
type TokenCodec struct {
	cfg TokenConfig
}

// NewTokenCodec creates a TokenCodec. Both secrets are required; zero
// lifetimes fall back to the defaults.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("access token secret is required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("refresh token secret is required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenCodec{cfg: cfg}, nil
}

// Issue encodes the subject and kind with an absolute expiry of now plus the
// kind's lifetime, signed with the kind's secret.
func (c *TokenCodec) Issue(kind TokenKind, subject string) (string, error) {
	if subject == "" {
		return "", oops.Code("TOKEN_ISSUE_FAILED").Errorf("subject cannot be empty")
	}

	secret, ttl, err := c.kindParams(kind)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: string(kind),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(secret)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").
			With("kind", string(kind)).
			Wrap(err)
	}
	return signed, nil
}

// Parse verifies the token against the expected kind's secret and returns the
// subject. Expiry is checked against server time with zero leeway. Any
// failure -- bad signature, wrong algorithm, expired, missing or mismatched
// kind claim -- surfaces as ErrInvalidToken.
func (c *TokenCodec) Parse(tokenString string, expected TokenKind) (string, error) {
	secret, _, err := c.kindParams(expected)
	if err != nil {
		return "", err
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", oops.Code("AUTH_INVALID_TOKEN").
			With("kind", string(expected)).
			With("reason", err.Error()).
			Wrap(ErrInvalidToken)
	}
	if !token.Valid {
		return "", oops.Code("AUTH_INVALID_TOKEN").
			With("kind", string(expected)).
			Wrap(ErrInvalidToken)
	}

	if claims.Kind != string(expected) {
		return "", oops.Code("AUTH_INVALID_TOKEN").
			With("kind", string(expected)).
			With("reason", "token kind mismatch").
			Wrap(ErrInvalidToken)
	}
	if claims.Subject == "" {
		return "", oops.Code("AUTH_INVALID_TOKEN").
			With("kind", string(expected)).
			With("reason", "missing subject").
			Wrap(ErrInvalidToken)
	}

	return claims.Subject, nil
}

// kindParams returns the secret and lifetime configured for a kind.
func (c *TokenCodec) kindParams(kind TokenKind) ([]byte, time.Duration, error) {
	switch kind {
	case TokenKindAccess:
		return c.cfg.AccessSecret, c.cfg.AccessTTL, nil
	case TokenKindRefresh:
		return c.cfg.RefreshSecret, c.cfg.RefreshTTL, nil
	default:
		return nil, 0, oops.Code("TOKEN_KIND_INVALID").Errorf("unknown token kind: %q", kind)
	}
}
