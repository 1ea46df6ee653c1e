// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tollgate/tollgate/internal/auth"
)

// stubVerifier returns a fixed user or error without touching storage.
type stubVerifier struct {
	user *auth.User
	err  error
}

func (s *stubVerifier) Authenticate(context.Context, string, string) (*auth.User, error) {
	return s.user, s.err
}

func TestNewSessionService_NilDeps(t *testing.T) {
	codec := newTestCodec(t)

	_, err := auth.NewSessionService(nil, codec)
	require.Error(t, err)

	_, err = auth.NewSessionService(&stubVerifier{}, nil)
	require.Error(t, err)
}

func TestSessionService_Login_Success(t *testing.T) {
	codec := newTestCodec(t)
	user := activeUser(t, "alice", "$argon2id$hash")

	svc, err := auth.NewSessionService(&stubVerifier{user: user}, codec)
	require.NoError(t, err)

	got, pair, err := svc.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	// Each token round-trips only as its own kind.
	subject, err := codec.Parse(pair.AccessToken, auth.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	subject, err = codec.Parse(pair.RefreshToken, auth.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	_, err = codec.Parse(pair.RefreshToken, auth.TokenKindAccess)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSessionService_Login_InvalidCredentials(t *testing.T) {
	svc, err := auth.NewSessionService(
		&stubVerifier{err: auth.ErrInvalidCredentials}, newTestCodec(t))
	require.NoError(t, err)

	_, pair, err := svc.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Empty(t, pair.AccessToken)
	assert.Empty(t, pair.RefreshToken)
}

func TestSessionService_Refresh_Success(t *testing.T) {
	codec := newTestCodec(t)
	user := activeUser(t, "alice", "$argon2id$hash")

	svc, err := auth.NewSessionService(&stubVerifier{user: user}, codec)
	require.NoError(t, err)

	_, pair, err := svc.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	access, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	subject, err := codec.Parse(access, auth.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}

func TestSessionService_Refresh_MissingToken(t *testing.T) {
	svc, err := auth.NewSessionService(&stubVerifier{}, newTestCodec(t))
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), "")
	require.ErrorIs(t, err, auth.ErrMissingToken)
}

func TestSessionService_Refresh_RejectsAccessToken(t *testing.T) {
	codec := newTestCodec(t)
	user := activeUser(t, "alice", "$argon2id$hash")

	svc, err := auth.NewSessionService(&stubVerifier{user: user}, codec)
	require.NoError(t, err)

	_, pair, err := svc.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestSessionService_Refresh_ExpiredToken(t *testing.T) {
	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		AccessSecret:  testTokenConfig.AccessSecret,
		AccessTTL:     time.Minute,
		RefreshSecret: testTokenConfig.RefreshSecret,
		RefreshTTL:    time.Nanosecond,
	})
	require.NoError(t, err)

	refresh, err := codec.Issue(auth.TokenKindRefresh, "user-1")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	svc, err := auth.NewSessionService(&stubVerifier{}, codec)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), refresh)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}
