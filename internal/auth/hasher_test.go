// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tollgate/tollgate/internal/auth"
)

func TestArgon2idHasher_HashAndVerify(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := hasher.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2idHasher_RandomSalt(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	hash1, err := hasher.Hash("same password")
	require.NoError(t, err)
	hash2, err := hasher.Hash("same password")
	require.NoError(t, err)

	// Equal inputs must produce different stored hashes
	assert.NotEqual(t, hash1, hash2)

	// yet both must verify
	for _, h := range []string{hash1, hash2} {
		ok, err := hasher.Verify("same password", h)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestArgon2idHasher_EmptyPassword(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	_, err := hasher.Hash("")
	require.Error(t, err)
}

func TestArgon2idHasher_MalformedHash(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not a hash", "plaintext"},
		{"wrong algorithm", "$scrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"truncated", "$argon2id$v=19$m=65536,t=1,p=4"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
		{"bad key encoding", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!"},
		{"bad params", "$argon2id$v=19$m=abc,t=1,p=4$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := hasher.Verify("password", tt.hash)
			require.Error(t, err)
			assert.False(t, ok)
		})
	}
}

func TestArgon2idHasher_LegacyBcrypt(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	bcryptHash, err := bcrypt.GenerateFromPassword([]byte("legacy password"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := hasher.Verify("legacy password", string(bcryptHash))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong password", string(bcryptHash))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, hasher.NeedsRehash(string(bcryptHash)))
}

func TestArgon2idHasher_NeedsRehash(t *testing.T) {
	hasher := auth.NewArgon2idHasher()

	hash, err := hasher.Hash("password")
	require.NoError(t, err)

	assert.False(t, hasher.NeedsRehash(hash))
	assert.True(t, hasher.NeedsRehash("$2a$10$abcdefghijklmnopqrstuv"))
	assert.True(t, hasher.NeedsRehash("garbage"))
}
