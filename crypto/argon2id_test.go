package crypto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fearce02/Drawlio-sub000/crypto"
)

func TestArgon2idHasher(t *testing.T) {
	t.Parallel()

	// Cheap parameters; we test correctness, not strength.
	hasher := crypto.NewArgon2idHasher(1, 1024, 16, 16, 1)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")

	match, err := hasher.Compare(hash, "correct horse battery staple")
	assert.NoError(t, err)
	assert.True(t, match)

	match, err = hasher.Compare(hash, "wrong password")
	assert.NoError(t, err)
	assert.False(t, match)
}

func TestArgon2idHasher_UniqueSalts(t *testing.T) {
	t.Parallel()

	hasher := crypto.NewArgon2idHasher(1, 1024, 16, 16, 1)

	h1, err := hasher.Hash("same password")
	require.NoError(t, err)
	h2, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}
