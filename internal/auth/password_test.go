package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Admin123!")

	require.NoError(t, err)

	salt, key, found := strings.Cut(hash, ":")
	require.True(t, found)
	assert.Len(t, salt, 32)
	assert.Len(t, key, 128)

	t.Run("Salt differs per call", func(t *testing.T) {
		other, err := HashPassword("Admin123!")

		require.NoError(t, err)
		assert.NotEqual(t, hash, other)
	})
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("correct horse", hash))
	assert.False(t, VerifyPassword("correct horsE", hash))
	assert.False(t, VerifyPassword("", hash))

	t.Run("Malformed hashes never match", func(t *testing.T) {
		salt, key, _ := strings.Cut(hash, ":")

		for _, stored := range []string{
			"",
			"no-separator",
			":" + key,
			salt + ":",
			salt + ":zz" + key[2:],
			salt + ":" + key[:64],
			salt + ":" + key + "00",
		} {
			assert.False(t, VerifyPassword("correct horse", stored), stored)
		}
	})
}
