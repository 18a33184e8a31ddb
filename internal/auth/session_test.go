package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionToken(t *testing.T) {
	a, err := NewSessionToken()
	require.NoError(t, err)
	b, err := NewSessionToken()
	require.NoError(t, err)

	assert.Len(t, a, 64) // 32 random bytes, hex encoded
	assert.NotEqual(t, a, b)
}

func TestHashSessionToken(t *testing.T) {
	h1 := HashSessionToken("secret", "token")
	h2 := HashSessionToken("secret", "token")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, "token", h1)

	// Both inputs feed the hash.
	assert.NotEqual(t, h1, HashSessionToken("other", "token"))
	assert.NotEqual(t, h1, HashSessionToken("secret", "other"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "password124"))
	assert.False(t, CheckPassword("not a bcrypt hash", "password123"))
}
