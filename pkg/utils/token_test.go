package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLifecycleToken(t *testing.T) {
	plain, hashed, expiry, err := GenerateLifecycleToken()
	require.NoError(t, err)

	// 32 random bytes hex-encoded
	assert.Len(t, plain, 64)
	assert.Equal(t, HashToken(plain), hashed)
	assert.NotEqual(t, plain, hashed)

	// 有效期围绕 7 天
	assert.WithinDuration(t, time.Now().Add(LifecycleTokenTTL), expiry, 5*time.Second)
}

func TestGenerateLifecycleTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		plain, _, _, err := GenerateLifecycleToken()
		require.NoError(t, err)
		assert.False(t, seen[plain], "token generated twice")
		seen[plain] = true
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
}

func TestIsExpired(t *testing.T) {
	assert.True(t, IsExpired(time.Now().Add(-time.Second)))
	assert.False(t, IsExpired(time.Now().Add(time.Minute)))
}

func TestGenerateURLToken(t *testing.T) {
	token, err := GenerateURLToken(24)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
}
