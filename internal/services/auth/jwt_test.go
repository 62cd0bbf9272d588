package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	access, refresh, err := svc.GenerateToken("drv-a", "Ram Thapa", "driver")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	id, role, err := svc.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "drv-a", id)
	assert.Equal(t, "driver", role)
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	access, _, err := svc.GenerateToken("drv-a", "Ram Thapa", "driver")
	require.NoError(t, err)

	_, _, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestRefreshTokenWrongSecret(t *testing.T) {
	_, refresh, err := NewJWTService("secret-a").GenerateToken("drv-a", "Ram Thapa", "driver")
	require.NoError(t, err)

	_, _, err = NewJWTService("secret-b").ValidateRefreshToken(refresh)
	assert.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
