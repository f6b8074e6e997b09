package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_AccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateAccessToken("user-1", "ron@example.com", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ron@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, tokenIssuer, claims.Issuer)
}

func TestJWTManager_RefreshTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := manager.ValidateRefreshToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
}

func TestJWTManager_ExpiredAccessToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateAccessToken("user-1", "ron@example.com", "customer")
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	other := NewJWTManager("other-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := manager.GenerateAccessToken("user-1", "ron@example.com", "customer")
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RefreshTokenRejectedAsAccessToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)

	refresh, err := manager.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := manager.ValidateAccessToken(refresh)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "wrong token type")
}

func TestJWTManager_AccessTokenRejectedAsRefreshToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)

	access, err := manager.GenerateAccessToken("user-1", "ron@example.com", "customer")
	require.NoError(t, err)

	claims, err := manager.ValidateRefreshToken(access)
	require.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "wrong token type")
}
