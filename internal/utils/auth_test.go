package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-password", hash)

	assert.True(t, CheckPasswordHash("secret-password", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestSignAndParseToken(t *testing.T) {
	secret := []byte("test-secret")
	userID := uuid.New()

	token, err := SignToken(userID, TokenKindAccess, 3, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, TokenKindAccess, claims.Kind)
	assert.Equal(t, 3, claims.TokenVersion)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := SignToken(uuid.New(), TokenKindAccess, 0, []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("secret-b"))
	assert.Error(t, err)
}

func TestParseTokenTampered(t *testing.T) {
	secret := []byte("test-secret")
	token, err := SignToken(uuid.New(), TokenKindAccess, 0, secret, time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ParseToken(tampered, secret)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := SignToken(uuid.New(), TokenKindAccess, 0, secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.Error(t, err)
}

func TestGenerateResetCode(t *testing.T) {
	code := GenerateResetCode()
	assert.Len(t, code, 6)
	for _, c := range code {
		assert.True(t, c >= '0' && c <= '9')
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM "))
}
