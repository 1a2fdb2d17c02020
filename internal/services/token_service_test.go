package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/config"
	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/utils"
)

func testTokenService(users UserStore) *TokenService {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:         "test-secret",
			AccessTTLHours: 1,
			RefreshTTLDays: 7,
		},
	}
	return NewTokenService(users, cfg, zap.NewNop())
}

func activeUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Email:    "user@example.com",
		FullName: "Test User",
		Role:     models.RolePendingDirector,
		IsActive: true,
	}
}

func TestTokenServiceIssueAndValidate(t *testing.T) {
	user := activeUser()
	users := newFakeUserStore(user)
	svc := testTokenService(users)

	pair, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	got, err := svc.Validate(context.Background(), pair.AccessToken, utils.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestTokenServiceRejectsWrongKind(t *testing.T) {
	user := activeUser()
	users := newFakeUserStore(user)
	svc := testTokenService(users)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), pair.RefreshToken, utils.TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate(context.Background(), pair.AccessToken, utils.TokenKindRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRejectsTampered(t *testing.T) {
	user := activeUser()
	users := newFakeUserStore(user)
	svc := testTokenService(users)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	_, err = svc.Validate(context.Background(), tampered, utils.TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRejectsDeactivatedUser(t *testing.T) {
	user := activeUser()
	users := newFakeUserStore(user)
	svc := testTokenService(users)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	require.NoError(t, users.SetActive(context.Background(), user.ID, false))

	_, err = svc.Validate(context.Background(), pair.AccessToken, utils.TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRejectsStaleVersion(t *testing.T) {
	user := activeUser()
	users := newFakeUserStore(user)
	svc := testTokenService(users)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	// Password reset bumps the version; tokens issued before must die.
	require.NoError(t, users.UpdatePassword(context.Background(), user.ID, "new-hash"))

	_, err = svc.Validate(context.Background(), pair.AccessToken, utils.TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRefresh(t *testing.T) {
	user := activeUser()
	users := newFakeUserStore(user)
	svc := testTokenService(users)

	pair, err := svc.Issue(user)
	require.NoError(t, err)

	access, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	got, err := svc.Validate(context.Background(), access, utils.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	// An access token is not accepted as a refresh token.
	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
