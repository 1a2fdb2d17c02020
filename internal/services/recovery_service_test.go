package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/utils"
)

func recoveryFixture(t *testing.T) (*RecoveryService, *fakeUserStore, *fakeNotifier, *models.User) {
	t.Helper()

	hash, err := utils.HashPassword("old-password")
	require.NoError(t, err)

	user := activeUser()
	user.PasswordHash = hash

	users := newFakeUserStore(user)
	codes := &fakeResetCodeStore{}
	notifier := &fakeNotifier{}
	tokens := testTokenService(users)

	svc := NewRecoveryService(users, codes, tokens, notifier, zap.NewNop())
	return svc, users, notifier, user
}

func TestRequestResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, notifier, _ := recoveryFixture(t)

	err := svc.RequestReset(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, notifier.sent)
}

func TestRequestResetDeliversCode(t *testing.T) {
	svc, _, notifier, user := recoveryFixture(t)

	require.NoError(t, svc.RequestReset(context.Background(), user.Email))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, user.Email, notifier.sent[0])
	assert.Len(t, notifier.codes[0], 6)
}

func TestRequestResetSupersedesPreviousCode(t *testing.T) {
	svc, _, notifier, user := recoveryFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestReset(ctx, user.Email))
	require.NoError(t, svc.RequestReset(ctx, user.Email))
	require.Len(t, notifier.codes, 2)

	first, second := notifier.codes[0], notifier.codes[1]

	// The first code is dead even if it never expired.
	if first != second {
		_, _, err := svc.ConfirmReset(ctx, user.Email, first, "brand-new-password")
		assert.ErrorIs(t, err, ErrInvalidResetCode)
	}

	_, pair, err := svc.ConfirmReset(ctx, user.Email, second, "brand-new-password")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestConfirmResetRejectsWeakPassword(t *testing.T) {
	svc, _, _, user := recoveryFixture(t)

	_, _, err := svc.ConfirmReset(context.Background(), user.Email, "123456", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestConfirmResetRejectsWrongCode(t *testing.T) {
	svc, _, _, user := recoveryFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestReset(ctx, user.Email))

	_, _, err := svc.ConfirmReset(ctx, user.Email, "000000", "brand-new-password")
	assert.ErrorIs(t, err, ErrInvalidResetCode)
}

func TestConfirmResetRejectsExpiredCode(t *testing.T) {
	svc, _, notifier, user := recoveryFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestReset(ctx, user.Email))
	code := notifier.codes[0]

	// Jump past the code TTL.
	svc.now = func() time.Time { return time.Now().Add(resetCodeTTL + time.Minute) }

	_, _, err := svc.ConfirmReset(ctx, user.Email, code, "brand-new-password")
	assert.ErrorIs(t, err, ErrInvalidResetCode)
}

func TestConfirmResetAcceptsCodeAtExpiryInstant(t *testing.T) {
	svc, _, notifier, user := recoveryFixture(t)
	ctx := context.Background()

	base := time.Now()
	svc.now = func() time.Time { return base }
	require.NoError(t, svc.RequestReset(ctx, user.Email))
	code := notifier.codes[0]

	// Exactly at expires_at the code is still honored.
	svc.now = func() time.Time { return base.Add(resetCodeTTL) }

	_, pair, err := svc.ConfirmReset(ctx, user.Email, code, "brand-new-password")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestConfirmResetUpdatesPasswordAndKillsOldTokens(t *testing.T) {
	svc, users, notifier, user := recoveryFixture(t)
	ctx := context.Background()

	tokens := svc.tokens
	oldPair, err := tokens.Issue(user)
	require.NoError(t, err)

	require.NoError(t, svc.RequestReset(ctx, user.Email))
	code := notifier.codes[0]

	updated, pair, err := svc.ConfirmReset(ctx, user.Email, code, "brand-new-password")
	require.NoError(t, err)
	require.NotNil(t, pair)

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("brand-new-password", stored.PasswordHash))
	assert.Equal(t, stored.TokenVersion, updated.TokenVersion)

	// Tokens issued before the reset are stale.
	_, err = tokens.Validate(ctx, oldPair.AccessToken, utils.TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The fresh pair works.
	_, err = tokens.Validate(ctx, pair.AccessToken, utils.TokenKindAccess)
	assert.NoError(t, err)

	// The code is single-use.
	_, _, err = svc.ConfirmReset(ctx, user.Email, code, "another-password-1")
	assert.ErrorIs(t, err, ErrInvalidResetCode)
}
