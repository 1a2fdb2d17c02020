package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/utils"
)

const (
	resetCodeTTL      = 10 * time.Minute
	minPasswordLength = 8
)

// RecoveryService drives the one-time-code password reset flow. At any
// instant at most one valid code exists per user; issuing a new one
// supersedes all earlier unused codes.
type RecoveryService struct {
	users    UserWriter
	codes    ResetCodeStore
	tokens   *TokenService
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewRecoveryService(users UserWriter, codes ResetCodeStore, tokens *TokenService, notifier Notifier, logger *zap.Logger) *RecoveryService {
	return &RecoveryService{
		users:    users,
		codes:    codes,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// RequestReset issues a fresh code for an active account and hands it to
// the notification sink. It returns nil for unknown or inactive emails as
// well, so the endpoint cannot be used to probe which accounts exist.
func (s *RecoveryService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return WrapInternal("failed to look up user", err)
	}
	if user == nil || !user.IsActive {
		return nil
	}

	if err := s.codes.InvalidateForUser(ctx, user.ID); err != nil {
		return WrapInternal("failed to invalidate previous codes", err)
	}

	code := utils.GenerateResetCode()
	if _, err := s.codes.Create(ctx, user.ID, code, s.now().Add(resetCodeTTL)); err != nil {
		return WrapInternal("failed to store reset code", err)
	}

	if err := s.notifier.SendPasswordReset(ctx, user, code); err != nil {
		// The code is already persisted; the user can retry the request.
		s.logger.Error("failed to dispatch reset notification",
			zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	return nil
}

// ConfirmReset validates the code, sets the new password and issues a
// fresh token pair. The password-version bump performed by UpdatePassword
// invalidates every previously issued token.
func (s *RecoveryService) ConfirmReset(ctx context.Context, email, code, newPassword string) (*models.User, *models.TokenPair, error) {
	if len(newPassword) < minPasswordLength {
		return nil, nil, ErrWeakPassword
	}

	user, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, nil, WrapInternal("failed to look up user", err)
	}
	if user == nil || !user.IsActive {
		return nil, nil, ErrInvalidResetCode
	}

	valid, err := s.codes.GetValid(ctx, user.ID, code, s.now())
	if err != nil {
		return nil, nil, WrapInternal("failed to look up reset code", err)
	}
	if valid == nil {
		return nil, nil, ErrInvalidResetCode
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, nil, WrapInternal("failed to hash password", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, nil, WrapInternal("failed to update password", err)
	}

	if err := s.codes.MarkUsed(ctx, valid.ID); err != nil {
		return nil, nil, WrapInternal("failed to mark code used", err)
	}

	// Re-read for the bumped token version.
	user, err = s.users.GetByID(ctx, user.ID)
	if err != nil || user == nil {
		return nil, nil, WrapInternal("failed to reload user", err)
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("password reset completed", zap.String("user_id", user.ID.String()))
	return user, pair, nil
}
