package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/config"
	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/utils"
)

// TokenService issues and validates stateless signed bearer tokens. There
// is no revocation list: validation re-reads the user on every call, so a
// deactivated or deleted account is rejected before the token expires, and
// the per-user token version kills outstanding tokens on password reset.
type TokenService struct {
	users      UserStore
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *zap.Logger
}

func NewTokenService(users UserStore, cfg *config.Config, logger *zap.Logger) *TokenService {
	return &TokenService{
		users:      users,
		secret:     []byte(cfg.JWT.Secret),
		accessTTL:  time.Duration(cfg.JWT.AccessTTLHours) * time.Hour,
		refreshTTL: time.Duration(cfg.JWT.RefreshTTLDays) * 24 * time.Hour,
		logger:     logger,
	}
}

// Issue mints an access/refresh pair for the user.
func (s *TokenService) Issue(user *models.User) (*models.TokenPair, error) {
	access, err := utils.SignToken(user.ID, utils.TokenKindAccess, user.TokenVersion, s.secret, s.accessTTL)
	if err != nil {
		return nil, WrapInternal("failed to sign access token", err)
	}

	refresh, err := utils.SignToken(user.ID, utils.TokenKindRefresh, user.TokenVersion, s.secret, s.refreshTTL)
	if err != nil {
		return nil, WrapInternal("failed to sign refresh token", err)
	}

	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Validate checks signature, kind and expiry, then re-reads the user.
// Tokens of inactive, deleted or version-bumped users fail.
func (s *TokenService) Validate(ctx context.Context, tokenString string, kind utils.TokenKind) (*models.User, error) {
	claims, err := utils.ParseToken(tokenString, s.secret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return nil, ErrInvalidToken
	}

	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	if claims.TokenVersion != user.TokenVersion {
		s.logger.Debug("stale token version rejected",
			zap.String("user_id", user.ID.String()),
			zap.Int("token_version", claims.TokenVersion),
			zap.Int("current_version", user.TokenVersion))
		return nil, ErrInvalidToken
	}

	return user, nil
}

// Refresh validates a refresh token and mints a new access token. The
// refresh token itself is not rotated.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	user, err := s.Validate(ctx, refreshToken, utils.TokenKindRefresh)
	if err != nil {
		return "", err
	}

	access, err := utils.SignToken(user.ID, utils.TokenKindAccess, user.TokenVersion, s.secret, s.accessTTL)
	if err != nil {
		return "", WrapInternal("failed to sign access token", err)
	}

	return access, nil
}
