package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic-saas-api/internal/models"
)

type ResetCodeRepository struct {
	pool *pgxpool.Pool
}

func NewResetCodeRepository(pool *pgxpool.Pool) *ResetCodeRepository {
	return &ResetCodeRepository{pool: pool}
}

// InvalidateForUser marks every unused code of the user as used, keeping
// at most one live code per user.
func (r *ResetCodeRepository) InvalidateForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE reset_codes SET used = true WHERE user_id = $1 AND used = false`, userID)
	if err != nil {
		return fmt.Errorf("failed to invalidate reset codes: %w", err)
	}
	return nil
}

// Create persists a new reset code
func (r *ResetCodeRepository) Create(ctx context.Context, userID uuid.UUID, code string, expiresAt time.Time) (*models.ResetCode, error) {
	query := `
		INSERT INTO reset_codes (user_id, code, expires_at, used)
		VALUES ($1, $2, $3, false)
		RETURNING id, user_id, code, created_at, expires_at, used
	`

	rc := &models.ResetCode{}
	err := r.pool.QueryRow(ctx, query, userID, code, expiresAt).Scan(
		&rc.ID, &rc.UserID, &rc.Code, &rc.CreatedAt, &rc.ExpiresAt, &rc.Used)
	if err != nil {
		return nil, fmt.Errorf("failed to create reset code: %w", err)
	}
	return rc, nil
}

// GetValid returns the most recent unused, unexpired code matching
// (user, code), or nil.
func (r *ResetCodeRepository) GetValid(ctx context.Context, userID uuid.UUID, code string, now time.Time) (*models.ResetCode, error) {
	query := `
		SELECT id, user_id, code, created_at, expires_at, used
		FROM reset_codes
		WHERE user_id = $1 AND code = $2 AND used = false AND expires_at >= $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	rc := &models.ResetCode{}
	err := r.pool.QueryRow(ctx, query, userID, code, now).Scan(
		&rc.ID, &rc.UserID, &rc.Code, &rc.CreatedAt, &rc.ExpiresAt, &rc.Used)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reset code: %w", err)
	}
	return rc, nil
}

// MarkUsed consumes a code
func (r *ResetCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE reset_codes SET used = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark reset code used: %w", err)
	}
	return nil
}
