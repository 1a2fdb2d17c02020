package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/cache"
	"github.com/clinic-saas-api/internal/models"
)

// subscriptionCacheTTL bounds how stale a quota check can be after an
// out-of-band billing change.
const subscriptionCacheTTL = time.Minute

type SubscriptionRepository struct {
	pool   *pgxpool.Pool
	cache  *cache.Client
	logger *zap.Logger
}

func NewSubscriptionRepository(pool *pgxpool.Pool, cacheClient *cache.Client, logger *zap.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool, cache: cacheClient, logger: logger}
}

const subscriptionColumns = `id, clinic_id, plan_id, status, period_start, period_end, auto_renew, created_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	s := &models.Subscription{}
	err := row.Scan(
		&s.ID, &s.ClinicID, &s.PlanID, &s.Status,
		&s.PeriodStart, &s.PeriodEnd, &s.AutoRenew, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByClinic returns the clinic's subscription, reading through the
// Redis snapshot cache. Cache failures fall back to the database.
func (r *SubscriptionRepository) GetByClinic(ctx context.Context, clinicID uuid.UUID) (*models.Subscription, error) {
	if r.cache != nil {
		if sub, err := r.cache.GetSubscription(ctx, clinicID); err != nil {
			r.logger.Warn("subscription cache read failed", zap.Error(err))
		} else if sub != nil {
			return sub, nil
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE clinic_id = $1`, subscriptionColumns)

	sub, err := scanSubscription(r.pool.QueryRow(ctx, query, clinicID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.SetSubscription(ctx, sub, subscriptionCacheTTL); err != nil {
			r.logger.Warn("subscription cache write failed", zap.Error(err))
		}
	}
	return sub, nil
}

// GetByID retrieves a subscription by ID; returns nil when absent
func (r *SubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE id = $1`, subscriptionColumns)

	sub, err := scanSubscription(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// Activate marks the subscription active with a fresh period end and
// drops the cached snapshot so the next quota check sees the change.
func (r *SubscriptionRepository) Activate(ctx context.Context, id uuid.UUID, periodEnd time.Time) error {
	var clinicID uuid.UUID
	err := r.pool.QueryRow(ctx, `
		UPDATE subscriptions
		SET status = $2, period_start = NOW(), period_end = $3
		WHERE id = $1
		RETURNING clinic_id
	`, id, models.SubscriptionStatusActive, periodEnd).Scan(&clinicID)
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}

	r.invalidate(ctx, clinicID)
	return nil
}

// MarkOverdue flips every trial/active subscription whose period has
// elapsed to overdue and returns how many changed.
func (r *SubscriptionRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE subscriptions
		SET status = $2
		WHERE status IN ($3, $4) AND period_end < $1
		RETURNING clinic_id
	`, now, models.SubscriptionStatusOverdue,
		models.SubscriptionStatusTrial, models.SubscriptionStatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue subscriptions: %w", err)
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		var clinicID uuid.UUID
		if err := rows.Scan(&clinicID); err != nil {
			return count, fmt.Errorf("failed to scan clinic id: %w", err)
		}
		r.invalidate(ctx, clinicID)
		count++
	}
	return count, rows.Err()
}

func (r *SubscriptionRepository) invalidate(ctx context.Context, clinicID uuid.UUID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateSubscription(ctx, clinicID); err != nil {
		r.logger.Warn("subscription cache invalidation failed",
			zap.String("clinic_id", clinicID.String()), zap.Error(err))
	}
}
