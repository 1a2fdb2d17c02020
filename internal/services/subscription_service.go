package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
)

// SubscriptionWriter is the billing-side store surface: payment
// confirmation and the overdue sweep.
type SubscriptionWriter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	Activate(ctx context.Context, id uuid.UUID, periodEnd time.Time) error
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// SubscriptionService handles the billing transitions around the quota
// engine: trial/overdue -> active on confirmed payment, and the periodic
// sweep that marks expired subscriptions overdue.
type SubscriptionService struct {
	store  SubscriptionWriter
	logger *zap.Logger
	now    func() time.Time
}

func NewSubscriptionService(store SubscriptionWriter, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{store: store, logger: logger, now: time.Now}
}

// ConfirmPayment activates the subscription and extends its period by 30
// days. Gateways report state 2 for a settled transaction; anything else
// is ignored.
func (s *SubscriptionService) ConfirmPayment(ctx context.Context, subscriptionID uuid.UUID, transactionID string, state int) error {
	if state != 2 {
		return nil
	}

	sub, err := s.store.GetByID(ctx, subscriptionID)
	if err != nil {
		return WrapInternal("failed to load subscription", err)
	}
	if sub == nil {
		return ErrSubNotFound
	}

	switch sub.Status {
	case models.SubscriptionStatusTrial, models.SubscriptionStatusOverdue:
		periodEnd := s.now().AddDate(0, 0, 30)
		if err := s.store.Activate(ctx, subscriptionID, periodEnd); err != nil {
			return WrapInternal("failed to activate subscription", err)
		}
		s.logger.Info("subscription activated",
			zap.String("subscription_id", subscriptionID.String()),
			zap.String("transaction_id", transactionID))
		return nil
	default:
		// Already active or cancelled; nothing to do.
		return nil
	}
}

// ExpireOverdue marks every trial/active subscription whose period has
// passed as overdue. Driven by the scheduled worker task.
func (s *SubscriptionService) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := s.store.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, WrapInternal("failed to mark overdue subscriptions", err)
	}
	if n > 0 {
		s.logger.Info("subscriptions marked overdue", zap.Int64("count", n))
	}
	return n, nil
}
