package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/config"
	"github.com/clinic-saas-api/internal/services"
)

// EmailWorker delivers outbound mail. Without an SMTP host configured it
// logs the delivery instead, which is what local and CI environments use.
type EmailWorker struct {
	cfg    *config.SMTPConfig
	logger *zap.Logger
}

func NewEmailWorker(cfg *config.SMTPConfig, logger *zap.Logger) *EmailWorker {
	return &EmailWorker{cfg: cfg, logger: logger}
}

func (w *EmailWorker) HandlePasswordReset(ctx context.Context, task *asynq.Task) error {
	var payload PasswordResetPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if w.cfg.Host == "" {
		w.logger.Info("password reset email skipped, smtp not configured",
			zap.String("email", payload.Email))
		return nil
	}

	body := fmt.Sprintf("To: %s\r\nFrom: %s\r\nSubject: Password reset code\r\n\r\n"+
		"Hello %s,\r\n\r\nYour password reset code is %s. It expires in 10 minutes.\r\n",
		payload.Email, w.cfg.From, payload.FullName, payload.Code)

	addr := fmt.Sprintf("%s:%s", w.cfg.Host, w.cfg.Port)
	if err := smtp.SendMail(addr, nil, w.cfg.From, []string{payload.Email}, []byte(body)); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	w.logger.Info("password reset email sent", zap.String("email", payload.Email))
	return nil
}

// SweepWorker runs the scheduled subscription expiry pass
type SweepWorker struct {
	subscriptions *services.SubscriptionService
	logger        *zap.Logger
}

func NewSweepWorker(subscriptions *services.SubscriptionService, logger *zap.Logger) *SweepWorker {
	return &SweepWorker{subscriptions: subscriptions, logger: logger}
}

func (w *SweepWorker) HandleSweep(ctx context.Context, task *asynq.Task) error {
	n, err := w.subscriptions.ExpireOverdue(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("subscription sweep finished", zap.Int64("marked_overdue", n))
	return nil
}
