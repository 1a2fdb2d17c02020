package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/config"
	"github.com/clinic-saas-api/internal/models"
)

// Client enqueues background tasks. It is the API side's notification
// sink: delivery happens in the worker process.
type Client struct {
	client *asynq.Client
	logger *zap.Logger
}

func NewClient(cfg *config.RedisConfig, logger *zap.Logger) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		logger: logger,
	}
}

// SendPasswordReset enqueues the reset email for asynchronous delivery
func (c *Client) SendPasswordReset(ctx context.Context, user *models.User, code string) error {
	task, err := NewPasswordResetTask(PasswordResetPayload{
		Email:    user.Email,
		FullName: user.FullName,
		Code:     code,
	})
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue reset email: %w", err)
	}

	c.logger.Debug("password reset email enqueued",
		zap.String("task_id", info.ID),
		zap.String("queue", info.Queue))
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
