package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type names routed through the worker mux.
const (
	TypePasswordResetEmail = "email:password_reset"
	TypeSubscriptionSweep  = "subscription:sweep"
)

// PasswordResetPayload carries everything the email worker needs; the
// code is never logged.
type PasswordResetPayload struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Code     string `json:"code"`
}

func NewPasswordResetTask(payload PasswordResetPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypePasswordResetEmail, data, asynq.MaxRetry(3)), nil
}

// NewSubscriptionSweepTask is enqueued periodically by the scheduler to
// mark expired subscriptions overdue.
func NewSubscriptionSweepTask() *asynq.Task {
	return asynq.NewTask(TypeSubscriptionSweep, nil)
}
