package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clinic-saas-api/internal/config"
	"github.com/clinic-saas-api/internal/models"
)

type Client struct {
	Client *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

// Set sets a value in Redis with expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, key, value, expiration).Err()
}

// Delete removes a key from Redis
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

func subscriptionKey(clinicID uuid.UUID) string {
	return fmt.Sprintf("clinic:subscription:%s", clinicID)
}

// GetSubscription returns the cached subscription snapshot for a clinic,
// or nil on a miss.
func (c *Client) GetSubscription(ctx context.Context, clinicID uuid.UUID) (*models.Subscription, error) {
	raw, err := c.Get(ctx, subscriptionKey(clinicID))
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sub models.Subscription
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return nil, fmt.Errorf("failed to decode cached subscription: %w", err)
	}
	return &sub, nil
}

// SetSubscription caches the subscription snapshot for a clinic
func (c *Client) SetSubscription(ctx context.Context, sub *models.Subscription, expiration time.Duration) error {
	raw, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to encode subscription: %w", err)
	}
	return c.Set(ctx, subscriptionKey(sub.ClinicID), raw, expiration)
}

// InvalidateSubscription removes the cached snapshot after a billing
// transition so the next quota check sees fresh state.
func (c *Client) InvalidateSubscription(ctx context.Context, clinicID uuid.UUID) error {
	return c.Delete(ctx, subscriptionKey(clinicID))
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}
