package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic-saas-api/internal/config"
	"github.com/clinic-saas-api/internal/models"
)

func testClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	client, err := NewClient(&config.RedisConfig{Host: s.Host(), Port: s.Port()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, s
}

func TestGetSetDelete(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "key", "value", time.Minute))

	got, err := client.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	require.NoError(t, client.Delete(ctx, "key"))

	_, err = client.Get(ctx, "key")
	assert.Error(t, err)
}

func TestSubscriptionSnapshotRoundTrip(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	sub := &models.Subscription{
		ID:        uuid.New(),
		ClinicID:  uuid.New(),
		PlanID:    uuid.New(),
		Status:    models.SubscriptionStatusTrial,
		PeriodEnd: time.Now().Add(24 * time.Hour).Truncate(time.Second),
	}

	require.NoError(t, client.SetSubscription(ctx, sub, time.Minute))

	got, err := client.GetSubscription(ctx, sub.ClinicID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, sub.Status, got.Status)
}

func TestGetSubscriptionMiss(t *testing.T) {
	client, _ := testClient(t)

	got, err := client.GetSubscription(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvalidateSubscription(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	sub := &models.Subscription{
		ID:       uuid.New(),
		ClinicID: uuid.New(),
		Status:   models.SubscriptionStatusActive,
	}
	require.NoError(t, client.SetSubscription(ctx, sub, time.Minute))
	require.NoError(t, client.InvalidateSubscription(ctx, sub.ClinicID))

	got, err := client.GetSubscription(ctx, sub.ClinicID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotExpiry(t *testing.T) {
	client, s := testClient(t)
	ctx := context.Background()

	sub := &models.Subscription{ID: uuid.New(), ClinicID: uuid.New(), Status: models.SubscriptionStatusActive}
	require.NoError(t, client.SetSubscription(ctx, sub, time.Minute))

	s.FastForward(2 * time.Minute)

	got, err := client.GetSubscription(ctx, sub.ClinicID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
