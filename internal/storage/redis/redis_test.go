//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
)

func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminate redis: %v", err)
		}
	})

	endpoint, err := c.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	rdb, err := Connect(ctx, endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedis(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()

	t.Run("kv", func(t *testing.T) {
		kv := NewKV(rdb, "storefront:")

		v, err := kv.Load(ctx, cart.DefaultKey)
		require.NoError(t, err)
		assert.Nil(t, v)

		require.NoError(t, kv.Save(ctx, cart.DefaultKey, []byte(`[]`)))
		v, err = kv.Load(ctx, cart.DefaultKey)
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(v))

		raw, err := rdb.Get(ctx, "storefront:cart").Result()
		require.NoError(t, err)
		assert.Equal(t, `[]`, raw)
	})

	t.Run("orders", func(t *testing.T) {
		repo := NewOrderRepository(rdb, "storefront:")
		o := &order.Order{
			ID:        "3f5a3f0e-1a55-4a38-9c7e-0f4b8f0d2d11",
			Items:     []order.Item{{ProductID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Quantity: 1}},
			Total:     decimal.RequireFromString("109.95"),
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, repo.Create(ctx, o))
		require.Error(t, repo.Create(ctx, o), "duplicate id")

		got, err := repo.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, o.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, o.Total.Equal(got.Total))

		_, err = repo.Get(ctx, "missing")
		require.ErrorIs(t, err, order.ErrNotFound)
	})
}
