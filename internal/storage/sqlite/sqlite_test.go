package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
)

func openTestDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "storefront.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db, path
}

func TestKV(t *testing.T) {
	db, _ := openTestDB(t)
	kv := NewKV(db)
	ctx := context.Background()

	v, err := kv.Load(ctx, cart.DefaultKey)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, kv.Save(ctx, cart.DefaultKey, []byte(`[]`)))
	require.NoError(t, kv.Save(ctx, cart.DefaultKey, []byte(`[{"id":1}]`)))

	v, err = kv.Load(ctx, cart.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(v))

	var count int64
	require.NoError(t, db.Model(&entry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "save upserts")
}

func TestCartSurvivesReopen(t *testing.T) {
	db, path := openTestDB(t)
	ctx := context.Background()

	c := cart.New(cart.Options{Storage: NewKV(db)})
	c.Initialize(ctx)
	c.Add(ctx, cart.Line{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Image: "b"})
	c.Add(ctx, cart.Line{ID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Image: "b"})
	require.NoError(t, Close(db))

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(reopened) })

	s := cart.New(cart.Options{Storage: NewKV(reopened)}).Initialize(ctx)
	require.Len(t, s.Items, 1)
	assert.Equal(t, 2, s.TotalItems)
	assert.True(t, decimal.RequireFromString("219.90").Equal(s.TotalPrice))
}

func TestOrderRepository(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, order.ErrNotFound)

	older := &order.Order{
		ID:        "a",
		Items:     []order.Item{{ProductID: 1, Title: "Backpack", Price: decimal.RequireFromString("109.95"), Quantity: 1}},
		Total:     decimal.RequireFromString("109.95"),
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := &order.Order{
		ID:        "b",
		Items:     []order.Item{{ProductID: 2, Title: "Shirt", Price: decimal.RequireFromString("22.30"), Quantity: 3}},
		Total:     decimal.RequireFromString("66.90"),
		CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.Error(t, repo.Create(ctx, older), "duplicate id")

	got, err := repo.Get(ctx, "b")
	require.NoError(t, err)
	assert.True(t, newer.Total.Equal(got.Total))
	assert.True(t, newer.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].Quantity)

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}
