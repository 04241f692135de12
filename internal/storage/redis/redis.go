// Package redis implements cart and order storage on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
)

// Connect dials addr and verifies the connection with PING.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

var _ cart.Storage = (*KV)(nil)

// KV stores values as plain Redis strings. Keys are namespaced by prefix.
type KV struct {
	rdb    *goredis.Client
	prefix string
}

// NewKV returns a KV that prefixes every key with prefix.
func NewKV(rdb *goredis.Client, prefix string) *KV {
	return &KV{rdb: rdb, prefix: prefix}
}

// Load returns the value under key, or nil when the key is absent.
func (s *KV) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading key %q: %w", key, err)
	}
	return v, nil
}

// Save stores data under key without expiry.
func (s *KV) Save(ctx context.Context, key string, data []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("saving key %q: %w", key, err)
	}
	return nil
}

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository keeps each order as a JSON document under "<prefix>order:<id>".
type OrderRepository struct {
	rdb    *goredis.Client
	prefix string
}

// NewOrderRepository returns an OrderRepository using the given key prefix.
func NewOrderRepository(rdb *goredis.Client, prefix string) *OrderRepository {
	return &OrderRepository{rdb: rdb, prefix: prefix}
}

func (r *OrderRepository) key(id string) string {
	return r.prefix + "order:" + id
}

// Create stores the order. Existing ids are never overwritten.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	ok, err := r.rdb.SetNX(ctx, r.key(o.ID), order.Encode(o), 0).Result()
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	if !ok {
		return fmt.Errorf("creating order %q: already exists", o.ID)
	}
	return nil
}

// Get loads an order by id.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	v, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	o, err := order.Decode(v)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return o, nil
}
