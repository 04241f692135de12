// Package memory provides in-process storage used when no external backend
// is configured and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
)

var _ cart.Storage = (*KV)(nil)

// KV is a mutex-guarded key/value map.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKV returns an empty KV.
func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

// Load returns a copy of the value under key, or nil when absent.
func (s *KV) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Save stores a copy of data under key.
func (s *KV) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), data...)
	return nil
}

var _ order.Repository = (*Orders)(nil)

// Orders keeps placed orders in memory.
type Orders struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

// NewOrders returns an empty order store.
func NewOrders() *Orders {
	return &Orders{orders: make(map[string]order.Order)}
}

func (s *Orders) Create(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *Orders) Get(_ context.Context, id string) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	out := cloneOrder(&o)
	return &out, nil
}

func cloneOrder(o *order.Order) order.Order {
	c := *o
	c.Items = append([]order.Item(nil), o.Items...)
	return c
}
