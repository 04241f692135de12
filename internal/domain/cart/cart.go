// Package cart implements the shopping cart aggregate: an ordered set of line
// items with derived totals, persisted to key-value storage after every
// mutation.
package cart

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// DefaultKey is the storage key the cart is persisted under.
const DefaultKey = "cart"

// Storage is durable key-value storage scoped to a single client.
//
// Load returns nil data and a nil error when key is absent.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Op names a cart operation.
type Op string

// Cart operations reported to observers.
const (
	OpInitialize  Op = "initialize"
	OpAdd         Op = "add"
	OpRemove      Op = "remove"
	OpSetQuantity Op = "set_quantity"
	OpClear       Op = "clear"
	OpDeduct      Op = "deduct"
)

// Event is delivered to observers after every operation.
type Event struct {
	Op    Op
	State State
}

// Options configures a Cart.
type Options struct {
	// Storage is where the cart is persisted. When nil the cart lives in
	// memory only and persistence is skipped.
	Storage Storage
	// Key overrides DefaultKey.
	Key    string
	Logger *zap.Logger
}

func (o *Options) setDefaults() {
	if o.Key == "" {
		o.Key = DefaultKey
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Cart is the cart aggregate. It is safe for concurrent use; every operation
// runs to completion, including persistence, before the next one starts.
type Cart struct {
	storage Storage
	key     string
	lg      *zap.Logger

	mu        sync.Mutex
	items     []Item
	state     State
	observers map[int]func(Event)
	nextObs   int
}

// New creates an empty cart. Call Initialize to rehydrate it from storage.
func New(opts Options) *Cart {
	opts.setDefaults()
	return &Cart{
		storage:   opts.Storage,
		key:       opts.Key,
		lg:        opts.Logger,
		state:     newState(nil),
		observers: make(map[int]func(Event)),
	}
}

// Key returns the storage key of the cart.
func (c *Cart) Key() string { return c.key }

// State returns a snapshot of the cart.
func (c *Cart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to be called after every operation. Observers are
// called while the cart is locked and must not call back into it.
func (c *Cart) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Initialize replaces the current items with the persisted ones. Missing or
// unreadable data yields an empty cart.
func (c *Cart) Initialize(ctx context.Context) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = c.load(ctx)
	c.state = newState(c.items)
	c.notify(OpInitialize)
	return c.state
}

// Add increments the quantity of an existing item or appends a new one with
// quantity 1.
func (c *Cart) Add(ctx context.Context, l Line) State {
	return c.mutate(ctx, OpAdd, func(items []Item) []Item {
		if i := c.index(l.ID); i >= 0 {
			items[i].Quantity++
			return items
		}
		return append(items, Item{
			ID:       l.ID,
			Title:    l.Title,
			Price:    l.Price,
			Image:    l.Image,
			Quantity: 1,
		})
	})
}

// Remove deletes the item with the given ID, if present.
func (c *Cart) Remove(ctx context.Context, id int64) State {
	return c.mutate(ctx, OpRemove, func(items []Item) []Item {
		return removeItem(items, id)
	})
}

// SetQuantity sets the quantity of an existing item. A quantity of zero or
// less removes it.
func (c *Cart) SetQuantity(ctx context.Context, id int64, quantity int) State {
	return c.mutate(ctx, OpSetQuantity, func(items []Item) []Item {
		if quantity <= 0 {
			return removeItem(items, id)
		}
		if i := c.index(id); i >= 0 {
			items[i].Quantity = quantity
		}
		return items
	})
}

// Clear removes every item.
func (c *Cart) Clear(ctx context.Context) State {
	return c.mutate(ctx, OpClear, func([]Item) []Item {
		return nil
	})
}

// Deduct lowers each item's quantity by the quantity of the matching item in
// ordered and drops items that reach zero. Units added after ordered was
// taken stay in the cart.
func (c *Cart) Deduct(ctx context.Context, ordered []Item) State {
	return c.mutate(ctx, OpDeduct, func(items []Item) []Item {
		for _, o := range ordered {
			if i := c.index(o.ID); i >= 0 {
				items[i].Quantity -= o.Quantity
			}
		}
		return slices.DeleteFunc(items, func(it Item) bool { return it.Quantity <= 0 })
	})
}

func (c *Cart) mutate(ctx context.Context, op Op, fn func([]Item) []Item) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = fn(c.items)
	c.state = newState(c.items)
	c.persist(ctx)
	c.notify(op)
	return c.state
}

// index must be called with mu held.
func (c *Cart) index(id int64) int {
	return slices.IndexFunc(c.items, func(it Item) bool { return it.ID == id })
}

func removeItem(items []Item, id int64) []Item {
	return slices.DeleteFunc(items, func(it Item) bool { return it.ID == id })
}

func (c *Cart) load(ctx context.Context) []Item {
	if c.storage == nil {
		return nil
	}
	data, err := c.storage.Load(ctx, c.key)
	if err != nil {
		c.lg.Debug("Load cart failed, starting empty", zap.String("key", c.key), zap.Error(err))
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	items, err := DecodeItems(data)
	if err != nil {
		c.lg.Debug("Persisted cart is malformed, starting empty", zap.String("key", c.key), zap.Error(err))
		return nil
	}
	return items
}

func (c *Cart) persist(ctx context.Context) {
	if c.storage == nil {
		return
	}
	if err := c.storage.Save(ctx, c.key, EncodeItems(c.items)); err != nil {
		c.lg.Warn("Persist cart failed", zap.String("key", c.key), zap.Error(err))
	}
}

func (c *Cart) notify(op Op) {
	if len(c.observers) == 0 {
		return
	}
	ev := Event{Op: op, State: c.state}
	for _, fn := range c.observers {
		fn(ev)
	}
}
