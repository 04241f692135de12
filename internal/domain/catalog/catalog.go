// Package catalog holds the client-side view of the remote product catalog:
// the fetched product list with its load status, the single-product detail
// view and the search filter.
package catalog

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/product"
)

// Status is the load status of a catalog view.
type Status int

const (
	// StatusReady means the products are populated (possibly empty) and no
	// error is set. It is the zero value.
	StatusReady Status = iota
	// StatusLoading means a fetch is in flight.
	StatusLoading
	// StatusFailed means the last fetch failed; Err holds the message.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusLoading:
		return "loading"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the catalog.
type State struct {
	Products []product.Product
	Status   Status
	Err      string
}

// Catalog owns the fetched product list.
type Catalog struct {
	products product.Repository
	lg       *zap.Logger

	mu    sync.Mutex
	state State
}

// New creates an empty catalog backed by the given product source.
func New(products product.Repository, lg *zap.Logger) *Catalog {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Catalog{products: products, lg: lg}
}

// State returns a snapshot of the catalog.
func (c *Catalog) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// FetchAll loads the full product list. On failure the previous products are
// kept and the error message is recorded. Concurrent calls are not
// deduplicated: whichever resolves last determines the state.
func (c *Catalog) FetchAll(ctx context.Context) error {
	c.mu.Lock()
	c.state.Status = StatusLoading
	c.state.Err = ""
	c.mu.Unlock()

	products, err := c.products.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lg.Warn("Fetch products failed", zap.Error(err))
		c.state.Status = StatusFailed
		c.state.Err = err.Error()
		return err
	}
	c.state = State{Products: products, Status: StatusReady}
	return nil
}

func (c *Catalog) snapshot() State {
	s := c.state
	s.Products = slices.Clone(s.Products)
	return s
}
