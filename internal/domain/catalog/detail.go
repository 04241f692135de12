package catalog

import (
	"context"
	"sync"

	"github.com/xenking/storefront/internal/domain/product"
)

// DetailState is a snapshot of a ProductView.
type DetailState struct {
	Product *product.Product
	Status  Status
	Err     string
}

// ProductView loads a single product for a detail view. It is independent of
// Catalog. Results that arrive after the view was closed, after a newer Fetch
// started, or after the fetch context was cancelled are discarded.
type ProductView struct {
	products product.Repository

	mu     sync.Mutex
	state  DetailState
	gen    uint64
	closed bool
}

// NewProductView creates a detail view in the loading state.
func NewProductView(products product.Repository) *ProductView {
	return &ProductView{
		products: products,
		state:    DetailState{Status: StatusLoading},
	}
}

// State returns a snapshot of the view.
func (v *ProductView) State() DetailState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Fetch loads the product with the given id. The returned error is the fetch
// error, or ctx.Err() when the result was discarded.
func (v *ProductView) Fetch(ctx context.Context, id int64) (*product.Product, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, context.Canceled
	}
	v.gen++
	gen := v.gen
	v.state.Status = StatusLoading
	v.state.Err = ""
	v.mu.Unlock()

	p, err := v.products.GetByID(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.gen || ctx.Err() != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, context.Canceled
	}
	if err != nil {
		v.state = DetailState{Status: StatusFailed, Err: err.Error()}
		return nil, err
	}
	v.state = DetailState{Product: p, Status: StatusReady}
	return p, nil
}

// Close tears the view down. In-flight fetches will not write their results.
func (v *ProductView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}
