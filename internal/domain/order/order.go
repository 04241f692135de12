package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an order id does not resolve.
var ErrNotFound = errors.New("order not found")

// Order is a placed order: a frozen copy of the cart at checkout time.
type Order struct {
	ID        string
	Items     []Item
	Total     decimal.Decimal
	CreatedAt time.Time
}

// TotalItems returns the sum of item quantities.
func (o *Order) TotalItems() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// Item is a single order line with the price captured at checkout.
type Item struct {
	ProductID int64
	Title     string
	Price     decimal.Decimal
	Quantity  int
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	// Get returns ErrNotFound when no order has the given id.
	Get(ctx context.Context, id string) (*Order, error)
}
