package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
)

// ErrEmptyCart is returned when checking out a cart without items.
var ErrEmptyCart = errors.New("cart is empty")

// InvalidItemError indicates a cart line that cannot be ordered.
type InvalidItemError struct {
	ProductID int64
	Reason    string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("product %d: %s", e.ProductID, e.Reason)
}

// Service encapsulates order placement.
type Service struct {
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service backed by the given repository.
func NewService(orders Repository) *Service {
	return &Service{
		orders: orders,
		now:    time.Now,
	}
}

// Checkout places an order from a cart snapshot. The cart itself is left
// untouched; callers clear it once the order is stored.
func (s *Service) Checkout(ctx context.Context, state cart.State) (*Order, error) {
	if state.Empty() {
		return nil, ErrEmptyCart
	}

	items := make([]Item, len(state.Items))
	total := decimal.Zero
	for i, it := range state.Items {
		if it.Quantity <= 0 {
			return nil, &InvalidItemError{ProductID: it.ID, Reason: "quantity must be greater than 0"}
		}
		if it.Price.IsNegative() {
			return nil, &InvalidItemError{ProductID: it.ID, Reason: "price must not be negative"}
		}
		items[i] = Item{
			ProductID: it.ID,
			Title:     it.Title,
			Price:     it.Price,
			Quantity:  it.Quantity,
		}
		total = total.Add(it.Subtotal())
	}

	o := &Order{
		ID:        uuid.New().String(),
		Items:     items,
		Total:     total.Round(2),
		CreatedAt: s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// Get returns a placed order. Malformed ids are reported as ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}
