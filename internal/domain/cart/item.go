package cart

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Line identifies the product being added to a cart.
type Line struct {
	ID    int64
	Title string
	Price decimal.Decimal
	Image string
}

// Item is a single line item in the cart. Quantity is always at least 1.
type Item struct {
	ID       int64
	Title    string
	Price    decimal.Decimal
	Image    string
	Quantity int
}

// Subtotal returns Price × Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is an immutable snapshot of the cart.
type State struct {
	Items      []Item
	TotalItems int
	TotalPrice decimal.Decimal
}

// Empty reports whether the cart has no items.
func (s State) Empty() bool {
	return len(s.Items) == 0
}

// Find returns the item with the given ID.
func (s State) Find(id int64) (Item, bool) {
	i := slices.IndexFunc(s.Items, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return Item{}, false
	}
	return s.Items[i], true
}

// newState derives totals from items. Totals are never adjusted
// incrementally: every mutation folds over the full sequence again.
func newState(items []Item) State {
	s := State{
		Items:      slices.Clone(items),
		TotalPrice: decimal.Zero,
	}
	for _, it := range items {
		s.TotalItems += it.Quantity
		s.TotalPrice = s.TotalPrice.Add(it.Subtotal())
	}
	return s
}
