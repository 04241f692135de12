package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/order"
)

// Checkout places an order from the session cart and removes the ordered
// units from it.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, ok := h.session(w, r)
	if !ok {
		return
	}

	snapshot := c.State()
	o, err := h.orders.Checkout(ctx, snapshot)
	if err != nil {
		var iiErr *order.InvalidItemError
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &iiErr):
			writeError(w, http.StatusUnprocessableEntity, iiErr.Error())
		default:
			zctx.From(ctx).Error("Checkout failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}
	c.Deduct(ctx, snapshot.Items)

	zctx.From(ctx).Info("Order placed",
		zap.String("order_id", o.ID),
		zap.Int("items", o.TotalItems()),
		zap.String("total", o.Total.StringFixed(2)),
	)
	w.Header().Set("Location", "/api/orders/"+o.ID)
	writeJSON(w, http.StatusCreated, func(e *encoder) { e.order(o) })
}

// GetOrder returns a placed order.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, err := h.orders.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, order.ErrNotFound.Error())
			return
		}
		zctx.From(ctx).Error("Get order failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	writeJSON(w, http.StatusOK, func(e *encoder) { e.order(o) })
}
