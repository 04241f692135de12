package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/product"
)

// session resolves the cart of the requesting client.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*cart.Cart, bool) {
	c, err := h.carts.Get(r.Context(), r.Header.Get(SessionHeader))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return c, true
}

// GetCart returns the current cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	writeCart(w, http.StatusOK, c.State())
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	writeCart(w, http.StatusOK, c.Clear(r.Context()))
}

type addItemRequest struct {
	ProductID int64
	Quantity  int
}

func (req *addItemRequest) decode(d *jx.Decoder) error {
	req.Quantity = 1
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			req.ProductID, err = d.Int64()
		case "quantity":
			req.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
}

// AddItem looks the product up in the catalog and adds it quantity times.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req addItemRequest
	if !readJSON(w, r, req.decode) {
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Quantity < 1 || req.Quantity > maxAddQuantity {
		writeError(w, http.StatusBadRequest, "quantity must be between 1 and 100")
		return
	}

	c, ok := h.session(w, r)
	if !ok {
		return
	}

	p, err := h.products.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		zctx.From(ctx).Warn("Fetch product failed", zap.Int64("product_id", req.ProductID), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	line := cart.Line{ID: p.ID, Title: p.Title, Price: p.Price, Image: p.Image}
	var state cart.State
	for range req.Quantity {
		state = c.Add(ctx, line)
	}
	writeCart(w, http.StatusOK, state)
}

// SetQuantity replaces the quantity of a cart line. Non-positive quantities
// remove the line.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	quantity, set := 0, false
	if !readJSON(w, r, func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "quantity" {
				return d.Skip()
			}
			var err error
			quantity, err = d.Int()
			set = err == nil
			return errors.Wrap(err, key)
		})
	}) {
		return
	}
	if !set {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	c, ok := h.session(w, r)
	if !ok {
		return
	}
	writeCart(w, http.StatusOK, c.SetQuantity(r.Context(), id, quantity))
}

// RemoveItem deletes a cart line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, ok := h.session(w, r)
	if !ok {
		return
	}
	writeCart(w, http.StatusOK, c.Remove(r.Context(), id))
}

func writeCart(w http.ResponseWriter, status int, s cart.State) {
	writeJSON(w, status, func(e *encoder) { e.cart(s) })
}
