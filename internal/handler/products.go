package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/product"
)

// ListProducts refreshes the catalog and returns the products matching ?q=.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	if err := h.catalog.FetchAll(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	products := catalog.Filter(h.catalog.State().Products, query)
	writeJSON(w, http.StatusOK, func(e *encoder) {
		e.ObjStart()
		e.FieldStart("products")
		e.ArrStart()
		for i := range products {
			e.product(&products[i])
		}
		e.ArrEnd()
		e.FieldStart("count")
		e.Int(len(products))
		e.FieldStart("query")
		e.Str(query)
		e.ObjEnd()
	})
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	view := catalog.NewProductView(h.products)
	defer view.Close()

	p, err := view.Fetch(ctx, id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, func(e *encoder) { e.product(p) })
	case errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled):
	default:
		zctx.From(ctx).Warn("Fetch product failed", zap.Int64("product_id", id), zap.Error(err))
		writeError(w, http.StatusBadGateway, view.State().Err)
	}
}

// pathID parses the {id} URL parameter as a product id, answering 400 when
// it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}
