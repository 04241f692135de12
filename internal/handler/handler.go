// Package handler exposes the storefront over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// SessionHeader selects the cart a request operates on.
const SessionHeader = "X-Cart-Session"

// maxAddQuantity bounds a single add request.
const maxAddQuantity = 100

// Handler serves the /api routes.
type Handler struct {
	products product.Repository
	catalog  *catalog.Catalog
	carts    *cart.Sessions
	orders   *order.Service
}

// New constructs a Handler with the required domain dependencies.
func New(
	products product.Repository,
	cat *catalog.Catalog,
	carts *cart.Sessions,
	orders *order.Service,
) *Handler {
	return &Handler{
		products: products,
		catalog:  cat,
		carts:    carts,
		orders:   orders,
	}
}

// Routes returns the API router, to be mounted under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)

	r.Get("/cart", h.GetCart)
	r.Delete("/cart", h.ClearCart)
	r.Post("/cart/items", h.AddItem)
	r.Put("/cart/items/{id}", h.SetQuantity)
	r.Delete("/cart/items/{id}", h.RemoveItem)

	r.Post("/checkout", h.Checkout)
	r.Get("/orders/{id}", h.GetOrder)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
