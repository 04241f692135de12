package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

const maxRequestBody = 1 << 20

type encoder struct {
	jx.Encoder
}

func (e *encoder) money(d decimal.Decimal) {
	e.Num(jx.Num(d.StringFixed(2)))
}

func (e *encoder) product(p *product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("title")
	e.Str(p.Title)
	e.FieldStart("price")
	e.money(p.Price)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("image")
	e.Str(p.Image)
	if p.Rating != nil {
		e.FieldStart("rating")
		e.ObjStart()
		e.FieldStart("rate")
		e.Float64(p.Rating.Rate)
		e.FieldStart("count")
		e.Int(p.Rating.Count)
		e.ObjEnd()
	}
	e.ObjEnd()
}

func (e *encoder) cart(s cart.State) {
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range s.Items {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(it.ID)
		e.FieldStart("title")
		e.Str(it.Title)
		e.FieldStart("price")
		e.money(it.Price)
		e.FieldStart("image")
		e.Str(it.Image)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.FieldStart("subtotal")
		e.money(it.Subtotal())
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("totalItems")
	e.Int(s.TotalItems)
	e.FieldStart("totalPrice")
	e.money(s.TotalPrice)
	e.ObjEnd()
}

func (e *encoder) order(o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range o.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(it.ProductID)
		e.FieldStart("title")
		e.Str(it.Title)
		e.FieldStart("price")
		e.money(it.Price)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("totalItems")
	e.Int(o.TotalItems())
	e.FieldStart("total")
	e.money(o.Total)
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.Format(time.RFC3339))
	e.ObjEnd()
}

func writeJSON(w http.ResponseWriter, status int, fn func(e *encoder)) {
	var e encoder
	fn(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes a {"code","message"} error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(msg)
		e.ObjEnd()
	})
}

// readJSON decodes the request body with fn, answering 400 on failure.
func readJSON(w http.ResponseWriter, r *http.Request, fn func(d *jx.Decoder) error) bool {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return false
	}
	if err := fn(jx.DecodeBytes(data)); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
