package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/storage/memory"
)

// --- Mock implementations ---

type mockProductRepo struct {
	mu       sync.Mutex
	products []product.Product
	listErr  error
	getErr   error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]product.Product(nil), m.products...), nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.products {
		if m.products[i].ID == id {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) fail(listErr, getErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = listErr
	m.getErr = getErr
}

type failingOrders struct{}

func (failingOrders) Create(context.Context, *order.Order) error {
	return errors.New("disk full")
}

func (failingOrders) Get(context.Context, string) (*order.Order, error) {
	return nil, errors.New("disk full")
}

// hookOrders runs onCreate before storing an order.
type hookOrders struct {
	order.Repository
	onCreate func()
}

func (h *hookOrders) Create(ctx context.Context, o *order.Order) error {
	if h.onCreate != nil {
		h.onCreate()
	}
	return h.Repository.Create(ctx, o)
}

// --- Helpers ---

type testEnv struct {
	repo   *mockProductRepo
	kv     *memory.KV
	carts  *cart.Sessions
	server *httptest.Server
}

func newTestEnv(t *testing.T, orders order.Repository) *testEnv {
	t.Helper()
	repo := &mockProductRepo{products: []product.Product{
		{ID: 1, Title: "Fjallraven - Foldsack No. 1 Backpack", Price: decimal.RequireFromString("109.95"), Category: "men's clothing", Image: "b.jpg", Rating: &product.Rating{Rate: 3.9, Count: 120}},
		{ID: 2, Title: "Mens Casual Premium Slim Fit T-Shirts ", Price: decimal.RequireFromString("22.3"), Category: "men's clothing", Image: "s.jpg"},
		{ID: 3, Title: "Mens Cotton Jacket", Price: decimal.RequireFromString("55.99"), Category: "men's clothing", Image: "j.jpg"},
	}}
	if orders == nil {
		orders = memory.NewOrders()
	}
	kv := memory.NewKV()
	carts := cart.NewSessions(kv, nil, nil)
	h := New(repo, catalog.New(repo, nil), carts, order.NewService(orders))

	r := chi.NewRouter()
	r.Mount("/api", h.Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{repo: repo, kv: kv, carts: carts, server: srv}
}

func (e *testEnv) do(t *testing.T, method, path, session, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, http.MethodGet, "/api/products", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["count"])
	assert.Equal(t, "", body["query"])

	products := body["products"].([]any)
	first := products[0].(map[string]any)
	assert.Equal(t, float64(1), first["id"])
	assert.Equal(t, 109.95, first["price"])
	assert.Equal(t, map[string]any{"rate": 3.9, "count": float64(120)}, first["rating"])
	assert.NotContains(t, products[1].(map[string]any), "rating")
}

func TestListProducts_Search(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, http.MethodGet, "/api/products?q=MENS", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, "MENS", body["query"])
}

func TestListProducts_FetchFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.repo.fail(errors.New("failed to fetch products: unexpected status 503"), nil)

	status, body := env.do(t, http.MethodGet, "/api/products", "", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, float64(502), body["code"])
	assert.Equal(t, "failed to fetch products: unexpected status 503", body["message"])
}

func TestListProducts_ConcurrentFailuresKeepMessage(t *testing.T) {
	env := newTestEnv(t, nil)
	env.repo.fail(errors.New("failed to fetch products: unexpected status 503"), nil)

	const requests = 32
	var wg sync.WaitGroup
	messages := make(chan any, requests)
	for range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := env.server.Client().Get(env.server.URL + "/api/products")
			if !assert.NoError(t, err) {
				return
			}
			defer func() { _ = resp.Body.Close() }()
			var out map[string]any
			if assert.NoError(t, json.NewDecoder(resp.Body).Decode(&out)) {
				messages <- out["message"]
			}
		}()
	}
	wg.Wait()
	close(messages)

	for msg := range messages {
		assert.Equal(t, "failed to fetch products: unexpected status 503", msg)
	}
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "found", path: "/api/products/3", wantStatus: http.StatusOK},
		{name: "not found", path: "/api/products/99", wantStatus: http.StatusNotFound},
		{name: "invalid id", path: "/api/products/abc", wantStatus: http.StatusBadRequest},
		{name: "zero id", path: "/api/products/0", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodGet, tt.path, "", "")
			assert.Equal(t, tt.wantStatus, status)
			if status == http.StatusOK {
				assert.Equal(t, "Mens Cotton Jacket", body["title"])
			}
		})
	}
}

func TestGetProduct_Failure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.repo.fail(nil, errors.New("failed to fetch product: unexpected status 500"))

	status, body := env.do(t, http.MethodGet, "/api/products/1", "", "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "failed to fetch product: unexpected status 500", body["message"])
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, http.MethodGet, "/api/cart", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["totalItems"])
	assert.Empty(t, body["items"])

	status, body = env.do(t, http.MethodPost, "/api/cart/items", "", `{"productId":1}`)
	require.Equal(t, http.StatusOK, status)
	status, body = env.do(t, http.MethodPost, "/api/cart/items", "", `{"productId":2,"quantity":2}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), body["totalItems"])
	assert.Equal(t, 154.55, body["totalPrice"])

	items := body["items"].([]any)
	require.Len(t, items, 2)
	second := items[1].(map[string]any)
	assert.Equal(t, float64(2), second["quantity"])
	assert.Equal(t, 44.6, second["subtotal"])

	status, body = env.do(t, http.MethodPut, "/api/cart/items/2", "", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(6), body["totalItems"])

	status, body = env.do(t, http.MethodPut, "/api/cart/items/2", "", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["totalItems"])

	status, body = env.do(t, http.MethodDelete, "/api/cart/items/1", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["totalItems"])

	saved, err := env.kv.Load(context.Background(), cart.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(saved))
}

func TestCart_Sessions(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := env.do(t, http.MethodPost, "/api/cart/items", "alice", `{"productId":3}`)
	require.Equal(t, http.StatusOK, status)

	_, body := env.do(t, http.MethodGet, "/api/cart", "bob", "")
	assert.Equal(t, float64(0), body["totalItems"])

	_, body = env.do(t, http.MethodGet, "/api/cart", "alice", "")
	assert.Equal(t, float64(1), body["totalItems"])

	saved, err := env.kv.Load(context.Background(), "cart:alice")
	require.NoError(t, err)
	assert.NotEmpty(t, saved)

	status, _ = env.do(t, http.MethodGet, "/api/cart", "bad session!", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAddItem_Validation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "malformed", body: `{"productId":`, wantStatus: http.StatusBadRequest},
		{name: "missing product", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "zero quantity", body: `{"productId":1,"quantity":0}`, wantStatus: http.StatusBadRequest},
		{name: "too many", body: `{"productId":1,"quantity":101}`, wantStatus: http.StatusBadRequest},
		{name: "unknown product", body: `{"productId":42}`, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := env.do(t, http.MethodPost, "/api/cart/items", "", tt.body)
			assert.Equal(t, tt.wantStatus, status)
		})
	}

	_, body := env.do(t, http.MethodGet, "/api/cart", "", "")
	assert.Equal(t, float64(0), body["totalItems"])
}

func TestSetQuantity_Validation(t *testing.T) {
	env := newTestEnv(t, nil)

	status, _ := env.do(t, http.MethodPut, "/api/cart/items/1", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := env.do(t, http.MethodPut, "/api/cart/items/1", "", `{"quantity":3}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["totalItems"], "absent id is a no-op")
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, http.MethodPost, "/api/checkout", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "cart is empty", body["message"])

	env.do(t, http.MethodPost, "/api/cart/items", "", `{"productId":1,"quantity":2}`)
	env.do(t, http.MethodPost, "/api/cart/items", "", `{"productId":2}`)

	status, body = env.do(t, http.MethodPost, "/api/checkout", "", "")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 242.2, body["total"])
	assert.Equal(t, float64(3), body["totalItems"])
	id := body["id"].(string)

	_, cartBody := env.do(t, http.MethodGet, "/api/cart", "", "")
	assert.Equal(t, float64(0), cartBody["totalItems"], "checkout clears the cart")

	status, body = env.do(t, http.MethodGet, "/api/orders/"+id, "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, body["id"])
	assert.Len(t, body["items"], 2)

	status, _ = env.do(t, http.MethodGet, "/api/orders/00000000-0000-0000-0000-000000000000", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCheckout_StorageFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t, failingOrders{})

	env.do(t, http.MethodPost, "/api/cart/items", "", `{"productId":1}`)

	status, body := env.do(t, http.MethodPost, "/api/checkout", "", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "failed to place order", body["message"])

	_, cartBody := env.do(t, http.MethodGet, "/api/cart", "", "")
	assert.Equal(t, float64(1), cartBody["totalItems"])
}

func TestCheckout_KeepsItemsAddedDuringCheckout(t *testing.T) {
	orders := &hookOrders{Repository: memory.NewOrders()}
	env := newTestEnv(t, orders)
	orders.onCreate = func() {
		c, err := env.carts.Get(context.Background(), cart.DefaultSession)
		if assert.NoError(t, err) {
			c.Add(context.Background(), cart.Line{ID: 3, Title: "Mens Cotton Jacket", Price: decimal.RequireFromString("55.99")})
		}
	}

	env.do(t, http.MethodPost, "/api/cart/items", "", `{"productId":1,"quantity":2}`)

	status, body := env.do(t, http.MethodPost, "/api/checkout", "", "")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(2), body["totalItems"])

	_, cartBody := env.do(t, http.MethodGet, "/api/cart", "", "")
	assert.Equal(t, float64(1), cartBody["totalItems"], "the jacket added mid-checkout is not ordered and not cleared")
	assert.Equal(t, 55.99, cartBody["totalPrice"])
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, float64(404), body["code"])
}
