// Package fakestore is a client for the Fake Store REST catalog
// (https://fakestoreapi.com) and compatible services.
package fakestore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/storefront/internal/domain/product"
)

// DefaultURL is the public Fake Store API endpoint.
const DefaultURL = "https://fakestoreapi.com"

// maxBodySize caps catalog responses.
const maxBodySize = 8 << 20

// ErrFetch matches every failed catalog request.
var ErrFetch = errors.New("fetch failed")

// StatusError reports a non-2xx catalog response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// FetchError wraps the cause of a failed catalog request. It matches ErrFetch.
type FetchError struct {
	What string
	Err  error
}

func (e *FetchError) Error() string {
	return "failed to fetch " + e.What + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFetch.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Options configures a Client.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	Transport      http.RoundTripper
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

var _ product.Repository = (*Client)(nil)

// Client fetches products from the remote catalog.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a catalog client.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	var otelOpts []otelhttp.Option
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	if opts.MeterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(opts.MeterProvider))
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(opts.Transport, otelOpts...),
		},
	}
}

// List returns every product in the catalog (GET /products).
func (c *Client) List(ctx context.Context) ([]product.Product, error) {
	body, status, err := c.get(ctx, "/products")
	if err != nil {
		return nil, &FetchError{What: "products", Err: err}
	}
	if status != http.StatusOK {
		return nil, &FetchError{What: "products", Err: &StatusError{StatusCode: status}}
	}

	products, err := decodeProducts(body)
	if err != nil {
		return nil, &FetchError{What: "products", Err: err}
	}
	return products, nil
}

// GetByID returns a single product (GET /products/{id}). Unknown ids are
// answered by the upstream either with 404 or with an empty 200; both map to
// product.ErrNotFound.
func (c *Client) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	body, status, err := c.get(ctx, "/products/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, &FetchError{What: "product", Err: err}
	}
	switch {
	case status == http.StatusNotFound:
		return nil, product.ErrNotFound
	case status != http.StatusOK:
		return nil, &FetchError{What: "product", Err: &StatusError{StatusCode: status}}
	}

	p, err := decodeProductBody(body)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, err
		}
		return nil, &FetchError{What: "product", Err: err}
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, 0, errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, 0, errors.Wrap(err, "read body")
	}
	return body, resp.StatusCode, nil
}
