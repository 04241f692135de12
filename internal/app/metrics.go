package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
)

const meterName = "github.com/xenking/storefront"

type metrics struct {
	cartOps    metric.Int64Counter
	orders     metric.Int64Counter
	orderTotal metric.Float64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter(meterName)

	var (
		m   metrics
		err error
	)
	if m.cartOps, err = meter.Int64Counter("storefront.cart.operations",
		metric.WithDescription("Cart operations by kind"),
	); err != nil {
		return nil, errors.Wrap(err, "cart operations counter")
	}
	if m.orders, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Placed orders"),
	); err != nil {
		return nil, errors.Wrap(err, "orders counter")
	}
	if m.orderTotal, err = meter.Float64Counter("storefront.orders.total",
		metric.WithDescription("Sum of placed order totals"),
	); err != nil {
		return nil, errors.Wrap(err, "order total counter")
	}
	return &m, nil
}

// observeCart is a cart.Sessions observer.
func (m *metrics) observeCart(_ string, ev cart.Event) {
	m.cartOps.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", string(ev.Op))))
}

// countingOrders records placed orders on successful Create.
type countingOrders struct {
	order.Repository
	m *metrics
}

func (r countingOrders) Create(ctx context.Context, o *order.Order) error {
	if err := r.Repository.Create(ctx, o); err != nil {
		return err
	}
	r.m.orders.Add(ctx, 1)
	r.m.orderTotal.Add(ctx, o.Total.InexactFloat64())
	return nil
}
