package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records storefront events. A nil receiver is valid and
// records nothing, so callers never need to check.
type BusinessMetrics struct {
	ordersPlaced     *Counter
	orderRevenue     *Counter
	ordersCanceled   *Counter
	returnsCanceled  *Counter
	labelsFetched    *Counter
	searchQueries    *Counter
	webhookEvents    *Counter
	upstreamDuration *Histogram
}

// NewBusinessMetrics registers all instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	m := &BusinessMetrics{}
	var err error
	if m.ordersPlaced, err = NewCounter(meter, "storefront.orders.placed", "Orders created from completed carts", "{order}"); err != nil {
		return nil, err
	}
	if m.orderRevenue, err = NewCounter(meter, "storefront.orders.revenue", "Order totals in minor currency units", "{minor_unit}"); err != nil {
		return nil, err
	}
	if m.ordersCanceled, err = NewCounter(meter, "storefront.orders.canceled", "Orders canceled", "{order}"); err != nil {
		return nil, err
	}
	if m.returnsCanceled, err = NewCounter(meter, "storefront.returns.canceled", "Returns canceled including cascades", "{return}"); err != nil {
		return nil, err
	}
	if m.labelsFetched, err = NewCounter(meter, "storefront.labels.fetched", "Shipping labels served", "{label}"); err != nil {
		return nil, err
	}
	if m.searchQueries, err = NewCounter(meter, "storefront.search.queries", "Product search queries", "{query}"); err != nil {
		return nil, err
	}
	if m.webhookEvents, err = NewCounter(meter, "storefront.webhook.events", "Payment webhook events received", "{event}"); err != nil {
		return nil, err
	}
	if m.upstreamDuration, err = NewHistogram(meter, "storefront.upstream.duration", "Third-party API call latency", "s", UpstreamDurationBuckets...); err != nil {
		return nil, err
	}
	return m, nil
}

// OrderPlaced counts one order and adds its total to revenue
func (m *BusinessMetrics) OrderPlaced(ctx context.Context, currency string, totalMinor int64) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc(ctx, AttrCurrency.String(currency))
	m.orderRevenue.Add(ctx, totalMinor, AttrCurrency.String(currency))
}

// OrderCanceled counts one order cancellation
func (m *BusinessMetrics) OrderCanceled(ctx context.Context) {
	if m == nil {
		return
	}
	m.ordersCanceled.Inc(ctx)
}

// ReturnCanceled counts one return cancellation; outcome is "canceled" or "soft_failed"
func (m *BusinessMetrics) ReturnCanceled(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.returnsCanceled.Inc(ctx, AttrOutcome.String(outcome))
}

// LabelFetched counts one label; source is "archive" or "sendcloud"
func (m *BusinessMetrics) LabelFetched(ctx context.Context, source, format string) {
	if m == nil {
		return
	}
	m.labelsFetched.Inc(ctx, AttrSource.String(source), AttrFormat.String(format))
}

// SearchQuery counts one search against backend
func (m *BusinessMetrics) SearchQuery(ctx context.Context, backend string) {
	if m == nil {
		return
	}
	m.searchQueries.Inc(ctx, AttrBackend.String(backend))
}

// WebhookEvent counts one webhook delivery; outcome is "processed", "duplicate" or "ignored"
func (m *BusinessMetrics) WebhookEvent(ctx context.Context, eventType, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.Inc(ctx, AttrEventType.String(eventType), AttrOutcome.String(outcome))
}

// UpstreamCall records latency of a call to provider
func (m *BusinessMetrics) UpstreamCall(ctx context.Context, provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.RecordDuration(ctx, d, AttrProvider.String(provider))
}
