package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storefront/backend/internal/infrastructure/config"
)

func setupRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := newTracerProviderWith(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)), zap.NewNop())
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return rec
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestSetup_DisabledIsNoop(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{ServiceName: "storefront-test"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Tracer.IsEnabled())
	assert.False(t, p.Meter.IsEnabled())
	assert.False(t, p.Logs.IsEnabled())
	assert.False(t, p.Profiler.IsEnabled())
	assert.NotNil(t, p.Metrics)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address")
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, sdktrace.NeverSample().Description(), samplerFor(0).Description())
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestBusinessMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewBusinessMetrics(mp.Meter(MeterName))
	require.NoError(t, err)

	ctx := context.Background()
	m.OrderPlaced(ctx, "eur", 2599)
	m.OrderPlaced(ctx, "eur", 1000)
	m.ReturnCanceled(ctx, "soft_failed")
	m.LabelFetched(ctx, "archive", "normal_printer")
	m.SearchQuery(ctx, "meilisearch")
	m.WebhookEvent(ctx, "payment_intent.succeeded", "duplicate")
	m.UpstreamCall(ctx, "sendcloud", 120*time.Millisecond)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["storefront.orders.placed"]))
	assert.Equal(t, int64(3599), sumOf(t, got["storefront.orders.revenue"]))
	assert.Equal(t, int64(1), sumOf(t, got["storefront.returns.canceled"]))
	assert.Equal(t, int64(1), sumOf(t, got["storefront.labels.fetched"]))
	assert.Equal(t, int64(1), sumOf(t, got["storefront.search.queries"]))
	assert.Equal(t, int64(1), sumOf(t, got["storefront.webhook.events"]))

	hist, ok := got["storefront.upstream.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestBusinessMetrics_NilReceiver(t *testing.T) {
	var m *BusinessMetrics
	assert.NotPanics(t, func() {
		ctx := context.Background()
		m.OrderPlaced(ctx, "eur", 1)
		m.OrderCanceled(ctx)
		m.ReturnCanceled(ctx, "canceled")
		m.LabelFetched(ctx, "sendcloud", "label_printer")
		m.SearchQuery(ctx, "database")
		m.WebhookEvent(ctx, "charge.refunded", "processed")
		m.UpstreamCall(ctx, "stripe", time.Second)
	})
}

func TestStartSpanAndRecordError(t *testing.T) {
	rec := setupRecorder(t)

	ctx, span := StartSpan(context.Background(), "cart.complete", attribute.String("cart.id", "c1"))
	assert.NotEmpty(t, TraceID(ctx))
	SetAttributes(ctx, map[string]any{"items": 3, "guest": true})
	RecordError(ctx, nil)
	RecordError(ctx, errors.New("insufficient stock"))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "cart.complete", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "insufficient stock", spans[0].Status().Description)

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "c1", attrs["cart.id"].AsString())
	assert.Equal(t, int64(3), attrs["items"].AsInt64())
	assert.True(t, attrs["guest"].AsBool())
}

func TestTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestToAttribute(t *testing.T) {
	assert.Equal(t, attribute.String("k", "v"), toAttribute("k", "v"))
	assert.Equal(t, attribute.Int64("k", 7), toAttribute("k", int64(7)))
	assert.Equal(t, attribute.Float64("k", 1.5), toAttribute("k", 1.5))
	assert.Equal(t, attribute.StringSlice("k", []string{"a"}), toAttribute("k", []string{"a"}))
	assert.Equal(t, attribute.String("k", "2s"), toAttribute("k", 2*time.Second))
	assert.Equal(t, attribute.String("k", "{1}"), toAttribute("k", struct{ A int }{1}))
}

type tracedRow struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

func openTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestRegisterDBTracing(t *testing.T) {
	rec := setupRecorder(t)
	db := openTracedDB(t)

	require.NoError(t, RegisterDBTracing(db, DBTracingConfig{Enabled: true, DBName: "sqlite"}, zap.NewNop()))

	ctx, parent := StartSpan(context.Background(), "test")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "a"}).Error)
	parent.End()

	assert.Greater(t, len(rec.Ended()), 1, "expected a db span besides the parent")
}

func TestAnnotateQuerySpan(t *testing.T) {
	rec := setupRecorder(t)
	db := openTracedDB(t)

	ctx, span := StartSpan(context.Background(), "query")
	tx := db.WithContext(ctx)
	tx.Statement.Table = "traced_rows"
	tx.Statement.RowsAffected = 2
	tx.Error = errors.New("constraint failed")
	tx.InstanceSet(queryStartKey, time.Now().Add(-time.Second))

	annotateQuerySpan(tx, 10*time.Millisecond)
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "traced_rows", attrs["db.sql.table"].AsString())
	assert.Equal(t, int64(2), attrs["db.rows_affected"].AsInt64())
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestAnnotateQuerySpan_IgnoresNotFound(t *testing.T) {
	rec := setupRecorder(t)
	db := openTracedDB(t)

	ctx, span := StartSpan(context.Background(), "query")
	tx := db.WithContext(ctx)
	tx.Error = gorm.ErrRecordNotFound
	annotateQuerySpan(tx, time.Second)
	span.End()

	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, codes.Unset, rec.Ended()[0].Status().Code)
}

func TestRegisterDBTracing_Disabled(t *testing.T) {
	db := openTracedDB(t)
	assert.NoError(t, RegisterDBTracing(db, DBTracingConfig{}, zap.NewNop()))
}

func TestLoggerProvider_DisabledBridge(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{}, zap.NewNop())
	require.NoError(t, err)

	base := zap.NewNop()
	assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
	assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
}

func TestLevelFilterCore(t *testing.T) {
	inner := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&nopWriter{}), zapcore.DebugLevel)
	c := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, c.Enabled(zapcore.InfoLevel))
	assert.True(t, c.Enabled(zapcore.ErrorLevel))
	assert.Nil(t, c.Check(zapcore.Entry{Level: zapcore.InfoLevel}, nil))
	assert.IsType(t, &levelFilterCore{}, c.With(nil))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
