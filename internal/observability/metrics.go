package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/invotrac/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

const meterName = "github.com/sandeepkv93/invotrac"

type AppMetrics struct {
	productOperationCounter  metric.Int64Counter
	productOperationDuration metric.Float64Histogram
	backendRequestDuration   metric.Float64Histogram
	productListCacheCounter  metric.Int64Counter
	deriveRows               metric.Int64Histogram
	toolCommandRuns          metric.Int64Counter
	healthCheckResultCounter metric.Int64Counter
	importRowsCounter        metric.Int64Counter
	mirrorOperationCounter   metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Debug("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "backend.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()
	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	m := &AppMetrics{}
	var err error
	if m.productOperationCounter, err = meter.Int64Counter("product.operation.events"); err != nil {
		return nil, err
	}
	if m.productOperationDuration, err = meter.Float64Histogram("product.operation.duration", metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.backendRequestDuration, err = meter.Float64Histogram("backend.request.duration", metric.WithUnit("s"), metric.WithDescription("Duration of products backend requests in seconds")); err != nil {
		return nil, err
	}
	if m.productListCacheCounter, err = meter.Int64Counter("product.list.cache.events"); err != nil {
		return nil, err
	}
	if m.deriveRows, err = meter.Int64Histogram("catalog.derive.rows"); err != nil {
		return nil, err
	}
	if m.toolCommandRuns, err = meter.Int64Counter("tool.command.runs"); err != nil {
		return nil, err
	}
	if m.healthCheckResultCounter, err = meter.Int64Counter("health.check.results"); err != nil {
		return nil, err
	}
	if m.importRowsCounter, err = meter.Int64Counter("product.import.rows"); err != nil {
		return nil, err
	}
	if m.mirrorOperationCounter, err = meter.Int64Counter("product.mirror.operations"); err != nil {
		return nil, err
	}
	return m, nil
}

func loadMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordProductOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.productOperationCounter.Add(ctx, 1, attrs)
	m.productOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordBackendRequest(ctx context.Context, method string, statusClass string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.backendRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status_class", statusClass),
	))
}

func RecordProductListCacheEvent(ctx context.Context, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.productListCacheCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordDeriveRows(ctx context.Context, sortKey string, rows int) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.deriveRows.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("sort_key", sortKey)))
}

func RecordToolCommandRun(ctx context.Context, command, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.toolCommandRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordImportRow(ctx context.Context, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.importRowsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordMirrorOperation(ctx context.Context, operation, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.mirrorOperationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// StatusClass buckets an HTTP status code, or reports a transport failure.
func StatusClass(code int) string {
	switch {
	case code <= 0:
		return "transport_error"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
