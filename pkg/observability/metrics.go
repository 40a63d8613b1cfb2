package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig configures Prometheus-exported metrics.
type MetricsConfig struct {
	Enabled bool
}

// Recorder records pipeline metrics. A nil Recorder is safe to call; every
// method is a no-op on nil.
type Recorder struct {
	sourceDuration metric.Float64Histogram
	sourceCalls    metric.Int64Counter
	sourceErrors   metric.Int64Counter
	fetchDuration  metric.Float64Histogram
	bundleChars    metric.Int64Histogram
}

var (
	globalMu      sync.RWMutex
	globalMetrics *Recorder
)

// SetGlobalMetrics installs the process-wide recorder.
func SetGlobalMetrics(r *Recorder) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = r
}

// GetGlobalMetrics returns the process-wide recorder; may be nil.
func GetGlobalMetrics() *Recorder {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// InitMetrics builds a Recorder backed by the OTel Prometheus exporter.
// The exported metrics surface through the default Prometheus registry,
// served by the /metrics endpoint.
func InitMetrics(ctx context.Context, cfg MetricsConfig) (*Recorder, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)

	meter := meterProvider.Meter(DefaultServiceName)

	sourceDuration, err := meter.Float64Histogram(
		"groundwire_source_fetch_duration_seconds",
		metric.WithDescription("Single source fetch duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create source duration histogram: %w", err)
	}

	sourceCalls, err := meter.Int64Counter(
		"groundwire_source_fetches_total",
		metric.WithDescription("Total source fetches"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create source calls counter: %w", err)
	}

	sourceErrors, err := meter.Int64Counter(
		"groundwire_source_errors_total",
		metric.WithDescription("Total failed source fetches"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create source errors counter: %w", err)
	}

	fetchDuration, err := meter.Float64Histogram(
		"groundwire_fetch_dispatch_duration_seconds",
		metric.WithDescription("Whole fetch dispatch duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch duration histogram: %w", err)
	}

	bundleChars, err := meter.Int64Histogram(
		"groundwire_bundle_chars",
		metric.WithDescription("Context bundle size in characters"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bundle chars histogram: %w", err)
	}

	return &Recorder{
		sourceDuration: sourceDuration,
		sourceCalls:    sourceCalls,
		sourceErrors:   sourceErrors,
		fetchDuration:  fetchDuration,
		bundleChars:    bundleChars,
	}, nil
}

// RecordSourceFetch records one adapter fetch outcome.
func (r *Recorder) RecordSourceFetch(ctx context.Context, kind string, d time.Duration, errorKind string) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrSourceKind, kind))
	r.sourceCalls.Add(ctx, 1, attrs)
	r.sourceDuration.Record(ctx, d.Seconds(), attrs)
	if errorKind != "" {
		r.sourceErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(AttrSourceKind, kind),
			attribute.String(AttrErrorKind, errorKind),
		))
	}
}

// RecordFetchDispatch records one whole fetch dispatch.
func (r *Recorder) RecordFetchDispatch(ctx context.Context, d time.Duration, queries int) {
	if r == nil {
		return
	}
	r.fetchDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.Int(AttrQueryCount, queries),
	))
}

// RecordBundleSize records the assembled bundle size.
func (r *Recorder) RecordBundleSize(ctx context.Context, chars int) {
	if r == nil {
		return
	}
	r.bundleChars.Record(ctx, int64(chars))
}
