// Package observability provides metrics for harness runs.
package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds all harness metrics:
// - Latency: request and lifecycle durations
// - Traffic: request and lifecycle throughput
// - Errors: failed requests and lifecycles
// - Saturation: lifecycles currently in flight
type Metrics struct {
	meter metric.Meter

	// Outbound HTTP metrics
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequestsTotal   metric.Int64Counter
	HTTPErrorsTotal     metric.Int64Counter

	// Lifecycle metrics
	LifecycleDuration    metric.Float64Histogram
	LifecyclesTotal      metric.Int64Counter
	LifecycleErrorsTotal metric.Int64Counter
	LifecyclesActive     metric.Int64UpDownCounter

	// Polling metrics
	PollAttempts metric.Int64Histogram
}

// NewMetrics creates and registers all metrics with a Prometheus exporter.
func NewMetrics(ctx context.Context) (*Metrics, http.Handler, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter("pdfbench")
	m := &Metrics{meter: meter}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_client_request_duration_seconds",
		metric.WithDescription("Outbound request latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_client_requests_total",
		metric.WithDescription("Total outbound requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPErrorsTotal, err = meter.Int64Counter(
		"http_client_errors_total",
		metric.WithDescription("Total outbound requests with error or non-success status"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.LifecycleDuration, err = meter.Float64Histogram(
		"lifecycle_duration_seconds",
		metric.WithDescription("Document lifecycle latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		return nil, nil, err
	}

	m.LifecyclesTotal, err = meter.Int64Counter(
		"lifecycles_total",
		metric.WithDescription("Total lifecycles started"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.LifecycleErrorsTotal, err = meter.Int64Counter(
		"lifecycle_errors_total",
		metric.WithDescription("Total lifecycles that ended in failure"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.LifecyclesActive, err = meter.Int64UpDownCounter(
		"lifecycles_active",
		metric.WithDescription("Lifecycles currently in flight (saturation)"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.PollAttempts, err = meter.Int64Histogram(
		"poll_attempts",
		metric.WithDescription("Status fetches needed to reach a terminal state"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 10, 20, 30),
	)
	if err != nil {
		return nil, nil, err
	}

	return m, promhttp.Handler(), nil
}

// RecordRequest records one outbound HTTP request.
// A status code of 0 means the request failed at the transport level.
func (m *Metrics) RecordRequest(ctx context.Context, method, path string, statusCode int, durationSeconds float64) {
	attrs := metric.WithAttributes(
		methodAttr(method),
		pathAttr(path),
		statusAttr(statusCode),
	)

	m.HTTPRequestDuration.Record(ctx, durationSeconds, attrs)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)

	if statusCode == 0 || statusCode >= 400 {
		m.HTTPErrorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordLifecycleStarted records a lifecycle entering the pool.
func (m *Metrics) RecordLifecycleStarted(ctx context.Context) {
	m.LifecyclesTotal.Add(ctx, 1)
	m.LifecyclesActive.Add(ctx, 1)
}

// RecordLifecycleFinished records a lifecycle reaching a terminal outcome.
func (m *Metrics) RecordLifecycleFinished(ctx context.Context, success bool, durationSeconds float64) {
	attrs := metric.WithAttributes(successAttr(success))
	m.LifecycleDuration.Record(ctx, durationSeconds, attrs)
	m.LifecyclesActive.Add(ctx, -1)

	if !success {
		m.LifecycleErrorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordPollAttempts records how many status fetches a job needed.
func (m *Metrics) RecordPollAttempts(ctx context.Context, attempts int, finalState string) {
	m.PollAttempts.Record(ctx, int64(attempts), metric.WithAttributes(stateAttr(finalState)))
}
