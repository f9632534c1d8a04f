// Package observability provides OpenTelemetry metrics exported in Prometheus format.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "automation-worker"

// InitMetrics initializes the OpenTelemetry meter provider with a Prometheus exporter.
// It returns the handler for the /metrics endpoint and a shutdown function.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), provider.Shutdown, nil
}

// Metrics holds the instruments of the automation worker.
type Metrics struct {
	eventsProcessed metric.Int64Counter
	eventsFailed    metric.Int64Counter
	actionsExecuted metric.Int64Counter
	batchDuration   metric.Float64Histogram
}

// NewMetrics creates the instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return newMetrics(otel.Meter(meterName))
}

// NopMetrics returns instruments that record nothing.
func NopMetrics() *Metrics {
	m, _ := newMetrics(noop.NewMeterProvider().Meter(meterName))
	return m
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	processed, err := meter.Int64Counter("automation.events.processed",
		metric.WithDescription("Events that completed successfully"))
	if err != nil {
		return nil, err
	}
	failed, err := meter.Int64Counter("automation.events.failed",
		metric.WithDescription("Event attempts that failed and were re-queued or dead-lettered"))
	if err != nil {
		return nil, err
	}
	actions, err := meter.Int64Counter("automation.actions.executed",
		metric.WithDescription("Executed rule actions by type and outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("automation.batch.duration",
		metric.WithDescription("Duration of one queue drain"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		eventsProcessed: processed,
		eventsFailed:    failed,
		actionsExecuted: actions,
		batchDuration:   duration,
	}, nil
}

func (m *Metrics) EventProcessed(ctx context.Context) {
	m.eventsProcessed.Add(ctx, 1)
}

func (m *Metrics) EventFailed(ctx context.Context) {
	m.eventsFailed.Add(ctx, 1)
}

func (m *Metrics) ActionExecuted(ctx context.Context, actionType string, success bool) {
	m.actionsExecuted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", actionType),
		attribute.Bool("success", success),
	))
}

func (m *Metrics) BatchDuration(ctx context.Context, d time.Duration) {
	m.batchDuration.Record(ctx, d.Seconds())
}
