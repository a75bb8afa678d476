package authservice

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/ocppauth/core/pkg/authmodel"
)

// Metrics wires the authorization-decision counters the DOMAIN STACK section
// adds onto an OpenTelemetry meter backed by a Prometheus exporter, the
// pattern grounded on the teacher's telemetry/providers/prometheus reader.
type Metrics struct {
	provider  *sdkmetric.MeterProvider
	decisions metric.Int64Counter
}

// NewMetrics builds a Metrics instance whose exporter registers its
// collectors with the default global Prometheus registerer. Callers that
// already run a promhttp handler against prometheus.DefaultGatherer will
// see these series without further wiring; NewMetrics does not start any
// HTTP server itself.
func NewMetrics(stationID string) (*Metrics, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("authservice: building Prometheus exporter: %w", err)
	}

	res, err := resource.New(context.Background(), resource.WithAttributes(
		semconv.ServiceName("ocppauth-core"),
		attribute.String("station_id", stationID),
	))
	if err != nil {
		return nil, fmt.Errorf("authservice: building resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter), sdkmetric.WithResource(res))
	meter := provider.Meter("ocppauth.core.authservice")

	decisions, err := meter.Int64Counter(
		"ocppauth_authorization_decisions_total",
		metric.WithDescription("Authorization decisions by status and deciding strategy family"),
	)
	if err != nil {
		return nil, fmt.Errorf("authservice: building decisions counter: %w", err)
	}

	return &Metrics{provider: provider, decisions: decisions}, nil
}

// RecordDecision increments the decisions counter for a single authorize
// call's outcome.
func (m *Metrics) RecordDecision(ctx context.Context, status authmodel.AuthorizationStatus, method authmodel.AuthMethod) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", string(status)),
		attribute.String("method", string(method)),
	))
}

// Shutdown flushes and releases the underlying meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
