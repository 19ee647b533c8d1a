package observability

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// noopProvider is used when metrics are disabled.
type noopProvider struct {
	meterProvider metric.MeterProvider
}

func newNoopProvider() *noopProvider {
	return &noopProvider{meterProvider: metricnoop.NewMeterProvider()}
}

// MeterProvider returns a no-op meter provider.
func (n *noopProvider) MeterProvider() metric.MeterProvider {
	return n.meterProvider
}

// Shutdown is a no-op.
func (n *noopProvider) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush is a no-op.
func (n *noopProvider) ForceFlush(_ context.Context) error {
	return nil
}
