package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"

	"github.com/Bidzuweb/Bidzu-Final/config"
	"github.com/Bidzuweb/Bidzu-Final/logger"
)

// Provider manages the lifecycle of the meter provider that exports the
// client's request, refresh and auth-failure metrics.
type Provider interface {
	// MeterProvider returns the configured meter provider.
	MeterProvider() metric.MeterProvider

	// Shutdown flushes pending metrics and stops the exporter.
	// It should be called during application shutdown.
	Shutdown(ctx context.Context) error

	// ForceFlush immediately exports pending metrics.
	ForceFlush(ctx context.Context) error
}

// Option adjusts provider construction.
type Option func(*options)

type options struct {
	stdout io.Writer
}

// WithStdoutWriter redirects the stdout exporter, used when no endpoint is configured.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *options) {
		o.stdout = w
	}
}

// provider implements Provider with the OpenTelemetry metric SDK.
type provider struct {
	meterProvider *sdkmetric.MeterProvider
	mu            sync.Mutex
}

// NewProvider creates the meter provider described by cfg and installs it as
// the global provider. When metrics are disabled a no-op provider is returned
// and the global provider is left untouched.
func NewProvider(app config.AppConfig, cfg config.ObservabilityConfig, log logger.Logger, opts ...Option) (Provider, error) {
	if !cfg.Enabled {
		log.Debug().Msg("Observability disabled, using no-op meter provider")
		return newNoopProvider(), nil
	}
	if app.Name == "" {
		return nil, ErrMissingServiceName
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	res, err := newResource(app)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := newExporter(cfg, o)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	p := &provider{
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		),
	}
	otel.SetMeterProvider(p.meterProvider)

	log.Info().
		Str("service", app.Name).
		Str("endpoint", exporterName(cfg)).
		Dur("interval", cfg.Interval).
		Msg("Metrics exporter started")
	return p, nil
}

// newResource describes the service the metrics belong to.
func newResource(app config.AppConfig) (*resource.Resource, error) {
	custom, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(app.Name),
			semconv.DeploymentEnvironmentName(app.Env),
		),
	)
	if err != nil {
		return nil, err
	}
	return resource.Merge(resource.Default(), custom)
}

// newExporter picks stdout for an empty endpoint and OTLP over HTTP otherwise.
// A bare host:port endpoint honours Insecure; a URL carries its own scheme.
func newExporter(cfg config.ObservabilityConfig, o options) (sdkmetric.Exporter, error) {
	if cfg.Endpoint == "" {
		stdoutOpts := []stdoutmetric.Option{stdoutmetric.WithPrettyPrint()}
		if o.stdout != nil {
			stdoutOpts = append(stdoutOpts, stdoutmetric.WithWriter(o.stdout))
		}
		return stdoutmetric.New(stdoutOpts...)
	}

	var httpOpts []otlpmetrichttp.Option
	if strings.Contains(cfg.Endpoint, "://") {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("endpoint %q: %w", cfg.Endpoint, ErrInvalidEndpoint)
		}
		httpOpts = append(httpOpts, otlpmetrichttp.WithEndpointURL(cfg.Endpoint))
	} else {
		httpOpts = append(httpOpts, otlpmetrichttp.WithEndpoint(cfg.Endpoint))
		if cfg.Insecure {
			httpOpts = append(httpOpts, otlpmetrichttp.WithInsecure())
		}
	}
	return otlpmetrichttp.New(context.Background(), httpOpts...)
}

func exporterName(cfg config.ObservabilityConfig) string {
	if cfg.Endpoint == "" {
		return "stdout"
	}
	return cfg.Endpoint
}

// MeterProvider returns the configured meter provider.
func (p *provider) MeterProvider() metric.MeterProvider {
	return p.meterProvider
}

// Shutdown gracefully shuts down the provider.
func (p *provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.meterProvider.Shutdown(ctx); err != nil && !errors.Is(err, sdkmetric.ErrReaderShutdown) {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// ForceFlush immediately flushes any pending metric data.
func (p *provider) ForceFlush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.meterProvider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("failed to flush meter provider: %w", err)
	}
	return nil
}
