// Package observability builds the logger, prometheus registry and tracer
// provider shared by the modules of the engine.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/Black-And-White-Club/competition-engine/pkg/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects the observability backends.
type Config struct {
	ServiceName     string
	Environment     string
	Version         string
	MetricsAddress  string
	TempoEndpoint   string
	TempoInsecure   bool
	TempoSampleRate float64
}

// Provider owns the process-wide telemetry backends.
type Provider struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	Prometheus     *prometheus.Registry
	shutdown       []func(context.Context) error
}

// Registry holds the per-concern recorders handed to modules.
type Registry struct {
	Tracer             trace.Tracer
	Logger             *slog.Logger
	CompetitionMetrics metrics.OperationMetrics
	StatsMetrics       metrics.StatsMetrics
	EventBusMetrics    metrics.EventBusMetrics
	QueueMetrics       metrics.OperationMetrics
}

// Observability bundles Provider and Registry.
type Observability struct {
	Provider *Provider
	Registry *Registry
}

// Init builds the logger, metrics registry and tracer provider for cfg.
func Init(ctx context.Context, cfg Config) (Observability, error) {
	logger := newLogger(os.Stdout, cfg.Environment).With(
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.Version),
	)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	provider := &Provider{
		Logger:     logger,
		Prometheus: reg,
	}

	tp, err := newTracerProvider(ctx, cfg)
	if err != nil {
		return Observability{}, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	provider.TracerProvider = tp
	if sdkTP, ok := tp.(*sdktrace.TracerProvider); ok {
		otel.SetTracerProvider(sdkTP)
		provider.shutdown = append(provider.shutdown, sdkTP.Shutdown)
	}

	return Observability{
		Provider: provider,
		Registry: &Registry{
			Tracer:             tp.Tracer(cfg.ServiceName),
			Logger:             logger,
			CompetitionMetrics: metrics.NewPrometheusOperationMetrics(reg, "competition"),
			StatsMetrics:       metrics.NewPrometheusStatsMetrics(reg),
			EventBusMetrics:    metrics.NewPrometheusEventBusMetrics(reg),
			QueueMetrics:       metrics.NewPrometheusOperationMetrics(reg, "queue"),
		},
	}, nil
}

// NewTestObservability returns an Observability that discards everything.
func NewTestObservability() Observability {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	return Observability{
		Provider: &Provider{
			Logger:         logger,
			TracerProvider: noop.NewTracerProvider(),
			Prometheus:     prometheus.NewRegistry(),
		},
		Registry: &Registry{
			Tracer:             tracer,
			Logger:             logger,
			CompetitionMetrics: metrics.NewNoop(),
			StatsMetrics:       metrics.NewNoop(),
			EventBusMetrics:    metrics.NewNoop(),
			QueueMetrics:       metrics.NewNoop(),
		},
	}
}

// MetricsHandler serves the prometheus registry.
func (p *Provider) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(p.Prometheus, promhttp.HandlerOpts{Registry: p.Prometheus})
}

// Shutdown flushes exporters.
func (o Observability) Shutdown(ctx context.Context) error {
	if o.Provider == nil {
		return nil
	}
	var errs []error
	for _, fn := range o.Provider.shutdown {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newLogger(w io.Writer, environment string) *slog.Logger {
	switch environment {
	case "development", "dev", "local":
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// newTracerProvider exports to Tempo over OTLP/gRPC when an endpoint is
// configured and falls back to a no-op provider otherwise.
func newTracerProvider(ctx context.Context, cfg Config) (trace.TracerProvider, error) {
	if cfg.TempoEndpoint == "" {
		return noop.NewTracerProvider(), nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.TempoEndpoint)}
	if cfg.TempoInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	rate := cfg.TempoSampleRate
	if rate <= 0 {
		rate = 0.1
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.Version),
		attribute.String("deployment.environment", cfg.Environment),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	), nil
}
