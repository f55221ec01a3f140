package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	"userdir/internal/core/port"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

type Container struct {
	TracerProvider     *sdktrace.TracerProvider
	MeterProvider      *sdkmetric.MeterProvider
	PrometheusRegistry *prometheus.Registry
	MetricsServer      *http.Server
	AppMetrics         *telemetry.AppMetrics
	logger             *zap.Logger
}

// NewContainer installs the global tracer and meter providers and builds the
// Prometheus registry. Spans are exported over OTLP only when an endpoint is set.
func NewContainer(cfg config.TelemetryConfig, environment string, logger *zap.Logger) (*Container, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(environment),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	appMetrics := telemetry.NewAppMetrics(registry)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	tracerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	if cfg.OTLPEndpoint != "" {
		otlpExporter, err := otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}

		tracerOpts = append(tracerOpts, sdktrace.WithBatcher(otlpExporter,
			sdktrace.WithBatchTimeout(1*time.Second),
		))
	}

	tracerProvider := sdktrace.NewTracerProvider(tracerOpts...)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	metricsServer := &http.Server{
		Addr:         ":" + cfg.MetricsPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return &Container{
		TracerProvider:     tracerProvider,
		MeterProvider:      meterProvider,
		PrometheusRegistry: registry,
		MetricsServer:      metricsServer,
		AppMetrics:         appMetrics,
		logger:             logger,
	}, nil
}

// StartMetricsServer serves /metrics in the background and samples system gauges until ctx ends.
func (c *Container) StartMetricsServer(ctx context.Context) {
	c.AppMetrics.StartSystemMetrics(ctx, 10*time.Second)

	go func() {
		if err := c.MetricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.logger.Error("Failed to start metrics server", zap.Error(err))
		}
	}()
}

func (c *Container) Shutdown(ctx context.Context) error {
	if err := c.TracerProvider.Shutdown(ctx); err != nil {
		return err
	}

	if err := c.MeterProvider.Shutdown(ctx); err != nil {
		return err
	}

	if err := c.MetricsServer.Shutdown(ctx); err != nil {
		return err
	}

	return nil
}

func (c *Container) NewTelemetryProbe() port.Telemetry {
	return telemetry.NewOTELProbe(c.logger, c.AppMetrics)
}
