package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type AppMetrics struct {
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	activeConnections  prometheus.Gauge
	memoryUsage        prometheus.Gauge
	goroutines         prometheus.Gauge
	userOperations     *prometheus.CounterVec
	databaseOperations *prometheus.CounterVec
	rateLimitHits      *prometheus.CounterVec
	rateLimitAllowed   *prometheus.CounterVec
}

func NewAppMetrics(registry prometheus.Registerer) *AppMetrics {
	metrics := &AppMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		),
		memoryUsage: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "memory_usage_bytes",
				Help: "Memory usage in bytes",
			},
		),
		goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "goroutines_total",
				Help: "Number of goroutines",
			},
		),
		userOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_operations_total",
				Help: "Total number of user directory operations",
			},
			[]string{"operation"},
		),
		databaseOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"operation", "table"},
		),
		rateLimitHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"path", "key_type"},
		),
		rateLimitAllowed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_allowed_total",
				Help: "Total number of requests allowed by rate limiter",
			},
			[]string{"path", "key_type"},
		),
	}

	registry.MustRegister(
		metrics.requestDuration,
		metrics.requestTotal,
		metrics.activeConnections,
		metrics.memoryUsage,
		metrics.goroutines,
		metrics.userOperations,
		metrics.databaseOperations,
		metrics.rateLimitHits,
		metrics.rateLimitAllowed,
	)

	return metrics
}

func (m *AppMetrics) RecordRequest(ctx context.Context, method, path, status string, duration time.Duration) {
	m.requestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, status).Inc()
}

func (m *AppMetrics) IncrementActiveConnections(ctx context.Context) {
	m.activeConnections.Inc()
}

func (m *AppMetrics) DecrementActiveConnections(ctx context.Context) {
	m.activeConnections.Dec()
}

func (m *AppMetrics) RecordUserOperation(ctx context.Context, operation string) {
	m.userOperations.WithLabelValues(operation).Inc()
}

func (m *AppMetrics) RecordDatabaseOperation(ctx context.Context, operation, table string) {
	m.databaseOperations.WithLabelValues(operation, table).Inc()
}

func (m *AppMetrics) RecordRateLimitHit(ctx context.Context, path, keyType string) {
	m.rateLimitHits.WithLabelValues(path, keyType).Inc()
}

func (m *AppMetrics) RecordRateLimitAllowed(ctx context.Context, path, keyType string) {
	m.rateLimitAllowed.WithLabelValues(path, keyType).Inc()
}

// StartSystemMetrics samples heap and goroutine counts every interval until ctx is done.
func (m *AppMetrics) StartSystemMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.sample()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *AppMetrics) sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	m.memoryUsage.Set(float64(memStats.Alloc))

	m.goroutines.Set(float64(runtime.NumGoroutine()))
}
