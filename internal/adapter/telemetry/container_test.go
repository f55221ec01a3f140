package telemetry

import (
	"context"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"userdir/pkg/config"
)

func TestNewContainer_WithoutExporter(t *testing.T) {
	RegisterTestingT(t)

	container, err := NewContainer(config.TelemetryConfig{
		ServiceName:    "userdir-test",
		ServiceVersion: "0.0.1",
		MetricsPort:    "0",
	}, "test", zap.NewNop())

	Expect(err).To(BeNil())
	Expect(container.AppMetrics).NotTo(BeNil())
	Expect(container.NewTelemetryProbe()).NotTo(BeNil())

	container.AppMetrics.RecordUserOperation(context.Background(), "list")

	w := httptest.NewRecorder()
	promhttp.HandlerFor(container.PrometheusRegistry, promhttp.HandlerOpts{}).
		ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	Expect(w.Body.String()).To(ContainSubstring(`user_operations_total{operation="list"} 1`))
	Expect(container.Shutdown(context.Background())).To(Succeed())
}
