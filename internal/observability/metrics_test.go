package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordTransition("Approved")
	m.RecordTransition("Approved")
	m.RecordNotification("failed")
	m.RecordError("INVALID_STATE")
	m.RecordRequest("/loan-applications/:id", fiber.MethodGet, 200, 15*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("Approved")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("INVALID_STATE")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(fiber.MethodGet, "/loan-applications/:id", "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordTransition("Submitted")
		m.RecordNotification("sent")
		m.RecordError("NOT_FOUND")
		m.RecordRequest("/", fiber.MethodGet, 200, time.Millisecond)
	})
}

func TestRequestLoggerAndHandler(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/ping/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping/7", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), `loan_service_http_requests_total{method="GET",path="/ping/:id",status="204"} 1`))
}
