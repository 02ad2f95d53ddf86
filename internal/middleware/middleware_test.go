package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	r := gin.New()
	r.Use(NewRequestLogger().Handler())
	pm := NewPrometheusMiddleware("test", reg)
	r.Use(pm.Handler())
	pm.RegisterMetricsEndpoint(r)

	r.GET("/ok", func(c *gin.Context) {
		id, _ := c.Get(TraceIDKey)
		c.String(http.StatusOK, "%v", id)
	})
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	return r, reg
}

func errorCount(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != "test_http_request_errors_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestRequestLogger_SetsTraceID(t *testing.T) {
	r, _ := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Trace-Id"))
}

func TestPrometheus_CountsErrors(t *testing.T) {
	r, reg := newRouter(t)

	for _, path := range []string{"/ok", "/fail", "/fail", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	// 2 x 502 и 1 x 404
	assert.Equal(t, 3.0, errorCount(t, reg))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_request_duration_seconds")
}
