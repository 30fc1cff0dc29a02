package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareAndCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(Handler(reg)))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/2", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Requests.WithLabelValues("/products/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("unmatched", "404")))

	m.CheckoutOutcome("invalid")
	m.PaymentCallback("approved")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Checkouts.WithLabelValues("invalid")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "store_payment_callbacks_total"))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *ServerMetrics
	assert.NotPanics(t, func() {
		m.CheckoutOutcome("invalid")
		m.PaymentCallback("approved")
	})
}
