package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests       *prometheus.CounterVec
	LatencyMS      *prometheus.HistogramVec
	Checkouts      *prometheus.CounterVec
	PaymentResults *prometheus.CounterVec
}

// NewServerMetrics registers the store collectors on reg.
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "store",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "store",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "store",
		Name:      "checkouts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "store",
		Name:      "payment_callbacks_total",
		Help:      "Payment callbacks by gateway status.",
	}, []string{"status"})

	reg.MustRegister(requests, latency, checkouts, payments)
	return &ServerMetrics{Requests: requests, LatencyMS: latency, Checkouts: checkouts, PaymentResults: payments}
}

// Middleware records one request count and latency sample per route.
func (m *ServerMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}

func (m *ServerMetrics) CheckoutOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(outcome).Inc()
}

func (m *ServerMetrics) PaymentCallback(status string) {
	if m == nil {
		return
	}
	m.PaymentResults.WithLabelValues(status).Inc()
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
