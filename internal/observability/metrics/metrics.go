package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics exposes Prometheus observability primitives for the API.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge

	statements *prometheus.CounterVec
	intake     prometheus.Counter
}

// NewHTTPMetrics registers and returns Prometheus metrics for the API.
func NewHTTPMetrics() *HTTPMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dairypro_http_requests_total",
		Help: "Counts HTTP requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dairypro_http_duration_seconds",
		Help:    "HTTP request latency per method/route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	inflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dairypro_http_inflight_requests",
		Help: "Number of in-flight HTTP requests.",
	})

	statements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dairypro_settlement_statements_total",
		Help: "Settlement statements computed, by outcome.",
	}, []string{"outcome"})

	intake := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dairypro_milk_collections_total",
		Help: "Milk collection records created.",
	})

	prometheus.MustRegister(requests, duration, inflight, statements, intake)

	return &HTTPMetrics{
		requests:   requests,
		duration:   duration,
		inflight:   inflight,
		statements: statements,
		intake:     intake,
	}
}

// RecordStatement increments the statement counter with the given outcome.
func (m *HTTPMetrics) RecordStatement(outcome string) {
	if m == nil {
		return
	}
	m.statements.WithLabelValues(strings.TrimSpace(outcome)).Inc()
}

// RecordCollection increments the milk collection counter.
func (m *HTTPMetrics) RecordCollection() {
	if m == nil {
		return
	}
	m.intake.Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		m.inflight.Inc()
		c.Next()
		m.inflight.Dec()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.requests.WithLabelValues(method, route, status).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
