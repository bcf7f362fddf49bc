package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records API requests by route template. A nil *HTTPMetrics
// records nothing.
type HTTPMetrics struct {
	RequestsTotal  *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
}

// NewHTTPMetrics creates the API request metrics and registers them with reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "complaint_api_requests_total", Help: "Complaint API requests by route, method and status code."},
			[]string{"route", "method", "code"},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "complaint_api_request_duration_seconds",
				Help:    "Complaint API request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestLatency)
	return m
}

func (m *HTTPMetrics) observe(route, method string, code int, start time.Time) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.RequestLatency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
}

// Middleware records every request except scrapes of /metrics.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// FullPath is the route template, so label cardinality stays bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.observe(route, c.Request.Method, c.Writer.Status(), start)
	}
}
