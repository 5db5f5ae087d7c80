package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beamclip_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beamclip_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beamclip_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	ItemsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beamclip_items_sent_total",
			Help: "Total clipboard items sent",
		},
	)

	ItemsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beamclip_items_consumed_total",
			Help: "Total clipboard items consumed",
		},
	)

	// Cleanup metrics
	RoomsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beamclip_rooms_reaped_total",
			Help: "Total expired rooms deleted by cleanup",
		},
	)

	ItemsReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "beamclip_items_reaped_total",
			Help: "Total aged consumed items deleted by cleanup",
		},
	)
)

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
