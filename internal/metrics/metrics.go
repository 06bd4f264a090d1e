package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sessiongate_live_connections",
		Help: "Current number of authenticated websocket connections",
	})
	JoinsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessiongate_joins_total",
		Help: "Room join attempts by outcome",
	}, []string{"outcome"})
	RelayedFramesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessiongate_relayed_frames_total",
		Help: "Total number of signaling frames forwarded",
	})
	EvictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessiongate_evictions_total",
		Help: "Connections force-closed by a superseding login",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(LiveConnections, JoinsTotal, RelayedFramesTotal, EvictionsTotal, HTTPRequestsTotal, HTTPRequestDuration)
}

// GinMiddleware counts requests for Prometheus to scrape.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HTTPRequestsTotal.With(labels).Inc()
		HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
