package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salihRogo/movie-recommender/internal/metrics"
)

// MetricsMiddleware collects HTTP metrics for Prometheus
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		// Use the route template so /recommendations/42 and
		// /recommendations/7 share one label value.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		// Numeric status string so Grafana queries like status=~"5.." work.
		statusStr := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)
	}
}
