package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bank-api/internal/metrics"
)

// PrometheusMiddleware collects HTTP metrics, unchanged from the teacher's
// internal/api/middleware/prometheus.go.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		statusCode := strconv.Itoa(c.Writer.Status())

		metrics.HTTPDuration.WithLabelValues(c.Request.Method, endpoint, statusCode).Observe(duration.Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, endpoint, statusCode).Inc()
	}
}
