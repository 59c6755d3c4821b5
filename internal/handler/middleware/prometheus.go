package middleware

import (
	"strconv"
	"time"

	"github.com/Holytear/concurrent-ticket-reservation-api/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// PrometheusMiddleware records request counts and latency per route. The
// templated route path is used so path parameters do not explode the
// label cardinality.
func PrometheusMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		method := c.Request.Method
		statusCode := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
