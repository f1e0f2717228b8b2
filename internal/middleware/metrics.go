package middleware

import (
	"strconv"
	"time"

	"github.com/eaglebank/wallet-service/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latencies per route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "/metrics" {
			c.Next()
			return
		}
		if path == "" {
			path = "unmatched"
		}

		m.HTTPInFlight.Inc()
		defer m.HTTPInFlight.Dec()
		start := time.Now()

		c.Next()

		m.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
