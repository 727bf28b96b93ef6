package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/residence-gate/internal/metrics"
)

// RequestMetrics records the latency of every request by route template
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequestDuration(c.Request.Context(), route, c.Writer.Status(), time.Since(start).Seconds())
	}
}
