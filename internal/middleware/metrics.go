package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamhub-dev/teamhub/internal/metrics"
)

// Metrics records per-request latency labeled by method, route and status.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
