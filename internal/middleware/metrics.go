package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-mirror/internal/service"
)

// unmatchedRoute labels every request that matched no registered route.
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route template.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}

func routeLabel(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return unmatchedRoute
}
