package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder records one finished request. Implemented by metrics.Registry.
type HTTPRecorder interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Metrics records request count and latency by route template, never by raw path.
func Metrics(rec HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if rec != nil {
			rec.ObserveHTTP(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
		}
	}
}
