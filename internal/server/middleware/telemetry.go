package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"bistro-boss/backend/internal/platform/rbac"
	"bistro-boss/backend/internal/telemetry"
	"bistro-boss/backend/internal/telemetry/domain"
)

// Telemetry emits an http_request event after each request. Best-effort and asynchronous; a nil
// emitter disables it. Routes in skip are not emitted.
func Telemetry(emitter telemetry.EventEmitter, skip map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if emitter == nil || skip[c.FullPath()] {
			return
		}
		ctx := c.Request.Context()
		event := &domain.Event{
			Type:       domain.EventHTTPRequest,
			Source:     "http_middleware",
			RequestID:  RequestIDFromContext(ctx),
			Method:     c.Request.Method,
			Route:      routeOf(c),
			Status:     c.Writer.Status(),
			Duration:   time.Since(start),
			OccurredAt: time.Now().UTC(),
		}
		if claim, ok := rbac.ClaimFromContext(ctx); ok {
			event.ActorEmail = claim.Email
		}
		telemetry.EmitAsync(emitter, ctx, event)
	}
}
