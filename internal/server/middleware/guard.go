// Package middleware holds the gin middleware of the HTTP server: request context and access logging,
// tracing, metrics, telemetry events and the adapter that runs an rbac gate chain per route.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bistro-boss/backend/internal/logger"
	"bistro-boss/backend/internal/platform/rbac"
	"bistro-boss/backend/internal/server/httperr"
)

// ResourceFunc extracts the identity a request claims to act on.
type ResourceFunc func(c *gin.Context) string

// PathParam reads the resource email from a path parameter.
func PathParam(name string) ResourceFunc {
	return func(c *gin.Context) string { return c.Param(name) }
}

// Query reads the resource email from a query parameter.
func Query(name string) ResourceFunc {
	return func(c *gin.Context) string { return c.Query(name) }
}

// DenialRecorder counts rejected requests. Implemented by metrics.Registry.
type DenialRecorder interface {
	ObserveDenial(route string, status int)
}

// Guard runs gate before the handler. A failing gate aborts with its error and nothing downstream runs.
// On success the continuation context replaces the request context, and the request logger gains the
// caller's email. resource and denials may be nil.
func Guard(gate rbac.Gate, resource ResourceFunc, denials DenialRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := rbac.Request{Authorization: strings.TrimSpace(c.GetHeader("Authorization"))}
		if resource != nil {
			req.ResourceEmail = resource(c)
		}
		ctx, err := gate(c.Request.Context(), req)
		if err != nil {
			if denials != nil {
				status, _ := httperr.Map(err)
				denials.ObserveDenial(c.FullPath(), status)
			}
			httperr.Abort(c, err)
			return
		}
		if claim, ok := rbac.ClaimFromContext(ctx); ok {
			ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("actor", claim.Email)))
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
