package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bistro-boss/backend/internal/logger"
)

const checkTimeout = 2 * time.Second

// Pinger checks store connectivity. Implemented by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the policy engine can evaluate. Implemented by engine.OPAEvaluator.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves liveness and readiness.
type Handler struct {
	pinger Pinger
	policy PolicyChecker
}

// NewHandler returns a health handler. Either dependency may be nil; a nil dependency is not checked,
// which is the case for the in-memory store.
func NewHandler(pinger Pinger, policy PolicyChecker) *Handler {
	return &Handler{pinger: pinger, policy: policy}
}

// Root handles GET /. It only reports that the process is up.
func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Bistro Boss is serving")
}

// Check handles GET /health. It answers 503 when the store or policy engine is unavailable.
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true
	if h.pinger != nil {
		if err := h.pinger.PingContext(ctx); err != nil {
			logger.FromContext(ctx).Warn("health_db_failed", zap.Error(err))
			checks["database"] = "unavailable"
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			logger.FromContext(ctx).Warn("health_policy_failed", zap.Error(err))
			checks["policy"] = "unavailable"
			healthy = false
		} else {
			checks["policy"] = "ok"
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_serving", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "serving", "checks": checks})
}
