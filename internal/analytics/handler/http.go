package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"bistro-boss/backend/internal/analytics/domain"
	"bistro-boss/backend/internal/server/httperr"
)

// Aggregator is the analytics API used by the handler.
type Aggregator interface {
	RevenueSummary(ctx context.Context) (*domain.RevenueSummary, error)
	CategoryBreakdown(ctx context.Context) ([]domain.CategoryTotal, error)
}

// Handler serves the admin stats endpoints. Both routes run behind Authenticated and IsAdmin.
type Handler struct {
	svc Aggregator
}

// NewHandler returns an analytics handler.
func NewHandler(svc Aggregator) *Handler {
	return &Handler{svc: svc}
}

// AdminStats handles GET /admin-stats.
func (h *Handler) AdminStats(c *gin.Context) {
	s, err := h.svc.RevenueSummary(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// OrderStats handles GET /order-stats.
func (h *Handler) OrderStats(c *gin.Context) {
	totals, err := h.svc.CategoryBreakdown(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}
