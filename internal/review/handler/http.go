package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bistro-boss/backend/internal/review/domain"
	"bistro-boss/backend/internal/review/repository"
	"bistro-boss/backend/internal/server/httperr"
)

// Handler serves published reviews.
type Handler struct {
	repo repository.Repository
}

// NewHandler returns a review handler backed by repo.
func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /reviews.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	if list == nil {
		list = []*domain.Review{}
	}
	c.JSON(http.StatusOK, list)
}
