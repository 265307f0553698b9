package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bistro-boss/backend/internal/menu/domain"
	"bistro-boss/backend/internal/menu/repository"
	"bistro-boss/backend/internal/server/httperr"
)

// Handler serves the public menu catalog.
type Handler struct {
	repo repository.Repository
}

// NewHandler returns a menu handler backed by repo.
func NewHandler(repo repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /menu.
func (h *Handler) List(c *gin.Context) {
	items, err := h.repo.List(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	if items == nil {
		items = []*domain.Item{}
	}
	c.JSON(http.StatusOK, items)
}

// Get handles GET /menu/:id.
func (h *Handler) Get(c *gin.Context) {
	item, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	if item == nil {
		httperr.Abort(c, httperr.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, item)
}
