package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bistro-boss/backend/internal/cart/domain"
	"bistro-boss/backend/internal/cart/service"
	"bistro-boss/backend/internal/platform/rbac"
	"bistro-boss/backend/internal/server/httperr"
)

// CartService is the cart API used by the handler.
type CartService interface {
	List(ctx context.Context, owner string) ([]*domain.Entry, error)
	Add(ctx context.Context, owner string, in service.AddInput) (*domain.Entry, error)
	Remove(ctx context.Context, owner, id string) (int64, error)
}

// Handler serves the cart endpoints. Every route runs behind the Authenticated gate.
type Handler struct {
	svc CartService
}

// NewHandler returns a cart handler.
func NewHandler(svc CartService) *Handler {
	return &Handler{svc: svc}
}

type addRequest struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Image      string  `json:"image"`
	Price      float64 `json:"price"`
}

// List handles GET /carts?email=. OwnsResource has already matched email to the caller.
func (h *Handler) List(c *gin.Context) {
	claim, ok := rbac.ClaimFromContext(c.Request.Context())
	if !ok {
		httperr.Abort(c, rbac.ErrUnauthenticated)
		return
	}
	entries, err := h.svc.List(c.Request.Context(), claim.Email)
	if err != nil {
		httperr.Abort(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Add handles POST /carts. The entry is always owned by the caller; a client-supplied email is ignored.
func (h *Handler) Add(c *gin.Context) {
	claim, ok := rbac.ClaimFromContext(c.Request.Context())
	if !ok {
		httperr.Abort(c, rbac.ErrUnauthenticated)
		return
	}
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, fmt.Errorf("%w: %v", httperr.ErrInvalidRequest, err))
		return
	}
	e, err := h.svc.Add(c.Request.Context(), claim.Email, service.AddInput{
		MenuItemID: req.MenuItemID,
		Name:       req.Name,
		Image:      req.Image,
		Price:      req.Price,
	})
	if err != nil {
		httperr.Abort(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "insertedId": e.ID})
}

// Remove handles DELETE /carts/:id.
func (h *Handler) Remove(c *gin.Context) {
	claim, ok := rbac.ClaimFromContext(c.Request.Context())
	if !ok {
		httperr.Abort(c, rbac.ErrUnauthenticated)
		return
	}
	n, err := h.svc.Remove(c.Request.Context(), claim.Email, c.Param("id"))
	if err != nil {
		httperr.Abort(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "deletedCount": n})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidEntry):
		return fmt.Errorf("%w: %w", httperr.ErrInvalidRequest, err)
	case errors.Is(err, service.ErrNoOwner):
		return rbac.ErrUnauthenticated
	default:
		return err
	}
}
