package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bistro-boss/backend/internal/order/domain"
	"bistro-boss/backend/internal/order/service"
	paymentdomain "bistro-boss/backend/internal/payment/domain"
	"bistro-boss/backend/internal/platform/rbac"
	"bistro-boss/backend/internal/server/httperr"
)

// Finalizer is the order API used by the handler.
type Finalizer interface {
	Finalize(ctx context.Context, in service.FinalizeInput) (*service.FinalizeResult, error)
	List(ctx context.Context, owner string) ([]*domain.Order, error)
}

// Handler serves POST /payments and GET /payments/:email.
type Handler struct {
	svc Finalizer
}

// NewHandler returns an order handler.
func NewHandler(svc Finalizer) *Handler {
	return &Handler{svc: svc}
}

type finalizeRequest struct {
	TransactionID string   `json:"transactionId"`
	Price         float64  `json:"price"`
	CartItemIDs   []string `json:"cartItems"`
	MenuItemIDs   []string `json:"menuItems"`
}

type finalizeResponse struct {
	OrderID      string `json:"orderId"`
	Requested    int    `json:"requested"`
	RemovedCount int64  `json:"removedCount"`
	Excluded     int    `json:"excluded"`
	Replayed     bool   `json:"replayed"`
	Warning      string `json:"warning,omitempty"`
}

// Finalize handles POST /payments. The owner is the authenticated caller; an email in the body is ignored.
// An incomplete cart cleanup still answers 200 with a warning because the order is recorded.
func (h *Handler) Finalize(c *gin.Context) {
	claim, ok := rbac.ClaimFromContext(c.Request.Context())
	if !ok {
		httperr.Abort(c, rbac.ErrUnauthenticated)
		return
	}
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, fmt.Errorf("%w: %v", httperr.ErrInvalidRequest, err))
		return
	}
	res, err := h.svc.Finalize(c.Request.Context(), service.FinalizeInput{
		OwnerEmail:    claim.Email,
		TransactionID: req.TransactionID,
		Price:         req.Price,
		CartItemIDs:   req.CartItemIDs,
		MenuItemIDs:   req.MenuItemIDs,
	})
	if err != nil && !(errors.Is(err, service.ErrPartialFailure) && res != nil) {
		httperr.Abort(c, mapError(err))
		return
	}
	out := finalizeResponse{
		OrderID:      res.OrderID,
		Requested:    res.Requested,
		RemovedCount: res.Removed,
		Excluded:     res.Excluded,
		Replayed:     res.Replayed,
	}
	if res.Partial {
		out.Warning = service.ErrPartialFailure.Error()
	}
	c.JSON(http.StatusOK, out)
}

// List handles GET /payments/:email. OwnsResource has already matched the path email to the caller.
func (h *Handler) List(c *gin.Context) {
	claim, ok := rbac.ClaimFromContext(c.Request.Context())
	if !ok {
		httperr.Abort(c, rbac.ErrUnauthenticated)
		return
	}
	orders, err := h.svc.List(c.Request.Context(), claim.Email)
	if err != nil {
		httperr.Abort(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, orders)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidOrder), errors.Is(err, paymentdomain.ErrInvalidAmount):
		return fmt.Errorf("%w: %w", httperr.ErrInvalidRequest, err)
	case errors.Is(err, service.ErrPaymentNotAuthorized):
		return fmt.Errorf("%w: %w", httperr.ErrPaymentFailed, err)
	case errors.Is(err, service.ErrDuplicateTransaction):
		return fmt.Errorf("%w: %w", httperr.ErrConflict, err)
	case errors.Is(err, paymentdomain.ErrGateway):
		return fmt.Errorf("%w: %w", httperr.ErrBadGateway, err)
	default:
		return err
	}
}
