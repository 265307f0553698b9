package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bistro-boss/backend/internal/logger"
	"bistro-boss/backend/internal/payment/domain"
	"bistro-boss/backend/internal/platform/rbac"
	"bistro-boss/backend/internal/server/httperr"
)

// Handler creates payment intents for the checkout page.
type Handler struct {
	gateway  domain.Gateway
	currency string
}

// NewHandler returns a payment handler. gateway may be nil; then intents answer 503.
func NewHandler(gateway domain.Gateway, currency string) *Handler {
	return &Handler{gateway: gateway, currency: currency}
}

type createIntentRequest struct {
	Price float64 `json:"price"`
}

// CreateIntent handles POST /create-payment-intent: {price} -> {clientSecret}.
func (h *Handler) CreateIntent(c *gin.Context) {
	claim, ok := rbac.ClaimFromContext(c.Request.Context())
	if !ok {
		httperr.Abort(c, rbac.ErrUnauthenticated)
		return
	}
	if h.gateway == nil {
		httperr.Abort(c, fmt.Errorf("%w: %w", httperr.ErrUnavailable, domain.ErrNotConfigured))
		return
	}
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Abort(c, fmt.Errorf("%w: %v", httperr.ErrInvalidRequest, err))
		return
	}
	amount, err := domain.ToMinorUnits(req.Price)
	if err != nil {
		httperr.Abort(c, mapError(err))
		return
	}
	intent, err := h.gateway.CreateIntent(c.Request.Context(), domain.IntentParams{
		Amount:   amount,
		Currency: h.currency,
		Metadata: map[string]string{"email": claim.Email},
	})
	if err != nil {
		logger.FromContext(c.Request.Context()).Warn("payment_intent_failed", zap.Int64("amount", amount), zap.Error(err))
		httperr.Abort(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": intent.ClientSecret})
}

const invalidAmountMessage = "price must be a positive amount no larger than 999999.99"

func mapError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		return fmt.Errorf("%w: %w", httperr.ErrUnavailable, err)
	case errors.Is(err, domain.ErrInvalidAmount):
		return httperr.Wrap(http.StatusBadRequest, invalidAmountMessage, err)
	case errors.Is(err, domain.ErrGateway):
		return fmt.Errorf("%w: %w", httperr.ErrBadGateway, err)
	default:
		return err
	}
}
