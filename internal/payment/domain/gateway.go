package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotConfigured is returned when no gateway key is configured.
	ErrNotConfigured = errors.New("payment gateway not configured")
	// ErrInvalidAmount is returned for non-positive, non-finite or oversized prices.
	ErrInvalidAmount = errors.New("invalid payment amount")
	// ErrGateway wraps failures reported by the gateway itself.
	ErrGateway = errors.New("payment gateway error")
)

const (
	// StatusSucceeded is the intent status of a captured payment.
	StatusSucceeded = "succeeded"
	// MaxAmount is the largest charge in minor units the gateway accepts.
	MaxAmount int64 = 99_999_999
)

// IntentParams describes a payment intent to create.
type IntentParams struct {
	// Amount is in the currency's minor unit (cents).
	Amount         int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

// Intent is the gateway's view of a payment.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// Gateway creates and inspects payment intents.
type Gateway interface {
	CreateIntent(ctx context.Context, p IntentParams) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
}

// ToMinorUnits converts a decimal price to cents, rounding half away from zero.
// Prices that round above MaxAmount are rejected.
func ToMinorUnits(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidAmount
	}
	cents := math.Round(price * 100)
	if cents > float64(MaxAmount) {
		return 0, fmt.Errorf("%w: %.0f exceeds %d", ErrInvalidAmount, cents, MaxAmount)
	}
	return int64(cents), nil
}
