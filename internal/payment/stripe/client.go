// Package stripe adapts the Stripe PaymentIntents API to the payment gateway port.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"

	"bistro-boss/backend/internal/payment/domain"
)

const (
	DefaultBaseURL = "https://api.stripe.com"
	requestTimeout = 12 * time.Second
)

// Client implements domain.Gateway against Stripe.
type Client struct {
	configured bool
	intents    *paymentintent.Client
}

// NewClient returns a Stripe client. baseURL defaults to DefaultBaseURL; httpClient defaults to one with a 12s timeout.
// Retries are left to the caller, so a failed call surfaces at once.
func NewClient(apiKey, baseURL string, httpClient *http.Client, lg *zap.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	backend := stripego.GetBackendWithConfig(stripego.APIBackend, &stripego.BackendConfig{
		HTTPClient:        httpClient,
		URL:               stripego.String(strings.TrimRight(baseURL, "/")),
		MaxNetworkRetries: stripego.Int64(0),
		LeveledLogger:     lg.Named("stripe").Sugar(),
	})
	apiKey = strings.TrimSpace(apiKey)
	return &Client{
		configured: apiKey != "",
		intents:    &paymentintent.Client{B: backend, Key: apiKey},
	}
}

// CreateIntent creates a card payment intent for p.Amount minor units.
func (c *Client) CreateIntent(ctx context.Context, p domain.IntentParams) (*domain.Intent, error) {
	if !c.configured {
		return nil, domain.ErrNotConfigured
	}
	if p.Amount <= 0 || p.Amount > domain.MaxAmount {
		return nil, domain.ErrInvalidAmount
	}
	params := &stripego.PaymentIntentParams{
		Amount:             stripego.Int64(p.Amount),
		Currency:           stripego.String(strings.ToLower(p.Currency)),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	pi, err := c.intents.New(params)
	return toIntent(pi, err)
}

// RetrieveIntent fetches the intent with id.
func (c *Client) RetrieveIntent(ctx context.Context, id string) (*domain.Intent, error) {
	if !c.configured {
		return nil, domain.ErrNotConfigured
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty intent id", domain.ErrGateway)
	}
	params := &stripego.PaymentIntentParams{}
	params.Context = ctx
	pi, err := c.intents.Get(id, params)
	return toIntent(pi, err)
}

func toIntent(pi *stripego.PaymentIntent, err error) (*domain.Intent, error) {
	if err != nil {
		var se *stripego.Error
		if errors.As(err, &se) {
			msg := strings.TrimSpace(se.Msg)
			if msg == "" {
				msg = "stripe_request_failed"
			}
			return nil, fmt.Errorf("%w: status %d: %s", domain.ErrGateway, se.HTTPStatusCode, msg)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrGateway, err)
	}
	if pi == nil || pi.ID == "" {
		return nil, fmt.Errorf("%w: stripe_response_invalid", domain.ErrGateway)
	}
	return &domain.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}
