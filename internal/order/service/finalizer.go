package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"bistro-boss/backend/internal/audit"
	auditdomain "bistro-boss/backend/internal/audit/domain"
	"bistro-boss/backend/internal/db"
	"bistro-boss/backend/internal/logger"
	"bistro-boss/backend/internal/order/domain"
	paymentdomain "bistro-boss/backend/internal/payment/domain"
	"bistro-boss/backend/internal/security"
	"bistro-boss/backend/internal/telemetry"
	telemetrydomain "bistro-boss/backend/internal/telemetry/domain"
)

// Sentinel errors for the finalizer; the handler maps them to HTTP statuses.
var (
	ErrInvalidOrder         = errors.New("invalid order")
	ErrPaymentNotAuthorized = errors.New("payment not authorized")
	ErrDuplicateTransaction = errors.New("transaction already recorded for another identity")
	// ErrPartialFailure means the order was recorded but cart cleanup did not complete.
	// It accompanies a non-nil result and is never retried automatically.
	ErrPartialFailure = errors.New("order recorded but cart cleanup incomplete")
)

// Outcome labels reported to the OutcomeRecorder.
const (
	OutcomeCreated         = "created"
	OutcomeReplayed        = "replayed"
	OutcomePartial         = "partial"
	OutcomeInvalid         = "invalid"
	OutcomePaymentRejected = "payment_rejected"
	OutcomeDuplicate       = "duplicate"
	OutcomeError           = "error"
)

var tracer = otel.Tracer("bistro-boss/order")

// OrderRepo is the order repository needed by the finalizer.
type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByTransactionID(ctx context.Context, txID string) (*domain.Order, error)
	ListByOwner(ctx context.Context, owner string) ([]*domain.Order, error)
}

// CartCleaner is the cart repository subset needed by the finalizer. Both methods are owner-scoped.
type CartCleaner interface {
	ListOwnedIDs(ctx context.Context, owner string, ids []string) ([]string, error)
	DeleteOwned(ctx context.Context, owner string, ids []string) (int64, error)
}

// IntentRetriever looks up a payment intent at the gateway.
type IntentRetriever interface {
	RetrieveIntent(ctx context.Context, id string) (*paymentdomain.Intent, error)
}

// OutcomeRecorder counts finalize outcomes. Implemented by metrics.Registry.
type OutcomeRecorder interface {
	ObserveFinalize(outcome string)
}

// FinalizeInput is a checkout submitted by the owner.
type FinalizeInput struct {
	OwnerEmail    string
	TransactionID string
	Price         float64
	CartItemIDs   []string
	MenuItemIDs   []string
}

// FinalizeResult reports what finalize did. Requested counts distinct submitted cart ids;
// Excluded counts those not owned by the caller; Removed counts entries actually deleted.
type FinalizeResult struct {
	OrderID   string
	Requested int
	Removed   int64
	Excluded  int
	Replayed  bool
	Partial   bool
}

// Config wires the finalizer's collaborators. Payments, Audit, Outcomes and Events are optional.
type Config struct {
	Orders   OrderRepo
	Carts    CartCleaner
	Payments IntentRetriever
	// Currency, when set, must match the intent's currency.
	Currency string
	Audit    audit.AuditLogger
	Outcomes OutcomeRecorder
	// Events receives an order_finalized event per recorded order. Optional.
	Events telemetry.EventEmitter
}

// Finalizer turns a paid checkout into an order record and clears the paid entries from the cart.
type Finalizer struct {
	orders   OrderRepo
	carts    CartCleaner
	payments IntentRetriever
	currency string
	audit    audit.AuditLogger
	outcomes OutcomeRecorder
	events   telemetry.EventEmitter
	now      func() time.Time
	newID    func() string
}

// NewFinalizer returns a Finalizer. Without Payments, a non-empty transaction id is the only payment check.
func NewFinalizer(cfg Config) *Finalizer {
	return &Finalizer{
		orders:   cfg.Orders,
		carts:    cfg.Carts,
		payments: cfg.Payments,
		currency: strings.ToLower(strings.TrimSpace(cfg.Currency)),
		audit:    cfg.Audit,
		outcomes: cfg.Outcomes,
		events:   cfg.Events,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Finalize records the order and then deletes the caller-owned cart entries it paid for.
// The order insert completes before cleanup starts; a failed insert mutates nothing. Cleanup
// runs even if ctx is cancelled after the insert and is never rolled back into the order.
// When cleanup is incomplete the result is returned together with an error wrapping ErrPartialFailure.
func (f *Finalizer) Finalize(ctx context.Context, in FinalizeInput) (*FinalizeResult, error) {
	ctx, span := tracer.Start(ctx, "order.finalize")
	defer span.End()

	res, outcome, err := f.finalize(ctx, in)
	f.record(outcome)
	span.SetAttributes(attribute.String("order.outcome", outcome))
	if res != nil {
		span.SetAttributes(
			attribute.String("order.id", res.OrderID),
			attribute.Int("order.cart_requested", res.Requested),
			attribute.Int64("order.cart_removed", res.Removed),
		)
	}
	if err != nil && !errors.Is(err, ErrPartialFailure) {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	return res, err
}

func (f *Finalizer) finalize(ctx context.Context, in FinalizeInput) (*FinalizeResult, string, error) {
	owner := security.NormalizeEmail(in.OwnerEmail)
	if owner == "" {
		return nil, OutcomeInvalid, fmt.Errorf("%w: owner is required", ErrInvalidOrder)
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price <= 0 {
		return nil, OutcomeInvalid, fmt.Errorf("%w: price must be positive", ErrInvalidOrder)
	}
	txID := strings.TrimSpace(in.TransactionID)
	cartIDs := distinct(in.CartItemIDs)
	menuIDs := trimmed(in.MenuItemIDs)

	if err := f.verifyPayment(ctx, txID, in.Price); err != nil {
		if errors.Is(err, ErrPaymentNotAuthorized) {
			return nil, OutcomePaymentRejected, err
		}
		return nil, OutcomeError, err
	}

	existing, err := f.orders.GetByTransactionID(ctx, txID)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("lookup order: %w", err)
	}
	if existing != nil {
		return f.replay(ctx, owner, existing, len(cartIDs))
	}

	owned, err := f.carts.ListOwnedIDs(ctx, owner, cartIDs)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("resolve cart entries: %w", err)
	}
	order := &domain.Order{
		ID:            f.newID(),
		OwnerEmail:    owner,
		TransactionID: txID,
		Price:         in.Price,
		CartItemIDs:   owned,
		MenuItemIDs:   menuIDs,
		CreatedAt:     f.now().UTC(),
	}
	if err := order.Validate(); err != nil {
		return nil, OutcomeInvalid, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	if err := f.orders.Create(ctx, order); err != nil {
		if errors.Is(err, db.ErrConflict) {
			// A concurrent finalize for the same transaction won the insert.
			winner, lerr := f.orders.GetByTransactionID(context.WithoutCancel(ctx), txID)
			if lerr != nil || winner == nil {
				return nil, OutcomeError, fmt.Errorf("reload order after conflict: %w", errors.Join(err, lerr))
			}
			return f.replay(ctx, owner, winner, len(cartIDs))
		}
		return nil, OutcomeError, fmt.Errorf("record order: %w", err)
	}

	logger.FromContext(ctx).Info("order_finalized",
		zap.String("order_id", order.ID),
		zap.String("transaction_id", order.TransactionID),
		zap.Float64("price", order.Price),
		zap.Int("cart_requested", len(cartIDs)),
		zap.Int("cart_owned", len(owned)),
	)
	if f.audit != nil {
		f.audit.LogEvent(ctx, owner, auditdomain.ActionOrderFinalized, "order", map[string]any{
			"order_id":       order.ID,
			"transaction_id": order.TransactionID,
			"price":          order.Price,
		})
	}
	f.emitFinalized(ctx, order)

	res := &FinalizeResult{OrderID: order.ID, Requested: len(cartIDs), Excluded: len(cartIDs) - len(owned)}
	if err := f.cleanup(ctx, order, owned, res); err != nil {
		return res, OutcomePartial, err
	}
	return res, OutcomeCreated, nil
}

// replay answers a repeated finalize for an already recorded transaction without inserting again.
// The recorded entries still present in the owner's cart are cleaned up.
func (f *Finalizer) replay(ctx context.Context, owner string, existing *domain.Order, requested int) (*FinalizeResult, string, error) {
	if existing.OwnerEmail != owner {
		return nil, OutcomeDuplicate, ErrDuplicateTransaction
	}
	res := &FinalizeResult{
		OrderID:   existing.ID,
		Requested: requested,
		Excluded:  max(requested-len(existing.CartItemIDs), 0),
		Replayed:  true,
	}
	cctx := context.WithoutCancel(ctx)
	present, err := f.carts.ListOwnedIDs(cctx, owner, existing.CartItemIDs)
	if err != nil {
		res.Partial = true
		return res, OutcomePartial, fmt.Errorf("%w: %v", ErrPartialFailure, err)
	}
	if err := f.cleanup(ctx, existing, present, res); err != nil {
		return res, OutcomePartial, err
	}
	return res, OutcomeReplayed, nil
}

// cleanup deletes ids from the order owner's cart. It detaches from ctx cancellation because the
// order is already committed. A shortfall is partial only when some of ids are still present.
func (f *Finalizer) cleanup(ctx context.Context, order *domain.Order, ids []string, res *FinalizeResult) error {
	if len(ids) == 0 {
		return nil
	}
	cctx := context.WithoutCancel(ctx)
	removed, err := f.carts.DeleteOwned(cctx, order.OwnerEmail, ids)
	res.Removed = removed
	if err == nil && removed >= int64(len(ids)) {
		return nil
	}
	if err == nil {
		remaining, lerr := f.carts.ListOwnedIDs(cctx, order.OwnerEmail, ids)
		if lerr == nil && len(remaining) == 0 {
			return nil
		}
		err = lerr
	}

	res.Partial = true
	logger.FromContext(ctx).Warn("cart_cleanup_partial",
		zap.String("order_id", order.ID),
		zap.Int("cart_expected", len(ids)),
		zap.Int64("cart_removed", removed),
		zap.Error(err),
	)
	if f.audit != nil {
		f.audit.LogEvent(ctx, order.OwnerEmail, auditdomain.ActionCleanupPartial, "order", map[string]any{
			"order_id": order.ID,
			"expected": len(ids),
			"removed":  removed,
		})
	}
	if err != nil {
		return fmt.Errorf("%w: removed %d of %d: %v", ErrPartialFailure, removed, len(ids), err)
	}
	return fmt.Errorf("%w: removed %d of %d", ErrPartialFailure, removed, len(ids))
}

// verifyPayment requires a transaction id and, with a gateway configured, a succeeded intent
// whose amount equals the order price in minor units.
func (f *Finalizer) verifyPayment(ctx context.Context, txID string, price float64) error {
	if txID == "" {
		return fmt.Errorf("%w: transaction id is required", ErrPaymentNotAuthorized)
	}
	if f.payments == nil {
		return nil
	}
	amount, err := paymentdomain.ToMinorUnits(price)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	intent, err := f.payments.RetrieveIntent(ctx, txID)
	if err != nil {
		return fmt.Errorf("verify payment: %w", err)
	}
	switch {
	case intent == nil:
		return fmt.Errorf("%w: intent %q not returned by gateway", ErrPaymentNotAuthorized, txID)
	case intent.Status != paymentdomain.StatusSucceeded:
		return fmt.Errorf("%w: intent status %q", ErrPaymentNotAuthorized, intent.Status)
	case intent.Amount != amount:
		return fmt.Errorf("%w: intent amount %d does not match %d", ErrPaymentNotAuthorized, intent.Amount, amount)
	case f.currency != "" && intent.Currency != "" && !strings.EqualFold(intent.Currency, f.currency):
		return fmt.Errorf("%w: intent currency %q", ErrPaymentNotAuthorized, intent.Currency)
	}
	return nil
}

// List returns the owner's order history.
func (f *Finalizer) List(ctx context.Context, owner string) ([]*domain.Order, error) {
	owner = security.NormalizeEmail(owner)
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidOrder)
	}
	orders, err := f.orders.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

func (f *Finalizer) emitFinalized(ctx context.Context, order *domain.Order) {
	if f.events == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{
		"order_id":   order.ID,
		"price":      order.Price,
		"cart_items": len(order.CartItemIDs),
		"menu_items": len(order.MenuItemIDs),
	})
	telemetry.EmitAsync(f.events, ctx, &telemetrydomain.Event{
		Type:       telemetrydomain.EventOrderFinalized,
		Source:     "order_finalizer",
		ActorEmail: order.OwnerEmail,
		Metadata:   meta,
		OccurredAt: order.CreatedAt,
	})
}

func (f *Finalizer) record(outcome string) {
	if f.outcomes != nil {
		f.outcomes.ObserveFinalize(outcome)
	}
}

// distinct trims ids, drops empties and keeps the first occurrence of each.
func distinct(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// trimmed trims ids and drops empties. Repeats are kept; each occurrence is one ordered dish.
func trimmed(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
