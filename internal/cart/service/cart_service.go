package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bistro-boss/backend/internal/audit"
	auditdomain "bistro-boss/backend/internal/audit/domain"
	"bistro-boss/backend/internal/cart/domain"
	"bistro-boss/backend/internal/logger"
	"bistro-boss/backend/internal/security"
)

// Sentinel errors for the cart service; the handler maps them to HTTP statuses.
var (
	ErrInvalidEntry = errors.New("invalid cart entry")
	ErrNoOwner      = errors.New("cart owner required")
)

// CartRepo is the repository needed by the cart service.
type CartRepo interface {
	ListByOwner(ctx context.Context, owner string) ([]*domain.Entry, error)
	Create(ctx context.Context, e *domain.Entry) error
	DeleteOwned(ctx context.Context, owner string, ids []string) (int64, error)
}

// AddInput is the client-supplied part of a new cart entry. The owner always comes from the caller's identity.
type AddInput struct {
	MenuItemID string
	Name       string
	Image      string
	Price      float64
}

// CartService manages a diner's own cart entries.
type CartService struct {
	repo  CartRepo
	audit audit.AuditLogger
	now   func() time.Time
}

// NewCartService returns a cart service. auditLogger may be nil.
func NewCartService(repo CartRepo, auditLogger audit.AuditLogger) *CartService {
	return &CartService{repo: repo, audit: auditLogger, now: time.Now}
}

// List returns the owner's cart entries.
func (s *CartService) List(ctx context.Context, owner string) ([]*domain.Entry, error) {
	owner = security.NormalizeEmail(owner)
	if owner == "" {
		return nil, ErrNoOwner
	}
	entries, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	if entries == nil {
		entries = []*domain.Entry{}
	}
	return entries, nil
}

// Add stores a new entry in owner's cart.
func (s *CartService) Add(ctx context.Context, owner string, in AddInput) (*domain.Entry, error) {
	owner = security.NormalizeEmail(owner)
	if owner == "" {
		return nil, ErrNoOwner
	}
	e := &domain.Entry{
		ID:         uuid.New().String(),
		OwnerEmail: owner,
		MenuItemID: strings.TrimSpace(in.MenuItemID),
		Name:       in.Name,
		Image:      in.Image,
		Price:      in.Price,
		CreatedAt:  s.now().UTC(),
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("add cart entry: %w", err)
	}
	logger.FromContext(ctx).Debug("cart_entry_added", zap.String("entry_id", e.ID), zap.String("menu_item_id", e.MenuItemID))
	return e, nil
}

// Remove deletes entry id when it belongs to owner. Returns the number deleted (0 when absent or owned by someone else).
func (s *CartService) Remove(ctx context.Context, owner, id string) (int64, error) {
	owner = security.NormalizeEmail(owner)
	if owner == "" {
		return 0, ErrNoOwner
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}
	n, err := s.repo.DeleteOwned(ctx, owner, []string{id})
	if err != nil {
		return 0, fmt.Errorf("remove cart entry: %w", err)
	}
	if n > 0 && s.audit != nil {
		s.audit.LogEvent(ctx, owner, auditdomain.ActionCartEntryRemoved, "cart", map[string]any{"entry_id": id})
	}
	return n, nil
}
