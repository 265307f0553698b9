package repository

import (
	"context"

	"bistro-boss/backend/internal/order/domain"
)

// Repository defines persistence for orders.
type Repository interface {
	// Create inserts the order and its line rows atomically. Returns db.ErrConflict when the
	// transaction id is already recorded.
	Create(ctx context.Context, o *domain.Order) error
	// GetByTransactionID returns nil, nil when no order carries txID.
	GetByTransactionID(ctx context.Context, txID string) (*domain.Order, error)
	ListByOwner(ctx context.Context, owner string) ([]*domain.Order, error)
}
