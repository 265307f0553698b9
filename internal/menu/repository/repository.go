package repository

import (
	"context"

	"bistro-boss/backend/internal/menu/domain"
)

// Repository defines persistence for the menu catalog.
type Repository interface {
	List(ctx context.Context) ([]*domain.Item, error)
	// GetByID returns nil, nil when no item has id.
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	Create(ctx context.Context, item *domain.Item) error
	Count(ctx context.Context) (int64, error)
}
