package repository

import (
	"context"
	"errors"

	"bistro-boss/backend/internal/analytics/domain"
)

// ErrUnknownCollection is returned by EstimatedCount for a name outside the fixed set.
var ErrUnknownCollection = errors.New("unknown collection")

// Repository defines the read-only aggregate queries behind the admin stats.
type Repository interface {
	// Revenue returns the exact sum of order prices; 0 when there are no orders.
	Revenue(ctx context.Context) (float64, error)
	// EstimatedCount returns an approximate row count for one of the domain.Collection* names.
	EstimatedCount(ctx context.Context, collection string) (int64, error)
	// CategoryTotals joins ordered menu item references against the catalog, grouped by category.
	// References to deleted menu items are dropped.
	CategoryTotals(ctx context.Context) ([]domain.CategoryTotal, error)
}
