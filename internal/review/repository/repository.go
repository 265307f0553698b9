package repository

import (
	"context"

	"bistro-boss/backend/internal/review/domain"
)

// Repository defines persistence for reviews.
type Repository interface {
	List(ctx context.Context) ([]*domain.Review, error)
	Create(ctx context.Context, r *domain.Review) error
	Count(ctx context.Context) (int64, error)
}
