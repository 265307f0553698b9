package repository

import (
	"context"

	"bistro-boss/backend/internal/cart/domain"
)

// Repository defines persistence for cart entries. Every mutating or identity-scoped read takes
// the owner so entries of other identities are never touched.
type Repository interface {
	ListByOwner(ctx context.Context, owner string) ([]*domain.Entry, error)
	Create(ctx context.Context, e *domain.Entry) error
	// DeleteOwned deletes the entries among ids owned by owner and returns how many were deleted.
	DeleteOwned(ctx context.Context, owner string, ids []string) (int64, error)
	// ListOwnedIDs returns the subset of ids that currently exist and are owned by owner, in input order.
	ListOwnedIDs(ctx context.Context, owner string, ids []string) ([]string, error)
}
