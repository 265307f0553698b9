package repository

import (
	"context"
	"time"

	"bistro-boss/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Create inserts the user. Returns db.ErrConflict when the email is already registered.
	Create(ctx context.Context, u *domain.User) error
	// SetRole updates the role of the user with id. Returns false if no such user exists.
	SetRole(ctx context.Context, id string, role domain.Role, updatedAt time.Time) (bool, error)
}
