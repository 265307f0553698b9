package repository

import (
	"context"

	"bistro-boss/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	// ListRecent returns the newest entries first, at most limit of them.
	ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}
