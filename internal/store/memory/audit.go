package memory

import (
	"context"
	"sort"

	"bistro-boss/backend/internal/audit/domain"
)

type AuditRepository struct {
	s *Store
}

func (r *AuditRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *a
	r.s.audit = append(r.s.audit, &c)
	return nil
}

// ListRecent returns at most limit entries, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.AuditLog, 0, len(r.s.audit))
	for _, a := range r.s.audit {
		c := *a
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
