package memory

import (
	"context"
	"sort"

	"bistro-boss/backend/internal/cart/domain"
	"bistro-boss/backend/internal/db"
)

type CartRepository struct {
	s *Store
}

// ListByOwner returns owner's entries oldest first.
func (r *CartRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Entry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.Entry{}
	for _, e := range r.s.carts {
		if e.OwnerEmail == owner {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CartRepository) Create(ctx context.Context, e *domain.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.carts[e.ID]; ok {
		return db.ErrConflict
	}
	c := *e
	r.s.carts[e.ID] = &c
	return nil
}

// DeleteOwned removes the entries among ids that belong to owner. Others are left in place.
func (r *CartRepository) DeleteOwned(ctx context.Context, owner string, ids []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if e, ok := r.s.carts[id]; ok && e.OwnerEmail == owner {
			delete(r.s.carts, id)
			n++
		}
	}
	return n, nil
}

// ListOwnedIDs returns the ids that exist and belong to owner, in input order without repeats.
func (r *CartRepository) ListOwnedIDs(ctx context.Context, owner string, ids []string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []string{}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if e, ok := r.s.carts[id]; ok && e.OwnerEmail == owner {
			out = append(out, id)
		}
	}
	return out, nil
}
