package memory

import (
	"context"
	"sort"

	"bistro-boss/backend/internal/db"
	menudomain "bistro-boss/backend/internal/menu/domain"
	reviewdomain "bistro-boss/backend/internal/review/domain"
)

type MenuRepository struct {
	s *Store
}

// List returns items ordered by category, name and id.
func (r *MenuRepository) List(ctx context.Context) ([]*menudomain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*menudomain.Item, 0, len(r.s.menu))
	for _, item := range r.s.menu {
		c := *item
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *MenuRepository) GetByID(ctx context.Context, id string) (*menudomain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.menu[id]
	if !ok {
		return nil, nil
	}
	c := *item
	return &c, nil
}

func (r *MenuRepository) Create(ctx context.Context, item *menudomain.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.menu[item.ID]; ok {
		return db.ErrConflict
	}
	c := *item
	r.s.menu[item.ID] = &c
	return nil
}

// Delete removes an item from the catalog. Orders keep their references to it.
func (r *MenuRepository) Delete(ctx context.Context, id string) bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.menu[id]
	delete(r.s.menu, id)
	return ok
}

func (r *MenuRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.menu)), nil
}

type ReviewRepository struct {
	s *Store
}

// List returns reviews newest first.
func (r *ReviewRepository) List(ctx context.Context) ([]*reviewdomain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*reviewdomain.Review, 0, len(r.s.reviews))
	for _, rv := range r.s.reviews {
		c := *rv
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ReviewRepository) Create(ctx context.Context, rv *reviewdomain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[rv.ID]; ok {
		return db.ErrConflict
	}
	c := *rv
	r.s.reviews[rv.ID] = &c
	return nil
}

func (r *ReviewRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.reviews)), nil
}
