package memory

import (
	"context"
	"sort"

	"bistro-boss/backend/internal/db"
	"bistro-boss/backend/internal/order/domain"
)

type OrderRepository struct {
	s *Store
}

// Create returns db.ErrConflict when the id or transaction id is already recorded.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orders[o.ID]; ok {
		return db.ErrConflict
	}
	if _, ok := r.s.orderByTx[o.TransactionID]; ok {
		return db.ErrConflict
	}
	r.s.orders[o.ID] = cloneOrder(o)
	r.s.orderByTx[o.TransactionID] = o.ID
	return nil
}

func (r *OrderRepository) GetByTransactionID(ctx context.Context, txID string) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.orderByTx[txID]
	if !ok {
		return nil, nil
	}
	return cloneOrder(r.s.orders[id]), nil
}

// ListByOwner returns owner's orders newest first.
func (r *OrderRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.Order{}
	for _, o := range r.s.orders {
		if o.OwnerEmail == owner {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	if o == nil {
		return nil
	}
	c := *o
	c.CartItemIDs = append([]string{}, o.CartItemIDs...)
	c.MenuItemIDs = append([]string{}, o.MenuItemIDs...)
	return &c
}
