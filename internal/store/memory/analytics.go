package memory

import (
	"context"
	"math"
	"sort"

	"bistro-boss/backend/internal/analytics/domain"
	"bistro-boss/backend/internal/analytics/repository"
)

type AnalyticsRepository struct {
	s *Store
}

// Revenue sums order prices in cents so the result carries no float accumulation error.
func (r *AnalyticsRepository) Revenue(ctx context.Context) (float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var cents int64
	for _, o := range r.s.orders {
		cents += toCents(o.Price)
	}
	return float64(cents) / 100, nil
}

// EstimatedCount is exact in memory.
func (r *AnalyticsRepository) EstimatedCount(ctx context.Context, collection string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	switch collection {
	case domain.CollectionUsers:
		return int64(len(r.s.users)), nil
	case domain.CollectionMenuItems:
		return int64(len(r.s.menu)), nil
	case domain.CollectionOrders:
		return int64(len(r.s.orders)), nil
	default:
		return 0, repository.ErrUnknownCollection
	}
}

// CategoryTotals joins every ordered menu reference against the current catalog. References to
// items no longer in the catalog are dropped.
func (r *AnalyticsRepository) CategoryTotals(ctx context.Context) ([]domain.CategoryTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	type acc struct {
		count int64
		total float64
	}
	byCategory := map[string]*acc{}
	for _, o := range r.s.orders {
		for _, ref := range o.MenuItemIDs {
			item, ok := r.s.menu[ref]
			if !ok {
				continue
			}
			a := byCategory[item.Category]
			if a == nil {
				a = &acc{}
				byCategory[item.Category] = a
			}
			a.count++
			a.total += item.Price
		}
	}
	out := make([]domain.CategoryTotal, 0, len(byCategory))
	for category, a := range byCategory {
		out = append(out, domain.CategoryTotal{Category: category, Count: a.count, Total: domain.Round2(a.total)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
