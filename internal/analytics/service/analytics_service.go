package service

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"bistro-boss/backend/internal/analytics/domain"
	"bistro-boss/backend/internal/analytics/repository"
)

var tracer = otel.Tracer("bistro-boss/analytics")

// AnalyticsService computes the admin dashboard aggregates. It never writes.
type AnalyticsService struct {
	repo repository.Repository
}

// NewAnalyticsService returns an AnalyticsService over repo.
func NewAnalyticsService(repo repository.Repository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// RevenueSummary returns approximate entity counts and the exact order revenue.
// Any store failure fails the whole summary; no partial figures are returned.
func (s *AnalyticsService) RevenueSummary(ctx context.Context) (*domain.RevenueSummary, error) {
	ctx, span := tracer.Start(ctx, "analytics.revenue_summary")
	defer span.End()

	var out domain.RevenueSummary
	counts := []struct {
		collection string
		dst        *int64
	}{
		{domain.CollectionUsers, &out.Users},
		{domain.CollectionMenuItems, &out.Products},
		{domain.CollectionOrders, &out.Orders},
	}
	for _, c := range counts {
		n, err := s.repo.EstimatedCount(ctx, c.collection)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "count failed")
			return nil, fmt.Errorf("count %s: %w", c.collection, err)
		}
		*c.dst = max(n, 0)
	}
	revenue, err := s.repo.Revenue(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "revenue failed")
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	out.Revenue = domain.Round2(revenue)
	span.SetAttributes(attribute.Int64("analytics.orders", out.Orders))
	return &out, nil
}

// CategoryBreakdown returns per-category line counts and totals rounded to two decimals, sorted by category.
func (s *AnalyticsService) CategoryBreakdown(ctx context.Context) ([]domain.CategoryTotal, error) {
	ctx, span := tracer.Start(ctx, "analytics.category_breakdown")
	defer span.End()

	totals, err := s.repo.CategoryTotals(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "category totals failed")
		return nil, fmt.Errorf("category totals: %w", err)
	}
	out := make([]domain.CategoryTotal, 0, len(totals))
	for _, t := range totals {
		t.Total = domain.Round2(t.Total)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	span.SetAttributes(attribute.Int("analytics.categories", len(out)))
	return out, nil
}
