package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"bistro-boss/backend/internal/analytics/domain"
	"bistro-boss/backend/internal/server/httperr"
)

type mockAggregator struct {
	summary *domain.RevenueSummary
	totals  []domain.CategoryTotal
	err     error
}

func (m *mockAggregator) RevenueSummary(context.Context) (*domain.RevenueSummary, error) {
	return m.summary, m.err
}

func (m *mockAggregator) CategoryBreakdown(context.Context) ([]domain.CategoryTotal, error) {
	return m.totals, m.err
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(httperr.Middleware())
	r.GET("/admin-stats", h.AdminStats)
	r.GET("/order-stats", h.OrderStats)
	return r
}

func TestAdminStats(t *testing.T) {
	svc := &mockAggregator{summary: &domain.RevenueSummary{Revenue: 25.5, Users: 3, Products: 6, Orders: 2}}
	r := newRouter(NewHandler(svc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got map[string]float64
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]float64{"revenue": 25.5, "users": 3, "menuItems": 6, "orders": 2}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestOrderStats(t *testing.T) {
	svc := &mockAggregator{totals: []domain.CategoryTotal{{Category: "dessert", Count: 3, Total: 10}}}
	r := newRouter(NewHandler(svc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/order-stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0]["category"] != "dessert" || got[0]["quantity"] != float64(3) || got[0]["revenue"] != float64(10) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestStats_StoreFailure(t *testing.T) {
	r := newRouter(NewHandler(&mockAggregator{err: errors.New("db down")}))

	for _, path := range []string{"/admin-stats", "/order-stats"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusInternalServerError {
			t.Errorf("GET %s: status = %d, want 500", path, w.Code)
		}
	}
}
