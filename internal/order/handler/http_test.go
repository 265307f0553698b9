package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bistro-boss/backend/internal/order/domain"
	"bistro-boss/backend/internal/order/service"
	"bistro-boss/backend/internal/platform/rbac"
	"bistro-boss/backend/internal/security"
	"bistro-boss/backend/internal/server/httperr"
)

type mockFinalizer struct {
	res     *service.FinalizeResult
	err     error
	lastIn  service.FinalizeInput
	orders  []*domain.Order
	listFor string
}

func (m *mockFinalizer) Finalize(ctx context.Context, in service.FinalizeInput) (*service.FinalizeResult, error) {
	m.lastIn = in
	return m.res, m.err
}

func (m *mockFinalizer) List(ctx context.Context, owner string) ([]*domain.Order, error) {
	m.listFor = owner
	return m.orders, nil
}

func newRouter(h *Handler, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(httperr.Middleware())
	r.Use(func(c *gin.Context) {
		if email != "" {
			ctx := rbac.WithClaim(c.Request.Context(), &security.IdentityClaim{Email: email})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	r.POST("/payments", h.Finalize)
	r.GET("/payments/:email", h.List)
	return r
}

func TestFinalize_UsesCallerAsOwner(t *testing.T) {
	svc := &mockFinalizer{res: &service.FinalizeResult{OrderID: "o1", Requested: 2, Removed: 2}}
	r := newRouter(NewHandler(svc), "a@x.com")

	body := `{"email":"b@x.com","transactionId":"pi_1","price":25.5,"cartItems":["c1","c2"],"menuItems":["m1","m2"]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if svc.lastIn.OwnerEmail != "a@x.com" {
		t.Errorf("owner = %q, want caller", svc.lastIn.OwnerEmail)
	}
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["orderId"] != "o1" || got["removedCount"] != float64(2) {
		t.Errorf("body = %v", got)
	}
	if _, ok := got["warning"]; ok {
		t.Error("warning must be omitted on full success")
	}
}

func TestFinalize_PartialIsSuccessWithWarning(t *testing.T) {
	svc := &mockFinalizer{
		res: &service.FinalizeResult{OrderID: "o1", Requested: 2, Removed: 1, Partial: true},
		err: fmt.Errorf("%w: removed 1 of 2", service.ErrPartialFailure),
	}
	r := newRouter(NewHandler(svc), "a@x.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"transactionId":"pi_1","price":5}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got finalizeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Warning == "" || got.RemovedCount != 1 {
		t.Errorf("body = %+v", got)
	}
}

func TestFinalize_ErrorStatus(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want int
	}{
		{"payment", service.ErrPaymentNotAuthorized, http.StatusPaymentRequired},
		{"invalid", service.ErrInvalidOrder, http.StatusBadRequest},
		{"duplicate", service.ErrDuplicateTransaction, http.StatusConflict},
		{"store", fmt.Errorf("record order: %w", context.DeadlineExceeded), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(NewHandler(&mockFinalizer{err: tc.err}), "a@x.com")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{"transactionId":"pi_1","price":5}`)))
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestFinalize_RequiresClaim(t *testing.T) {
	svc := &mockFinalizer{}
	r := newRouter(NewHandler(svc), "")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(`{}`)))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestList_ScopedToCaller(t *testing.T) {
	svc := &mockFinalizer{orders: []*domain.Order{{ID: "o1", OwnerEmail: "a@x.com"}}}
	r := newRouter(NewHandler(svc), "a@x.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payments/a@x.com", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.listFor != "a@x.com" {
		t.Errorf("listed for %q", svc.listFor)
	}
}
