package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	analyticsdomain "bistro-boss/backend/internal/analytics/domain"
	analyticshandler "bistro-boss/backend/internal/analytics/handler"
	cartdomain "bistro-boss/backend/internal/cart/domain"
	carthandler "bistro-boss/backend/internal/cart/handler"
	cartservice "bistro-boss/backend/internal/cart/service"
	healthhandler "bistro-boss/backend/internal/health/handler"
	menuhandler "bistro-boss/backend/internal/menu/handler"
	"bistro-boss/backend/internal/metrics"
	orderdomain "bistro-boss/backend/internal/order/domain"
	orderhandler "bistro-boss/backend/internal/order/handler"
	orderservice "bistro-boss/backend/internal/order/service"
	paymenthandler "bistro-boss/backend/internal/payment/handler"
	"bistro-boss/backend/internal/policy/engine"
	reviewhandler "bistro-boss/backend/internal/review/handler"
	"bistro-boss/backend/internal/security"
	"bistro-boss/backend/internal/store/memory"
	userdomain "bistro-boss/backend/internal/user/domain"
	userhandler "bistro-boss/backend/internal/user/handler"
	userservice "bistro-boss/backend/internal/user/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// countingUsers counts every user lookup made by the IsAdmin gate.
type countingUsers struct {
	inner *memory.UserRepository
	calls atomic.Int64
}

func (c *countingUsers) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	c.calls.Add(1)
	return c.inner.GetByEmail(ctx, email)
}

type fakeCarts struct {
	calls  atomic.Int64
	owners []string
}

func (f *fakeCarts) List(_ context.Context, owner string) ([]*cartdomain.Entry, error) {
	f.calls.Add(1)
	f.owners = append(f.owners, owner)
	return []*cartdomain.Entry{}, nil
}

func (f *fakeCarts) Add(_ context.Context, owner string, in cartservice.AddInput) (*cartdomain.Entry, error) {
	f.calls.Add(1)
	return &cartdomain.Entry{ID: "c1", OwnerEmail: owner, MenuItemID: in.MenuItemID}, nil
}

func (f *fakeCarts) Remove(context.Context, string, string) (int64, error) {
	f.calls.Add(1)
	return 1, nil
}

type fakeOrders struct {
	calls atomic.Int64
}

func (f *fakeOrders) Finalize(context.Context, orderservice.FinalizeInput) (*orderservice.FinalizeResult, error) {
	f.calls.Add(1)
	return &orderservice.FinalizeResult{OrderID: "o1"}, nil
}

func (f *fakeOrders) List(context.Context, string) ([]*orderdomain.Order, error) {
	f.calls.Add(1)
	return []*orderdomain.Order{}, nil
}

type fakeStats struct {
	calls atomic.Int64
}

func (f *fakeStats) RevenueSummary(context.Context) (*analyticsdomain.RevenueSummary, error) {
	f.calls.Add(1)
	return &analyticsdomain.RevenueSummary{}, nil
}

func (f *fakeStats) CategoryBreakdown(context.Context) ([]analyticsdomain.CategoryTotal, error) {
	f.calls.Add(1)
	return []analyticsdomain.CategoryTotal{}, nil
}

type fixture struct {
	router *gin.Engine
	tokens *security.TokenProvider
	users  *countingUsers
	carts  *fakeCarts
	orders *fakeOrders
	stats  *fakeStats
}

func newFixture(t *testing.T, opts ...func(*Deps)) *fixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	now := time.Now().UTC()
	for _, u := range []*userdomain.User{
		{ID: "u-admin", Email: "admin@x.com", Role: userdomain.RoleAdmin, CreatedAt: now, UpdatedAt: now},
		{ID: "u-a", Email: "a@x.com", Role: userdomain.RoleCustomer, CreatedAt: now, UpdatedAt: now},
		{ID: "u-b", Email: "b@x.com", Role: userdomain.RoleCustomer, CreatedAt: now, UpdatedAt: now},
	} {
		if err := store.Users().Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	authz, err := engine.NewOPAEvaluator(ctx, "")
	if err != nil {
		t.Fatalf("NewOPAEvaluator: %v", err)
	}

	f := &fixture{
		tokens: tokens,
		users:  &countingUsers{inner: store.Users()},
		carts:  &fakeCarts{},
		orders: &fakeOrders{},
		stats:  &fakeStats{},
	}
	deps := Deps{
		Tokens:    tokens,
		Users:     f.users,
		Authz:     authz,
		Metrics:   metrics.New(),
		Health:    healthhandler.NewHandler(nil, authz),
		User:      userhandler.NewHandler(userservice.NewUserService(store.Users(), authz, nil), tokens),
		Menu:      menuhandler.NewHandler(store.Menu()),
		Review:    reviewhandler.NewHandler(store.Reviews()),
		Cart:      carthandler.NewHandler(f.carts),
		Payment:   paymenthandler.NewHandler(nil, "usd"),
		Order:     orderhandler.NewHandler(f.orders),
		Analytics: analyticshandler.NewHandler(f.stats),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	f.router = NewRouter(deps)
	return f
}

func (f *fixture) token(t *testing.T, email string) string {
	t.Helper()
	tok, _, err := f.tokens.Issue(map[string]any{"email": email})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return "Bearer " + tok
}

func (f *fixture) do(method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) storeCalls() int64 {
	return f.users.calls.Load() + f.carts.calls.Load() + f.orders.calls.Load() + f.stats.calls.Load()
}

func TestRouter_GuardedEndpointsRequireCredential(t *testing.T) {
	guarded := []struct{ method, path, body string }{
		{http.MethodGet, "/users", ""},
		{http.MethodGet, "/users/admin/a@x.com", ""},
		{http.MethodPatch, "/users/admin/u-a", ""},
		{http.MethodGet, "/carts?email=a@x.com", ""},
		{http.MethodPost, "/carts", `{"menuItemId":"m1","price":1}`},
		{http.MethodDelete, "/carts/c1", ""},
		{http.MethodPost, "/create-payment-intent", `{"price":10}`},
		{http.MethodPost, "/payments", `{"transactionId":"tx","price":10}`},
		{http.MethodGet, "/payments/a@x.com", ""},
		{http.MethodGet, "/admin-stats", ""},
		{http.MethodGet, "/order-stats", ""},
	}
	credentials := []struct{ name, header string }{
		{"absent", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"three parts", "Bearer a b"},
	}

	f := newFixture(t)
	for _, ep := range guarded {
		for _, cred := range credentials {
			t.Run(ep.method+" "+ep.path+" "+cred.name, func(t *testing.T) {
				rec := f.do(ep.method, ep.path, cred.header, ep.body)
				if rec.Code != http.StatusUnauthorized {
					t.Errorf("status = %d, want 401", rec.Code)
				}
				if !strings.Contains(rec.Body.String(), `"error":true`) {
					t.Errorf("body = %s", rec.Body.String())
				}
			})
		}
	}
	if n := f.storeCalls(); n != 0 {
		t.Errorf("store touched %d times without a credential", n)
	}
}

func TestRouter_OtherOwnersDataIsForbidden(t *testing.T) {
	f := newFixture(t)
	auth := f.token(t, "a@x.com")

	for _, path := range []string{"/carts?email=b@x.com", "/carts", "/payments/b@x.com", "/users/admin/b@x.com"} {
		rec := f.do(http.MethodGet, path, auth, "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("GET %s: status = %d, want 403", path, rec.Code)
		}
	}
	if n := f.storeCalls(); n != 0 {
		t.Errorf("store touched %d times on forbidden reads", n)
	}

	rec := f.do(http.MethodGet, "/carts?email=A@X.com", auth, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("own cart: status = %d, want 200", rec.Code)
	}
	if len(f.carts.owners) != 1 || f.carts.owners[0] != "a@x.com" {
		t.Errorf("cart listed for %v, want [a@x.com]", f.carts.owners)
	}
}

func TestRouter_AdminEndpoints(t *testing.T) {
	adminOnly := []struct{ method, path string }{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/admin-stats"},
		{http.MethodGet, "/order-stats"},
		{http.MethodPatch, "/users/admin/u-b"},
	}
	testCases := []struct {
		name       string
		email      string
		wantStatus int
	}{
		{"customer", "a@x.com", http.StatusForbidden},
		{"unknown identity", "ghost@x.com", http.StatusForbidden},
		{"admin", "admin@x.com", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			auth := f.token(t, tc.email)
			for _, ep := range adminOnly {
				rec := f.do(ep.method, ep.path, auth, "")
				if rec.Code != tc.wantStatus {
					t.Errorf("%s %s: status = %d, want %d", ep.method, ep.path, rec.Code, tc.wantStatus)
				}
			}
			if tc.wantStatus == http.StatusForbidden && f.stats.calls.Load() != 0 {
				t.Errorf("aggregator called %d times for non-admin", f.stats.calls.Load())
			}
		})
	}
}

func TestRouter_PublicEndpoints(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/", "/health", "/menu", "/reviews", "/metrics"} {
		rec := f.do(http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rec.Code)
		}
	}

	rec := f.do(http.MethodPost, "/jwt", "", `{"email":"new@x.com"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"token"`) {
		t.Errorf("POST /jwt: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AuthenticatedWrites(t *testing.T) {
	f := newFixture(t)
	auth := f.token(t, "a@x.com")

	if rec := f.do(http.MethodPost, "/payments", auth, `{"transactionId":"tx-1","price":25.5,"cartItems":["c1"]}`); rec.Code != http.StatusOK {
		t.Errorf("POST /payments: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodPost, "/create-payment-intent", auth, `{"price":10}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("POST /create-payment-intent without gateway: status = %d, want 503", rec.Code)
	}
	if f.orders.calls.Load() != 1 {
		t.Errorf("finalizer calls = %d, want 1", f.orders.calls.Load())
	}
}

func preflight(r http.Handler, path, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, path, nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/carts", "/create-payment-intent", "/users/admin/u-a"} {
		rec := preflight(f.router, path, "http://localhost:5173")
		if rec.Code != http.StatusNoContent {
			t.Errorf("OPTIONS %s: status = %d, want 204", path, rec.Code)
		}
		h := rec.Header()
		if got := h.Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("OPTIONS %s: Allow-Origin = %q, want *", path, got)
		}
		if got := h.Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) || !strings.Contains(got, http.MethodPatch) {
			t.Errorf("OPTIONS %s: Allow-Methods = %q", path, got)
		}
		if got := strings.ToLower(h.Get("Access-Control-Allow-Headers")); !strings.Contains(got, "authorization") || !strings.Contains(got, "content-type") {
			t.Errorf("OPTIONS %s: Allow-Headers = %q", path, got)
		}
	}
	if n := f.storeCalls(); n != 0 {
		t.Errorf("preflight reached the store %d times", n)
	}
}

func TestRouter_CORSSimpleRequest(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/menu", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestRouter_CORSRestrictedOrigins(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.CORSOrigins = []string{"https://bistro.example"} })

	rec := preflight(f.router, "/carts", "https://bistro.example")
	if rec.Code != http.StatusNoContent {
		t.Errorf("allowed origin: status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://bistro.example" {
		t.Errorf("allowed origin: Allow-Origin = %q", got)
	}

	rec = preflight(f.router, "/carts", "https://evil.example")
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign origin: status = %d, want 403", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin: Allow-Origin = %q, want none", got)
	}
}
