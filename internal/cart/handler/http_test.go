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

	"bistro-boss/backend/internal/cart/domain"
	"bistro-boss/backend/internal/cart/service"
	"bistro-boss/backend/internal/platform/rbac"
	"bistro-boss/backend/internal/security"
	"bistro-boss/backend/internal/server/httperr"
)

type mockCartService struct {
	entries   []*domain.Entry
	addErr    error
	removed   int64
	lastOwner string
	lastAdd   service.AddInput
	lastID    string
}

func (m *mockCartService) List(_ context.Context, owner string) ([]*domain.Entry, error) {
	m.lastOwner = owner
	return m.entries, nil
}

func (m *mockCartService) Add(_ context.Context, owner string, in service.AddInput) (*domain.Entry, error) {
	m.lastOwner, m.lastAdd = owner, in
	if m.addErr != nil {
		return nil, m.addErr
	}
	return &domain.Entry{ID: "c-new", OwnerEmail: owner, MenuItemID: in.MenuItemID}, nil
}

func (m *mockCartService) Remove(_ context.Context, owner, id string) (int64, error) {
	m.lastOwner, m.lastID = owner, id
	return m.removed, nil
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
	r.GET("/carts", h.List)
	r.POST("/carts", h.Add)
	r.DELETE("/carts/:id", h.Remove)
	return r
}

func TestList_ScopedToCaller(t *testing.T) {
	svc := &mockCartService{entries: []*domain.Entry{{ID: "c1", OwnerEmail: "a@x.com"}}}
	r := newRouter(NewHandler(svc), "a@x.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/carts?email=a@x.com", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastOwner != "a@x.com" {
		t.Errorf("owner = %q", svc.lastOwner)
	}
	var got []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0]["_id"] != "c1" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAdd_IgnoresClientEmail(t *testing.T) {
	svc := &mockCartService{}
	r := newRouter(NewHandler(svc), "a@x.com")

	body := `{"email":"b@x.com","menuItemId":"m1","name":"Soup","price":6.75}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if svc.lastOwner != "a@x.com" || svc.lastAdd.MenuItemID != "m1" || svc.lastAdd.Price != 6.75 {
		t.Errorf("owner %q, input %+v", svc.lastOwner, svc.lastAdd)
	}
	if !strings.Contains(w.Body.String(), `"insertedId":"c-new"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAdd_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{"malformed body", `{"menuItemId":`, nil, http.StatusBadRequest},
		{"invalid entry", `{"menuItemId":"","price":1}`, fmt.Errorf("%w: menu item id is required", service.ErrInvalidEntry), http.StatusBadRequest},
		{"store failure", `{"menuItemId":"m1","price":1}`, fmt.Errorf("insert: boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockCartService{addErr: tc.svcErr}
			r := newRouter(NewHandler(svc), "a@x.com")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(tc.body)))

			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestRemove_ReportsDeletedCount(t *testing.T) {
	testCases := []struct {
		name    string
		removed int64
	}{
		{"owned", 1},
		{"not owned or missing", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockCartService{removed: tc.removed}
			r := newRouter(NewHandler(svc), "a@x.com")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/carts/c9", nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if svc.lastID != "c9" || svc.lastOwner != "a@x.com" {
				t.Errorf("removed %q for %q", svc.lastID, svc.lastOwner)
			}
			want := fmt.Sprintf(`"deletedCount":%d`, tc.removed)
			if !strings.Contains(w.Body.String(), want) {
				t.Errorf("body = %s, want %s", w.Body.String(), want)
			}
		})
	}
}

func TestHandlers_RequireClaim(t *testing.T) {
	r := newRouter(NewHandler(&mockCartService{}), "")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/carts"},
		{http.MethodPost, "/carts"},
		{http.MethodDelete, "/carts/c1"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`)))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tc.method, tc.path, w.Code)
		}
	}
}
