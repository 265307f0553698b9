package service

import (
	"context"
	"errors"
	"testing"

	"bistro-boss/backend/internal/cart/domain"
)

// mockCartRepo implements CartRepo over a slice.
type mockCartRepo struct {
	entries   []*domain.Entry
	createErr error
}

func (m *mockCartRepo) ListByOwner(ctx context.Context, owner string) ([]*domain.Entry, error) {
	var out []*domain.Entry
	for _, e := range m.entries {
		if e.OwnerEmail == owner {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockCartRepo) Create(ctx context.Context, e *domain.Entry) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockCartRepo) DeleteOwned(ctx context.Context, owner string, ids []string) (int64, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var kept []*domain.Entry
	var n int64
	for _, e := range m.entries {
		if e.OwnerEmail == owner && want[e.ID] {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return n, nil
}

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) LogEvent(ctx context.Context, actor, action, resource string, metadata map[string]any) {
	r.actions = append(r.actions, action)
}

func TestCartService_AddForcesCallerAsOwner(t *testing.T) {
	repo := &mockCartRepo{}
	svc := NewCartService(repo, nil)

	e, err := svc.Add(context.Background(), " A@x.com", AddInput{MenuItemID: "m1", Name: "Soup", Price: 7.25})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if e.OwnerEmail != "a@x.com" {
		t.Errorf("owner = %q, want a@x.com", e.OwnerEmail)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("id and created_at must be assigned")
	}
	if len(repo.entries) != 1 {
		t.Errorf("entries = %d, want 1", len(repo.entries))
	}
}

func TestCartService_AddValidation(t *testing.T) {
	svc := NewCartService(&mockCartRepo{}, nil)
	if _, err := svc.Add(context.Background(), "a@x.com", AddInput{Price: 3}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("missing menu item: want ErrInvalidEntry, got %v", err)
	}
	if _, err := svc.Add(context.Background(), "a@x.com", AddInput{MenuItemID: "m1", Price: -1}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("negative price: want ErrInvalidEntry, got %v", err)
	}
	if _, err := svc.Add(context.Background(), "", AddInput{MenuItemID: "m1"}); !errors.Is(err, ErrNoOwner) {
		t.Errorf("no owner: want ErrNoOwner, got %v", err)
	}
}

func TestCartService_ListOnlyOwn(t *testing.T) {
	repo := &mockCartRepo{entries: []*domain.Entry{
		{ID: "c1", OwnerEmail: "a@x.com", MenuItemID: "m1"},
		{ID: "b1", OwnerEmail: "b@x.com", MenuItemID: "m1"},
	}}
	svc := NewCartService(repo, nil)

	list, err := svc.List(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != "c1" {
		t.Errorf("List = %+v", list)
	}

	empty, err := svc.List(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("List for empty cart = %v, want empty non-nil slice", empty)
	}
}

func TestCartService_RemoveOnlyOwned(t *testing.T) {
	repo := &mockCartRepo{entries: []*domain.Entry{
		{ID: "c1", OwnerEmail: "a@x.com", MenuItemID: "m1"},
		{ID: "b1", OwnerEmail: "b@x.com", MenuItemID: "m1"},
	}}
	rec := &recordingAudit{}
	svc := NewCartService(repo, rec)

	n, err := svc.Remove(context.Background(), "a@x.com", "b1")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n != 0 {
		t.Errorf("removing another identity's entry deleted %d, want 0", n)
	}
	if len(repo.entries) != 2 {
		t.Errorf("entries = %d, want 2", len(repo.entries))
	}

	n, err = svc.Remove(context.Background(), "a@x.com", "c1")
	if err != nil || n != 1 {
		t.Errorf("Remove own = %d, %v; want 1", n, err)
	}
	if len(rec.actions) != 1 {
		t.Errorf("audit events = %v, want one", rec.actions)
	}
}

func TestCartService_RepoErrorIsWrapped(t *testing.T) {
	boom := errors.New("db down")
	svc := NewCartService(&mockCartRepo{createErr: boom}, nil)
	if _, err := svc.Add(context.Background(), "a@x.com", AddInput{MenuItemID: "m1"}); !errors.Is(err, boom) {
		t.Errorf("want wrapped boom, got %v", err)
	}
}
