package repository

import (
	"context"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"bistro-boss/backend/internal/cart/domain"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewPostgresRepository(conn), mock
}

func TestPostgresRepository_ListByOwner(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM cart_entries WHERE owner_email = $1`)).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_email", "menu_item_id", "name", "image", "price", "created_at"}).
			AddRow("c1", "a@x.com", "m1", "Soup", "soup.jpg", 7.25, now))

	list, err := repo.ListByOwner(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 1 || list[0].MenuItemID != "m1" || list[0].OwnerEmail != "a@x.com" {
		t.Errorf("ListByOwner = %+v", list)
	}
}

func TestPostgresRepository_Create(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO cart_entries`)).
		WithArgs("c1", "a@x.com", "m1", "Soup", "", 7.25, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &domain.Entry{ID: "c1", OwnerEmail: "a@x.com", MenuItemID: "m1", Name: "Soup", Price: 7.25, CreatedAt: now})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
}

func TestPostgresRepository_DeleteOwnedScopesByOwner(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_entries WHERE owner_email = $1 AND id IN ($2, $3)`)).
		WithArgs("a@x.com", "c1", "c3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteOwned(context.Background(), "a@x.com", []string{"c1", "c3"})
	if err != nil {
		t.Fatalf("DeleteOwned: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostgresRepository_DeleteOwnedEmpty(t *testing.T) {
	repo, mock := newMock(t)
	n, err := repo.DeleteOwned(context.Background(), "a@x.com", nil)
	if err != nil || n != 0 {
		t.Errorf("DeleteOwned(nil) = %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no statement expected: %v", err)
	}
}

func TestPostgresRepository_ListOwnedIDsPreservesOrder(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM cart_entries WHERE owner_email = $1 AND id IN ($2, $3, $4, $5)`)).
		WithArgs("a@x.com", "c2", "b1", "c1", "c2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1").AddRow("c2"))

	got, err := repo.ListOwnedIDs(context.Background(), "a@x.com", []string{"c2", "b1", "c1", "c2"})
	if err != nil {
		t.Fatalf("ListOwnedIDs: %v", err)
	}
	if want := []string{"c2", "c1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListOwnedIDs = %v, want %v", got, want)
	}
}
