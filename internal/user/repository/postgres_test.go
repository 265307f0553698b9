package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"bistro-boss/backend/internal/db"
	"bistro-boss/backend/internal/user/domain"
)

var userCols = []string{"id", "email", "name", "role", "created_at", "updated_at"}

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewPostgresRepository(conn), mock
}

func TestPostgresRepository_GetByEmail(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "a@x.com", "Alice", "admin", now, now))

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u == nil || u.ID != "u1" || u.Role != domain.RoleAdmin || u.Name != "Alice" {
		t.Errorf("GetByEmail = %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPostgresRepository_GetByEmailNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("ghost@x.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	u, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u != nil {
		t.Errorf("GetByEmail missing row = %+v, want nil", u)
	}
}

func TestPostgresRepository_GetByIDError(t *testing.T) {
	repo, mock := newMock(t)
	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).WithArgs("u1").WillReturnError(boom)

	if _, err := repo.GetByID(context.Background(), "u1"); !errors.Is(err, boom) {
		t.Errorf("GetByID: want %v, got %v", boom, err)
	}
}

func TestPostgresRepository_List(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users ORDER BY created_at, id`)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u1", "a@x.com", "", "customer", now, now).
			AddRow("u2", "b@x.com", "Bob", "admin", now, now))

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 || users[1].Email != "b@x.com" {
		t.Errorf("List = %+v", users)
	}
}

func TestPostgresRepository_CreateConflict(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs("u1", "a@x.com", sqlmock.AnyArg(), "customer", now, now).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &domain.User{ID: "u1", Email: "a@x.com", Role: domain.RoleCustomer, CreatedAt: now, UpdatedAt: now})
	if !errors.Is(err, db.ErrConflict) {
		t.Errorf("Create duplicate: want db.ErrConflict, got %v", err)
	}
}

func TestPostgresRepository_SetRole(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET role = $2`)).
		WithArgs("u1", "admin", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET role = $2`)).
		WithArgs("missing", "admin", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.SetRole(context.Background(), "u1", domain.RoleAdmin, now)
	if err != nil || !ok {
		t.Errorf("SetRole existing = %v, %v", ok, err)
	}
	ok, err = repo.SetRole(context.Background(), "missing", domain.RoleAdmin, now)
	if err != nil || ok {
		t.Errorf("SetRole missing = %v, %v", ok, err)
	}
}
