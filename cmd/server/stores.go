package main

import (
	"context"
	"database/sql"

	analyticsrepo "bistro-boss/backend/internal/analytics/repository"
	auditrepo "bistro-boss/backend/internal/audit/repository"
	cartrepo "bistro-boss/backend/internal/cart/repository"
	"bistro-boss/backend/internal/db"
	menurepo "bistro-boss/backend/internal/menu/repository"
	orderrepo "bistro-boss/backend/internal/order/repository"
	reviewrepo "bistro-boss/backend/internal/review/repository"
	"bistro-boss/backend/internal/store/memory"
	userrepo "bistro-boss/backend/internal/user/repository"
)

// stores is the repository set shared by every service. conn is nil on the in-memory store.
type stores struct {
	conn      *sql.DB
	users     userrepo.Repository
	menu      menurepo.Repository
	reviews   reviewrepo.Repository
	carts     cartrepo.Repository
	orders    orderrepo.Repository
	audit     auditrepo.Repository
	analytics analyticsrepo.Repository
}

// openStores connects to Postgres when dsn is set, otherwise returns a fresh in-memory store.
func openStores(ctx context.Context, dsn string) (*stores, error) {
	if dsn == "" {
		m := memory.New()
		return &stores{
			users:     m.Users(),
			menu:      m.Menu(),
			reviews:   m.Reviews(),
			carts:     m.Carts(),
			orders:    m.Orders(),
			audit:     m.Audit(),
			analytics: m.Analytics(),
		}, nil
	}
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &stores{
		conn:      conn,
		users:     userrepo.NewPostgresRepository(conn),
		menu:      menurepo.NewPostgresRepository(conn),
		reviews:   reviewrepo.NewPostgresRepository(conn),
		carts:     cartrepo.NewPostgresRepository(conn),
		orders:    orderrepo.NewPostgresRepository(conn),
		audit:     auditrepo.NewPostgresRepository(conn),
		analytics: analyticsrepo.NewPostgresRepository(conn),
	}, nil
}

func (s *stores) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
