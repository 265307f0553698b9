package repository

import (
	"context"
	"database/sql"
	"errors"

	"bistro-boss/backend/internal/analytics/domain"
)

// countable maps collection names to table names. Only these are ever interpolated into SQL.
var countable = map[string]string{
	domain.CollectionUsers:     "users",
	domain.CollectionMenuItems: "menu_items",
	domain.CollectionOrders:    "orders",
}

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an analytics repository over db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Revenue(ctx context.Context) (float64, error) {
	var v float64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(price), 0)::float8 FROM orders`).Scan(&v)
	return v, err
}

// EstimatedCount reads the planner estimate from pg_class. Tables that were never analyzed
// report no estimate, and those fall back to COUNT(*).
func (r *PostgresRepository) EstimatedCount(ctx context.Context, collection string) (int64, error) {
	table, ok := countable[collection]
	if !ok {
		return 0, ErrUnknownCollection
	}
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT reltuples::bigint FROM pg_class WHERE oid = to_regclass($1)`, table,
	).Scan(&n)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if err == nil && n > 0 {
		return n, nil
	}
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

func (r *PostgresRepository) CategoryTotals(ctx context.Context) ([]domain.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.category, COUNT(*), ROUND(SUM(m.price), 2)::float8
		FROM order_menu_items om
		JOIN menu_items m ON m.id = om.menu_item_id
		GROUP BY m.category
		ORDER BY m.category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.CategoryTotal{}
	for rows.Next() {
		var ct domain.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Count, &ct.Total); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}
