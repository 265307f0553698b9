package repository

import (
	"context"
	"database/sql"
	"errors"

	"bistro-boss/backend/internal/db"
	"bistro-boss/backend/internal/menu/domain"
)

const itemColumns = `id, name, COALESCE(recipe, ''), COALESCE(image, ''), category, price::float8, created_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a menu repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns the whole catalog grouped by category.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM menu_items ORDER BY category, name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// GetByID returns the item for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM menu_items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

// Create inserts the item. The item must have ID set. Returns db.ErrConflict for a duplicate id.
func (r *PostgresRepository) Create(ctx context.Context, item *domain.Item) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (id, name, recipe, image, category, price, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.ID, item.Name, item.Recipe, item.Image, item.Category, item.Price, item.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		return db.ErrConflict
	}
	return err
}

// Count returns the exact number of catalog items.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(s rowScanner) (*domain.Item, error) {
	var i domain.Item
	if err := s.Scan(&i.ID, &i.Name, &i.Recipe, &i.Image, &i.Category, &i.Price, &i.CreatedAt); err != nil {
		return nil, err
	}
	return &i, nil
}
