package repository

import (
	"context"
	"database/sql"

	"bistro-boss/backend/internal/db"
	"bistro-boss/backend/internal/review/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a review repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns all reviews, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(details, ''), rating::float8, created_at FROM reviews ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.Name, &rv.Details, &rv.Rating, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rv)
	}
	return out, rows.Err()
}

// Create inserts the review. The review must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, rv *domain.Review) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (id, name, details, rating, created_at) VALUES ($1, $2, $3, $4, $5)`,
		rv.ID, rv.Name, rv.Details, rv.Rating, rv.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		return db.ErrConflict
	}
	return err
}

// Count returns the exact number of reviews.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&n)
	return n, err
}
