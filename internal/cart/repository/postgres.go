package repository

import (
	"context"
	"database/sql"

	"bistro-boss/backend/internal/cart/domain"
	"bistro-boss/backend/internal/db"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a cart repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByOwner returns the owner's cart, oldest entry first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_email, menu_item_id, COALESCE(name, ''), COALESCE(image, ''), price::float8, created_at
		 FROM cart_entries WHERE owner_email = $1 ORDER BY created_at, id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.OwnerEmail, &e.MenuItemID, &e.Name, &e.Image, &e.Price, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Create inserts the entry. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Entry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_entries (id, owner_email, menu_item_id, name, image, price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.OwnerEmail, e.MenuItemID, e.Name, e.Image, e.Price, e.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		return db.ErrConflict
	}
	return err
}

// DeleteOwned deletes entries in ids owned by owner in a single statement.
func (r *PostgresRepository) DeleteOwned(ctx context.Context, owner string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_entries WHERE owner_email = $1 AND id IN (`+db.Placeholders(2, len(ids))+`)`,
		ownerAndIDs(owner, ids)...,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListOwnedIDs returns the ids among ids that exist and belong to owner, preserving input order.
func (r *PostgresRepository) ListOwnedIDs(ctx context.Context, owner string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM cart_entries WHERE owner_email = $1 AND id IN (`+db.Placeholders(2, len(ids))+`)`,
		ownerAndIDs(owner, ids)...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keepFound(ids, found), nil
}

func ownerAndIDs(owner string, ids []string) []any {
	args := make([]any, 0, len(ids)+1)
	args = append(args, owner)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

// keepFound filters ids to those in found, dropping duplicates.
func keepFound(ids []string, found map[string]struct{}) []string {
	out := make([]string, 0, len(found))
	seen := make(map[string]struct{}, len(found))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
