package repository

import (
	"context"
	"database/sql"
	"errors"

	"bistro-boss/backend/internal/db"
	"bistro-boss/backend/internal/order/domain"
)

const orderColumns = `id, owner_email, transaction_id, price::float8, created_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an order repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the order row and its cart and menu line rows in one transaction.
// Either all rows commit or none do.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.Order) error {
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO orders (id, owner_email, transaction_id, price, created_at) VALUES ($1, $2, $3, $4, $5)`,
			o.ID, o.OwnerEmail, o.TransactionID, o.Price, o.CreatedAt,
		); err != nil {
			return err
		}
		if err := insertLines(ctx, tx, "order_cart_items", "cart_item_id", o.ID, o.CartItemIDs); err != nil {
			return err
		}
		return insertLines(ctx, tx, "order_menu_items", "menu_item_id", o.ID, o.MenuItemIDs)
	})
	if db.IsUniqueViolation(err) {
		return db.ErrConflict
	}
	return err
}

// GetByTransactionID returns the order recorded for txID, or nil if none.
func (r *PostgresRepository) GetByTransactionID(ctx context.Context, txID string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE transaction_id = $1`, txID).
		Scan(&o.ID, &o.OwnerEmail, &o.TransactionID, &o.Price, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.attachLines(ctx, []*domain.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByOwner returns the owner's orders, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE owner_email = $1 ORDER BY created_at DESC, id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.OwnerEmail, &o.TransactionID, &o.Price, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func insertLines(ctx context.Context, tx *sql.Tx, table, column, orderID string, ids []string) error {
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (order_id, position, `+column+`) VALUES ($1, $2, $3)`,
			orderID, i, id,
		); err != nil {
			return err
		}
	}
	return nil
}

// attachLines loads cart and menu line rows for orders with one query per line table.
func (r *PostgresRepository) attachLines(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Order, len(orders))
	args := make([]any, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		args = append(args, o.ID)
	}
	in := db.Placeholders(1, len(orders))

	cart, err := r.loadLines(ctx, `SELECT order_id, cart_item_id FROM order_cart_items WHERE order_id IN (`+in+`) ORDER BY order_id, position`, args)
	if err != nil {
		return err
	}
	menu, err := r.loadLines(ctx, `SELECT order_id, menu_item_id FROM order_menu_items WHERE order_id IN (`+in+`) ORDER BY order_id, position`, args)
	if err != nil {
		return err
	}
	for id, o := range byID {
		o.CartItemIDs = nonNil(cart[id])
		o.MenuItemIDs = nonNil(menu[id])
	}
	return nil
}

func (r *PostgresRepository) loadLines(ctx context.Context, query string, args []any) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var orderID, ref string
		if err := rows.Scan(&orderID, &ref); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], ref)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
