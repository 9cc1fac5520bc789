package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebit/backend-market/internal/pricing"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Order is a persisted checkout snapshot with its totals breakdown.
type Order struct {
	ID        string
	CartID    string
	Status    string
	Currency  string
	Totals    pricing.Totals
	CreatedAt time.Time
}

// OrderItem is one persisted cart line within an order.
type OrderItem struct {
	OrderID    string
	LineID     string
	Title      string
	Category   string
	Diameter   float64
	Qty        int
	UnitPrice  pricing.Money
	RetipAdded bool
	RetipPrice pricing.Money
}

// Orders persists orders in Postgres.
type Orders struct {
	Pool *pgxpool.Pool
}

// CreateOrder inserts the order and its items in a single transaction.
func (r Orders) CreateOrder(ctx context.Context, o Order, items []OrderItem) error {
	if r.Pool == nil {
		return errors.New("orders repo not configured")
	}
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	const insertOrder = `
		INSERT INTO orders (
			id, cart_id, status, currency,
			subtotal, retip_total, tax, commission_fee, shipping, grand_total,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := tx.Exec(ctx, insertOrder,
		o.ID, o.CartID, o.Status, o.Currency,
		o.Totals.Subtotal, o.Totals.RetipTotal, o.Totals.Tax,
		o.Totals.Commission, o.Totals.Shipping, o.Totals.GrandTotal,
		o.CreatedAt,
	); err != nil {
		return err
	}

	const insertItem = `
		INSERT INTO order_items (
			order_id, line_id, title, category, diameter,
			qty, unit_price, retip_added, retip_price, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i, it := range items {
		if _, err := tx.Exec(ctx, insertItem,
			o.ID, it.LineID, it.Title, it.Category, it.Diameter,
			it.Qty, it.UnitPrice, it.RetipAdded, it.RetipPrice, i,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetOrder loads an order by id.
func (r Orders) GetOrder(ctx context.Context, id string) (Order, error) {
	if r.Pool == nil {
		return Order{}, errors.New("orders repo not configured")
	}
	const query = `
		SELECT id, cart_id, status, currency,
		       subtotal, retip_total, tax, commission_fee, shipping, grand_total,
		       created_at
		FROM orders WHERE id = $1`
	var o Order
	err := r.Pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CartID, &o.Status, &o.Currency,
		&o.Totals.Subtotal, &o.Totals.RetipTotal, &o.Totals.Tax,
		&o.Totals.Commission, &o.Totals.Shipping, &o.Totals.GrandTotal,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

// ListOrderItems returns an order's items in insertion order.
func (r Orders) ListOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	if r.Pool == nil {
		return nil, errors.New("orders repo not configured")
	}
	const query = `
		SELECT order_id, line_id, title, category, diameter,
		       qty, unit_price, retip_added, retip_price
		FROM order_items WHERE order_id = $1 ORDER BY position`
	rows, err := r.Pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(
			&it.OrderID, &it.LineID, &it.Title, &it.Category, &it.Diameter,
			&it.Qty, &it.UnitPrice, &it.RetipAdded, &it.RetipPrice,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
