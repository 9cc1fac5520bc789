package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebit/backend-market/internal/inventory"
)

// Inventory reads per-day stock samples recorded for seller products.
type Inventory struct {
	Pool *pgxpool.Pool
}

// ListDaySamples returns the product's day samples from the given day
// onwards in ascending day order.
func (r Inventory) ListDaySamples(ctx context.Context, productID uuid.UUID, from time.Time) ([]inventory.DaySample, error) {
	if r.Pool == nil {
		return nil, errors.New("inventory repo not configured")
	}
	const query = `
		SELECT day, stock, sold
		FROM inventory_daily
		WHERE product_id = $1 AND day >= $2
		ORDER BY day`
	rows, err := r.Pool.Query(ctx, query, productID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []inventory.DaySample
	for rows.Next() {
		var s inventory.DaySample
		if err := rows.Scan(&s.Day, &s.Stock, &s.Sold); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
