package history

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Append implements pricing.HistoryStore.
func (r *Repo) Append(ctx context.Context, productID int64, oldPrice, newPrice float64, oldDiscount, newDiscount int, reason string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO price_history (product_id, old_price, new_price, old_discount, new_discount, reason)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, productID, oldPrice, newPrice, oldDiscount, newDiscount, reason)
	return err
}

func (r *Repo) ListByProduct(ctx context.Context, productID int64, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, old_price, new_price, old_discount, new_discount, reason, created_at
		FROM price_history
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.OldPrice, &e.NewPrice, &e.OldDiscount, &e.NewDiscount, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recent returns the latest transitions across all products, joined with the
// product names.
func (r *Repo) Recent(ctx context.Context, limit int) ([]NamedEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ph.id, ph.product_id, ph.old_price, ph.new_price,
			ph.old_discount, ph.new_discount, ph.reason, ph.created_at,
			p.name_he, p.name_en
		FROM price_history ph
		JOIN products p ON p.id = ph.product_id
		ORDER BY ph.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NamedEntry
	for rows.Next() {
		var e NamedEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.OldPrice, &e.NewPrice, &e.OldDiscount, &e.NewDiscount, &e.Reason, &e.CreatedAt, &e.NameHe, &e.NameEn); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
