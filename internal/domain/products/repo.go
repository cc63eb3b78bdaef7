package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guymor/wasteless/internal/apperr"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const productColumns = `
	id, name_he, name_en, category, category_he, base_price, current_price,
	discount_percent, quantity, unit, expiry_date, catalog_number, batch_number,
	image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.NameHe, &p.NameEn, &p.Category, &p.CategoryHe,
		&p.BasePrice, &p.CurrentPrice, &p.DiscountPercent, &p.Quantity,
		&p.Unit, &p.ExpiryDate, &p.CatalogNumber, &p.BatchNumber,
		&p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, p Product) (*Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (
			name_he, name_en, category, category_he, base_price, current_price,
			discount_percent, quantity, unit, expiry_date, catalog_number,
			batch_number, image_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING`+productColumns,
		p.NameHe, p.NameEn, p.Category, p.CategoryHe, p.BasePrice,
		p.CurrentPrice, p.DiscountPercent, p.Quantity, p.Unit, p.ExpiryDate,
		p.CatalogNumber, p.BatchNumber, p.ImageURL,
	)
	return scanProduct(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Product, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+productColumns+`
		FROM products WHERE id = $1
	`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Filter narrows List the way the admin UI queries products.
type Filter struct {
	Category string
	Search   string
	Expiry   string // "today", "tomorrow" or "week"
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Product, error) {
	q := `SELECT` + productColumns + ` FROM products WHERE TRUE`
	args := []any{}

	if f.Category != "" {
		args = append(args, f.Category)
		q += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		q += fmt.Sprintf(" AND (name_he ILIKE $%d OR name_en ILIKE $%d OR batch_number ILIKE $%d)", n, n, n)
	}
	switch f.Expiry {
	case "today":
		q += " AND expiry_date = CURRENT_DATE"
	case "tomorrow":
		q += " AND expiry_date = CURRENT_DATE + 1"
	case "week":
		q += " AND expiry_date <= CURRENT_DATE + 7"
	}
	q += " ORDER BY expiry_date ASC, discount_percent DESC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ListAll feeds the bulk recompute.
func (r *Repo) ListAll(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT`+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repo) Update(ctx context.Context, p Product) (*Product, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE products SET
			name_he = $2, name_en = $3, category = $4, category_he = $5,
			base_price = $6, current_price = $7, discount_percent = $8,
			quantity = $9, unit = $10, expiry_date = $11, catalog_number = $12,
			batch_number = $13, image_url = $14, updated_at = now()
		WHERE id = $1
		RETURNING`+productColumns,
		p.ID, p.NameHe, p.NameEn, p.Category, p.CategoryHe, p.BasePrice,
		p.CurrentPrice, p.DiscountPercent, p.Quantity, p.Unit, p.ExpiryDate,
		p.CatalogNumber, p.BatchNumber, p.ImageURL,
	)
	out, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("product")
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePricing writes price and discount together so the row is never
// half-updated.
func (r *Repo) UpdatePricing(ctx context.Context, id int64, currentPrice float64, discountPercent int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET current_price = $2, discount_percent = $3, updated_at = now()
		WHERE id = $1
	`, id, currentPrice, discountPercent)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

// Delete removes the product and its history rows in one transaction, so no
// orphaned audit entries survive.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `DELETE FROM price_history WHERE product_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("product")
	}
	return tx.Commit(ctx)
}

// ListDiscounted returns the products worth showing on the signage screens,
// most urgent first.
func (r *Repo) ListDiscounted(ctx context.Context, limit int) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+productColumns+`
		FROM products
		WHERE discount_percent > 0
		ORDER BY
			CASE
				WHEN expiry_date <= CURRENT_DATE THEN 0
				WHEN expiry_date <= CURRENT_DATE + 1 THEN 1
				WHEN expiry_date <= CURRENT_DATE + 2 THEN 2
				ELSE 3
			END,
			discount_percent DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repo) ListExpiringWithin(ctx context.Context, days int) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+productColumns+`
		FROM products
		WHERE expiry_date <= CURRENT_DATE + $1
		ORDER BY expiry_date ASC
	`, days)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repo) Summary(ctx context.Context) (*Summary, error) {
	var s Summary
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE discount_percent > 0),
			COUNT(*) FILTER (WHERE expiry_date <= CURRENT_DATE + 3),
			COALESCE(ROUND(SUM((base_price - current_price) * quantity)
				FILTER (WHERE discount_percent > 0)::numeric, 2), 0)
		FROM products
	`).Scan(&s.TotalProducts, &s.DiscountedProducts, &s.ExpiringProducts, &s.TotalSavings)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT category, category_he, COUNT(*),
			COALESCE(AVG(discount_percent), 0),
			COALESCE(SUM((base_price - current_price) * quantity), 0)
		FROM products
		GROUP BY category, category_he
		ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b CategoryBreakdown
		if err := rows.Scan(&b.Category, &b.CategoryHe, &b.Count, &b.AvgDiscount, &b.PotentialSavings); err != nil {
			return nil, err
		}
		s.Categories = append(s.Categories, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}
