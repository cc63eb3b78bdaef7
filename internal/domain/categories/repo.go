package categories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guymor/wasteless/internal/apperr"
	"github.com/guymor/wasteless/internal/domain/pricing"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const categoryColumns = `id, name_en, name_he, icon, active, sort_order, created_at, updated_at`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.NameEn, &c.NameHe, &c.Icon, &c.Active, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) List(ctx context.Context, activeOnly bool) ([]Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		q += ` WHERE active`
	}
	q += ` ORDER BY sort_order ASC, name_he ASC`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repo) GetByCode(ctx context.Context, nameEn string) (*Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name_en = $1`, nameEn)
	c, err := scanCategory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts the category and seeds its default discount staircase in the
// same transaction.
func (r *Repo) Create(ctx context.Context, nameEn, nameHe string, icon *string, sortOrder int) (*Category, error) {
	existing, err := r.GetByCode(ctx, nameEn)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation("category %q already exists", nameEn)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO categories (name_en, name_he, icon, sort_order)
		VALUES ($1,$2,$3,$4)
		RETURNING `+categoryColumns,
		nameEn, nameHe, icon, sortOrder,
	)
	c, err := scanCategory(row)
	if err != nil {
		return nil, err
	}

	for _, days := range []int{5, 4, 3, 2, 1, 0} {
		if _, err := tx.Exec(ctx, `
			INSERT INTO pricing_rules (category, days_to_expiry, discount_percent)
			VALUES ($1,$2,$3)
		`, nameEn, days, pricing.DefaultDiscount(days)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Update edits the category; renaming the english code cascades to
// pricing_rules and products, which join on the code.
func (r *Repo) Update(ctx context.Context, id int64, nameEn, nameHe, icon *string, sortOrder *int, active *bool) (*Category, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("category")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if nameEn != nil && *nameEn != existing.NameEn {
		var conflict int
		err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE name_en = $1 AND id <> $2`, *nameEn, id).Scan(&conflict)
		if err != nil {
			return nil, err
		}
		if conflict > 0 {
			return nil, apperr.Validation("category %q already exists", *nameEn)
		}
		if _, err := tx.Exec(ctx, `UPDATE pricing_rules SET category = $1 WHERE category = $2`, *nameEn, existing.NameEn); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET category = $1 WHERE category = $2`, *nameEn, existing.NameEn); err != nil {
			return nil, err
		}
	}

	row := tx.QueryRow(ctx, `
		UPDATE categories SET
			name_en = COALESCE($2, name_en),
			name_he = COALESCE($3, name_he),
			icon = COALESCE($4, icon),
			sort_order = COALESCE($5, sort_order),
			active = COALESCE($6, active),
			updated_at = now()
		WHERE id = $1
		RETURNING `+categoryColumns,
		id, nameEn, nameHe, icon, sortOrder, active,
	)
	c, err := scanCategory(row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete hard-deletes the category together with its rules when no product
// references the code; otherwise it only deactivates it.
func (r *Repo) Delete(ctx context.Context, id int64) (*DeleteResult, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("category")
	}

	var productCount int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category = $1`, existing.NameEn).Scan(&productCount); err != nil {
		return nil, err
	}
	if productCount > 0 {
		if _, err := r.pool.Exec(ctx, `UPDATE categories SET active = FALSE, updated_at = now() WHERE id = $1`, id); err != nil {
			return nil, err
		}
		return &DeleteResult{Deactivated: true, ProductCount: productCount}, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM pricing_rules WHERE category = $1`, existing.NameEn); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &DeleteResult{}, nil
}
