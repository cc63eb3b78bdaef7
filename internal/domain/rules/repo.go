package rules

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

// RulesFor implements pricing.RuleStore: the category's staircase, ascending
// by threshold.
func (r *Repo) RulesFor(ctx context.Context, category string) ([]pricing.Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT days_to_expiry, discount_percent
		FROM pricing_rules
		WHERE category = $1
		ORDER BY days_to_expiry ASC
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []pricing.Rule
	for rows.Next() {
		var rule pricing.Rule
		if err := rows.Scan(&rule.DaysToExpiry, &rule.DiscountPercent); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// ListGrouped returns every rule keyed by category, thresholds descending the
// way the rule editor displays them.
func (r *Repo) ListGrouped(ctx context.Context) (map[string][]Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, category, days_to_expiry, discount_percent, created_at
		FROM pricing_rules
		ORDER BY category, days_to_expiry DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]Rule{}
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.ID, &rule.Category, &rule.DaysToExpiry, &rule.DiscountPercent, &rule.CreatedAt); err != nil {
			return nil, err
		}
		out[rule.Category] = append(out[rule.Category], rule)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Rule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, category, days_to_expiry, discount_percent, created_at
		FROM pricing_rules WHERE id = $1
	`, id)
	var rule Rule
	if err := row.Scan(&rule.ID, &rule.Category, &rule.DaysToExpiry, &rule.DiscountPercent, &rule.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// UpdateDiscount edits only the percentage; thresholds are fixed at seed time.
func (r *Repo) UpdateDiscount(ctx context.Context, id int64, discountPercent int) (*Rule, error) {
	if discountPercent < 0 || discountPercent > 100 {
		return nil, apperr.Validation("discount percent out of range: %d", discountPercent)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE pricing_rules SET discount_percent = $2 WHERE id = $1
		RETURNING id, category, days_to_expiry, discount_percent, created_at
	`, id, discountPercent)
	var rule Rule
	if err := row.Scan(&rule.ID, &rule.Category, &rule.DaysToExpiry, &rule.DiscountPercent, &rule.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("pricing rule")
		}
		return nil, err
	}
	return &rule, nil
}
