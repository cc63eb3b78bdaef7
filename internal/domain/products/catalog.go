package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Catalog prefixes per category code; anything unknown falls back to GEN.
var categoryPrefixes = map[string]string{
	"vegetables": "VEG",
	"fruits":     "FRU",
	"herbs":      "HRB",
	"salads":     "SAL",
	"dairy":      "DAI",
	"bakery":     "BAK",
}

// NextCatalogNumber allocates the next PREFIX-XXXX catalog number for a
// category, e.g. VEG-0001.
func (r *Repo) NextCatalogNumber(ctx context.Context, category string) (string, error) {
	prefix, ok := categoryPrefixes[category]
	if !ok {
		prefix = "GEN"
	}

	var last string
	err := r.pool.QueryRow(ctx, `
		SELECT catalog_number FROM products
		WHERE catalog_number LIKE $1
		ORDER BY catalog_number DESC
		LIMIT 1
	`, prefix+"-%").Scan(&last)
	next := 1
	if err == nil {
		if _, numPart, ok := strings.Cut(last, "-"); ok {
			if n, convErr := strconv.Atoi(numPart); convErr == nil {
				next = n + 1
			}
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, next), nil
}

// NextBatchNumber allocates the next batch letter for a catalog number
// (CATALOG-A, CATALOG-B, ...), falling back to a date suffix past Z.
func (r *Repo) NextBatchNumber(ctx context.Context, catalogNumber string, now time.Time) (string, error) {
	var last string
	err := r.pool.QueryRow(ctx, `
		SELECT batch_number FROM products
		WHERE catalog_number = $1 AND batch_number IS NOT NULL
		ORDER BY batch_number DESC
		LIMIT 1
	`, catalogNumber).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalogNumber + "-A", nil
	}
	if err != nil {
		return "", err
	}

	suffix := last[strings.LastIndex(last, "-")+1:]
	if len(suffix) == 1 && suffix[0] >= 'A' && suffix[0] < 'Z' {
		return fmt.Sprintf("%s-%c", catalogNumber, suffix[0]+1), nil
	}
	return fmt.Sprintf("%s-%s", catalogNumber, now.Format("20060102")), nil
}

func (r *Repo) ListByCatalog(ctx context.Context, catalogNumber string) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+productColumns+`
		FROM products
		WHERE catalog_number = $1
		ORDER BY expiry_date ASC
	`, catalogNumber)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// CatalogSummary aggregates all batches sharing a catalog number; nil when
// the catalog number is unknown.
func (r *Repo) CatalogSummary(ctx context.Context, catalogNumber string) (*CatalogSummary, error) {
	batches, err := r.ListByCatalog(ctx, catalogNumber)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}

	first := batches[0]
	out := &CatalogSummary{
		CatalogNumber:   catalogNumber,
		NameHe:          first.NameHe,
		NameEn:          first.NameEn,
		Category:        first.Category,
		CategoryHe:      first.CategoryHe,
		BasePrice:       first.BasePrice,
		BatchCount:      len(batches),
		MinCurrentPrice: first.CurrentPrice,
		EarliestExpiry:  first.ExpiryDate,
		Batches:         batches,
	}
	for _, b := range batches {
		out.TotalQuantity += b.Quantity
		if b.CurrentPrice < out.MinCurrentPrice {
			out.MinCurrentPrice = b.CurrentPrice
		}
		if b.DiscountPercent > out.MaxDiscountPercent {
			out.MaxDiscountPercent = b.DiscountPercent
		}
	}
	return out, nil
}
