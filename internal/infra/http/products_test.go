package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/guymor/wasteless/internal/domain/categories"
	"github.com/guymor/wasteless/internal/domain/pricing"
	"github.com/guymor/wasteless/internal/domain/products"
)

type fakeProducts struct {
	created []products.Product
}

func (f *fakeProducts) Create(_ context.Context, p products.Product) (*products.Product, error) {
	p.ID = int64(len(f.created) + 1)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.created = append(f.created, p)
	return &p, nil
}

func (f *fakeProducts) GetByID(context.Context, int64) (*products.Product, error) { return nil, nil }
func (f *fakeProducts) List(context.Context, products.Filter) ([]products.Product, error) {
	return nil, nil
}
func (f *fakeProducts) Update(_ context.Context, p products.Product) (*products.Product, error) {
	return &p, nil
}
func (f *fakeProducts) Delete(context.Context, int64) error { return nil }
func (f *fakeProducts) ListExpiringWithin(context.Context, int) ([]products.Product, error) {
	return nil, nil
}
func (f *fakeProducts) Summary(context.Context) (*products.Summary, error) { return nil, nil }
func (f *fakeProducts) CatalogSummary(context.Context, string) (*products.CatalogSummary, error) {
	return nil, nil
}
func (f *fakeProducts) NextCatalogNumber(context.Context, string) (string, error) {
	return "VEG-0001", nil
}
func (f *fakeProducts) NextBatchNumber(context.Context, string, time.Time) (string, error) {
	return "VEG-0001-A", nil
}

type fakeCategories struct {
	byCode  map[string]*categories.Category
	codeErr error
}

func (f *fakeCategories) GetByCode(_ context.Context, nameEn string) (*categories.Category, error) {
	if f.codeErr != nil {
		return nil, f.codeErr
	}
	return f.byCode[nameEn], nil
}

func (f *fakeCategories) List(context.Context, bool) ([]categories.Category, error) {
	return nil, nil
}
func (f *fakeCategories) GetByID(context.Context, int64) (*categories.Category, error) {
	return nil, nil
}
func (f *fakeCategories) Create(context.Context, string, string, *string, int) (*categories.Category, error) {
	return nil, nil
}
func (f *fakeCategories) Update(context.Context, int64, *string, *string, *string, *int, *bool) (*categories.Category, error) {
	return nil, nil
}
func (f *fakeCategories) Delete(context.Context, int64) (*categories.DeleteResult, error) {
	return nil, nil
}

type noRules struct{}

func (noRules) RulesFor(context.Context, string) ([]pricing.Rule, error) { return nil, nil }

type noHistory struct{}

func (noHistory) Append(context.Context, int64, float64, float64, int, int, string) error {
	return nil
}

type noProducts struct{}

func (noProducts) ListAll(context.Context) ([]products.Product, error) { return nil, nil }
func (noProducts) UpdatePricing(context.Context, int64, float64, int) error { return nil }

func newTestHandler(store *fakeProducts, cats *fakeCategories) *Handler {
	log := slog.New(slog.DiscardHandler)
	now := func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) }
	engine := pricing.NewEngine(noProducts{}, noRules{}, noHistory{}, now, log)
	return NewHandler(log, engine, store, cats, nil, nil, nil, now)
}

func postProduct(h *Handler, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.register(mux)
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCreateProductDerivesPriceAndHebrewLabel(t *testing.T) {
	store := &fakeProducts{}
	cats := &fakeCategories{byCode: map[string]*categories.Category{
		"vegetables": {NameEn: "vegetables", NameHe: "ירקות"},
	}}
	h := newTestHandler(store, cats)

	rec := postProduct(h, `{
		"name_he": "עגבניות", "name_en": "Tomatoes", "category": "vegetables",
		"base_price": 12.90, "quantity": 10, "expiry_date": "2024-06-12"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got productJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.CategoryHe != "ירקות" {
		t.Errorf("category_he = %q, want label from the category store", got.CategoryHe)
	}
	// Two days out: 30% off, rounded at the cent.
	if got.DiscountPercent != 30 || got.CurrentPrice != 9.03 {
		t.Errorf("got %d%% / %.2f, want 30%% / 9.03", got.DiscountPercent, got.CurrentPrice)
	}
	if got.CatalogNumber == nil || *got.CatalogNumber != "VEG-0001" {
		t.Errorf("catalog_number = %v, want auto-assigned VEG-0001", got.CatalogNumber)
	}
}

func TestCreateProductFailsWhenCategoryLookupFails(t *testing.T) {
	store := &fakeProducts{}
	cats := &fakeCategories{codeErr: errors.New("connection reset")}
	h := newTestHandler(store, cats)

	rec := postProduct(h, `{
		"name_he": "עגבניות", "name_en": "Tomatoes", "category": "vegetables",
		"base_price": 12.90, "quantity": 10, "expiry_date": "2024-06-12"
	}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 when the label lookup errors", rec.Code)
	}
	if len(store.created) != 0 {
		t.Errorf("product was created despite the failed lookup")
	}
}

func TestCreateProductUnknownCategoryLeavesLabelEmpty(t *testing.T) {
	store := &fakeProducts{}
	h := newTestHandler(store, &fakeCategories{byCode: map[string]*categories.Category{}})

	rec := postProduct(h, `{
		"name_he": "משהו", "name_en": "Something", "category": "exotics",
		"base_price": 10, "quantity": 1, "expiry_date": "2024-06-30"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got productJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.CategoryHe != "" {
		t.Errorf("category_he = %q, want empty for an unknown category", got.CategoryHe)
	}
}
