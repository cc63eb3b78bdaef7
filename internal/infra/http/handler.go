package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/guymor/wasteless/internal/apperr"
	"github.com/guymor/wasteless/internal/domain/categories"
	"github.com/guymor/wasteless/internal/domain/history"
	"github.com/guymor/wasteless/internal/domain/pricing"
	"github.com/guymor/wasteless/internal/domain/products"
	"github.com/guymor/wasteless/internal/domain/rules"
	"github.com/guymor/wasteless/internal/infra/signage"
)

// ProductStore is the slice of the product repository the handlers use.
type ProductStore interface {
	Create(ctx context.Context, p products.Product) (*products.Product, error)
	GetByID(ctx context.Context, id int64) (*products.Product, error)
	List(ctx context.Context, f products.Filter) ([]products.Product, error)
	Update(ctx context.Context, p products.Product) (*products.Product, error)
	Delete(ctx context.Context, id int64) error
	ListExpiringWithin(ctx context.Context, days int) ([]products.Product, error)
	Summary(ctx context.Context) (*products.Summary, error)
	CatalogSummary(ctx context.Context, catalogNumber string) (*products.CatalogSummary, error)
	NextCatalogNumber(ctx context.Context, category string) (string, error)
	NextBatchNumber(ctx context.Context, catalogNumber string, now time.Time) (string, error)
}

// CategoryStore is the slice of the category repository the handlers use.
type CategoryStore interface {
	List(ctx context.Context, activeOnly bool) ([]categories.Category, error)
	GetByID(ctx context.Context, id int64) (*categories.Category, error)
	GetByCode(ctx context.Context, nameEn string) (*categories.Category, error)
	Create(ctx context.Context, nameEn, nameHe string, icon *string, sortOrder int) (*categories.Category, error)
	Update(ctx context.Context, id int64, nameEn, nameHe, icon *string, sortOrder *int, active *bool) (*categories.Category, error)
	Delete(ctx context.Context, id int64) (*categories.DeleteResult, error)
}

// Handler wires the REST API to the domain. The pricing engine owns every
// price derivation; handlers only shuttle rows in and out.
type Handler struct {
	log        *slog.Logger
	engine     *pricing.Engine
	products   ProductStore
	categories CategoryStore
	rules      *rules.Repo
	history    *history.Repo
	signage    *signage.Service
	now        func() time.Time
}

func NewHandler(
	log *slog.Logger,
	engine *pricing.Engine,
	productRepo ProductStore,
	categoryRepo CategoryStore,
	ruleRepo *rules.Repo,
	historyRepo *history.Repo,
	signageSvc *signage.Service,
	now func() time.Time,
) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{
		log:        log,
		engine:     engine,
		products:   productRepo,
		categories: categoryRepo,
		rules:      ruleRepo,
		history:    historyRepo,
		signage:    signageSvc,
		now:        now,
	}
}

func (h *Handler) register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("POST /api/products", h.createProduct)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.deleteProduct)
	mux.HandleFunc("GET /api/products/{id}/history", h.productHistory)
	mux.HandleFunc("GET /api/catalog/{catalog}", h.catalogSummary)

	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("POST /api/categories", h.createCategory)
	mux.HandleFunc("GET /api/categories/{id}", h.getCategory)
	mux.HandleFunc("PUT /api/categories/{id}", h.updateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", h.deleteCategory)

	mux.HandleFunc("GET /api/pricing/summary", h.pricingSummary)
	mux.HandleFunc("POST /api/pricing/calculate", h.recalculate)
	mux.HandleFunc("GET /api/pricing/rules", h.listRules)
	mux.HandleFunc("PUT /api/pricing/rules/{id}", h.updateRule)
	mux.HandleFunc("GET /api/pricing/history", h.globalHistory)
	mux.HandleFunc("GET /api/pricing/expiring", h.expiring)
	mux.HandleFunc("GET /api/pricing/expiring.xlsx", h.expiringXLSX)

	mux.HandleFunc("POST /api/signage/push", h.signagePush)
	mux.HandleFunc("GET /api/signage/test", h.signageTest)
	mux.HandleFunc("GET /api/signage/preview", h.signagePreview)
	mux.HandleFunc("GET /api/signage/events", h.signageEvents)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", "err", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsValidation(err):
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		h.log.Error("request failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	return true
}
