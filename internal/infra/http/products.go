package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/guymor/wasteless/internal/domain/pricing"
	"github.com/guymor/wasteless/internal/domain/products"
)

type productJSON struct {
	ID              int64   `json:"id"`
	NameHe          string  `json:"name_he"`
	NameEn          string  `json:"name_en"`
	Category        string  `json:"category"`
	CategoryHe      string  `json:"category_he"`
	BasePrice       float64 `json:"base_price"`
	CurrentPrice    float64 `json:"current_price"`
	DiscountPercent int     `json:"discount_percent"`
	Quantity        int     `json:"quantity"`
	Unit            string  `json:"unit"`
	ExpiryDate      string  `json:"expiry_date"`
	DaysToExpiry    int     `json:"days_to_expiry"`
	CatalogNumber   *string `json:"catalog_number"`
	BatchNumber     *string `json:"batch_number"`
	ImageURL        *string `json:"image_url"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func (h *Handler) toProductJSON(p products.Product) productJSON {
	return productJSON{
		ID:              p.ID,
		NameHe:          p.NameHe,
		NameEn:          p.NameEn,
		Category:        p.Category,
		CategoryHe:      p.CategoryHe,
		BasePrice:       p.BasePrice,
		CurrentPrice:    p.CurrentPrice,
		DiscountPercent: p.DiscountPercent,
		Quantity:        p.Quantity,
		Unit:            p.Unit,
		ExpiryDate:      p.ExpiryDate.Format("2006-01-02"),
		DaysToExpiry:    pricing.DaysToExpiry(p.ExpiryDate, h.now()),
		CatalogNumber:   p.CatalogNumber,
		BatchNumber:     p.BatchNumber,
		ImageURL:        p.ImageURL,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) toProductList(list []products.Product) []productJSON {
	out := make([]productJSON, 0, len(list))
	for _, p := range list {
		out = append(out, h.toProductJSON(p))
	}
	return out
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.products.List(r.Context(), products.Filter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Expiry:   q.Get("expiry"),
	})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.toProductList(list))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid product id"})
		return
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if p == nil {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "product not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.toProductJSON(*p))
}

type productRequest struct {
	NameHe        *string  `json:"name_he"`
	NameEn        *string  `json:"name_en"`
	Category      *string  `json:"category"`
	CategoryHe    *string  `json:"category_he"`
	BasePrice     *float64 `json:"base_price"`
	Quantity      *int     `json:"quantity"`
	Unit          *string  `json:"unit"`
	ExpiryDate    *string  `json:"expiry_date"`
	CatalogNumber *string  `json:"catalog_number"`
	BatchNumber   *string  `json:"batch_number"`
	ImageURL      *string  `json:"image_url"`
}

func parseExpiry(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.NameHe == nil || req.NameEn == nil || req.Category == nil || req.BasePrice == nil || req.Quantity == nil || req.ExpiryDate == nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "missing required fields"})
		return
	}
	expiry, ok := parseExpiry(*req.ExpiryDate)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "expiry_date must be YYYY-MM-DD"})
		return
	}
	if *req.Quantity < 0 {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "quantity must be >= 0"})
		return
	}

	ctx := r.Context()
	quote, err := h.engine.Quote(ctx, *req.BasePrice, *req.Category, expiry)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	categoryHe := ""
	if req.CategoryHe != nil {
		categoryHe = *req.CategoryHe
	} else {
		c, err := h.categories.GetByCode(ctx, *req.Category)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		if c != nil {
			categoryHe = c.NameHe
		}
	}

	unit := `ק"ג`
	if req.Unit != nil {
		unit = *req.Unit
	}

	catalogNumber := req.CatalogNumber
	if catalogNumber == nil {
		num, err := h.products.NextCatalogNumber(ctx, *req.Category)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		catalogNumber = &num
	}
	batchNumber := req.BatchNumber
	if batchNumber == nil {
		num, err := h.products.NextBatchNumber(ctx, *catalogNumber, h.now())
		if err != nil {
			h.writeErr(w, err)
			return
		}
		batchNumber = &num
	}

	created, err := h.products.Create(ctx, products.Product{
		NameHe:          *req.NameHe,
		NameEn:          *req.NameEn,
		Category:        *req.Category,
		CategoryHe:      categoryHe,
		BasePrice:       *req.BasePrice,
		CurrentPrice:    quote.CurrentPrice,
		DiscountPercent: quote.DiscountPercent,
		Quantity:        *req.Quantity,
		Unit:            unit,
		ExpiryDate:      expiry,
		CatalogNumber:   catalogNumber,
		BatchNumber:     batchNumber,
		ImageURL:        req.ImageURL,
	})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.toProductJSON(*created))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid product id"})
		return
	}
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	existing, err := h.products.GetByID(ctx, id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if existing == nil {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "product not found"})
		return
	}

	p := *existing
	if req.NameHe != nil {
		p.NameHe = *req.NameHe
	}
	if req.NameEn != nil {
		p.NameEn = *req.NameEn
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.CategoryHe != nil {
		p.CategoryHe = *req.CategoryHe
	}
	if req.BasePrice != nil {
		p.BasePrice = *req.BasePrice
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.ExpiryDate != nil {
		expiry, ok := parseExpiry(*req.ExpiryDate)
		if !ok {
			h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "expiry_date must be YYYY-MM-DD"})
			return
		}
		p.ExpiryDate = expiry
	}
	if req.CatalogNumber != nil {
		p.CatalogNumber = req.CatalogNumber
	}
	if req.BatchNumber != nil {
		p.BatchNumber = req.BatchNumber
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}

	// Any edit re-derives the price fields; they are never set directly.
	quote, err := h.engine.Quote(ctx, p.BasePrice, p.Category, p.ExpiryDate)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	p.CurrentPrice = quote.CurrentPrice
	p.DiscountPercent = quote.DiscountPercent

	updated, err := h.products.Update(ctx, p)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.toProductJSON(*updated))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid product id"})
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"message": "product deleted", "id": id})
}

func (h *Handler) productHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid product id"})
		return
	}
	entries, err := h.history.ListByProduct(r.Context(), id, 50)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	out := make([]historyJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, toHistoryJSON(e))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) catalogSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.products.CatalogSummary(r.Context(), r.PathValue("catalog"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if summary == nil {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "catalog number not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}
