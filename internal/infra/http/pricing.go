package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/guymor/wasteless/internal/domain/history"
	"github.com/guymor/wasteless/internal/domain/pricing"
	"github.com/guymor/wasteless/internal/infra/reports"
)

type historyJSON struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product_id"`
	OldPrice    float64 `json:"old_price"`
	NewPrice    float64 `json:"new_price"`
	OldDiscount int     `json:"old_discount"`
	NewDiscount int     `json:"new_discount"`
	Reason      string  `json:"reason"`
	CreatedAt   string  `json:"created_at"`
	NameHe      string  `json:"name_he,omitempty"`
	NameEn      string  `json:"name_en,omitempty"`
}

func toHistoryJSON(e history.Entry) historyJSON {
	return historyJSON{
		ID:          e.ID,
		ProductID:   e.ProductID,
		OldPrice:    e.OldPrice,
		NewPrice:    e.NewPrice,
		OldDiscount: e.OldDiscount,
		NewDiscount: e.NewDiscount,
		Reason:      e.Reason,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

type changeJSON struct {
	productJSON
	OldPrice    float64 `json:"old_price"`
	OldDiscount int     `json:"old_discount"`
}

func (h *Handler) toChangeJSON(c pricing.Change) changeJSON {
	p := h.toProductJSON(c.Product)
	p.DaysToExpiry = c.DaysToExpiry
	return changeJSON{productJSON: p, OldPrice: c.OldPrice, OldDiscount: c.OldDiscount}
}

func (h *Handler) pricingSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.products.Summary(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"totalProducts":      s.TotalProducts,
		"discountedProducts": s.DiscountedProducts,
		"expiringProducts":   s.ExpiringProducts,
		"totalSavings":       s.TotalSavings,
		"categoryBreakdown":  s.Categories,
	})
}

// recalculate triggers the same bulk recompute the scheduler runs, then
// pushes the fresh prices to the displays.
func (h *Handler) recalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	changes, err := h.engine.RecomputeAll(ctx)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	out := make([]changeJSON, 0, len(changes))
	for _, c := range changes {
		out = append(out, h.toChangeJSON(c))
	}

	syncRes := h.signage.Push(ctx)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":         "recalculated",
		"updatedProducts": out,
		"signage":         syncRes,
	})
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	grouped, err := h.rules.ListGrouped(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, grouped)
}

func (h *Handler) updateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid rule id"})
		return
	}
	var req struct {
		DiscountPercent *int `json:"discount_percent"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.DiscountPercent == nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "discount_percent is required"})
		return
	}
	rule, err := h.rules.UpdateDiscount(r.Context(), id, *req.DiscountPercent)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rule)
}

func queryInt(r *http.Request, key string, def int) int {
	if s := r.URL.Query().Get(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (h *Handler) globalHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.Recent(r.Context(), queryInt(r, "limit", 100))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	out := make([]historyJSON, 0, len(entries))
	for _, e := range entries {
		j := toHistoryJSON(e.Entry)
		j.NameHe = e.NameHe
		j.NameEn = e.NameEn
		out = append(out, j)
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) expiring(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.ListExpiringWithin(r.Context(), queryInt(r, "days", 7))
	if err != nil {
		h.writeErr(w, err)
		return
	}

	items := h.toProductList(list)
	urgency := map[string]int{"critical": 0, "urgent": 0, "warning": 0, "normal": 0}
	for _, p := range items {
		switch {
		case p.DaysToExpiry == 0:
			urgency["critical"]++
		case p.DaysToExpiry == 1:
			urgency["urgent"]++
		case p.DaysToExpiry <= 3:
			urgency["warning"]++
		default:
			urgency["normal"]++
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":     len(items),
		"byUrgency": urgency,
		"products":  items,
	})
}

func (h *Handler) expiringXLSX(w http.ResponseWriter, r *http.Request) {
	list, err := h.products.ListExpiringWithin(r.Context(), queryInt(r, "days", 7))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	buf, err := reports.ExpiringXLSX(list, h.now())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="expiring.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}
