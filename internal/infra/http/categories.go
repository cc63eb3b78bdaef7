package http

import (
	"net/http"
	"time"

	"github.com/guymor/wasteless/internal/domain/categories"
)

type categoryJSON struct {
	ID        int64   `json:"id"`
	NameEn    string  `json:"name_en"`
	NameHe    string  `json:"name_he"`
	Icon      *string `json:"icon"`
	Active    bool    `json:"is_active"`
	SortOrder int     `json:"sort_order"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toCategoryJSON(c categories.Category) categoryJSON {
	return categoryJSON{
		ID:        c.ID,
		NameEn:    c.NameEn,
		NameHe:    c.NameHe,
		Icon:      c.Icon,
		Active:    c.Active,
		SortOrder: c.SortOrder,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := h.categories.List(r.Context(), activeOnly)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	out := make([]categoryJSON, 0, len(list))
	for _, c := range list {
		out = append(out, toCategoryJSON(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid category id"})
		return
	}
	c, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if c == nil {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "category not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, toCategoryJSON(*c))
}

type categoryRequest struct {
	NameEn    *string `json:"name_en"`
	NameHe    *string `json:"name_he"`
	Icon      *string `json:"icon"`
	SortOrder *int    `json:"sort_order"`
	Active    *bool   `json:"is_active"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.NameEn == nil || req.NameHe == nil {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "name_en and name_he are required"})
		return
	}
	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	c, err := h.categories.Create(r.Context(), *req.NameEn, *req.NameHe, req.Icon, sortOrder)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCategoryJSON(*c))
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid category id"})
		return
	}
	var req categoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.categories.Update(r.Context(), id, req.NameEn, req.NameHe, req.Icon, req.SortOrder, req.Active)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCategoryJSON(*c))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid category id"})
		return
	}
	res, err := h.categories.Delete(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if res.Deactivated {
		h.writeJSON(w, http.StatusOK, map[string]any{
			"message":      "category deactivated (has products)",
			"id":           id,
			"productCount": res.ProductCount,
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"message": "category deleted", "id": id})
}
