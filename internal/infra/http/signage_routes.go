package http

import "net/http"

func (h *Handler) signagePush(w http.ResponseWriter, r *http.Request) {
	res, err := h.signage.PushBulk(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) signageTest(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.signage.TestConnection(r.Context()))
}

func (h *Handler) signagePreview(w http.ResponseWriter, r *http.Request) {
	items, err := h.signage.DisplayData(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) signageEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.signage.RecentEvents(r.Context(), queryInt(r, "limit", 10))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, events)
}
