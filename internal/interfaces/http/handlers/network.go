package handlers

import "net/http"

// NetworkConcentration handles GET /network/concentration.
func (h *Handlers) NetworkConcentration(w http.ResponseWriter, r *http.Request) {
	res, err := h.analytics.NetworkConcentration(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
