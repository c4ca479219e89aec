package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

// ListOperators handles GET /operators with limit/offset pagination.
func (h *Handlers) ListOperators(w http.ResponseWriter, r *http.Request) {
	limit := 25
	offset := 0
	var err error
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			h.writeError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			h.writeError(w, r, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
	}

	res, err := h.analytics.ListOperators(r.Context(), limit, offset)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// Concentration handles GET /operators/{address}/concentration.
func (h *Handlers) Concentration(w http.ResponseWriter, r *http.Request) {
	address, ok := h.operatorAddress(w, r)
	if !ok {
		return
	}
	res, err := h.analytics.OperatorConcentration(r.Context(), address)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// Volatility handles GET /operators/{address}/volatility with optional
// from/to query dates in YYYY-MM-DD form.
func (h *Handlers) Volatility(w http.ResponseWriter, r *http.Request) {
	address, ok := h.operatorAddress(w, r)
	if !ok {
		return
	}

	var from, to time.Time
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(dateLayout, v); err != nil {
			h.writeError(w, r, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD")
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(dateLayout, v); err != nil {
			h.writeError(w, r, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD")
			return
		}
	}

	res, err := h.analytics.OperatorVolatility(r.Context(), address, from, to)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// Commission handles GET /operators/{address}/commission.
func (h *Handlers) Commission(w http.ResponseWriter, r *http.Request) {
	address, ok := h.operatorAddress(w, r)
	if !ok {
		return
	}
	res, err := h.analytics.OperatorCommission(r.Context(), address)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// Percentiles handles GET /operators/{address}/percentiles.
func (h *Handlers) Percentiles(w http.ResponseWriter, r *http.Request) {
	address, ok := h.operatorAddress(w, r)
	if !ok {
		return
	}
	res, err := h.analytics.OperatorPercentiles(r.Context(), address)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// Risk handles GET /operators/{address}/risk.
func (h *Handlers) Risk(w http.ResponseWriter, r *http.Request) {
	address, ok := h.operatorAddress(w, r)
	if !ok {
		return
	}
	res, err := h.analytics.OperatorRisk(r.Context(), address)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// Metadata handles GET /operators/{address}/metadata. Registry faults are
// reported as absent profiles rather than server errors.
func (h *Handlers) Metadata(w http.ResponseWriter, r *http.Request) {
	address, ok := h.operatorAddress(w, r)
	if !ok {
		return
	}
	if h.profiles == nil {
		h.writeError(w, r, http.StatusNotFound, "profile_unavailable",
			"No metadata registry is configured")
		return
	}
	profile, err := h.profiles.Lookup(r.Context(), address)
	if err != nil {
		log.Warn().Err(err).Str("address", address).Msg("profile lookup failed")
		h.writeError(w, r, http.StatusNotFound, "profile_unavailable",
			"No profile could be resolved for this operator")
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

// operatorAddress pulls and validates the {address} path variable.
func (h *Handlers) operatorAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := strings.ToLower(mux.Vars(r)["address"])
	if !isValidAddress(address) {
		h.writeError(w, r, http.StatusBadRequest, "invalid_address",
			"Address must be a 0x-prefixed hex string")
		return "", false
	}
	return address, true
}

func isValidAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") || len(address) < 3 {
		return false
	}
	for _, c := range address[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
