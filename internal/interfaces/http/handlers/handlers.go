// Package handlers implements the JSON endpoint handlers for the analytics
// API. Handlers depend on narrow interfaces so tests can swap in fakes.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stakescope/stakescope/internal/application"
	"github.com/stakescope/stakescope/internal/application/metadata"
	"github.com/stakescope/stakescope/internal/persistence"
)

// Analytics is the slice of the orchestrator the handlers consume.
type Analytics interface {
	OperatorConcentration(ctx context.Context, address string) (*application.OperatorConcentration, error)
	NetworkConcentration(ctx context.Context) (*application.NetworkConcentration, error)
	OperatorVolatility(ctx context.Context, address string, from, to time.Time) (*application.OperatorVolatility, error)
	OperatorCommission(ctx context.Context, address string) (*application.OperatorCommission, error)
	OperatorPercentiles(ctx context.Context, address string) (*application.OperatorPercentiles, error)
	OperatorRisk(ctx context.Context, address string) (*application.OperatorRisk, error)
	ListOperators(ctx context.Context, limit, offset int) (*application.OperatorList, error)
}

// ProfileSource resolves operator registry profiles. May be nil when no
// registry is configured.
type ProfileSource interface {
	Lookup(ctx context.Context, address string) (*metadata.Profile, error)
}

// Handlers manages all HTTP endpoint handlers.
type Handlers struct {
	analytics Analytics
	profiles  ProfileSource
	checks    []HealthChecker
}

// New creates the handler set.
func New(analytics Analytics, profiles ProfileSource) *Handlers {
	return &Handlers{analytics: analytics, profiles: profiles}
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("response encode failed")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: w.Header().Get("X-Request-ID"),
		Timestamp: time.Now().UTC(),
	})
}

// writeDomainError maps orchestrator errors onto HTTP statuses.
func (h *Handlers) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		h.writeError(w, r, http.StatusNotFound, "operator_not_found",
			"No operator with that address is known")
	case errors.Is(err, application.ErrInvalidRange):
		h.writeError(w, r, http.StatusBadRequest, "invalid_range",
			"Date range or pagination bounds are outside the allowed limits")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		h.writeError(w, r, http.StatusInternalServerError, "internal_error",
			"The request could not be completed")
	}
}

// NotFound handles 404 responses.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}
