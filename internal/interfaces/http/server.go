// Package http serves the read-only analytics API.
package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/stakescope/stakescope/internal/config"
	"github.com/stakescope/stakescope/internal/interfaces/http/handlers"
)

// RateLimiter gates requests per client. A nil limiter disables gating.
type RateLimiter interface {
	Allow(ctx context.Context, scope, identity string) bool
}

// Server is the read-only HTTP server for the analytics API.
type Server struct {
	router   *mux.Router
	server   *http.Server
	handlers *handlers.Handlers
	limiter  RateLimiter
	metrics  *MetricsRegistry
	config   config.ServerConfig
}

// NewServer wires the router, middleware and handlers.
func NewServer(cfg config.ServerConfig, h *handlers.Handlers, limiter RateLimiter, metrics *MetricsRegistry) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", cfg.Port, err)
	}
	listener.Close()

	s := &Server{
		router:   mux.NewRouter(),
		handlers: h,
		limiter:  limiter,
		metrics:  metrics,
		config:   cfg,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.timeoutMiddleware)

	// Operational endpoints bypass the rate limiter.
	s.router.HandleFunc("/health", s.handlers.Health).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	api := s.router.PathPrefix("/").Subrouter()
	api.Use(s.jsonContentTypeMiddleware)
	api.Use(s.rateLimitMiddleware)

	api.HandleFunc("/operators", s.handlers.ListOperators).Methods("GET")
	api.HandleFunc("/operators/{address}/concentration", s.handlers.Concentration).Methods("GET")
	api.HandleFunc("/operators/{address}/volatility", s.handlers.Volatility).Methods("GET")
	api.HandleFunc("/operators/{address}/commission", s.handlers.Commission).Methods("GET")
	api.HandleFunc("/operators/{address}/percentiles", s.handlers.Percentiles).Methods("GET")
	api.HandleFunc("/operators/{address}/risk", s.handlers.Risk).Methods("GET")
	api.HandleFunc("/operators/{address}/metadata", s.handlers.Metadata).Methods("GET")
	api.HandleFunc("/network/concentration", s.handlers.NetworkConcentration).Methods("GET")

	s.router.NotFoundHandler = http.HandlerFunc(s.handlers.NotFound)
}

// requestIDMiddleware tags each request with a short unique ID.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(routeTemplate(r), wrapper.statusCode, duration)
		}
		log.Info().
			Str("request_id", w.Header().Get("X-Request-ID")).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

func (s *Server) timeoutMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware enforces the per-client fixed window. The limiter is
// fail-open internally, so a cache outage never blocks traffic here.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow(r.Context(), "api", clientIdentity(r)) {
			if s.metrics != nil {
				s.metrics.RateLimitDenials.Inc()
			}
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":"Too Many Requests","code":"rate_limited"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIdentity picks the best available client address for rate limiting.
func clientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// routeTemplate returns the mux route pattern so metrics stay low
// cardinality.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// Start begins serving. Blocks until the listener fails or is shut down.
func (s *Server) Start() error {
	log.Info().
		Str("host", s.config.Host).
		Int("port", s.config.Port).
		Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
