package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/pipeline"
)

// ScoreReader exposes the latest aggregation snapshot.
type ScoreReader interface {
	Snapshot() pipeline.Snapshot
}

// OutlookReader exposes the stored risk snapshot.
type OutlookReader interface {
	Current(ctx context.Context) (domain.RiskSnapshot, error)
}

// Options configures the public API middleware.
type Options struct {
	CORSAllowOrigins  []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Server exposes the score API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates the HTTP server. outlook may be nil when outlook
// checking is disabled.
func NewServer(addr string, scores ScoreReader, outlook OutlookReader, ready sharedobs.ReadinessChecker,
	opts Options, logger *slog.Logger,
) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(corslib.New(corslib.Options{
			AllowedOrigins: opts.CORSAllowOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "Cache-Control"},
		}).Handler)
		if opts.RateLimitRequests > 0 {
			r.Use(RateLimitMiddleware(opts.RateLimitRequests, opts.RateLimitWindow))
		}

		r.Get("/weather-score", handleWeatherScore(scores))
		r.Get("/outlook", handleOutlook(outlook))
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleWeatherScore(scores ScoreReader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, scores.Snapshot())
	}
}

func handleOutlook(outlook OutlookReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if outlook == nil {
			writeError(w, http.StatusNotFound, "OUTLOOK_DISABLED", "outlook checking is disabled")
			return
		}
		snap, err := outlook.Current(r.Context())
		switch {
		case errors.Is(err, pipeline.ErrNoOutlook):
			writeError(w, http.StatusNotFound, "NO_OUTLOOK", err.Error())
		case err != nil:
			writeError(w, http.StatusInternalServerError, "STORE_ERROR", "could not load outlook")
		default:
			writeJSON(w, http.StatusOK, snap)
		}
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
