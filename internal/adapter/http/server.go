package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Querier runs one feed query.
type Querier interface {
	Fetch(ctx context.Context, q domain.QueryConfig) ([]domain.Earthquake, error)
}

// Server exposes the earthquake query endpoint alongside health, readiness,
// and metrics routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /earthquakes, /healthz, /readyz, and
// /metrics routes. defaults supplies any query parameter the caller omits.
func NewServer(addr string, querier Querier, ready ReadinessChecker, defaults domain.QueryConfig, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second, // covers a full upstream connect+read
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /earthquakes", handleEarthquakes(querier, defaults, logger))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

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

type earthquakesResponse struct {
	Count       int                 `json:"count"`
	Earthquakes []domain.Earthquake `json:"earthquakes"`
}

type errorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func handleEarthquakes(querier Querier, defaults domain.QueryConfig, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(r, defaults)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		records, err := querier.Fetch(r.Context(), q)
		if err != nil && !errors.Is(err, domain.ErrEmptyInput) {
			status, body := classify(err)
			logger.Warn("earthquake query failed", "status", status, "error", err)
			writeJSON(w, status, body)
			return
		}

		if records == nil {
			records = []domain.Earthquake{}
		}
		writeJSON(w, http.StatusOK, earthquakesResponse{Count: len(records), Earthquakes: records})
	}
}

// parseQuery overlays the minmag, orderby, and limit request parameters onto
// defaults.
func parseQuery(r *http.Request, defaults domain.QueryConfig) (domain.QueryConfig, error) {
	q := defaults
	params := r.URL.Query()

	if v := params.Get(domain.ParamMinMag); v != "" {
		if _, err := domain.ParseMagnitude(v); err != nil {
			return q, fmt.Errorf("invalid %s: %w", domain.ParamMinMag, err)
		}
		q.MinMagnitude = v
	}
	if v := params.Get(domain.ParamOrderBy); v != "" {
		if !domain.ValidOrderBy(v) {
			return q, fmt.Errorf("invalid %s %q", domain.ParamOrderBy, v)
		}
		q.OrderBy = v
	}
	if v := params.Get(domain.ParamLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > domain.MaxLimit {
			return q, fmt.Errorf("invalid %s %q: must be between 1 and %d", domain.ParamLimit, v, domain.MaxLimit)
		}
		q.Limit = n
	}
	return q, nil
}

// classify maps a query error onto a response status and body.
func classify(err error) (int, errorResponse) {
	var (
		netErr    *domain.NetworkError
		statusErr *domain.HTTPStatusError
		malformed *domain.MalformedFeedError
	)
	switch {
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return http.StatusGatewayTimeout, errorResponse{Error: "upstream feed timed out"}
		}
		return http.StatusBadGateway, errorResponse{Error: "upstream feed unreachable"}
	case errors.As(err, &statusErr):
		return http.StatusBadGateway, errorResponse{Error: "upstream feed error", UpstreamStatus: statusErr.Code}
	case errors.As(err, &malformed):
		return http.StatusBadGateway, errorResponse{Error: "upstream feed malformed"}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
