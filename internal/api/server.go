// Package api exposes the HTTP interface for the case-search service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jagriti-dev/casesearch/internal/config"
	"github.com/jagriti-dev/casesearch/internal/metrics"
	"github.com/jagriti-dev/casesearch/internal/portal"
)

// Searcher is the pipeline surface the API consumes.
type Searcher interface {
	ListStates(ctx context.Context) ([]portal.State, error)
	ListCommissions(ctx context.Context, stateID string) ([]portal.Commission, error)
	SearchCases(ctx context.Context, searchType portal.SearchType, state, commission, searchValue string) (portal.SearchResult, error)
}

// searchRoutes binds each search endpoint suffix to its search kind.
var searchRoutes = []struct {
	Path string
	Type portal.SearchType
}{
	{"by-case-number", portal.SearchCaseNumber},
	{"by-complainant", portal.SearchComplainant},
	{"by-respondent", portal.SearchRespondent},
	{"by-complainant-advocate", portal.SearchComplainantAdvocate},
	{"by-respondent-advocate", portal.SearchRespondentAdvocate},
	{"by-industry-type", portal.SearchIndustryType},
	{"by-judge", portal.SearchJudge},
}

// Server wires HTTP handlers to the search pipeline.
type Server struct {
	router   chi.Router
	searcher Searcher
	logger   *zap.Logger
	cfg      config.Config
}

// NewServer constructs a Server with middleware and routes.
func NewServer(searcher Searcher, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		searcher: searcher,
		logger:   logger,
		cfg:      cfg,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(cfg.Server.RequestTimeout))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/", s.index)
	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/states", s.getStates)
	r.Get("/commissions/{state_id}", s.getCommissions)

	r.Route("/cases", func(r chi.Router) {
		for _, route := range searchRoutes {
			handler := s.searchHandler(route.Type)
			r.Post("/"+route.Path, handler)
			r.Get("/"+route.Path, handler)
		}
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	endpoints := make([]string, 0, len(searchRoutes))
	for _, route := range searchRoutes {
		endpoints = append(endpoints, "/cases/"+route.Path)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Jagriti Case Search API",
		"endpoints": map[string]any{
			"states":           "/states",
			"commissions":      "/commissions/{state_id}",
			"search_endpoints": endpoints,
		},
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) getStates(w http.ResponseWriter, r *http.Request) {
	states, err := s.searcher.ListStates(r.Context())
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"states": states})
}

func (s *Server) getCommissions(w http.ResponseWriter, r *http.Request) {
	stateID := chi.URLParam(r, "state_id")
	commissions, err := s.searcher.ListCommissions(r.Context(), stateID)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"commissions": commissions,
		"state_id":    stateID,
	})
}

type caseSearchRequest struct {
	State       string `json:"state"`
	Commission  string `json:"commission"`
	SearchValue string `json:"search_value"`
}

// searchHandler serves one search kind. POST carries a JSON body, GET the
// same fields as query parameters.
func (s *Server) searchHandler(searchType portal.SearchType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req caseSearchRequest
		if r.Method == http.MethodGet {
			q := r.URL.Query()
			req = caseSearchRequest{
				State:       q.Get("state"),
				Commission:  q.Get("commission"),
				SearchValue: q.Get("search_value"),
			}
		} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if req.State == "" || req.Commission == "" {
			writeError(w, http.StatusBadRequest, "state and commission are required")
			return
		}

		result, err := s.searcher.SearchCases(r.Context(), searchType, req.State, req.Commission, req.SearchValue)
		if err != nil {
			s.writePipelineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// writePipelineError maps pipeline error kinds onto HTTP statuses:
// unresolved input is the client's problem, a portal challenge is a
// temporary outage, everything else is internal.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var inputErr *portal.InputError
	switch {
	case errors.As(err, &inputErr):
		writeError(w, http.StatusBadRequest, inputErr.Error())
	case errors.Is(err, portal.ErrChallenged):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("pipeline failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			duration := time.Since(start)
			metrics.ObserveRequestDuration(r.Method, r.URL.Path, duration)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", duration.Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = 60 * time.Second
	}
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
