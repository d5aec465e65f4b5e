package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/h1b-wage-explorer/internal/dashboard"
	"github.com/couchcryptid/h1b-wage-explorer/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Querier answers dashboard queries. It is implemented by *dashboard.Service.
type Querier interface {
	sharedobs.ReadinessChecker
	Dataset() dashboard.DatasetInfo
	JobRoles() []string
	States() []string
	Wages(ctx context.Context, req dashboard.WageRequest) (dashboard.WageView, error)
	Classify(ctx context.Context, req dashboard.ClassifyRequest) (dashboard.ClassificationView, error)
	LocateRegion(ctx context.Context, region domain.Region) (domain.GeocodingResult, error)
}

// Server exposes the wage API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	querier    Querier
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api/v1 routes, /healthz,
// /readyz, and /metrics.
func NewServer(addr string, querier Querier, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		querier: querier,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(querier))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/dataset", s.handleDataset)
	mux.HandleFunc("GET /api/v1/job-roles", s.handleJobRoles)
	mux.HandleFunc("GET /api/v1/states", s.handleStates)
	mux.HandleFunc("GET /api/v1/wages", s.handleWages)
	mux.HandleFunc("GET /api/v1/classify", s.handleClassify)
	mux.HandleFunc("GET /api/v1/regions/geo", s.handleRegionGeo)

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

func (s *Server) handleDataset(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.querier.Dataset())
}

func (s *Server) handleJobRoles(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]string{"job_roles": s.querier.JobRoles()})
}

func (s *Server) handleStates(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string][]string{"states": s.querier.States()})
}

func (s *Server) handleWages(w http.ResponseWriter, r *http.Request) {
	req, err := dashboard.ParseWageRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	view, err := s.querier.Wages(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	req, err := dashboard.ParseClassifyRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	view, err := s.querier.Classify(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, view)
}

func (s *Server) handleRegionGeo(w http.ResponseWriter, r *http.Request) {
	criteria, err := dashboard.ParseCriteria(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	result, err := s.querier.LocateRegion(r.Context(), criteria.Region)
	if err != nil {
		s.writeError(w, r, err, http.StatusBadGateway)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

// writeError maps query errors to status codes. Anything unrecognized is
// logged and reported as fallback without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	var invalid *domain.InvalidCriteriaError
	switch {
	case errors.As(err, &invalid):
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody(err))
	case errors.Is(err, dashboard.ErrTooManyRows):
		sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, errorBody(err))
	case errors.Is(err, domain.ErrGeocodingDisabled), errors.Is(err, domain.ErrRegionNotFound):
		sharedobs.WriteJSON(w, http.StatusNotFound, errorBody(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Debug("request cancelled", "path", r.URL.Path, "error", err)
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorBody(err))
	default:
		s.logger.Error("query failed", "path", r.URL.Path, "error", err)
		sharedobs.WriteJSON(w, fallback, map[string]string{"error": http.StatusText(fallback)})
	}
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
