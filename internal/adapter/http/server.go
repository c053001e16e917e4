package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/twilight-ephemeris-service/internal/domain"
)

// Reporter computes a report for a request.
type Reporter interface {
	Report(ctx context.Context, req domain.ReportRequest) (domain.ReportMessage, error)
}

// ReadinessFunc adapts a function to sharedobs.ReadinessChecker.
type ReadinessFunc func(ctx context.Context) error

func (f ReadinessFunc) CheckReadiness(ctx context.Context) error {
	return f(ctx)
}

// AlwaysReady reports ready unconditionally.
var AlwaysReady = ReadinessFunc(func(context.Context) error { return nil })

// Server exposes the ephemeris API alongside health, readiness and metrics endpoints.
type Server struct {
	httpServer     *http.Server
	mux            *http.ServeMux
	reporter       Reporter
	defaultSite    string
	requestTimeout time.Duration
	logger         *slog.Logger
}

// NewServer creates an HTTP server. GET / reports for defaultSite; each report
// request is bounded by requestTimeout.
func NewServer(addr string, reporter Reporter, ready sharedobs.ReadinessChecker, defaultSite string, requestTimeout time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:            mux,
		reporter:       reporter,
		defaultSite:    defaultSite,
		requestTimeout: requestTimeout,
		logger:         logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/ephemeris", s.handleEphemeris)
	mux.HandleFunc("GET /api/v1/sites", s.handleSites)
	mux.HandleFunc("GET /api/v1/sites/{site}", s.handleSite)
	mux.HandleFunc("GET /{$}", s.handleDefaultSite)

	return s
}

// AddReadinessCheck serves checker at GET /readyz/{name}, leaving /readyz to
// the API itself.
func (s *Server) AddReadinessCheck(name string, checker sharedobs.ReadinessChecker) {
	s.mux.HandleFunc("GET /readyz/"+name, sharedobs.ReadinessHandler(checker))
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

func (s *Server) handleEphemeris(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.report(w, r, domain.ReportRequest{
		Place:     q.Get("place"),
		Lat:       q.Get("lat"),
		Lon:       q.Get("lon"),
		Elevation: q.Get("elevation"),
		Timezone:  q.Get("tz"),
		At:        q.Get("at"),
	})
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	s.report(w, r, siteRequest(r, r.PathValue("site")))
}

func (s *Server) handleDefaultSite(w http.ResponseWriter, r *http.Request) {
	s.report(w, r, siteRequest(r, s.defaultSite))
}

func (s *Server) handleSites(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.Sites())
}

// siteRequest asks for a named site; tz and at query parameters still apply.
func siteRequest(r *http.Request, site string) domain.ReportRequest {
	q := r.URL.Query()
	return domain.ReportRequest{
		Site:     site,
		Timezone: q.Get("tz"),
		At:       q.Get("at"),
	}
}

func (s *Server) report(w http.ResponseWriter, r *http.Request, req domain.ReportRequest) {
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	msg, err := s.reporter.Report(ctx, req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("report failed", "path", r.URL.Path, "error", err)
		}
		sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownSite):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidLocation), errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
