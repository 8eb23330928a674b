// ABOUTME: HTTP API for uploads, metric trends, and file search, routed with chi.
// ABOUTME: Every route except registration requires HTTP basic auth.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/harperreed/labtrack/internal/auth"
	"github.com/harperreed/labtrack/internal/metricparse"
	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/pipeline"
	"github.com/harperreed/labtrack/internal/storage"
	"github.com/harperreed/labtrack/internal/summarize"
	"github.com/harperreed/labtrack/internal/upload"
)

// Deps are the collaborators the API serves.
type Deps struct {
	Auth       *auth.Service
	Uploads    *upload.Service
	Store      storage.Repository
	Pipeline   *pipeline.Orchestrator
	Summarizer summarize.Summarizer // optional
	Rules      []metricparse.Rule
	Logger     *zap.Logger

	// MaxUploadBytes caps multipart upload size.
	MaxUploadBytes int64
}

// Server holds the HTTP handlers.
type Server struct {
	deps   Deps
	units  map[models.MetricName]string
	logger *zap.Logger
}

// New creates a Server.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 20 << 20
	}

	units := make(map[models.MetricName]string, len(models.MetricUnits)+len(deps.Rules))
	for n, u := range models.MetricUnits {
		units[n] = u
	}
	for _, r := range deps.Rules {
		units[r.Name] = r.Unit
	}

	return &Server{deps: deps, units: units, logger: deps.Logger}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.basicAuth)

			r.Post("/uploads", s.handleUpload)
			r.Get("/metrics", s.handleListMetrics)
			r.Get("/metrics/{name}/trend", s.handleTrend)
			r.Get("/metrics/{name}/latest", s.handleLatest)
			r.Get("/files", s.handleListFiles)
			r.Post("/files/{id}/summary", s.handleSummary)
		})
	})

	return r
}

// ListenAndServe runs the API until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type ctxKey struct{}

func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			unauthorized(w)
			return
		}
		u, err := s.deps.Auth.Login(username, password)
		if err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func currentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(ctxKey{}).(*models.User)
	return u
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="labtrack"`)
	writeError(w, http.StatusUnauthorized, "authentication required")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
