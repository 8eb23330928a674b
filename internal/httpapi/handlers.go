// ABOUTME: Request handlers for the labtrack HTTP API.
// ABOUTME: Upload responses report file save and metric extraction separately.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/harperreed/labtrack/internal/auth"
	"github.com/harperreed/labtrack/internal/filestore"
	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/storage"
	"github.com/harperreed/labtrack/internal/summarize"
	"github.com/harperreed/labtrack/internal/upload"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates an account.
// POST /api/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.deps.Auth.Register(req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]string{"id": u.ID.String(), "username": u.Username})
	case errors.Is(err, storage.ErrUserExists):
		writeError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, models.ErrInvalidUsername), errors.Is(err, auth.ErrEmptyPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("register failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "registration failed")
	}
}

type uploadResponse struct {
	File         *models.UploadedFile     `json:"file"`
	Metrics      []models.ExtractedMetric `json:"metrics"`
	Message      string                   `json:"message"`
	ExtractError string                   `json:"extract_error,omitempty"`
}

// handleUpload saves a multipart file and extracts its metrics.
// POST /api/uploads (form fields: category, file)
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if r.ContentLength > s.deps.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.deps.MaxUploadBytes)

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	filename := header.Filename
	if filepath.Ext(filename) == "" && s.deps.Pipeline != nil {
		if ext, ok := s.deps.Pipeline.ExtensionForMIME(header.Header.Get("Content-Type")); ok {
			filename += ext
		}
	}

	res, err := s.deps.Uploads.Upload(r.Context(), user.Username, r.FormValue("category"), filename, file)
	switch {
	case err == nil:
	case errors.Is(err, upload.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	case errors.Is(err, models.ErrInvalidCategory), errors.Is(err, filestore.ErrInvalidFilename):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		s.logger.Error("upload failed", zap.String("user", user.Username), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save file")
		return
	}

	resp := uploadResponse{File: res.File, Metrics: res.Metrics, Message: res.Message()}
	if res.ExtractErr != nil {
		resp.ExtractError = res.ExtractErr.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleListMetrics lists the caller's raw metric records.
// GET /api/metrics?category=&metric=&limit=
func (s *Server) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	q := r.URL.Query()

	filter := models.RecordFilter{
		Username: user.Username,
		Category: q.Get("category"),
	}
	if m := q.Get("metric"); m != "" {
		filter.MetricName = s.metricName(m)
	}

	limit := 0
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	records, err := s.deps.Store.ListRecords(filter, limit)
	if err != nil {
		s.logger.Error("list records failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list metrics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

type trendResponse struct {
	Metric models.MetricName   `json:"metric"`
	Unit   string              `json:"unit,omitempty"`
	Points []models.TrendPoint `json:"points"`
}

// handleTrend returns one metric's values ascending by date.
// GET /api/metrics/{name}/trend
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	name := s.metricName(chi.URLParam(r, "name"))

	points, err := s.deps.Store.QueryTrend(user.Username, name)
	if err != nil {
		s.logger.Error("query trend failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load trend")
		return
	}
	writeJSON(w, http.StatusOK, trendResponse{Metric: name, Unit: s.units[name], Points: points})
}

// handleLatest returns the newest value of one metric.
// GET /api/metrics/{name}/latest
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	name := s.metricName(chi.URLParam(r, "name"))

	p, err := s.deps.Store.QueryLatest(user.Username, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no values recorded for "+string(name))
			return
		}
		s.logger.Error("query latest failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load latest value")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metric": name,
		"unit":   s.units[name],
		"date":   p.Date.Format(models.DateLayout),
		"value":  p.Value,
	})
}

// handleListFiles searches the caller's uploads.
// GET /api/files?keyword=&category=&after=YYYY-MM-DD
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	q := r.URL.Query()

	filter := models.FileFilter{Keyword: q.Get("keyword"), Category: q.Get("category")}
	if a := q.Get("after"); a != "" {
		after, err := models.ParseDay(a)
		if err != nil {
			writeError(w, http.StatusBadRequest, "after must be YYYY-MM-DD")
			return
		}
		filter.After = &after
	}

	files, err := s.deps.Store.ListFiles(user.Username, filter)
	if err != nil {
		s.logger.Error("list files failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list files")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

// handleSummary summarizes one uploaded file in plain language.
// POST /api/files/{id}/summary
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if s.deps.Summarizer == nil {
		writeError(w, http.StatusServiceUnavailable, "summarizer not configured")
		return
	}

	f, err := s.deps.Store.GetFile(user.Username, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		if errors.Is(err, storage.ErrAmbiguousID) {
			writeError(w, http.StatusBadRequest, "ambiguous file id")
			return
		}
		s.logger.Error("get file failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load file")
		return
	}

	text, err := s.deps.Pipeline.ExtractText(r.Context(), f.Path)
	if err != nil {
		s.logger.Error("extract for summary failed", zap.String("path", f.Path), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "could not read file")
		return
	}

	summary, err := s.deps.Summarizer.Summarize(r.Context(), text)
	if err != nil {
		if errors.Is(err, summarize.ErrEmptyText) {
			writeError(w, http.StatusUnprocessableEntity, "no readable text in file")
			return
		}
		s.logger.Error("summarize failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "summarizer request failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"file_id": f.ID.String(), "summary": summary})
}

// metricName canonicalizes built-in names and passes others through.
func (s *Server) metricName(raw string) models.MetricName {
	if n, ok := models.IsKnownMetricName(raw); ok {
		return n
	}
	for n := range s.units {
		if string(n) == raw {
			return n
		}
	}
	return models.MetricName(raw)
}
