// ABOUTME: Upload handling: save the file, then extract and store its metrics.
// ABOUTME: Extraction and storage failures never undo a successful file save.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/harperreed/labtrack/internal/filestore"
	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/pipeline"
)

// ErrUnsupportedType is returned for file extensions with no extractor.
var ErrUnsupportedType = errors.New("unsupported file type")

// Result is the outcome of one upload. File is always set; ExtractErr
// records a failure after the file was saved.
type Result struct {
	File       *models.UploadedFile
	Metrics    []models.ExtractedMetric
	ExtractErr error
}

// Message renders the user-facing extraction summary.
func (r *Result) Message() string {
	if r.ExtractErr != nil {
		if pipeline.IsStorageFailure(r.ExtractErr) {
			return fmt.Sprintf("File saved, but %d extracted metric(s) could not be stored.", len(r.Metrics))
		}
		return "File saved, but metric extraction failed."
	}
	if len(r.Metrics) == 0 {
		return "No recognizable metrics found in this file."
	}
	return fmt.Sprintf("Extracted and saved %d health metric(s) from this file.", len(r.Metrics))
}

// Service wires the file store to the extraction pipeline.
type Service struct {
	files    *filestore.Store
	pipeline *pipeline.Orchestrator
	logger   *zap.Logger
}

// NewService creates an upload Service.
func NewService(files *filestore.Store, p *pipeline.Orchestrator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{files: files, pipeline: p, logger: logger}
}

// Upload saves r as filename for username and runs extract_and_save on it.
// The returned error covers only the file save.
func (s *Service) Upload(ctx context.Context, username, category, filename string, r io.Reader) (*Result, error) {
	if !s.pipeline.Supports(filename) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, strings.ToLower(filepath.Ext(filename)))
	}

	uf, err := s.files.Save(ctx, username, category, filename, r)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	res := &Result{File: uf}
	res.Metrics, res.ExtractErr = s.pipeline.ExtractAndSave(ctx, username, category, uf.Path)
	if res.ExtractErr != nil {
		s.logger.Error("extract after upload failed",
			zap.String("user", username),
			zap.String("path", uf.Path),
			zap.Error(res.ExtractErr),
		)
	}
	if res.Metrics == nil {
		res.Metrics = []models.ExtractedMetric{}
	}
	return res, nil
}
