// ABOUTME: Orchestrator that turns a stored document into saved lab metrics.
// ABOUTME: Dispatches by extension, degrades recoverable extraction failures, and persists results last.
package pipeline

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/harperreed/labtrack/internal/metricparse"
	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/storage"
	"github.com/harperreed/labtrack/internal/textextract"
)

// DefaultTimeout bounds a single extraction.
const DefaultTimeout = 30 * time.Second

// DegradePolicy decides whether an extraction error becomes empty text.
type DegradePolicy func(err error) bool

// Orchestrator runs extract_and_save for uploaded documents.
type Orchestrator struct {
	registry *textextract.Registry
	parser   *metricparse.Extractor
	store    storage.MetricStore
	logger   *zap.Logger
	timeout  time.Duration
	workers  int
	sem      *semaphore.Weighted
	degrade  DegradePolicy
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithTimeout bounds each extraction. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithWorkers limits how many extractions run at once.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithDegradePolicy replaces the default textextract.IsRecoverable policy.
func WithDegradePolicy(p DegradePolicy) Option {
	return func(o *Orchestrator) { o.degrade = p }
}

// New creates an Orchestrator.
func New(registry *textextract.Registry, parser *metricparse.Extractor, store storage.MetricStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		parser:   parser,
		store:    store,
		logger:   zap.NewNop(),
		timeout:  DefaultTimeout,
		workers:  runtime.NumCPU(),
		degrade:  textextract.IsRecoverable,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.sem = semaphore.NewWeighted(int64(o.workers))
	return o
}

// Outcome describes one processed document.
type Outcome struct {
	Metrics  []models.ExtractedMetric
	Records  []*models.Record
	Format   models.Format
	Method   string
	Pages    int
	Duration time.Duration
	Degraded bool
}

// ExtractAndSave extracts metrics from path and stores them for username.
// It returns the extracted metrics even when storing them fails; that case is
// reported as a *StorageError. Unsupported formats and blank text yield an
// empty list and leave the store untouched.
func (o *Orchestrator) ExtractAndSave(ctx context.Context, username, category, path string) ([]models.ExtractedMetric, error) {
	out, err := o.Process(ctx, username, models.NewSourceDocument(path, category))
	if out == nil {
		return nil, err
	}
	return out.Metrics, err
}

// Process is ExtractAndSave with extraction details included.
func (o *Orchestrator) Process(ctx context.Context, username string, doc models.SourceDocument) (*Outcome, error) {
	if doc.Format == "" {
		doc.Format = models.FormatFromPath(doc.Path)
	}
	log := o.logger.With(
		zap.String("user", username),
		zap.String("category", doc.Category),
		zap.String("path", doc.Path),
		zap.String("format", string(doc.Format)),
	)

	res, degraded, err := o.extract(ctx, doc.Path)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Metrics:  []models.ExtractedMetric{},
		Format:   doc.Format,
		Method:   res.Method,
		Pages:    res.Pages,
		Duration: res.Duration,
		Degraded: degraded,
	}

	if strings.TrimSpace(res.Text) == "" {
		log.Debug("no text extracted", zap.String("method", res.Method))
		return out, nil
	}

	out.Metrics = o.parser.Extract(res.Text)
	if len(out.Metrics) == 0 {
		log.Debug("no metrics matched", zap.String("method", res.Method))
		return out, nil
	}

	records, err := o.store.SaveMetrics(username, doc.Category, out.Metrics, doc.Path)
	if err != nil {
		log.Error("save metrics failed", zap.Int("metrics", len(out.Metrics)), zap.Error(err))
		return out, &StorageError{Op: "save", Err: err}
	}
	out.Records = records

	log.Info("metrics saved",
		zap.String("method", res.Method),
		zap.Int("metrics", len(out.Metrics)),
		zap.Duration("duration", res.Duration),
	)
	return out, nil
}

// ExtractText returns the document text with the degrade policy applied.
// Unsupported formats return "".
func (o *Orchestrator) ExtractText(ctx context.Context, path string) (string, error) {
	res, _, err := o.extract(ctx, path)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// ExtensionForMIME maps a content type onto a supported file extension.
func (o *Orchestrator) ExtensionForMIME(mimeType string) (string, bool) {
	return o.registry.ExtensionForMIME(mimeType)
}

// Supports reports whether path has a registered extractor.
func (o *Orchestrator) Supports(path string) bool {
	return o.registry.Supports(path)
}

func (o *Orchestrator) extract(ctx context.Context, path string) (textextract.Result, bool, error) {
	ex, ok := o.registry.Lookup(path)
	if !ok {
		o.logger.Debug("unsupported format", zap.String("path", path))
		return textextract.Result{}, false, nil
	}

	if err := o.sem.Acquire(ctx, 1); err != nil {
		return textextract.Result{}, false, err
	}
	defer o.sem.Release(1)

	ectx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	res, err := ex.Extract(ectx, path)
	if err == nil {
		return res, false, nil
	}

	// Caller cancellation is not an extraction failure.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return textextract.Result{}, false, ctxErr
	}

	if o.degrade != nil && o.degrade(err) {
		fields := []zap.Field{zap.String("path", path), zap.String("method", res.Method), zap.Error(err)}
		if errors.Is(err, context.DeadlineExceeded) {
			fields = append(fields, zap.Duration("timeout", o.timeout))
		}
		o.logger.Warn("extraction failed, continuing with empty text", fields...)
		return textextract.Result{Method: res.Method}, true, nil
	}
	return textextract.Result{}, false, err
}
