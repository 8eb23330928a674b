// ABOUTME: Saves uploaded documents under <root>/<user>/<category>/ with timestamped names.
// ABOUTME: Each saved file is recorded in the file catalogue for search and filtering.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/storage"
)

// ErrInvalidFilename is returned for names that are empty or only dots.
var ErrInvalidFilename = errors.New("invalid filename")

const stampLayout = "20060102_150405"

// Store writes uploads to disk.
type Store struct {
	root    string
	catalog storage.FileCatalog
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store rooted at root.
func New(root string, catalog storage.FileCatalog, opts ...Option) *Store {
	s := &Store{
		root:    root,
		catalog: catalog,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the upload root directory.
func (s *Store) Root() string {
	return s.root
}

// CleanFilename strips directories and separators from a client-supplied name.
func CleanFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || strings.Trim(name, ".") == "" || name == "/" {
		return "", ErrInvalidFilename
	}
	return name, nil
}

// Save copies r to <root>/<user>/<category>/<YYYYmmdd_HHMMSS>_<name> and
// catalogues it. If cataloguing fails the written file is removed.
func (s *Store) Save(ctx context.Context, username, category, filename string, r io.Reader) (*models.UploadedFile, error) {
	if err := models.ValidateUsername(username); err != nil {
		return nil, err
	}
	if !models.IsValidCategory(category) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidCategory, category)
	}
	name, err := CleanFilename(filename)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, username, category)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	now := s.now()
	f, stored, err := createUnique(dir, now.Format(stampLayout)+"_"+name)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, stored)

	if _, err := io.Copy(f, &ctxReader{ctx: ctx, r: r}); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close upload: %w", err)
	}

	uf := &models.UploadedFile{
		ID:         uuid.New(),
		Username:   username,
		Category:   category,
		Filename:   stored,
		Path:       path,
		UploadedAt: now,
	}
	if err := s.catalog.AddFile(uf); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("catalogue upload: %w", err)
	}

	s.logger.Info("file saved",
		zap.String("user", username),
		zap.String("category", category),
		zap.String("path", path),
	)
	return uf, nil
}

// createUnique creates dir/name exclusively, appending -1, -2, ... before
// the extension when the name is taken.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 1; i <= 100; i++ {
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("create upload file: %w", err)
		}
		candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
	}
	return nil, "", fmt.Errorf("create upload file: too many files named %s", name)
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
