// ABOUTME: Repository interfaces for lab metric, file catalogue, and user storage.
// ABOUTME: Backends (SQLite, badger) implement the same contracts.
package storage

import (
	"errors"

	"github.com/harperreed/labtrack/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("user already exists")

	// ErrAmbiguousID is returned when an ID prefix matches several entries.
	ErrAmbiguousID = errors.New("ambiguous id prefix")
)

// MetricStore persists extracted metrics as append-only records.
type MetricStore interface {
	// SaveMetrics appends one record per metric in a single batch and
	// returns the stored records.
	SaveMetrics(username, category string, metrics []models.ExtractedMetric, sourceFile string) ([]*models.Record, error)

	// AppendRecords stores prebuilt records in a single batch.
	AppendRecords(records []*models.Record) error

	// QueryTrend returns a user's values for one metric ascending by date.
	QueryTrend(username string, name models.MetricName) ([]models.TrendPoint, error)

	// QueryLatest returns the most recent value, or ErrNotFound.
	QueryLatest(username string, name models.MetricName) (*models.TrendPoint, error)

	// ListRecords returns raw records newest first. limit <= 0 means all.
	ListRecords(filter models.RecordFilter, limit int) ([]*models.Record, error)
}

// FileCatalog records metadata for uploaded files.
type FileCatalog interface {
	AddFile(f *models.UploadedFile) error
	GetFile(username, idOrPrefix string) (*models.UploadedFile, error)
	ListFiles(username string, filter models.FileFilter) ([]*models.UploadedFile, error)
}

// UserStore holds registered accounts.
type UserStore interface {
	CreateUser(u *models.User) error
	GetUser(username string) (*models.User, error)
	ListUsers() ([]*models.User, error)
}

// Repository is the full storage surface of a backend.
type Repository interface {
	MetricStore
	FileCatalog
	UserStore

	Close() error
}

// buildRecords turns extracted metrics into records ready for AppendRecords.
func buildRecords(username, category string, metrics []models.ExtractedMetric, sourceFile string) []*models.Record {
	records := make([]*models.Record, 0, len(metrics))
	for _, m := range metrics {
		records = append(records, models.NewRecord(username, category, m, sourceFile))
	}
	return records
}
