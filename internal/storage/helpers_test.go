// ABOUTME: Shared test helpers for storage backends.
// ABOUTME: forEachBackend runs a test against SQLite and badger.
package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/labtrack/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "labtrack.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func setupTestKV(t *testing.T) *KV {
	t.Helper()

	kv, err := OpenKV(filepath.Join(t.TempDir(), "kv"), nil)
	if err != nil {
		t.Fatalf("Failed to open kv store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	return kv
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, setupTestDB(t)) })
	t.Run("badger", func(t *testing.T) { fn(t, setupTestKV(t)) })
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 9, 30, 0, 0, time.Local)
}

func metric(name models.MetricName, value float64, observed time.Time) models.ExtractedMetric {
	return models.ExtractedMetric{Name: name, Value: value, ObservedDate: observed}
}
