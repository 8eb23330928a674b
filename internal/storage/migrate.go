// ABOUTME: Data migration between labtrack storage backends.
// ABOUTME: Copies users, uploaded file metadata, and metric records from source to destination.

package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/harperreed/labtrack/internal/models"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Users   int
	Files   int
	Records int
}

// MigrateData copies all data from src to dst storage. The destination
// should be empty before calling this function; users already present in
// dst are skipped and not counted.
func MigrateData(src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	users, err := src.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list source users: %w", err)
	}

	for _, u := range users {
		if err := dst.CreateUser(u); err != nil {
			if isUserExists(err) {
				continue
			}
			return nil, fmt.Errorf("create user %s: %w", u.Username, err)
		}
		summary.Users++

		files, err := src.ListFiles(u.Username, models.FileFilter{})
		if err != nil {
			return nil, fmt.Errorf("list files for %s: %w", u.Username, err)
		}
		for _, f := range files {
			if err := dst.AddFile(f); err != nil {
				return nil, fmt.Errorf("add file %s: %w", f.ID, err)
			}
			summary.Files++
		}
	}

	records, err := src.ListRecords(models.RecordFilter{}, 0)
	if err != nil {
		return nil, fmt.Errorf("list source records: %w", err)
	}

	// ListRecords is newest first; append oldest first so same-day ties
	// keep their order in dst.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if err := dst.AppendRecords(records); err != nil {
		return nil, fmt.Errorf("append records: %w", err)
	}
	summary.Records = len(records)

	return summary, nil
}

func isUserExists(err error) bool {
	return errors.Is(err, ErrUserExists)
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
