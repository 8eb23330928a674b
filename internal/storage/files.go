// ABOUTME: Uploaded file catalogue operations for SQLite storage.
// ABOUTME: Supports ID prefix lookup and keyword/category/date filtering.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/labtrack/internal/models"
)

// AddFile records metadata for an uploaded file.
func (d *DB) AddFile(f *models.UploadedFile) error {
	_, err := d.db.Exec(`
		INSERT INTO uploaded_files (id, username, category, filename, filepath, upload_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		f.ID.String(),
		f.Username,
		f.Category,
		f.Filename,
		f.Path,
		formatTimestamp(f.UploadedAt),
	)
	if err != nil {
		return fmt.Errorf("add file: %w", err)
	}
	return nil
}

// GetFile retrieves one of username's files by ID or ID prefix.
func (d *DB) GetFile(username, idOrPrefix string) (*models.UploadedFile, error) {
	rows, err := d.db.Query(`
		SELECT id, username, category, filename, filepath, upload_date
		FROM uploaded_files
		WHERE username = ? AND id LIKE ? || '%'
		LIMIT 2
	`, username, strings.ToLower(idOrPrefix))
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	defer rows.Close()

	files, err := scanFiles(rows)
	if err != nil {
		return nil, err
	}

	switch len(files) {
	case 0:
		return nil, fmt.Errorf("file %s: %w", idOrPrefix, ErrNotFound)
	case 1:
		return files[0], nil
	default:
		return nil, fmt.Errorf("file %s: %w", idOrPrefix, ErrAmbiguousID)
	}
}

// ListFiles returns username's files matching filter, newest first.
func (d *DB) ListFiles(username string, filter models.FileFilter) ([]*models.UploadedFile, error) {
	query := `
		SELECT id, username, category, filename, filepath, upload_date
		FROM uploaded_files
		WHERE username = ?
	`
	args := []interface{}{username}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	query += " ORDER BY upload_date DESC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	all, err := scanFiles(rows)
	if err != nil {
		return nil, err
	}

	files := []*models.UploadedFile{}
	for _, f := range all {
		if filter.Match(f) {
			files = append(files, f)
		}
	}
	return files, nil
}

func scanFiles(rows *sql.Rows) ([]*models.UploadedFile, error) {
	var files []*models.UploadedFile
	for rows.Next() {
		var f models.UploadedFile
		var idStr, uploadedAt string
		if err := rows.Scan(&idStr, &f.Username, &f.Category, &f.Filename, &f.Path, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		f.ID, _ = uuid.Parse(idStr)
		f.UploadedAt = parseTimestamp(uploadedAt)
		files = append(files, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan files: %w", err)
	}
	return files, nil
}
