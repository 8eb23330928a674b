// ABOUTME: Source documents, uploaded file metadata, and upload categories.
// ABOUTME: Format is derived from the file extension, never from content sniffing.
package models

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Format is the document family a file belongs to.
type Format string

const (
	FormatText    Format = "text"
	FormatPDF     Format = "pdf"
	FormatImage   Format = "image"
	FormatUnknown Format = "unknown"
)

// FormatFromPath derives the document format from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return FormatText
	case ".pdf":
		return FormatPDF
	case ".png", ".jpg", ".jpeg":
		return FormatImage
	default:
		return FormatUnknown
	}
}

// SourceDocument is a stored file handed to the extraction pipeline.
type SourceDocument struct {
	Path     string
	Category string
	Format   Format
}

// NewSourceDocument builds a SourceDocument with its format resolved.
func NewSourceDocument(path, category string) SourceDocument {
	return SourceDocument{Path: path, Category: category, Format: FormatFromPath(path)}
}

// Upload categories.
const (
	CategoryLabResults    = "lab_results"
	CategoryMRIScans      = "mri_scans"
	CategoryClinicalNotes = "clinical_notes"
)

// Categories lists every valid upload category.
var Categories = []string{CategoryLabResults, CategoryMRIScans, CategoryClinicalNotes}

// ErrInvalidCategory is returned for categories outside Categories.
var ErrInvalidCategory = errors.New("invalid category")

// IsValidCategory checks if s is one of Categories.
func IsValidCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// UploadedFile is the catalogue entry for a saved upload.
type UploadedFile struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Username   string    `json:"username" yaml:"username"`
	Category   string    `json:"category" yaml:"category"`
	Filename   string    `json:"filename" yaml:"filename"`
	Path       string    `json:"filepath" yaml:"filepath"`
	UploadedAt time.Time `json:"upload_date" yaml:"upload_date"`
}

// FileFilter holds search criteria for uploaded files.
type FileFilter struct {
	Keyword  string
	Category string
	After    *time.Time
}

// Match reports whether f passes the filter. Keyword matching is a
// case-insensitive substring test on the filename; After compares dates only.
func (ff FileFilter) Match(f *UploadedFile) bool {
	if ff.Category != "" && f.Category != ff.Category {
		return false
	}
	if ff.Keyword != "" && !strings.Contains(strings.ToLower(f.Filename), strings.ToLower(ff.Keyword)) {
		return false
	}
	if ff.After != nil && Day(f.UploadedAt).Before(Day(*ff.After)) {
		return false
	}
	return true
}
