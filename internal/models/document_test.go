// ABOUTME: Tests for document formats, categories, and file search filters.
// ABOUTME: Covers extension-based format detection and keyword/date matching.
package models

import (
	"testing"
	"time"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"report.txt", FormatText},
		{"REPORT.TXT", FormatText},
		{"scan.pdf", FormatPDF},
		{"photo.png", FormatImage},
		{"photo.JPG", FormatImage},
		{"photo.jpeg", FormatImage},
		{"notes.docx", FormatUnknown},
		{"noext", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatFromPath(tt.path); got != tt.want {
				t.Errorf("FormatFromPath(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !IsValidCategory(c) {
			t.Errorf("IsValidCategory(%q) = false", c)
		}
	}
	if IsValidCategory("x_rays") {
		t.Error("IsValidCategory(x_rays) = true")
	}
}

func TestFileFilterMatch(t *testing.T) {
	f := &UploadedFile{
		Category:   CategoryLabResults,
		Filename:   "20250301_120000_Blood_Panel.pdf",
		UploadedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local),
	}
	before := time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local)
	sameDay := time.Date(2025, 3, 1, 18, 0, 0, 0, time.Local)
	after := time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name   string
		filter FileFilter
		want   bool
	}{
		{"no criteria", FileFilter{}, true},
		{"keyword case-insensitive", FileFilter{Keyword: "blood"}, true},
		{"keyword miss", FileFilter{Keyword: "mri"}, false},
		{"category miss", FileFilter{Category: CategoryClinicalNotes}, false},
		{"uploaded after earlier date", FileFilter{After: &before}, true},
		{"uploaded same day", FileFilter{After: &sameDay}, true},
		{"uploaded before filter date", FileFilter{After: &after}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(f); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"alice", "bob.smith", "user_01", "a-b"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v", u, err)
		}
	}

	invalid := []string{"", ".", "..", "a:b", "a/b", "with space"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) expected error", u)
		}
	}
}
