// ABOUTME: Lab metric models extracted from uploaded medical documents.
// ABOUTME: Defines metric names, units, extracted values, stored records, and trend points.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MetricName identifies a recognized lab measurement.
type MetricName string

const (
	MetricHemoglobin MetricName = "Hemoglobin"
	MetricGlucose    MetricName = "Glucose"
	MetricCRP        MetricName = "CRP"
)

// MetricUnits maps metric names to the unit convention fixed for each name.
var MetricUnits = map[MetricName]string{
	MetricHemoglobin: "g/dL",
	MetricGlucose:    "mg/dL",
	MetricCRP:        "mg/L",
}

// AllMetricNames returns the built-in metric names in declaration order.
var AllMetricNames = []MetricName{MetricHemoglobin, MetricGlucose, MetricCRP}

// IsKnownMetricName checks if a string is one of the built-in metric names.
// Matching is case-insensitive and returns the canonical name.
func IsKnownMetricName(s string) (MetricName, bool) {
	for _, n := range AllMetricNames {
		if strings.EqualFold(string(n), s) {
			return n, true
		}
	}
	return "", false
}

// ExtractedMetric is a single value pulled out of document text.
// It is never mutated after creation.
type ExtractedMetric struct {
	Name         MetricName `json:"metric_name"`
	Value        float64    `json:"value"`
	ObservedDate time.Time  `json:"observed_date"`
}

// Record is a persisted metric row. Records are append-only: repeated uploads
// of the same document add new rows.
type Record struct {
	ID         uuid.UUID  `json:"id" yaml:"id"`
	Username   string     `json:"username" yaml:"username"`
	Category   string     `json:"category" yaml:"category"`
	MetricName MetricName `json:"metric_name" yaml:"metric_name"`
	Value      float64    `json:"metric_value" yaml:"metric_value"`
	Date       time.Time  `json:"date" yaml:"date"`
	SourceFile string     `json:"source_file_path" yaml:"source_file_path"`
	CreatedAt  time.Time  `json:"created_at" yaml:"created_at"`
}

// NewRecord builds a Record for one extracted metric.
func NewRecord(username, category string, m ExtractedMetric, sourceFile string) *Record {
	return &Record{
		ID:         uuid.New(),
		Username:   username,
		Category:   category,
		MetricName: m.Name,
		Value:      m.Value,
		Date:       Day(m.ObservedDate),
		SourceFile: sourceFile,
		CreatedAt:  time.Now(),
	}
}

// TrendPoint is one (date, value) pair of a metric time series.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// RecordFilter narrows record listings. Empty fields match everything.
type RecordFilter struct {
	Username   string
	Category   string
	MetricName MetricName
}

// Match reports whether r passes the filter.
func (f RecordFilter) Match(r *Record) bool {
	if f.Username != "" && r.Username != f.Username {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.MetricName != "" && r.MetricName != f.MetricName {
		return false
	}
	return true
}

// DateLayout is the storage and display format for metric dates.
const DateLayout = "2006-01-02"

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDay parses a YYYY-MM-DD date in the local time zone.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}
