// ABOUTME: Tests for lab metric models.
// ABOUTME: Validates units, name lookup, record construction, and filters.
package models

import (
	"testing"
	"time"
)

func TestMetricUnits(t *testing.T) {
	tests := []struct {
		name     MetricName
		wantUnit string
	}{
		{MetricHemoglobin, "g/dL"},
		{MetricGlucose, "mg/dL"},
		{MetricCRP, "mg/L"},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			if got := MetricUnits[tt.name]; got != tt.wantUnit {
				t.Errorf("MetricUnits[%s] = %s, want %s", tt.name, got, tt.wantUnit)
			}
		})
	}
}

func TestAllMetricNamesHaveUnits(t *testing.T) {
	for _, n := range AllMetricNames {
		if _, ok := MetricUnits[n]; !ok {
			t.Errorf("MetricName %s has no unit defined", n)
		}
	}
}

func TestIsKnownMetricName(t *testing.T) {
	tests := []struct {
		input  string
		want   MetricName
		wantOK bool
	}{
		{"Hemoglobin", MetricHemoglobin, true},
		{"hemoglobin", MetricHemoglobin, true},
		{"crp", MetricCRP, true},
		{"GLUCOSE", MetricGlucose, true},
		{"weight", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := IsKnownMetricName(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("IsKnownMetricName(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNewRecord(t *testing.T) {
	observed := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)
	m := ExtractedMetric{Name: MetricGlucose, Value: 90, ObservedDate: observed}

	r := NewRecord("alice", CategoryLabResults, m, "/uploads/alice/lab_results/report.txt")

	if r.ID.String() == "" {
		t.Error("expected UUID to be set")
	}
	if r.MetricName != MetricGlucose || r.Value != 90 {
		t.Errorf("record = %s %v, want Glucose 90", r.MetricName, r.Value)
	}
	if !r.Date.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)) {
		t.Errorf("Date = %v, want truncated day", r.Date)
	}
	if r.SourceFile != "/uploads/alice/lab_results/report.txt" {
		t.Errorf("SourceFile = %q", r.SourceFile)
	}
}

func TestRecordFilterMatch(t *testing.T) {
	r := &Record{Username: "alice", Category: CategoryLabResults, MetricName: MetricCRP}

	tests := []struct {
		name   string
		filter RecordFilter
		want   bool
	}{
		{"empty filter", RecordFilter{}, true},
		{"same user", RecordFilter{Username: "alice"}, true},
		{"other user", RecordFilter{Username: "bob"}, false},
		{"category match", RecordFilter{Category: CategoryLabResults}, true},
		{"category mismatch", RecordFilter{Category: CategoryMRIScans}, false},
		{"metric mismatch", RecordFilter{MetricName: MetricGlucose}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(r); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2025-01-31")
	if err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	if d.Format(DateLayout) != "2025-01-31" {
		t.Errorf("round trip = %s", d.Format(DateLayout))
	}

	if _, err := ParseDay("31-01-2025"); err == nil {
		t.Error("expected error for malformed date")
	}
}
