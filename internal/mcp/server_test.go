// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers.
package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/labtrack/internal/filestore"
	"github.com/harperreed/labtrack/internal/metricparse"
	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/pipeline"
	"github.com/harperreed/labtrack/internal/storage"
	"github.com/harperreed/labtrack/internal/testutil"
	"github.com/harperreed/labtrack/internal/textextract"
	"github.com/harperreed/labtrack/internal/upload"
)

// setupTestDB creates a test database in a temp directory with user alice.
func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()

	db, err := storage.Open(filepath.Join(t.TempDir(), "labtrack.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.CreateUser(models.NewUser("alice", "hash")); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	return db
}

func setupServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db := setupTestDB(t)

	reg := textextract.NewDefaultRegistry(textextract.Options{Runner: &testutil.FakeRunner{}})
	p := pipeline.New(reg, metricparse.NewDefault(), db)
	uploads := upload.NewService(filestore.New(filepath.Join(t.TempDir(), "uploads"), db), p, nil)

	server, err := NewServer(db, Options{Uploads: uploads, DefaultUser: "alice"})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, db
}

func saveAt(t *testing.T, db *storage.DB, name models.MetricName, value float64, date time.Time) {
	t.Helper()
	m := models.ExtractedMetric{Name: name, Value: value, ObservedDate: date}
	if _, err := db.SaveMetrics("alice", models.CategoryLabResults, []models.ExtractedMetric{m}, "/tmp/labs.txt"); err != nil {
		t.Fatalf("SaveMetrics failed: %v", err)
	}
}

func TestNewServer(t *testing.T) {
	db := setupTestDB(t)

	server, err := NewServer(db, Options{})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.parser == nil {
		t.Error("Expected default parser")
	}
	if server.units[models.MetricGlucose] != "mg/dL" {
		t.Errorf("Glucose unit = %q, want mg/dL", server.units[models.MetricGlucose])
	}
}

func TestHandleIngestDocument(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	path := testutil.WriteFile(t, t.TempDir(), "cbc.txt", []byte("Hemoglobin: 13.5 g/dL\nCRP 2.1 mg/L"))

	tests := []struct {
		name      string
		input     ingestDocumentInput
		wantErr   bool
		errSubstr string
		want      int
	}{
		{
			name:  "text document",
			input: ingestDocumentInput{Path: path, Category: models.CategoryLabResults},
			want:  2,
		},
		{
			name:      "missing file",
			input:     ingestDocumentInput{Path: filepath.Join(t.TempDir(), "nope.txt"), Category: models.CategoryLabResults},
			wantErr:   true,
			errSubstr: "failed to open document",
		},
		{
			name:      "unsupported type",
			input:     ingestDocumentInput{Path: testutil.WriteFile(t, t.TempDir(), "notes.docx", []byte("x")), Category: models.CategoryLabResults},
			wantErr:   true,
			errSubstr: "unsupported file type",
		},
		{
			name:      "invalid category",
			input:     ingestDocumentInput{Path: path, Category: "holiday"},
			wantErr:   true,
			errSubstr: "invalid category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleIngestDocument(ctx, &mcp.CallToolRequest{}, tt.input)

			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				} else if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(output.Metrics) != tt.want {
				t.Errorf("Metrics = %d, want %d", len(output.Metrics), tt.want)
			}
			if len(output.FileID) != 8 {
				t.Errorf("FileID = %q, want 8 chars", output.FileID)
			}
		})
	}

	files, err := db.ListFiles("alice", models.FileFilter{})
	if err != nil || len(files) != 1 {
		t.Errorf("ListFiles = %d, %v; want 1 catalogued file", len(files), err)
	}
}

func TestIngestToolOnlyWithUploads(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db, Options{DefaultUser: "alice"})
	if server.uploads != nil {
		t.Fatal("uploads should be nil")
	}

	// The remaining tools still work without an upload service.
	_, out, err := server.handleParseText(context.Background(), &mcp.CallToolRequest{}, parseTextInput{Text: "Glucose 90 mg/dL"})
	if err != nil || len(out.Metrics) != 1 {
		t.Errorf("parse_text = %+v, %v", out, err)
	}
}

func TestHandleParseText(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	_, out, err := server.handleParseText(ctx, &mcp.CallToolRequest{}, parseTextInput{Text: "CRP: 2.1 mg/L then Glucose 90 mg/dL"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(out.Metrics) != 2 {
		t.Fatalf("Metrics = %+v, want 2", out.Metrics)
	}
	// Rule order, not text order.
	if out.Metrics[0].Name != models.MetricGlucose || out.Metrics[1].Name != models.MetricCRP {
		t.Errorf("order = %s, %s", out.Metrics[0].Name, out.Metrics[1].Name)
	}

	records, _ := db.ListRecords(models.RecordFilter{Username: "alice"}, 0)
	if len(records) != 0 {
		t.Errorf("parse_text stored %d records", len(records))
	}

	_, out, _ = server.handleParseText(ctx, &mcp.CallToolRequest{}, parseTextInput{Text: "nothing here"})
	if out.Message != "No recognizable metrics found." {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestHandleQueryTrend(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	saveAt(t, db, models.MetricHemoglobin, 12.9, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local))
	saveAt(t, db, models.MetricHemoglobin, 13.5, time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local))

	_, out, err := server.handleQueryTrend(ctx, &mcp.CallToolRequest{}, queryTrendInput{Metric: "hemoglobin"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Metric != "Hemoglobin" || out.Unit != "g/dL" {
		t.Errorf("header = %s %s", out.Metric, out.Unit)
	}
	if len(out.Points) != 2 || out.Points[0].Value != 13.5 || out.Points[1].Value != 12.9 {
		t.Errorf("Points = %+v, want ascending by date", out.Points)
	}

	_, out, err = server.handleQueryTrend(ctx, &mcp.CallToolRequest{}, queryTrendInput{Metric: "CRP"})
	if err != nil || out.Points == nil || len(out.Points) != 0 {
		t.Errorf("empty trend = %+v, %v", out.Points, err)
	}

	if _, _, err := server.handleQueryTrend(ctx, &mcp.CallToolRequest{}, queryTrendInput{}); err == nil {
		t.Error("Expected error for missing metric")
	}
}

func TestUserRequiredWithoutDefault(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db, Options{})

	_, _, err := server.handleQueryTrend(context.Background(), &mcp.CallToolRequest{}, queryTrendInput{Metric: "CRP"})
	if err == nil || !strings.Contains(err.Error(), "username is required") {
		t.Errorf("err = %v, want username is required", err)
	}

	_, _, err = server.handleQueryTrend(context.Background(), &mcp.CallToolRequest{}, queryTrendInput{Metric: "CRP", Username: "alice"})
	if err != nil {
		t.Errorf("explicit username: %v", err)
	}
}

func TestHandleGetLatest(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	_, out, err := server.handleGetLatest(ctx, &mcp.CallToolRequest{}, getLatestInput{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if msg, ok := out.(map[string]any)["message"]; !ok || msg != "No metrics recorded." {
		t.Errorf("empty output = %+v", out)
	}

	saveAt(t, db, models.MetricGlucose, 90, time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local))
	saveAt(t, db, models.MetricGlucose, 101, time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local))
	saveAt(t, db, models.MetricCRP, 2.1, time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local))

	_, out, err = server.handleGetLatest(ctx, &mcp.CallToolRequest{}, getLatestInput{Metrics: []string{"glucose"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	results := out.(map[string]any)
	if len(results) != 1 {
		t.Fatalf("results = %+v, want only Glucose", results)
	}
	g := results["Glucose"].(map[string]any)
	if g["value"] != 101.0 || g["date"] != "2025-02-01" {
		t.Errorf("Glucose = %+v", g)
	}
}

func TestHandleListRecords(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		saveAt(t, db, models.MetricCRP, float64(i), time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.Local))
	}
	saveAt(t, db, models.MetricGlucose, 90, time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local))

	_, out, err := server.handleListRecords(ctx, &mcp.CallToolRequest{}, listRecordsInput{Metric: "CRP"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	records := out.(map[string]any)["records"].([]*models.Record)
	if len(records) != 20 {
		t.Errorf("default limit = %d, want 20", len(records))
	}
	if records[0].Value != 24 {
		t.Errorf("first record = %v, want newest (24)", records[0].Value)
	}

	_, out, _ = server.handleListRecords(ctx, &mcp.CallToolRequest{}, listRecordsInput{Category: models.CategoryMRIScans})
	if _, ok := out.(map[string]any)["message"]; !ok {
		t.Errorf("expected empty message, got %+v", out)
	}
}

func TestHandleSearchFiles(t *testing.T) {
	server, _ := setupServer(t)
	ctx := context.Background()

	dir := t.TempDir()
	for _, name := range []string{"bloodwork.txt", "visit.txt"} {
		path := testutil.WriteFile(t, dir, name, []byte("Glucose 90 mg/dL"))
		if _, _, err := server.handleIngestDocument(ctx, &mcp.CallToolRequest{}, ingestDocumentInput{Path: path, Category: models.CategoryLabResults}); err != nil {
			t.Fatalf("ingest %s: %v", name, err)
		}
	}

	_, out, err := server.handleSearchFiles(ctx, &mcp.CallToolRequest{}, searchFilesInput{Keyword: "blood"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	files := out.(map[string]any)["files"].([]*models.UploadedFile)
	if len(files) != 1 || !strings.Contains(files[0].Filename, "bloodwork") {
		t.Errorf("files = %+v", files)
	}

	if _, _, err := server.handleSearchFiles(ctx, &mcp.CallToolRequest{}, searchFilesInput{After: "last week"}); err == nil {
		t.Error("Expected error for bad date")
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Format(models.DateLayout)
	_, out, _ = server.handleSearchFiles(ctx, &mcp.CallToolRequest{}, searchFilesInput{After: tomorrow})
	if _, ok := out.(map[string]any)["message"]; !ok {
		t.Errorf("expected no files after tomorrow, got %+v", out)
	}
}

func TestHandleLatestResource(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	saveAt(t, db, models.MetricHemoglobin, 13.5, time.Now())

	result, err := server.handleLatestResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("Contents = %d, want 1", len(result.Contents))
	}
	c := result.Contents[0]
	if c.URI != latestURI {
		t.Errorf("URI = %s, want %s", c.URI, latestURI)
	}
	if c.MIMEType != "application/json" {
		t.Errorf("MIMEType = %s, want application/json", c.MIMEType)
	}

	var body struct {
		User    string                    `json:"user"`
		Metrics map[string]map[string]any `json:"metrics"`
	}
	if err := json.Unmarshal([]byte(c.Text), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.User != "alice" || body.Metrics["Hemoglobin"]["value"] != 13.5 {
		t.Errorf("body = %+v", body)
	}
}

func TestHandleRecentResource(t *testing.T) {
	server, db := setupServer(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		saveAt(t, db, models.MetricCRP, float64(i), time.Now())
	}

	result, err := server.handleRecentResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Contents[0].URI != recentURI {
		t.Errorf("URI = %s, want %s", result.Contents[0].URI, recentURI)
	}

	var body struct {
		Records []models.Record       `json:"records"`
		Files   []models.UploadedFile `json:"files"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(body.Records) != 10 {
		t.Errorf("Records = %d, want 10", len(body.Records))
	}
}

func TestResourcesNeedDefaultUser(t *testing.T) {
	db := setupTestDB(t)
	server, _ := NewServer(db, Options{})

	if _, err := server.handleRecentResource(context.Background(), &mcp.ReadResourceRequest{}); err == nil {
		t.Error("Expected error without default user")
	}
}
