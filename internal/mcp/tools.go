// ABOUTME: MCP tool implementations for lab metrics.
// ABOUTME: Ingests documents, previews extraction, and queries metric history.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/storage"
)

func (s *Server) registerTools() {
	// ingest_document
	if s.uploads != nil {
		mcp.AddTool(s.mcpServer, &mcp.Tool{
			Name:        "ingest_document",
			Description: "Store a local lab document (txt, pdf, png, jpg) and extract its metrics",
		}, s.handleIngestDocument)
	}

	// parse_text
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "parse_text",
		Description: "Preview which metrics would be extracted from text, without saving",
	}, s.handleParseText)

	// query_trend
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_trend",
		Description: "Get one metric's values over time, oldest first",
	}, s.handleQueryTrend)

	// get_latest
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_latest",
		Description: "Get the most recent value for one or more metrics",
	}, s.handleGetLatest)

	// list_records
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_records",
		Description: "List stored metric records, newest first",
	}, s.handleListRecords)

	// search_files
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_files",
		Description: "Search uploaded documents by keyword, category, or date",
	}, s.handleSearchFiles)
}

// Tool input/output types

type ingestDocumentInput struct {
	Path     string `json:"path" jsonschema:"Path to the document on the local filesystem"`
	Category string `json:"category" jsonschema:"Document category (lab_results, mri_scans, clinical_notes)"`
	Username string `json:"username,omitempty" jsonschema:"Owner of the document, defaults to the configured user"`
}

type ingestDocumentOutput struct {
	FileID  string                   `json:"file_id"`
	Stored  string                   `json:"stored_as"`
	Metrics []models.ExtractedMetric `json:"metrics"`
	Message string                   `json:"message"`
}

type parseTextInput struct {
	Text string `json:"text" jsonschema:"Raw document text to scan for metrics"`
}

type parseTextOutput struct {
	Metrics []models.ExtractedMetric `json:"metrics"`
	Message string                   `json:"message"`
}

type queryTrendInput struct {
	Metric   string `json:"metric" jsonschema:"Metric name, for example Hemoglobin, Glucose or CRP"`
	Username string `json:"username,omitempty" jsonschema:"User to query, defaults to the configured user"`
}

type queryTrendOutput struct {
	Metric string              `json:"metric"`
	Unit   string              `json:"unit,omitempty"`
	Points []models.TrendPoint `json:"points"`
}

type getLatestInput struct {
	Metrics  []string `json:"metrics,omitempty" jsonschema:"Metric names, defaults to every configured metric"`
	Username string   `json:"username,omitempty" jsonschema:"User to query, defaults to the configured user"`
}

type listRecordsInput struct {
	Category string `json:"category,omitempty" jsonschema:"Filter by document category"`
	Metric   string `json:"metric,omitempty" jsonschema:"Filter by metric name"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
	Username string `json:"username,omitempty" jsonschema:"User to query, defaults to the configured user"`
}

type searchFilesInput struct {
	Keyword  string `json:"keyword,omitempty" jsonschema:"Case-insensitive filename substring"`
	Category string `json:"category,omitempty" jsonschema:"Filter by document category"`
	After    string `json:"after,omitempty" jsonschema:"Only files uploaded on or after this date (YYYY-MM-DD)"`
	Username string `json:"username,omitempty" jsonschema:"User to query, defaults to the configured user"`
}

// Tool handlers

func (s *Server) handleIngestDocument(ctx context.Context, req *mcp.CallToolRequest, input ingestDocumentInput) (*mcp.CallToolResult, ingestDocumentOutput, error) {
	username, err := s.user(input.Username)
	if err != nil {
		return nil, ingestDocumentOutput{}, err
	}

	f, err := os.Open(input.Path)
	if err != nil {
		return nil, ingestDocumentOutput{}, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	res, err := s.uploads.Upload(ctx, username, input.Category, filepath.Base(input.Path), f)
	if err != nil {
		return nil, ingestDocumentOutput{}, fmt.Errorf("failed to ingest document: %w", err)
	}

	return nil, ingestDocumentOutput{
		FileID:  res.File.ID.String()[:8],
		Stored:  res.File.Filename,
		Metrics: res.Metrics,
		Message: res.Message(),
	}, nil
}

func (s *Server) handleParseText(ctx context.Context, req *mcp.CallToolRequest, input parseTextInput) (*mcp.CallToolResult, parseTextOutput, error) {
	metrics := s.parser.Extract(input.Text)
	msg := "No recognizable metrics found."
	if len(metrics) > 0 {
		msg = fmt.Sprintf("Found %d metric(s).", len(metrics))
	}
	return nil, parseTextOutput{Metrics: metrics, Message: msg}, nil
}

func (s *Server) handleQueryTrend(ctx context.Context, req *mcp.CallToolRequest, input queryTrendInput) (*mcp.CallToolResult, queryTrendOutput, error) {
	username, err := s.user(input.Username)
	if err != nil {
		return nil, queryTrendOutput{}, err
	}
	if input.Metric == "" {
		return nil, queryTrendOutput{}, fmt.Errorf("metric is required")
	}

	name := s.metricName(input.Metric)
	points, err := s.repo.QueryTrend(username, name)
	if err != nil {
		return nil, queryTrendOutput{}, fmt.Errorf("failed to query trend: %w", err)
	}
	if points == nil {
		points = []models.TrendPoint{}
	}

	return nil, queryTrendOutput{Metric: string(name), Unit: s.units[name], Points: points}, nil
}

func (s *Server) handleGetLatest(ctx context.Context, req *mcp.CallToolRequest, input getLatestInput) (*mcp.CallToolResult, any, error) {
	username, err := s.user(input.Username)
	if err != nil {
		return nil, nil, err
	}

	names := s.metricNames()
	if len(input.Metrics) > 0 {
		names = names[:0]
		for _, m := range input.Metrics {
			names = append(names, s.metricName(m))
		}
	}

	results, err := s.latest(username, names)
	if err != nil {
		return nil, nil, err
	}
	if len(results) == 0 {
		return nil, map[string]any{"message": "No metrics recorded."}, nil
	}
	return nil, results, nil
}

// latest returns the newest point per metric, skipping metrics with none.
func (s *Server) latest(username string, names []models.MetricName) (map[string]any, error) {
	results := make(map[string]any)
	for _, n := range names {
		p, err := s.repo.QueryLatest(username, n)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get latest %s: %w", n, err)
		}
		results[string(n)] = map[string]any{
			"value": p.Value,
			"unit":  s.units[n],
			"date":  p.Date.Format(models.DateLayout),
		}
	}
	return results, nil
}

func (s *Server) handleListRecords(ctx context.Context, req *mcp.CallToolRequest, input listRecordsInput) (*mcp.CallToolResult, any, error) {
	username, err := s.user(input.Username)
	if err != nil {
		return nil, nil, err
	}
	if input.Limit <= 0 {
		input.Limit = 20
	}

	filter := models.RecordFilter{Username: username, Category: input.Category}
	if input.Metric != "" {
		filter.MetricName = s.metricName(input.Metric)
	}

	records, err := s.repo.ListRecords(filter, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list records: %w", err)
	}

	if len(records) == 0 {
		return nil, map[string]any{"message": "No records found."}, nil
	}

	return nil, map[string]any{"records": records}, nil
}

func (s *Server) handleSearchFiles(ctx context.Context, req *mcp.CallToolRequest, input searchFilesInput) (*mcp.CallToolResult, any, error) {
	username, err := s.user(input.Username)
	if err != nil {
		return nil, nil, err
	}

	filter := models.FileFilter{Keyword: input.Keyword, Category: input.Category}
	if input.After != "" {
		after, err := models.ParseDay(input.After)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD", input.After)
		}
		filter.After = &after
	}

	files, err := s.repo.ListFiles(username, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search files: %w", err)
	}

	if len(files) == 0 {
		return nil, map[string]any{"message": "No files found."}, nil
	}

	return nil, map[string]any{"files": files}, nil
}
