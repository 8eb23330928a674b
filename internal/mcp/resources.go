// ABOUTME: MCP resource implementations for lab metrics.
// ABOUTME: Provides labtrack://metrics/latest and labtrack://records/recent.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/labtrack/internal/models"
)

const (
	latestURI = "labtrack://metrics/latest"
	recentURI = "labtrack://records/recent"
)

func (s *Server) registerResources() {
	// latest value of each configured metric for the default user
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         latestURI,
		Name:        "Latest Lab Values",
		Description: "Most recent value of each tracked metric",
		MIMEType:    "application/json",
	}, s.handleLatestResource)

	// last 10 stored records and uploads
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Lab Records",
		Description: "Last 10 metric records and 5 uploaded documents",
		MIMEType:    "application/json",
	}, s.handleRecentResource)
}

// Resource handlers

func (s *Server) handleLatestResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	username, err := s.user("")
	if err != nil {
		return nil, err
	}

	latest, err := s.latest(username, s.metricNames())
	if err != nil {
		return nil, err
	}

	return jsonResource(latestURI, map[string]any{
		"user":         username,
		"generated_at": time.Now().Format(time.RFC3339),
		"metrics":      latest,
	})
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	username, err := s.user("")
	if err != nil {
		return nil, err
	}

	records, err := s.repo.ListRecords(models.RecordFilter{Username: username}, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	files, err := s.repo.ListFiles(username, models.FileFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) > 5 {
		files = files[:5]
	}

	return jsonResource(recentURI, map[string]any{
		"records": records,
		"files":   files,
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
