// ABOUTME: MCP server setup for the lab metrics store.
// ABOUTME: Wraps the MCP server with repository, upload, and parser access.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/labtrack/internal/metricparse"
	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/storage"
	"github.com/harperreed/labtrack/internal/upload"
)

// Options configures the optional parts of the server.
type Options struct {
	// Uploads enables the ingest_document tool.
	Uploads *upload.Service

	// Parser backs parse_text. Defaults to the built-in rules.
	Parser *metricparse.Extractor

	// DefaultUser is used when a tool call names no user.
	DefaultUser string
}

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer   *mcp.Server
	repo        storage.Repository
	uploads     *upload.Service
	parser      *metricparse.Extractor
	defaultUser string
	units       map[models.MetricName]string
}

// NewServer creates a new MCP server with the given storage.
func NewServer(repo storage.Repository, opts Options) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "labtrack",
			Version: "1.0.0",
		},
		nil,
	)

	parser := opts.Parser
	if parser == nil {
		parser = metricparse.NewDefault()
	}

	units := make(map[models.MetricName]string)
	for _, r := range parser.Rules() {
		units[r.Name] = r.Unit
	}

	s := &Server{
		mcpServer:   mcpServer,
		repo:        repo,
		uploads:     opts.Uploads,
		parser:      parser,
		defaultUser: opts.DefaultUser,
		units:       units,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// user picks the explicit username or falls back to the default.
func (s *Server) user(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if s.defaultUser == "" {
		return "", fmt.Errorf("username is required (no default user configured)")
	}
	return s.defaultUser, nil
}

// metricNames returns the configured metric names in rule order.
func (s *Server) metricNames() []models.MetricName {
	rules := s.parser.Rules()
	names := make([]models.MetricName, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Name)
	}
	return names
}

func (s *Server) metricName(raw string) models.MetricName {
	if n, ok := models.IsKnownMetricName(raw); ok {
		return n
	}
	return models.MetricName(raw)
}
