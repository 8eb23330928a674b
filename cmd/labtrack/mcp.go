// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/labtrack/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout. Tools act as --user or the configured
default user unless a call names another user.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "labtrack": {
        "command": "labtrack",
        "args": ["mcp", "--user", "alice"]
      }
    }
  }

AVAILABLE TOOLS:

  ingest_document   Store a local document and extract its values
  parse_text        Preview extraction on raw text
  query_trend       One metric over time
  get_latest        Newest value of one or more metrics
  list_records      Stored records, newest first
  search_files      Search uploaded documents

AVAILABLE RESOURCES:

  labtrack://metrics/latest   Newest value of each metric
  labtrack://records/recent   Recent records and uploads`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, parser, err := newPipeline()
		if err != nil {
			return err
		}

		defaultUser := flagUser
		if defaultUser == "" {
			defaultUser = cfg.DefaultUser
		}

		server, err := mcp.NewServer(repo, mcp.Options{
			Uploads:     newUploads(p),
			Parser:      parser,
			DefaultUser: defaultUser,
		})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
