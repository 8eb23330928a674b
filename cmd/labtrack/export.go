// ABOUTME: CLI commands for exporting and importing labtrack data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/storage"
)

var (
	exportOutput string
	exportMetric string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export labtrack data",
	Long: `Export labtrack data in various formats.

FORMATS:

  json       Full JSON export of users, files and records (backup/restore)
  yaml       YAML export grouped by user and metric (human-readable)
  markdown   Markdown tables per metric for the current user

OPTIONS:

  --output, -o   Write to file instead of stdout
  --metric, -m   Filter by metric name (markdown only)
  --since        Only include values dated on or after YYYY-MM-DD (markdown only)

EXAMPLES:

  labtrack export json -o backup.json
  labtrack export yaml
  labtrack export markdown --metric glucose --since 2025-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = storage.ExportJSON(repo)
		case "yaml":
			data, err = storage.ExportYAML(repo)
		case "markdown":
			username, err := currentUser()
			if err != nil {
				return err
			}
			filter := models.RecordFilter{Username: username}
			if exportMetric != "" {
				filter.MetricName = metricArg(exportMetric)
			}
			var since *time.Time
			if exportSince != "" {
				t, err := models.ParseDay(exportSince)
				if err != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			md, err := storage.ExportMarkdown(repo, filter, since)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import labtrack data from JSON",
	Long: `Import labtrack data from a JSON backup file.

Users that already exist are kept as they are; their files and records from
the backup are still imported. Files and records keep their IDs, so importing
a backup into a store that already holds them fails.

EXAMPLES:

  labtrack import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		if err := storage.ImportJSON(repo, data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportMetric, "metric", "m", "", "filter by metric name (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
