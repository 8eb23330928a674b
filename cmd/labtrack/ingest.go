// ABOUTME: CLI commands for ingesting documents and previewing extraction.
// ABOUTME: ingest stores and extracts; extract only reads and parses.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/labtrack/internal/models"
)

var (
	ingestCategory string
	extractShow    bool
)

var ingestCmd = &cobra.Command{
	Use:     "ingest <file>...",
	Aliases: []string{"upload", "add"},
	Short:   "Store documents and extract their lab values",
	Long: `Store one or more documents and extract lab values from them.

Each file is copied into the upload directory, catalogued, and scanned.
Extraction problems never undo the upload: the file stays stored and the
command reports separately whether values were found.

CATEGORIES:

  lab_results (default), mri_scans, clinical_notes

EXAMPLES:

  labtrack ingest cbc.pdf
  labtrack ingest scan.jpg --category clinical_notes
  labtrack ingest reports/*.txt -u alice`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := currentUser()
		if err != nil {
			return err
		}

		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		uploads := newUploads(p)

		faint := color.New(color.Faint)
		for _, path := range args {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			res, err := uploads.Upload(cmd.Context(), username, ingestCategory, filepath.Base(path), f)
			f.Close()
			if err != nil {
				return fmt.Errorf("failed to ingest %s: %w", path, err)
			}

			color.Green("✓ Stored %s", res.File.Filename)
			fmt.Printf("  %s %s\n", faint.Sprint(res.File.ID.String()[:8]), res.File.Category)
			for _, m := range res.Metrics {
				fmt.Printf("  %s %.2f %s\n", padRight(string(m.Name), 12), m.Value, unitFor(m.Name))
			}
			if res.ExtractErr != nil {
				color.Yellow("  %s", res.Message())
				faint.Printf("  %v\n", res.ExtractErr)
			} else {
				fmt.Printf("  %s\n", res.Message())
			}
		}
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Show the lab values a document would yield, without saving",
	Long: `Extract text from a document and show the lab values found in it.

Nothing is stored. Use --text to print the extracted text as well, which helps
when tuning metric rules or OCR settings.

EXAMPLES:

  labtrack extract cbc.pdf
  labtrack extract photo.png --text`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, parser, err := newPipeline()
		if err != nil {
			return err
		}
		if !p.Supports(args[0]) {
			return fmt.Errorf("unsupported file type: %s", filepath.Ext(args[0]))
		}

		text, err := p.ExtractText(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to extract text: %w", err)
		}

		if extractShow {
			fmt.Println(text)
			fmt.Println()
		}

		metrics := parser.Extract(text)
		if len(metrics) == 0 {
			fmt.Println("No recognizable metrics found.")
			return nil
		}
		for _, m := range metrics {
			fmt.Printf("%s %.2f %s\n", padRight(string(m.Name), 12), m.Value, unitFor(m.Name))
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCategory, "category", "c", models.CategoryLabResults, "document category")
	extractCmd.Flags().BoolVar(&extractShow, "text", false, "print the extracted text")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(extractCmd)
}
