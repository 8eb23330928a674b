// ABOUTME: CLI commands for uploaded documents.
// ABOUTME: files searches the catalogue; summarize explains one document.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/labtrack/internal/models"
)

var (
	filesKeyword  string
	filesCategory string
	filesAfter    string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Search uploaded documents",
	Long: `List uploaded documents, newest first.

FILTERING:

  --keyword   case-insensitive substring of the stored filename
  --category  lab_results, mri_scans, clinical_notes
  --after     only documents uploaded on or after YYYY-MM-DD

EXAMPLES:

  labtrack files
  labtrack files --keyword cbc --after 2025-01-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := currentUser()
		if err != nil {
			return err
		}

		filter := models.FileFilter{Keyword: filesKeyword, Category: filesCategory}
		if filesAfter != "" {
			after, err := models.ParseDay(filesAfter)
			if err != nil {
				return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", filesAfter)
			}
			filter.After = &after
		}

		files, err := repo.ListFiles(username, filter)
		if err != nil {
			return fmt.Errorf("failed to list files: %w", err)
		}

		if len(files) == 0 {
			fmt.Println("No files found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, f := range files {
			fmt.Printf("%s %s %s %s\n",
				faint.Sprint(f.ID.String()[:8]),
				faint.Sprint(f.UploadedAt.Format("2006-01-02 15:04")),
				padRight(f.Category, 14),
				f.Filename)
		}
		return nil
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file-id>",
	Short: "Explain a stored document in plain language",
	Long: `Send a stored document's text to the configured language model and print a
short plain-language summary.

The API key is read from the environment variable named by
summarizer.api_key_env (default GROQ_API_KEY).

EXAMPLES:

  labtrack summarize 3f2a9c1d`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := currentUser()
		if err != nil {
			return err
		}

		f, err := repo.GetFile(username, args[0])
		if err != nil {
			return fmt.Errorf("file not found: %s: %w", args[0], err)
		}

		sum, err := newSummarizer()
		if err != nil {
			return err
		}

		p, _, err := newPipeline()
		if err != nil {
			return err
		}

		text, err := p.ExtractText(cmd.Context(), f.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Filename, err)
		}

		summary, err := sum.Summarize(cmd.Context(), text)
		if err != nil {
			return fmt.Errorf("summarize failed: %w", err)
		}

		color.New(color.Bold).Println(f.Filename)
		fmt.Println(summary)
		return nil
	},
}

func init() {
	filesCmd.Flags().StringVarP(&filesKeyword, "keyword", "k", "", "filename substring")
	filesCmd.Flags().StringVarP(&filesCategory, "category", "c", "", "filter by category")
	filesCmd.Flags().StringVar(&filesAfter, "after", "", "uploaded on or after date (YYYY-MM-DD)")

	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(summarizeCmd)
}
