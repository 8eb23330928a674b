// ABOUTME: CLI commands for reading metric history.
// ABOUTME: trend, latest, and list over the current user's records.
package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/labtrack/internal/models"
	"github.com/harperreed/labtrack/internal/storage"
)

var (
	listCategory string
	listMetric   string
	listLimit    int
)

var trendCmd = &cobra.Command{
	Use:   "trend <metric>",
	Short: "Show one metric over time",
	Long: `Show every stored value of one metric, oldest first.

Each line shows the date, the value, and a bar scaled to the largest value.

EXAMPLES:

  labtrack trend hemoglobin
  labtrack trend CRP -u alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := currentUser()
		if err != nil {
			return err
		}

		name := metricArg(args[0])
		points, err := repo.QueryTrend(username, name)
		if err != nil {
			return fmt.Errorf("failed to query trend: %w", err)
		}

		if len(points) == 0 {
			fmt.Printf("No %s values recorded.\n", name)
			return nil
		}

		unit := unitFor(name)
		color.New(color.Bold).Printf("%s (%s)\n", name, unit)
		for _, p := range points {
			fmt.Printf("  %s %8.2f %s\n",
				color.New(color.Faint).Sprint(p.Date.Format(models.DateLayout)),
				p.Value,
				bar(p.Value, points, 30))
		}
		return nil
	},
}

// bar renders v as a run of blocks proportional to the series maximum.
func bar(v float64, points []models.TrendPoint, width int) string {
	maxV := 0.0
	for _, p := range points {
		if p.Value > maxV {
			maxV = p.Value
		}
	}
	if maxV <= 0 || v <= 0 {
		return ""
	}
	n := int(v / maxV * float64(width))
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

var latestCmd = &cobra.Command{
	Use:   "latest [metric]...",
	Short: "Show the newest value of each metric",
	Long: `Show the most recent value of the given metrics, or of every configured
metric when none are named.

EXAMPLES:

  labtrack latest
  labtrack latest glucose crp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := currentUser()
		if err != nil {
			return err
		}

		var names []models.MetricName
		if len(args) == 0 {
			for _, r := range cfg.GetMetricRules() {
				names = append(names, r.Name)
			}
		} else {
			for _, a := range args {
				names = append(names, metricArg(a))
			}
		}

		found := 0
		for _, n := range names {
			p, err := repo.QueryLatest(username, n)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to get latest %s: %w", n, err)
			}
			found++
			fmt.Printf("%s %s %.2f %s\n",
				padRight(string(n), 12),
				color.New(color.Faint).Sprint(p.Date.Format(models.DateLayout)),
				p.Value, unitFor(n))
		}

		if found == 0 {
			fmt.Println("No metrics recorded.")
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List stored metric records",
	Long: `List stored metric records, newest first.

OUTPUT FORMAT:

  Each line shows: ID  DATE  METRIC  VALUE  UNIT  CATEGORY  SOURCE

EXAMPLES:

  labtrack list                      # Last 20 records
  labtrack list --metric glucose     # Only glucose
  labtrack list -c lab_results -n 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := currentUser()
		if err != nil {
			return err
		}

		filter := models.RecordFilter{Username: username, Category: listCategory}
		if listMetric != "" {
			filter.MetricName = metricArg(listMetric)
		}

		records, err := repo.ListRecords(filter, listLimit)
		if err != nil {
			return fmt.Errorf("failed to list records: %w", err)
		}

		if len(records) == 0 {
			fmt.Println("No records found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, r := range records {
			fmt.Printf("%s %s %s %.2f %s %s %s\n",
				faint.Sprint(r.ID.String()[:8]),
				faint.Sprint(r.Date.Format(models.DateLayout)),
				padRight(string(r.MetricName), 12),
				r.Value,
				padRight(unitFor(r.MetricName), 6),
				padRight(r.Category, 14),
				faint.Sprint(truncate(filepath.Base(r.SourceFile), 40)))
		}
		return nil
	},
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "filter by category")
	listCmd.Flags().StringVarP(&listMetric, "metric", "m", "", "filter by metric name")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")

	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(listCmd)
}
