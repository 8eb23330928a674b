// ABOUTME: CLI command that prints the active metric rule table.
// ABOUTME: Shows each rule's unit and the expression used to match it.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the metric extraction rules",
	Long: `Show the active metric rules: the built-in Hemoglobin, Glucose and CRP
rules, or the "metrics" table from the config file.

Rules are matched case-insensitively; the first match per rule wins.

ADDING A METRIC:

  {
    "metrics": [
      {"name": "Hemoglobin", "unit": "g/dL"},
      {"name": "Ferritin", "unit": "ng/mL"},
      {"name": "HbA1c", "pattern": "(?i)HbA1c[:\\s]*(\\d+(?:\\.\\d*)?|\\.\\d+)\\s*%"}
    ]
  }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		parser, err := newParser()
		if err != nil {
			return err
		}

		faint := color.New(color.Faint)
		for _, r := range parser.Rules() {
			fmt.Printf("%s %s %s\n",
				padRight(string(r.Name), 12),
				padRight(r.Unit, 8),
				faint.Sprint(r.Expression()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
