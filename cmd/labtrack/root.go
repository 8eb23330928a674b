// ABOUTME: Root Cobra command for the labtrack CLI.
// ABOUTME: Loads config, builds the logger, and manages the repository lifecycle.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/labtrack/internal/config"
	"github.com/harperreed/labtrack/internal/logging"
	"github.com/harperreed/labtrack/internal/storage"
)

var version = "dev"

var (
	cfg    *config.Config
	logger *zap.Logger
	repo   storage.Repository
)

var (
	flagDataDir  string
	flagBackend  string
	flagUser     string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:     "labtrack",
	Short:   "Lab report ingestion and metric tracking",
	Version: version,
	Long: `Labtrack stores medical documents and tracks the lab values found in them.

WHAT IT DOES:

  Documents (txt, pdf, png, jpg) are stored per user and category. Their text
  is extracted (PDF text, or OCR for scans and photos) and scanned for known
  lab values. Each value found is appended to that user's time series.

  Built-in metrics   Hemoglobin (g/dL), Glucose (mg/dL), CRP (mg/L)
  More metrics can be added under "metrics" in the config file.

QUICK START:

  $ labtrack user register alice             # Create an account
  $ labtrack ingest report.pdf -u alice      # Store a report, extract values
  $ labtrack trend hemoglobin -u alice       # Values over time
  $ labtrack latest -u alice                 # Newest value of each metric

SERVING:

  $ labtrack serve                           # HTTP API with basic auth
  $ labtrack mcp                             # MCP server on stdio

CONFIGURATION:

  ~/.config/labtrack/config.json holds the backend, data directory, OCR tool
  paths, metric rules, and summarizer settings.

DATA STORAGE:

  SQLite at ~/.local/share/labtrack/labtrack.db by default, or a badger
  key-value store with "backend": "badger". Uploads live under
  ~/.local/share/labtrack/uploads/<user>/<category>/.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		var err error
		logger, err = logging.New(cfg.GetLogLevel(), false)
		if err != nil {
			return err
		}

		// A failed RunE skips PersistentPostRunE.
		if repo != nil {
			_ = repo.Close()
			repo = nil
		}

		// Skip storage for commands that don't need it
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "rules" {
			return nil
		}

		repo, err = cfg.OpenStorage(logger)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			_ = logger.Sync()
		}
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagBackend != "" {
		cfg.Backend = flagBackend
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.local/share/labtrack)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite or badger")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "user to act as (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}
