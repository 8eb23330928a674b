// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Moves users, files and records from the active backend to the other one.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/labtrack/internal/storage"
)

var (
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage backend",
	Long: `Copy all users, uploaded-file entries and metric records from the active
backend to another one in the same data directory.

IMPORTANT:

  - The destination must be empty (no labtrack.db, or an empty kv/ directory)
  - Uploaded files on disk are shared and are not copied
  - Run with --dry-run first to see what would be migrated

USAGE:

  labtrack migrate --to badger --dry-run
  labtrack migrate --to badger

AFTER MIGRATION:

  Set "backend": "badger" in ~/.config/labtrack/config.json, or pass
  --backend badger, to use the new store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from := cfg.GetBackend()
		if migrateTo == from {
			return fmt.Errorf("already using %s backend", from)
		}

		if err := checkDestinationEmpty(migrateTo, cfg.GetDataDir()); err != nil {
			return err
		}

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			data, err := storage.GetAllData(repo)
			if err != nil {
				return fmt.Errorf("failed to read %s data: %w", from, err)
			}
			fmt.Printf("Would migrate %d users, %d files, %d records from %s to %s\n",
				len(data.Users), len(data.Files), len(data.Records), from, migrateTo)
			return nil
		}

		dstCfg := *cfg
		dstCfg.Backend = migrateTo
		dst, err := dstCfg.OpenStorage(logger)
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", migrateTo, err)
		}
		defer dst.Close()

		summary, err := storage.MigrateData(repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated %d users, %d files, %d records from %s to %s",
			summary.Users, summary.Files, summary.Records, from, migrateTo)
		return nil
	},
}

// checkDestinationEmpty refuses to migrate into a backend that already holds data.
func checkDestinationEmpty(backend, dataDir string) error {
	switch backend {
	case "sqlite":
		path := filepath.Join(dataDir, "labtrack.db")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("destination %s already exists", path)
		}
	case "badger":
		dir := filepath.Join(dataDir, "kv")
		nonEmpty, err := storage.IsDirNonEmpty(dir)
		if err != nil {
			return err
		}
		if nonEmpty {
			return fmt.Errorf("destination %s is not empty", dir)
		}
	default:
		return fmt.Errorf("unknown backend: %q (use sqlite or badger)", backend)
	}
	return nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "badger", "destination backend: sqlite or badger")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
