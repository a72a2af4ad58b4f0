// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Moves the catalog and meal log from the active backend to another.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/nutrition/internal/config"
	"github.com/harperreed/nutrition/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migrateDest   string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage backend",
	Long: `Copy every food and meal from the active backend to another one.

BACKENDS:

  sqlite     Single nutrition.db file
  markdown   foods/ and meals/ folders of Markdown files with YAML frontmatter

The destination must be empty unless --force is given. The source is left
untouched; switch backends afterwards by setting "backend" in the config
or NUTRITION_BACKEND.

EXAMPLES:

  nutrition migrate --to markdown --dry-run   # Preview
  nutrition migrate --to markdown             # Into the data directory
  nutrition migrate --to sqlite --dest ~/backup/nutrition`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateTo == "" {
			return fmt.Errorf("--to is required (sqlite or markdown)")
		}
		dest := migrateDest
		if dest == "" {
			dest = cfg.GetDataDir()
		}
		dest = config.ExpandPath(dest)
		if migrateTo == cfg.GetBackend() && filepath.Clean(dest) == filepath.Clean(cfg.GetDataDir()) {
			return fmt.Errorf("source and destination are the same %s store", migrateTo)
		}

		occupied, err := destinationOccupied(migrateTo, dest)
		if err != nil {
			return err
		}
		if occupied && !migrateForce {
			return fmt.Errorf("destination %s already has %s data (use --force to merge)", dest, migrateTo)
		}

		if migrateDryRun {
			data, err := repo.GetAllData()
			if err != nil {
				return fmt.Errorf("failed to read source: %w", err)
			}
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Printf("  Would copy %d foods and %d meals to %s (%s)\n",
				len(data.Foods), len(data.Meals), dest, migrateTo)
			return nil
		}

		dst, err := config.OpenBackend(migrateTo, dest)
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer dst.Close()

		summary, err := storage.MigrateData(repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated to %s", migrateTo)
		fmt.Printf("  %d foods, %d meals, %d items\n", summary.Foods, summary.Meals, summary.Items)
		fmt.Printf("  %s\n", dest)
		return nil
	},
}

// destinationOccupied reports whether the target backend already holds data in dir.
func destinationOccupied(backend, dir string) (bool, error) {
	switch backend {
	case "sqlite":
		_, err := os.Stat(filepath.Join(dir, storage.DBFile))
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	case "markdown":
		for _, sub := range []string{"foods", "meals"} {
			nonEmpty, err := storage.IsDirNonEmpty(filepath.Join(dir, sub))
			if err != nil || nonEmpty {
				return nonEmpty, err
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unknown backend: %q", backend)
	}
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite or markdown")
	migrateCmd.Flags().StringVar(&migrateDest, "dest", "", "destination data directory (default: current data dir)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "write into a non-empty destination")
	rootCmd.AddCommand(migrateCmd)
}
