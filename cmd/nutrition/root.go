// ABOUTME: Root Cobra command for nutrition CLI.
// ABOUTME: Loads config and opens storage, logger and tracker via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/nutrition/internal/config"
	"github.com/harperreed/nutrition/internal/logging"
	"github.com/harperreed/nutrition/internal/lookup"
	"github.com/harperreed/nutrition/internal/storage"
	"github.com/harperreed/nutrition/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	repo   storage.Repository
	svc    *tracker.Service
	logger *log.Logger

	flagDataDir  string
	flagBackend  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "nutrition",
	Short: "Food catalog, meal log and nutrition dashboard",
	Long: `Nutrition is a CLI tool for cataloging foods, logging meals and
watching where your calories and nutrients come from.

WHAT IT TRACKS:

  Foods       per-100g profiles: calories, protein, carbs, fat, fiber,
              sodium, potassium, calcium, iron, vitamin C, vitamin D
  Meals       breakfast, lunch, dinner or snack made of foods in grams
  Schedules   copy a meal onto future days (daily, weekdays, custom...)
  Dashboards  totals, daily averages, completion rate and macro split

QUICK START:

  $ nutrition food add "Oats" --kcal 389 --protein 16.9 --carbs 66 --fat 6.9
  $ nutrition food lookup --barcode 3017620422003 --save
  $ nutrition meal add breakfast oats-id:60 milk-id:200
  $ nutrition meal complete abc123
  $ nutrition dashboard --window week

SERVERS:

  $ nutrition serve     # JSON API on :8080 (see 'nutrition serve --help')
  $ nutrition mcp       # Model Context Protocol server on stdio

CONFIGURATION:

  ~/.config/nutrition/config.json, a .env file, or NUTRITION_* variables.
  Data lives in ~/.local/share/nutrition unless data_dir says otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip storage init for commands that don't need it
		switch cmd.Name() {
		case "help", "version", "install-skill", "completion":
			return nil
		}

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

		logger = logging.New(os.Stderr, cfg.GetLogLevel())

		// A failed RunE skips PostRunE, so a previous store may still be open
		if repo != nil {
			_ = repo.Close()
		}
		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}

		provider := lookup.Chain{
			lookup.NewCatalog(repo),
			lookup.NewOpenFoodFacts(cfg.GetOFFBaseURL(), cfg.GetLookupTimeout()),
		}
		svc = tracker.New(repo, provider, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite or markdown (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}
