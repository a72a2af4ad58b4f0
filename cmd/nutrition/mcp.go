// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/harperreed/nutrition/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server talks to the assistant over stdin/stdout and shares the same
catalog and meal log as the CLI.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "nutrition": {
        "command": "nutrition",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_food        Add a food with its per-100g profile
  list_foods      List or search the catalog
  lookup_food     Resolve a barcode or name
  create_meal     Log a meal from food IDs and grams
  add_meal_item   Add an item to a meal
  complete_meal   Mark a meal completed (or reopen it)
  list_meals      List meals by date range and type
  delete_meal     Delete a meal
  dashboard       Totals and averages for a window
  schedule_meal   Repeat a meal on future days

AVAILABLE RESOURCES:

  nutrition://today   Today's meals and summary
  nutrition://week    Last 7 days dashboard
  nutrition://foods   The food catalog`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(svc)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
