// ABOUTME: CLI command for starting the JSON HTTP API.
// ABOUTME: Serves foods, meals, schedules, dashboards and Prometheus metrics.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/nutrition/internal/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API.

ENDPOINTS:

  GET    /health                                  Liveness check
  GET    /metrics                                 Prometheus metrics
  GET    /api/v1/foods?q=&category=&limit=        List or search foods
  POST   /api/v1/foods                            Add a food
  GET    /api/v1/foods/:id                        Get a food
  PATCH  /api/v1/foods/:id                        Edit food metadata
  DELETE /api/v1/foods/:id                        Delete a food
  GET    /api/v1/lookup?barcode=&name=&save=      Resolve a food
  GET    /api/v1/meals?date=&from=&to=&type=      List meals
  POST   /api/v1/meals                            Log a meal
  GET    /api/v1/meals/:id                        Get a meal
  PATCH  /api/v1/meals/:id                        Edit date, type, notes, completed
  DELETE /api/v1/meals/:id                        Delete a meal
  POST   /api/v1/meals/:id/items                  Add an item
  PATCH  /api/v1/meals/:id/items/:itemID          Resize an item
  DELETE /api/v1/meals/:id/items/:itemID          Remove an item
  POST   /api/v1/meals/:id/complete               Mark completed
  POST   /api/v1/schedule                         Repeat a meal
  GET    /api/v1/dashboard?window=&date=          Summary for a window

EXAMPLES:

  nutrition serve                   # Listen on the configured address (:8080)
  nutrition serve --addr :9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetListenAddr()
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		server := api.NewServer(svc, logger, reg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
