// ABOUTME: HTTP JSON API over the tracker service, built on gin.
// ABOUTME: Wires routes, request logging, metrics and graceful shutdown.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/harperreed/nutrition/internal/logging"
	"github.com/harperreed/nutrition/internal/tracker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the nutrition API.
type Server struct {
	router  *gin.Engine
	svc     *tracker.Service
	log     *log.Logger
	metrics *Metrics
}

// NewServer builds the router. Metrics are registered on reg; a nil reg
// gets a private registry.
func NewServer(svc *tracker.Service, logger *log.Logger, reg *prometheus.Registry) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		router:  gin.New(),
		svc:     svc,
		log:     logger,
		metrics: NewMetrics(reg),
	}

	s.router.Use(gin.Recovery(), s.observe())
	s.setupRoutes(reg)
	return s
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(reg *prometheus.Registry) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/foods", s.handleListFoods)
		v1.POST("/foods", s.handleCreateFood)
		v1.DELETE("/foods", s.handleDeleteAllFoods)
		v1.GET("/foods/:id", s.handleGetFood)
		v1.PATCH("/foods/:id", s.handleUpdateFood)
		v1.DELETE("/foods/:id", s.handleDeleteFood)
		v1.GET("/lookup", s.handleLookup)

		v1.GET("/meals", s.handleListMeals)
		v1.POST("/meals", s.handleCreateMeal)
		v1.DELETE("/meals", s.handleDeleteAllMeals)
		v1.GET("/meals/:id", s.handleGetMeal)
		v1.PATCH("/meals/:id", s.handleUpdateMeal)
		v1.DELETE("/meals/:id", s.handleDeleteMeal)
		v1.POST("/meals/:id/items", s.handleAddItem)
		v1.PATCH("/meals/:id/items/:itemID", s.handleResizeItem)
		v1.DELETE("/meals/:id/items/:itemID", s.handleRemoveItem)
		v1.POST("/meals/:id/complete", s.handleComplete)

		v1.POST("/schedule", s.handleSchedule)
		v1.GET("/dashboard", s.handleDashboard)
	}
}

// Router returns the gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// observe logs each request and records its metrics.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		s.metrics.observe(c.Request.Method, route, status, elapsed)

		logFn := s.log.Info
		if status >= http.StatusInternalServerError {
			logFn = s.log.Error
		}
		logFn("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed)
	}
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
