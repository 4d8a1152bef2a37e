package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"review-harvester/internal/api/routes"
	"review-harvester/internal/config"
	"review-harvester/internal/logging"
	"review-harvester/internal/scraper"
	"review-harvester/internal/scraper/workers"
	"review-harvester/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(utils.GetStringOrDefault(os.Getenv("CONFIG_PATH"), "configs/config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.ForComponent("server")
	logger.Info("Starting Review Harvester", map[string]interface{}{
		"target_domain": cfg.Scraper.TargetDomain,
		"cookie_path":   cfg.Scraper.CookiePath,
	})

	var scraperOpts []scraper.Option
	deps := routes.Dependencies{}

	if cfg.Redis.Enabled {
		cache := utils.NewReviewCache(cfg)
		defer cache.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.Ping(pingCtx); err != nil {
			logger.Warn("Review cache unreachable, continuing without hits until it recovers", map[string]interface{}{
				"error": err.Error(),
			})
		}
		cancel()

		scraperOpts = append(scraperOpts, scraper.WithCache(cache))
		deps.Cache = cache
	}

	// Initialize worker pool
	poolManager := workers.NewPoolManager(cfg, scraper.NewDefault(cfg, scraperOpts...))
	if err := poolManager.Initialize(); err != nil {
		logger.Fatal("Failed to start worker pool", map[string]interface{}{"error": err.Error()})
	}
	deps.PoolManager = poolManager

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	// a scrape holds its response open for the whole pool deadline
	e.Server.WriteTimeout = max(cfg.Server.WriteTimeout, cfg.Workers.Timeout+30*time.Second)
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	routes.SetupRoutes(e, cfg, deps)

	// SIGHUP rotates the file log adapters
	go func() {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		for range hup {
			if err := logging.RotateLogs(); err != nil {
				logger.Error("Log rotation failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}()

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop accepting requests before draining the pool
		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping worker pool...")
		if err := poolManager.Shutdown(); err != nil {
			logger.Error("Error stopping worker pool", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed to start", map[string]interface{}{"error": err.Error()})
	}
	<-done
}
