package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"review-harvester/internal/api/handlers"
	"review-harvester/internal/api/middleware"
	"review-harvester/internal/api/validation"
	"review-harvester/internal/config"
	"review-harvester/internal/logging"
	"review-harvester/internal/metrics"
	"review-harvester/internal/scraper/workers"
	"review-harvester/pkg/utils"
)

// ScrapePath is the long-running scrape endpoint
const ScrapePath = "/api/scrape-reviews"

// Dependencies are the services the routes dispatch to
type Dependencies struct {
	PoolManager *workers.PoolManager
	// Cache is nil when caching is disabled
	Cache handlers.Pinger
	Rand  utils.Rand
	Now   func() time.Time
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, deps Dependencies) {
	if deps.Rand == nil {
		deps.Rand = utils.DefaultRand
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	readTimeout := cfg.Server.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	// the pool's own deadline fires first so the caller gets a mapped error
	scrapeTimeout := cfg.Workers.Timeout + 30*time.Second

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestValidation(cfg.Server.MaxBodyBytes))
	e.Use(requestLogger())
	e.Use(middleware.CORSConfig())
	if cfg.Metrics.Enabled {
		e.Use(metrics.Middleware())
	}
	e.Use(middleware.SelectiveTimeoutConfig(readTimeout, scrapeTimeout, ScrapePath))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(deps.PoolManager, deps.Cache))
		health.GET("/live", handlers.LivenessHandler)
	}

	e.GET("/status", handlers.StatusHandler(deps.PoolManager, deps.Cache))

	if cfg.Metrics.Enabled {
		e.GET(utils.GetStringOrDefault(cfg.Metrics.Path, "/metrics"), metrics.Handler())
	}

	validate := validation.New(cfg.Scraper.TargetDomain)

	api := e.Group("/api")
	{
		api.POST("/scrape-reviews", handlers.ScrapeReviewsHandler(cfg, validate, deps.PoolManager))
		api.POST("/export-reviews", handlers.ExportReviewsHandler(cfg, validate, deps.Rand, deps.Now))

		api.GET("/workers/stats", handlers.WorkerStatsHandler(deps.PoolManager))
		api.GET("/domains/:domain/stats", handlers.DomainStatsHandler(deps.PoolManager))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Review Harvester",
			"version": handlers.Version,
			"status":  "running",
		})
	})
}

// requestLogger writes one structured line per request through the project logger
func requestLogger() echo.MiddlewareFunc {
	logger := logging.ForComponent("http")

	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"request_id": middleware.GetRequestID(c),
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    utils.FormatDuration(v.Latency),
			}
			if v.Error != nil {
				fields["error"] = v.Error.Error()
				logger.Warn("HTTP request", fields)
				return nil
			}
			logger.Info("HTTP request", fields)
			return nil
		},
	})
}
