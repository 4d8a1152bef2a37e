package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"review-harvester/internal/api/middleware"
	"review-harvester/internal/logging"
	"review-harvester/pkg/models"
)

// Version is reported by the health endpoints; set at build time
var Version = "1.0.0"

var startTime = time.Now()

// HealthChecker reports whether a component can take work
type HealthChecker interface {
	IsHealthy() bool
}

// Pinger checks connectivity to an external dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	logging.GetGlobalLogger().Debug("Health check requested", map[string]interface{}{
		"request_id": middleware.GetRequestID(c),
	})

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	})
}

// ReadinessHandler reports ready only when the worker pool runs and, if
// configured, the cache answers.
func ReadinessHandler(pool HealthChecker, cache Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks, ready := dependencyChecks(c.Request().Context(), pool, cache)

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
	})
}

// StatusHandler provides detailed service status
func StatusHandler(pool HealthChecker, cache Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks, ready := dependencyChecks(c.Request().Context(), pool, cache)

		status := "operational"
		if !ready {
			status = "degraded"
		}

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

func dependencyChecks(ctx context.Context, pool HealthChecker, cache Pinger) (map[string]string, bool) {
	checks := map[string]string{"api": "ok", "logging": "ok"}
	ready := true

	if err := logging.Health(); err != nil {
		checks["logging"] = "unavailable"
		ready = false
	}

	if pool != nil && pool.IsHealthy() {
		checks["workers"] = "ok"
	} else {
		checks["workers"] = "unavailable"
		ready = false
	}

	if cache == nil {
		checks["cache"] = "disabled"
		return checks, ready
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		checks["cache"] = "unavailable"
		ready = false
	} else {
		checks["cache"] = "ok"
	}

	return checks, ready
}
