package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"review-harvester/internal/api/middleware"
	"review-harvester/internal/logging"
	"review-harvester/internal/scraper/workers"
	"review-harvester/pkg/utils"
)

var errStatsUnavailable = &utils.CustomError{
	Code:    http.StatusServiceUnavailable,
	Kind:    "stats_unavailable",
	Message: "Worker pool statistics are not available",
}

// WorkerStatsHandler returns worker pool statistics
func WorkerStatsHandler(poolManager *workers.PoolManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.GetRequestID(c)
		logger := logging.LogWithRequestID(requestID)

		stats, err := poolManager.GetStats()
		if err != nil {
			return respondError(c, requestID, logger, withDetail(errStatsUnavailable, err))
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":    true,
			"stats":      stats,
			"request_id": requestID,
			"timestamp":  time.Now(),
		})
	}
}

// DomainStatsHandler returns rate limiting statistics for a specific domain
func DomainStatsHandler(poolManager *workers.PoolManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.GetRequestID(c)
		logger := logging.LogWithRequestID(requestID)

		domain := c.Param("domain")
		if domain == "" {
			return respondError(c, requestID, logger, utils.NewBadRequestError("Domain parameter is required"))
		}

		stats, err := poolManager.GetDomainStats(domain)
		if err != nil {
			return respondError(c, requestID, logger, withDetail(errStatsUnavailable, err))
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":    true,
			"domain":     domain,
			"stats":      stats,
			"request_id": requestID,
			"timestamp":  time.Now(),
		})
	}
}

func withDetail(base *utils.CustomError, err error) *utils.CustomError {
	out := *base
	out.Detail = err.Error()
	return &out
}
