package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"review-harvester/internal/api/middleware"
	"review-harvester/internal/config"
	"review-harvester/internal/logging"
	"review-harvester/internal/scraper"
	"review-harvester/pkg/models"
	"review-harvester/pkg/utils"
)

// ScrapeService runs a scrape to completion
type ScrapeService interface {
	SubmitScrape(ctx context.Context, url string) (*scraper.Result, error)
}

// ScrapeReviewsHandler validates the product URL and runs the scrape through
// the worker pool. Invalid URLs never reach a browser.
func ScrapeReviewsHandler(cfg *config.Config, validate *validator.Validate, service ScrapeService) echo.HandlerFunc {
	invalidURL := fmt.Sprintf("Please provide a valid %s URL.", cfg.Scraper.TargetDomain)

	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := middleware.GetRequestID(c)
		logger := logging.LogWithRequestID(requestID)

		var req models.ScrapeReviewsRequest
		if err := c.Bind(&req); err != nil {
			return respondError(c, requestID, logger, &utils.CustomError{
				Code:    http.StatusBadRequest,
				Kind:    "invalid_request",
				Message: invalidURL,
				Detail:  err.Error(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			return respondError(c, requestID, logger, &utils.CustomError{
				Code:    http.StatusBadRequest,
				Kind:    "validation_failed",
				Message: invalidURL,
				Detail:  err.Error(),
			})
		}

		logger.Info("Processing scrape request", map[string]interface{}{"url": req.URL})

		result, err := service.SubmitScrape(c.Request().Context(), req.URL)
		if err != nil {
			return respondError(c, requestID, logger, err)
		}

		reviews := result.Reviews
		if reviews == nil {
			reviews = []models.Review{}
		}

		logger.Info("Scrape request completed successfully", map[string]interface{}{
			"count":           len(reviews),
			"cached":          result.Cached,
			"processing_time": utils.FormatDuration(time.Since(startTime)),
		})

		return c.JSON(http.StatusOK, models.ScrapeReviewsResponse{
			Success:   true,
			Reviews:   reviews,
			Count:     len(reviews),
			Cached:    result.Cached,
			RequestID: requestID,
		})
	}
}
