package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"review-harvester/internal/api/middleware"
	"review-harvester/internal/config"
	"review-harvester/internal/exporter"
	"review-harvester/internal/logging"
	"review-harvester/internal/metrics"
	"review-harvester/pkg/models"
	"review-harvester/pkg/utils"
)

const invalidReviews = "Invalid review data."

// ExportReviewsHandler renders the posted reviews as a CSV attachment
func ExportReviewsHandler(cfg *config.Config, validate *validator.Validate, rng utils.Rand, now func() time.Time) echo.HandlerFunc {
	disposition := fmt.Sprintf("attachment; filename=%q", cfg.Export.Filename)

	return func(c echo.Context) error {
		requestID := middleware.GetRequestID(c)
		logger := logging.LogWithRequestID(requestID)

		var req models.ExportReviewsRequest
		if err := c.Bind(&req); err != nil {
			metrics.ExportsTotal.WithLabelValues("invalid").Inc()
			return respondError(c, requestID, logger, &utils.CustomError{
				Code:    http.StatusBadRequest,
				Kind:    "invalid_request",
				Message: invalidReviews,
				Detail:  err.Error(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			metrics.ExportsTotal.WithLabelValues("invalid").Inc()
			return respondError(c, requestID, logger, &utils.CustomError{
				Code:    http.StatusBadRequest,
				Kind:    "validation_failed",
				Message: invalidReviews,
				Detail:  err.Error(),
			})
		}

		csv, err := exporter.ToCSV(req.Reviews, req.ProductURL, rng, now())
		if err != nil {
			metrics.ExportsTotal.WithLabelValues("failure").Inc()
			return respondError(c, requestID, logger, utils.NewSerializationError(err.Error()))
		}

		metrics.ExportsTotal.WithLabelValues("success").Inc()
		logger.Info("Reviews exported", map[string]interface{}{
			"count": len(req.Reviews),
			"bytes": len(csv),
		})

		c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
	}
}
