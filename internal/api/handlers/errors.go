package handlers

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"review-harvester/internal/logging"
	"review-harvester/pkg/models"
	"review-harvester/pkg/utils"
)

// respondError writes a CustomError. Only the user-facing message leaves the
// process; the detail stays in the logs.
func respondError(c echo.Context, requestID string, logger logging.Logger, err error) error {
	var custom *utils.CustomError
	if !errors.As(err, &custom) {
		custom = utils.NewInternalServerError("Internal server error")
		custom.Detail = err.Error()
	}

	logger.Error("Request failed", map[string]interface{}{
		"kind":   custom.Kind,
		"status": custom.Code,
		"error":  custom.Error(),
	})

	return c.JSON(custom.Code, models.ErrorResponse{
		Error:     custom.Message,
		Code:      custom.Kind,
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
