package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"review-harvester/pkg/models"
	"review-harvester/pkg/utils"
)

// RequestIDKey is the echo context key holding the request ID
const RequestIDKey = "request_id"

// RequestValidation assigns a request ID and enforces the body size limit
func RequestValidation(maxBodyBytes int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = utils.GenerateRequestID()
			}
			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			if c.Request().Method == http.MethodPost && maxBodyBytes > 0 {
				if c.Request().ContentLength > maxBodyBytes {
					return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
						Error:     "Request body too large",
						Code:      "request_too_large",
						RequestID: requestID,
						Timestamp: time.Now(),
					})
				}
				c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes)
			}

			return next(c)
		}
	}
}

// GetRequestID returns the request ID assigned by RequestValidation,
// or a fresh one when the middleware did not run.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(RequestIDKey).(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}
