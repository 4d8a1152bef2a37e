package utils

import (
	"fmt"
	"net/http"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Kind:    "invalid_request",
		Message: message,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Kind:    "internal_error",
		Message: message,
	}
}

func NewTimeoutError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusGatewayTimeout,
		Kind:    "timeout",
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Kind:    "validation_failed",
		Message: "Validation failed",
		Detail:  detail,
	}
}

// Scraping specific errors

// NewScrapingError is returned when the browser could not be launched or the page could not be loaded.
// The message is safe to show to users; detail is for logs.
func NewScrapingError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Kind:    "scraping_failed",
		Message: "Failed to extract reviews. Please try again.",
		Detail:  detail,
	}
}

func NewRateLimitError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusTooManyRequests,
		Kind:    "rate_limited",
		Message: "Too many requests for this site, try again later",
		Detail:  detail,
	}
}

func NewUnavailableError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusServiceUnavailable,
		Kind:    "unavailable",
		Message: "Scraping is temporarily unavailable for this site",
		Detail:  detail,
	}
}

func NewSerializationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Kind:    "serialization_failed",
		Message: "Failed to generate CSV file",
		Detail:  detail,
	}
}
