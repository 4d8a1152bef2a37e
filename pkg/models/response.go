package models

import "time"

// ScrapeReviewsResponse represents the response from a scrape request
type ScrapeReviewsResponse struct {
	Success   bool     `json:"success"`
	Reviews   []Review `json:"reviews"`
	Count     int      `json:"count"`
	Cached    bool     `json:"cached,omitempty"`
	RequestID string   `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response. Error carries the user-facing message.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
