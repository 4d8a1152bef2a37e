package models

// ScrapeReviewsRequest represents the request payload for scraping product reviews
type ScrapeReviewsRequest struct {
	URL string `json:"url" validate:"required,url,marketplace"`
}

// ExportReviewsRequest represents the request payload for exporting reviews as CSV
type ExportReviewsRequest struct {
	Reviews    []Review `json:"reviews" validate:"required,dive"`
	ProductURL string   `json:"productUrl,omitempty"`
}
