package scraper

import (
	"context"

	"review-harvester/internal/revealer"
	"review-harvester/internal/session"
	"review-harvester/pkg/models"
)

// Scraper collects the reviews of one product page
type Scraper interface {
	// ScrapeReviews returns the unique, enriched reviews found at url
	ScrapeReviews(ctx context.Context, url string) (*Result, error)

	// IsHealthy returns true if the scraper is ready to process requests
	IsHealthy() bool
}

// CookieSource supplies the cookies replayed into each session.
// A nil result means the session starts without cookies.
type CookieSource interface {
	Cookies() []session.Cookie
}

// BrowserSession is a live page the pipeline reveals and snapshots
type BrowserSession interface {
	Page() revealer.Page
	HTML(ctx context.Context) (string, error)
	URL() string
	Close() error
}

// SessionOpener starts a browser session on a target URL
type SessionOpener interface {
	Open(ctx context.Context, url string, cookies []session.Cookie) (BrowserSession, error)
}

// Cache stores recent scrape results
type Cache interface {
	Get(ctx context.Context, url string) ([]models.Review, bool, error)
	Set(ctx context.Context, url string, reviews []models.Review) error
}

// Result is the outcome of one successful scrape
type Result struct {
	Reviews   []models.Review
	Extracted int
	Reveal    revealer.Result
	Cached    bool
}
