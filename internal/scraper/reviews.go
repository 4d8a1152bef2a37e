// Package scraper runs the review harvesting pipeline: open a browser
// session, reveal every review, snapshot the page and post-process the records.
package scraper

import (
	"context"
	"errors"
	"time"

	"review-harvester/internal/browser"
	"review-harvester/internal/config"
	"review-harvester/internal/extractor"
	"review-harvester/internal/logging"
	"review-harvester/internal/metrics"
	"review-harvester/internal/revealer"
	"review-harvester/internal/reviews"
	"review-harvester/internal/session"
	"review-harvester/pkg/utils"
)

// ReviewScraper wires the pipeline stages together
type ReviewScraper struct {
	cookies  CookieSource
	opener   SessionOpener
	revealer *revealer.Revealer
	cache    Cache
	rng      utils.Rand
}

// Option customizes a ReviewScraper
type Option func(*ReviewScraper)

// WithCache enables result caching
func WithCache(cache Cache) Option {
	return func(s *ReviewScraper) { s.cache = cache }
}

// WithRand replaces the random source used for reviewer names
func WithRand(r utils.Rand) Option {
	return func(s *ReviewScraper) { s.rng = r }
}

// WithRevealer replaces the revealer
func WithRevealer(r *revealer.Revealer) Option {
	return func(s *ReviewScraper) { s.revealer = r }
}

// NewReviewScraper builds a pipeline from explicit stages
func NewReviewScraper(cfg *config.Config, cookies CookieSource, opener SessionOpener, opts ...Option) *ReviewScraper {
	s := &ReviewScraper{
		cookies: cookies,
		opener:  opener,
		rng:     utils.DefaultRand,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.revealer == nil {
		s.revealer = revealer.New(cfg)
	}
	return s
}

// NewDefault builds the production pipeline: cookie file, rod browser and
// optionally the Redis cache.
func NewDefault(cfg *config.Config, opts ...Option) *ReviewScraper {
	return NewReviewScraper(cfg,
		session.NewStore(cfg.Scraper.CookiePath),
		LauncherOpener{Launcher: browser.NewLauncher(cfg)},
		opts...,
	)
}

// ScrapeReviews runs the whole pipeline for url. Every failure is returned
// as a *utils.CustomError carrying a user-safe message.
func (s *ReviewScraper) ScrapeReviews(ctx context.Context, url string) (*Result, error) {
	logger := logging.ForComponent("scraper").WithField("url", url)
	start := time.Now()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, url)
		switch {
		case err != nil:
			metrics.CacheLookups.WithLabelValues("error").Inc()
			logger.Warn("Review cache lookup failed", map[string]interface{}{"error": err.Error()})
		case ok:
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			logger.Info("Serving reviews from cache", map[string]interface{}{"count": len(cached)})
			return &Result{Reviews: cached, Extracted: len(cached), Cached: true}, nil
		default:
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	result, err := s.scrape(ctx, url, logger)
	metrics.ScrapeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ScrapesTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.ScrapesTotal.WithLabelValues("success").Inc()
	metrics.ReviewsReturned.Observe(float64(len(result.Reviews)))

	if s.cache != nil {
		if err := s.cache.Set(ctx, url, result.Reviews); err != nil {
			logger.Warn("Failed to cache reviews", map[string]interface{}{"error": err.Error()})
		}
	}

	logger.Info("Reviews scraped", map[string]interface{}{
		"extracted": result.Extracted,
		"unique":    len(result.Reviews),
		"duration":  utils.FormatDuration(time.Since(start)),
	})
	return result, nil
}

func (s *ReviewScraper) scrape(ctx context.Context, url string, logger logging.Logger) (*Result, error) {
	cookies := s.cookies.Cookies()

	sess, err := s.opener.Open(ctx, url, cookies)
	if err != nil {
		logger.Error("Failed to open browser session", map[string]interface{}{"error": err.Error()})
		return nil, classify(ctx, err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Debug("Browser close reported an error", map[string]interface{}{"error": err.Error()})
		}
	}()

	reveal, err := s.revealer.Reveal(ctx, sess.Page())
	metrics.RevealIterations.WithLabelValues(string(reveal.Reason)).Observe(float64(reveal.Iterations))
	if err != nil {
		return nil, classify(ctx, err)
	}

	html, err := sess.HTML(ctx)
	if err != nil {
		logger.Error("Failed to snapshot page", map[string]interface{}{"error": err.Error()})
		return nil, classify(ctx, err)
	}

	pageURL := utils.GetStringOrDefault(sess.URL(), url)
	drafts, err := extractor.Extract(html, pageURL)
	if err != nil {
		logger.Error("Failed to parse page snapshot", map[string]interface{}{"error": err.Error()})
		return nil, utils.NewScrapingError(err.Error())
	}
	if len(drafts) == 0 {
		logger.Warn("No reviews found on page")
	}

	unique := reviews.Dedupe(drafts)
	return &Result{
		Reviews:   reviews.Enrich(unique, s.rng),
		Extracted: len(drafts),
		Reveal:    reveal,
	}, nil
}

// IsHealthy reports whether the pipeline has its stages wired
func (s *ReviewScraper) IsHealthy() bool {
	return s.cookies != nil && s.opener != nil && s.revealer != nil
}

// classify maps pipeline errors onto user-facing errors
func classify(ctx context.Context, err error) *utils.CustomError {
	var custom *utils.CustomError
	if errors.As(err, &custom) {
		return custom
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return utils.NewTimeoutError("Scraping took too long. Please try again.")
	}
	if errors.Is(err, context.Canceled) {
		return utils.NewTimeoutError("Scraping was cancelled")
	}
	return utils.NewScrapingError(err.Error())
}

// LauncherOpener adapts browser.Launcher to SessionOpener
type LauncherOpener struct {
	Launcher *browser.Launcher
}

// Open starts a rod session
func (o LauncherOpener) Open(ctx context.Context, url string, cookies []session.Cookie) (BrowserSession, error) {
	sess, err := o.Launcher.Open(ctx, url, cookies)
	if err != nil {
		return nil, err
	}
	return sess, nil
}
