package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"review-harvester/internal/config"
	"review-harvester/internal/logging"
	"review-harvester/pkg/models"
)

// ReviewCache keeps recent scrape results in Redis, keyed by product URL
type ReviewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// cachedReviews is the stored form of a scrape result
type cachedReviews struct {
	URL       string          `json:"url"`
	Reviews   []models.Review `json:"reviews"`
	ScrapedAt time.Time       `json:"scraped_at"`
}

// NewReviewCache creates a cache from the redis settings in cfg
func NewReviewCache(cfg *config.Config) *ReviewCache {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		// Fallback to default configuration
		opts = &redis.Options{Addr: "localhost:6379"}
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	timeout := cfg.Redis.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	return NewReviewCacheWithClient(redis.NewClient(opts), cfg.Redis.TTL)
}

// NewReviewCacheWithClient wraps an existing client
func NewReviewCacheWithClient(client *redis.Client, ttl time.Duration) *ReviewCache {
	return &ReviewCache{
		client: client,
		ttl:    ttl,
		logger: logging.ForComponent("review_cache"),
	}
}

// Get returns the cached reviews for url. A miss is (nil, false, nil).
func (c *ReviewCache) Get(ctx context.Context, url string) ([]models.Review, bool, error) {
	data, err := c.client.Get(ctx, c.key(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached reviews: %w", err)
	}

	var entry cachedReviews
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("Discarding unreadable cache entry", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return nil, false, nil
	}

	return entry.Reviews, true, nil
}

// Set stores reviews for url with the configured TTL
func (c *ReviewCache) Set(ctx context.Context, url string, reviews []models.Review) error {
	data, err := json.Marshal(cachedReviews{
		URL:       url,
		Reviews:   reviews,
		ScrapedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reviews: %w", err)
	}

	if err := c.client.Set(ctx, c.key(url), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache reviews: %w", err)
	}
	return nil
}

// Delete drops the cached entry for url
func (c *ReviewCache) Delete(ctx context.Context, url string) error {
	return c.client.Del(ctx, c.key(url)).Err()
}

// Ping tests the Redis connection
func (c *ReviewCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *ReviewCache) Close() error {
	return c.client.Close()
}

// key hashes the URL so query strings never leak into key names
func (c *ReviewCache) key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "reviews:url:" + hex.EncodeToString(sum[:])
}
