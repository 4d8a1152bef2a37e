package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"review-harvester/internal/config"
	"review-harvester/internal/logging"
	"review-harvester/internal/scraper"
	"review-harvester/pkg/utils"
)

// PoolManager manages the worker pool lifecycle and maps pool outcomes onto
// user-facing errors.
type PoolManager struct {
	config      *config.Config
	pool        *WorkerPool
	scraper     scraper.Scraper
	logger      logging.Logger
	mu          sync.RWMutex
	initialized bool
}

// NewPoolManager creates a new worker pool manager
func NewPoolManager(cfg *config.Config, s scraper.Scraper) *PoolManager {
	return &PoolManager{
		config:  cfg,
		scraper: s,
		logger:  logging.ForComponent("pool_manager"),
	}
}

// Initialize creates and starts the worker pool
func (pm *PoolManager) Initialize() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.initialized {
		return fmt.Errorf("worker pool already initialized")
	}

	pm.pool = NewWorkerPool(pm.config, pm.scraper)
	if err := pm.pool.Start(); err != nil {
		pm.logger.Error("Worker pool start failed", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	pm.initialized = true
	pm.logger.Info("Worker pool initialized successfully")
	return nil
}

// Shutdown gracefully shuts down the worker pool
func (pm *PoolManager) Shutdown() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if !pm.initialized || pm.pool == nil {
		return nil
	}

	pm.logger.Info("Shutting down worker pool")
	if err := pm.pool.Stop(); err != nil {
		pm.logger.Error("Error stopping worker pool", map[string]interface{}{"error": err.Error()})
		return err
	}

	pm.initialized = false
	pm.logger.Info("Worker pool shutdown complete")
	return nil
}

// SubmitScrape runs a scrape through the pool. Every error is a
// *utils.CustomError.
func (pm *PoolManager) SubmitScrape(ctx context.Context, url string) (*scraper.Result, error) {
	pm.mu.RLock()
	pool := pm.pool
	ready := pm.initialized && pool != nil
	pm.mu.RUnlock()

	if !ready {
		return nil, utils.NewUnavailableError("worker pool not initialized")
	}

	jobResult, err := pool.SubmitJob(ctx, url)
	if err != nil {
		return nil, toCustomError(err)
	}
	if jobResult.Error != nil {
		return nil, toCustomError(jobResult.Error)
	}
	return jobResult.Result, nil
}

// GetStats returns worker pool statistics
func (pm *PoolManager) GetStats() (*PoolManagerStats, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if !pm.initialized || pm.pool == nil {
		return nil, fmt.Errorf("worker pool not initialized")
	}

	poolStats := pm.pool.GetStats()
	return &PoolManagerStats{
		Initialized:      pm.initialized,
		PoolStats:        &poolStats,
		RateLimiterStats: pm.pool.rateLimiter.GetAllStats(),
		WorkerCount:      len(pm.pool.workers),
		QueueCapacity:    cap(pm.pool.jobQueue),
	}, nil
}

// IsHealthy returns true if the worker pool is healthy
func (pm *PoolManager) IsHealthy() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return pm.initialized && pm.pool != nil && pm.pool.IsRunning() && pm.scraper.IsHealthy()
}

// GetDomainStats returns statistics for a specific domain
func (pm *PoolManager) GetDomainStats(domain string) (map[string]interface{}, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if !pm.initialized || pm.pool == nil {
		return nil, fmt.Errorf("worker pool not initialized")
	}

	return pm.pool.rateLimiter.GetDomainStats(domain), nil
}

// toCustomError maps pool and pipeline errors onto user-facing errors
func toCustomError(err error) *utils.CustomError {
	var custom *utils.CustomError
	switch {
	case errors.As(err, &custom):
		return custom
	case errors.Is(err, ErrRateLimited):
		return utils.NewRateLimitError(err.Error())
	case errors.Is(err, ErrCircuitOpen), errors.Is(err, ErrQueueFull), errors.Is(err, ErrPoolNotRunning):
		return utils.NewUnavailableError(err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return utils.NewTimeoutError("Scraping took too long. Please try again.")
	}
	return utils.NewScrapingError(err.Error())
}

// PoolManagerStats represents comprehensive statistics for the pool manager
type PoolManagerStats struct {
	Initialized      bool                              `json:"initialized"`
	PoolStats        *PoolStatsData                    `json:"pool_stats"`
	RateLimiterStats map[string]map[string]interface{} `json:"rate_limiter_stats"`
	WorkerCount      int                               `json:"worker_count"`
	QueueCapacity    int                               `json:"queue_capacity"`
}
