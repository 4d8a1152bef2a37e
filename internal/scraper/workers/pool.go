package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"review-harvester/internal/config"
	"review-harvester/internal/logging"
	"review-harvester/internal/metrics"
	"review-harvester/internal/scraper"
	"review-harvester/pkg/utils"
)

var (
	ErrPoolNotRunning = errors.New("worker pool is not running")
	ErrQueueFull      = errors.New("job queue is full")
)

// JobResult represents the result of a scrape job
type JobResult struct {
	Result    *scraper.Result
	Error     error
	RequestID string
	Duration  time.Duration
}

// ScrapeJob represents a job to be processed by workers
type ScrapeJob struct {
	ID         string
	URL        string
	Domain     string
	ResultChan chan JobResult
	Context    context.Context
	CreatedAt  time.Time
}

// Worker represents a single worker goroutine
type Worker struct {
	ID     int
	Pool   *WorkerPool
	logger logging.Logger
}

// WorkerPool runs scrape jobs on a fixed number of workers, one browser
// per worker at a time.
type WorkerPool struct {
	config      *config.Config
	workers     []*Worker
	jobQueue    chan ScrapeJob
	quit        chan struct{}
	wg          sync.WaitGroup
	rateLimiter *RateLimiter
	scraper     scraper.Scraper
	logger      logging.Logger
	mu          sync.RWMutex
	running     bool
	stats       *PoolStats
}

// PoolStats tracks worker pool statistics
type PoolStats struct {
	mu                  sync.RWMutex
	JobsQueued          int64
	JobsProcessed       int64
	JobsSuccessful      int64
	JobsFailed          int64
	JobsRejected        int64
	TotalProcessingTime time.Duration
}

// PoolStatsData is a point-in-time copy of PoolStats
type PoolStatsData struct {
	JobsQueued            int64         `json:"jobs_queued"`
	JobsProcessed         int64         `json:"jobs_processed"`
	JobsSuccessful        int64         `json:"jobs_successful"`
	JobsFailed            int64         `json:"jobs_failed"`
	JobsRejected          int64         `json:"jobs_rejected"`
	QueueLength           int           `json:"queue_length"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
}

// NewWorkerPool creates a new worker pool instance
func NewWorkerPool(cfg *config.Config, s scraper.Scraper) *WorkerPool {
	logger := logging.ForComponent("worker_pool")

	size := cfg.Workers.PoolSize
	if size < 1 {
		size = 1
	}
	queueSize := cfg.Workers.QueueSize
	if queueSize < 0 {
		queueSize = 0
	}

	pool := &WorkerPool{
		config:      cfg,
		jobQueue:    make(chan ScrapeJob, queueSize),
		quit:        make(chan struct{}),
		rateLimiter: NewRateLimiter(cfg),
		scraper:     s,
		logger:      logger,
		stats:       &PoolStats{},
	}

	pool.workers = make([]*Worker, size)
	for i := 0; i < size; i++ {
		pool.workers[i] = &Worker{
			ID:     i + 1,
			Pool:   pool,
			logger: logger.WithField("worker_id", i+1),
		}
	}

	logger.Info("Worker pool initialized", map[string]interface{}{"pool_size": size})
	return pool
}

// Start starts the worker pool
func (wp *WorkerPool) Start() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.running {
		return fmt.Errorf("worker pool is already running")
	}

	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.Start()
	}

	wp.running = true
	wp.logger.Info("Worker pool started successfully", map[string]interface{}{"workers": len(wp.workers)})
	return nil
}

// Stop stops the worker pool and waits for in-flight jobs to finish.
// Queued jobs that never started are answered with ErrPoolNotRunning.
func (wp *WorkerPool) Stop() error {
	wp.mu.Lock()
	if !wp.running {
		wp.mu.Unlock()
		return nil
	}
	wp.running = false
	close(wp.quit)
	wp.mu.Unlock()

	wp.logger.Info("Stopping worker pool")
	wp.wg.Wait()

	for {
		select {
		case job := <-wp.jobQueue:
			job.ResultChan <- JobResult{RequestID: job.ID, Error: ErrPoolNotRunning}
			metrics.QueueDepth.Dec()
		default:
			wp.rateLimiter.Stop()
			wp.logger.Info("Worker pool stopped successfully")
			return nil
		}
	}
}

// SubmitJob admits a scrape of url and waits for its result
func (wp *WorkerPool) SubmitJob(ctx context.Context, url string) (*JobResult, error) {
	job, err := wp.enqueue(ctx, url)
	if err != nil {
		return nil, err
	}

	timeout := wp.config.Workers.Timeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-job.ResultChan:
		return &result, nil
	case <-timer.C:
		return nil, fmt.Errorf("job processing timed out after %v: %w", timeout, context.DeadlineExceeded)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// enqueue applies admission control and places the job on the queue
func (wp *WorkerPool) enqueue(ctx context.Context, url string) (ScrapeJob, error) {
	domain := utils.ExtractDomain(url)

	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if !wp.running {
		return ScrapeJob{}, ErrPoolNotRunning
	}

	if err := wp.rateLimiter.Admit(domain); err != nil {
		wp.reject(reasonFor(err))
		return ScrapeJob{}, err
	}

	job := ScrapeJob{
		ID:         utils.GenerateRequestID(),
		URL:        url,
		Domain:     domain,
		ResultChan: make(chan JobResult, 1),
		Context:    ctx,
		CreatedAt:  time.Now(),
	}

	metrics.QueueDepth.Inc()
	select {
	case wp.jobQueue <- job:
	default:
		metrics.QueueDepth.Dec()
		wp.reject("queue_full")
		return ScrapeJob{}, ErrQueueFull
	}

	wp.stats.mu.Lock()
	wp.stats.JobsQueued++
	wp.stats.mu.Unlock()

	wp.logger.Info("Job submitted to queue", map[string]interface{}{
		"job_id": job.ID,
		"url":    url,
	})
	return job, nil
}

func (wp *WorkerPool) reject(reason string) {
	metrics.RejectionsTotal.WithLabelValues(reason).Inc()
	wp.stats.mu.Lock()
	wp.stats.JobsRejected++
	wp.stats.mu.Unlock()
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	}
	return "other"
}

// IsRunning returns true if the worker pool is running
func (wp *WorkerPool) IsRunning() bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	return wp.running
}

// GetStats returns current pool statistics
func (wp *WorkerPool) GetStats() PoolStatsData {
	wp.stats.mu.RLock()
	defer wp.stats.mu.RUnlock()

	stats := PoolStatsData{
		JobsQueued:          wp.stats.JobsQueued,
		JobsProcessed:       wp.stats.JobsProcessed,
		JobsSuccessful:      wp.stats.JobsSuccessful,
		JobsFailed:          wp.stats.JobsFailed,
		JobsRejected:        wp.stats.JobsRejected,
		QueueLength:         len(wp.jobQueue),
		TotalProcessingTime: wp.stats.TotalProcessingTime,
	}
	if stats.JobsProcessed > 0 {
		stats.AverageProcessingTime = stats.TotalProcessingTime / time.Duration(stats.JobsProcessed)
	}
	return stats
}

// Start runs the worker loop until the pool stops
func (w *Worker) Start() {
	defer w.Pool.wg.Done()
	w.logger.Info("Worker started")

	for {
		select {
		case <-w.Pool.quit:
			w.logger.Info("Worker stopping")
			return
		case job := <-w.Pool.jobQueue:
			metrics.QueueDepth.Dec()
			w.processJob(job)
		}
	}
}

// processJob processes a single scrape job
func (w *Worker) processJob(job ScrapeJob) {
	startTime := time.Now()

	var result JobResult
	if err := job.Context.Err(); err != nil {
		// caller already gave up
		result = JobResult{RequestID: job.ID, Error: err}
	} else {
		result = w.scrapeJob(job)
	}
	result.Duration = time.Since(startTime)

	w.Pool.stats.mu.Lock()
	w.Pool.stats.JobsProcessed++
	w.Pool.stats.TotalProcessingTime += result.Duration
	if result.Error != nil {
		w.Pool.stats.JobsFailed++
	} else {
		w.Pool.stats.JobsSuccessful++
	}
	w.Pool.stats.mu.Unlock()

	// ResultChan is buffered, so this never blocks
	job.ResultChan <- result

	w.logger.Info("Job completed", map[string]interface{}{
		"job_id":          job.ID,
		"processing_time": utils.FormatDuration(result.Duration),
		"success":         result.Error == nil,
	})
}

// scrapeJob runs the pipeline with retries through the domain breaker
func (w *Worker) scrapeJob(job ScrapeJob) JobResult {
	result := JobResult{RequestID: job.ID}
	maxRetries := w.Pool.config.Workers.MaxRetries

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.Debug("Retrying scrape job", map[string]interface{}{
				"job_id":  job.ID,
				"attempt": attempt + 1,
			})
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-job.Context.Done():
				result.Error = job.Context.Err()
				return result
			}
		}

		res, err := w.Pool.rateLimiter.Execute(job.Domain, func() (*scraper.Result, error) {
			return w.Pool.scraper.ScrapeReviews(job.Context, job.URL)
		})
		if err == nil {
			result.Result = res
			return result
		}

		lastErr = err
		w.logger.Debug("Scrape attempt failed", map[string]interface{}{
			"job_id":  job.ID,
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
		if errors.Is(err, ErrCircuitOpen) {
			break
		}
	}

	result.Error = lastErr
	return result
}
