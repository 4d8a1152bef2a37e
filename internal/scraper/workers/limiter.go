package workers

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"review-harvester/internal/config"
	"review-harvester/internal/logging"
	"review-harvester/internal/metrics"
	"review-harvester/internal/scraper"
)

var (
	ErrRateLimited = errors.New("rate_limited")
	ErrCircuitOpen = errors.New("circuit_open")
)

// DomainLimiter tracks admission for a single domain
type DomainLimiter struct {
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[*scraper.Result]
	lastSeen time.Time
	requests int64
	rejected int64
	failures int64
	mu       sync.Mutex
}

// RateLimiter applies a token bucket and a circuit breaker per domain
type RateLimiter struct {
	config        *config.Config
	domains       map[string]*DomainLimiter
	mu            sync.Mutex
	logger        logging.Logger
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
	now           func() time.Time
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(cfg *config.Config) *RateLimiter {
	rl := &RateLimiter{
		config:        cfg,
		domains:       make(map[string]*DomainLimiter),
		logger:        logging.ForComponent("rate_limiter"),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		stopCleanup:   make(chan struct{}),
		now:           time.Now,
	}

	go rl.cleanupRoutine()

	return rl
}

// Admit takes a token for domain. It fails with ErrCircuitOpen while the
// domain's breaker is open and with ErrRateLimited when the bucket is empty.
func (rl *RateLimiter) Admit(domain string) error {
	dl := rl.domain(domain)

	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.lastSeen = rl.now()

	if dl.breaker.State() == gobreaker.StateOpen {
		dl.rejected++
		rl.logger.Debug("Request rejected by circuit breaker", map[string]interface{}{"domain": domain})
		return ErrCircuitOpen
	}

	if !dl.limiter.AllowN(rl.now(), 1) {
		dl.rejected++
		rl.logger.Debug("Request rejected by rate limiter", map[string]interface{}{"domain": domain})
		return ErrRateLimited
	}

	dl.requests++
	return nil
}

// Execute runs fn through the domain's circuit breaker
func (rl *RateLimiter) Execute(domain string, fn func() (*scraper.Result, error)) (*scraper.Result, error) {
	dl := rl.domain(domain)

	result, err := dl.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		dl.mu.Lock()
		dl.rejected++
		dl.mu.Unlock()
		return nil, ErrCircuitOpen
	}
	if err != nil {
		dl.mu.Lock()
		dl.failures++
		dl.mu.Unlock()
	}
	return result, err
}

// domain gets or creates the limiter for a domain
func (rl *RateLimiter) domain(domain string) *DomainLimiter {
	domain = strings.ToLower(domain)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if dl, exists := rl.domains[domain]; exists {
		return dl
	}

	// requests per minute converted to requests per second
	rps := rate.Limit(float64(rl.config.Workers.RateLimit) / 60.0)
	burst := rl.config.Workers.Burst
	if burst < 1 {
		burst = 1
	}

	dl := &DomainLimiter{
		limiter:  rate.NewLimiter(rps, burst),
		breaker:  rl.newBreaker(domain),
		lastSeen: rl.now(),
	}
	rl.domains[domain] = dl
	metrics.CircuitBreakerState.WithLabelValues(domain).Set(0)

	rl.logger.Info("Created new domain limiter", map[string]interface{}{
		"domain": domain,
		"rate":   float64(rps),
		"burst":  burst,
	})

	return dl
}

func (rl *RateLimiter) newBreaker(domain string) *gobreaker.CircuitBreaker[*scraper.Result] {
	maxFailures := uint32(rl.config.CircuitBreaker.MaxFailures)
	if maxFailures == 0 {
		maxFailures = 1
	}

	return gobreaker.NewCircuitBreaker[*scraper.Result](gobreaker.Settings{
		Name:        domain,
		MaxRequests: 1,
		Timeout:     rl.config.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			rl.logger.Warn("Circuit breaker state change", map[string]interface{}{
				"domain": name,
				"from":   from.String(),
				"to":     to.String(),
			})
			metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.BreakerStateValue(to))
		},
	})
}

// GetDomainStats returns statistics for a specific domain
func (rl *RateLimiter) GetDomainStats(domain string) map[string]interface{} {
	domain = strings.ToLower(domain)

	rl.mu.Lock()
	dl, exists := rl.domains[domain]
	rl.mu.Unlock()

	stats := make(map[string]interface{})
	if !exists {
		return stats
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	counts := dl.breaker.Counts()
	stats["requests"] = dl.requests
	stats["rejected"] = dl.rejected
	stats["failures"] = dl.failures
	stats["last_seen"] = dl.lastSeen
	stats["limit_per_minute"] = float64(dl.limiter.Limit()) * 60
	stats["burst"] = dl.limiter.Burst()
	stats["circuit_state"] = dl.breaker.State().String()
	stats["consecutive_failures"] = counts.ConsecutiveFailures
	stats["max_failures"] = rl.config.CircuitBreaker.MaxFailures

	return stats
}

// GetAllStats returns statistics for all domains
func (rl *RateLimiter) GetAllStats() map[string]map[string]interface{} {
	rl.mu.Lock()
	domains := make([]string, 0, len(rl.domains))
	for domain := range rl.domains {
		domains = append(domains, domain)
	}
	rl.mu.Unlock()

	allStats := make(map[string]map[string]interface{}, len(domains))
	for _, domain := range domains {
		allStats[domain] = rl.GetDomainStats(domain)
	}
	return allStats
}

// cleanupRoutine periodically cleans up old unused limiters
func (rl *RateLimiter) cleanupRoutine() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			rl.cleanupTicker.Stop()
			return
		}
	}
}

// cleanup drops idle domains whose breaker is closed
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	removed := 0

	for domain, dl := range rl.domains {
		dl.mu.Lock()
		idle := dl.lastSeen.Before(cutoff) && dl.breaker.State() == gobreaker.StateClosed
		dl.mu.Unlock()

		if idle {
			delete(rl.domains, domain)
			metrics.CircuitBreakerState.DeleteLabelValues(domain)
			removed++
		}
	}

	if removed > 0 {
		rl.logger.Info("Cleaned up unused rate limiters", map[string]interface{}{"removed_count": removed})
	}
}

// Stop stops the cleanup routine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}
