// Package revealer drives a product page until its lazily loaded reviews
// stop growing.
package revealer

import (
	"context"
	"time"

	"review-harvester/internal/config"
	"review-harvester/internal/extractor"
	"review-harvester/internal/logging"
)

// State is a step of the reveal state machine
type State string

const (
	StateInitial          State = "initial"
	StateScrolledIntoView State = "scrolled_into_view"
	StateTriggerSought    State = "trigger_sought"
	StateTriggerActivated State = "trigger_activated"
	StateTriggerAbsent    State = "trigger_absent"
	StateConverging       State = "converging"
	StateDone             State = "done"
)

// Reason explains why the convergence loop stopped
type Reason string

const (
	ReasonConverged Reason = "converged"
	ReasonExhausted Reason = "exhausted"
	ReasonCapped    Reason = "capped"
	ReasonCancelled Reason = "cancelled"
)

const (
	// LoadMoreSelector matches the paginated "load more" buttons
	LoadMoreSelector = `.comet-v2-button-plain, .comet-v2-btn-secondary, [class*="load-more"]`
	// LoadMoreText must appear in a load more button's text
	LoadMoreText = "mais"
)

// Result summarizes one reveal run
type Result struct {
	TriggerFound   bool
	LoadMoreClicks int
	ContainerTier  Tier
	Iterations     int
	Height         int
	Items          int
	Reason         Reason
	Transitions    []State
}

// SleepFunc pauses for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option customizes a Revealer
type Option func(*Revealer)

// WithSleep replaces the pause implementation
func WithSleep(sleep SleepFunc) Option {
	return func(r *Revealer) { r.sleep = sleep }
}

// WithProbes replaces the container probe list
func WithProbes(probes []ContainerProbe) Option {
	return func(r *Revealer) { r.probes = probes }
}

// WithItemSelector replaces the selector used to count review items
func WithItemSelector(selector string) Option {
	return func(r *Revealer) { r.itemSelector = selector }
}

// WithLogger replaces the component logger
func WithLogger(logger logging.FieldLogger) Option {
	return func(r *Revealer) { r.logger = logger }
}

// Revealer runs the reveal state machine against a Page
type Revealer struct {
	cfg          *config.Config
	probes       []ContainerProbe
	itemSelector string
	sleep        SleepFunc
	logger       logging.FieldLogger
}

// New creates a Revealer with the timings from cfg
func New(cfg *config.Config, opts ...Option) *Revealer {
	r := &Revealer{
		cfg:          cfg,
		probes:       DefaultProbes(),
		itemSelector: extractor.ItemSelector,
		sleep:        Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.ForComponent("revealer")
	}
	return r
}

// Reveal walks the page from INITIAL to DONE. The only error it returns is
// the context's; every missing element is a normal outcome.
func (r *Revealer) Reveal(ctx context.Context, page Page) (Result, error) {
	res := Result{ContainerTier: TierNone, Transitions: []State{StateInitial}}
	state := StateInitial

	for state != StateDone {
		next, err := r.step(ctx, page, state, &res)
		if err != nil {
			res.Reason = ReasonCancelled
			r.logger.Warn("Reveal interrupted", map[string]interface{}{
				"state": string(state),
				"error": err.Error(),
			})
			return res, err
		}
		state = next
		res.Transitions = append(res.Transitions, state)
	}

	if err := r.sleep(ctx, r.cfg.Revealer.FinalSettle); err != nil {
		res.Reason = ReasonCancelled
		return res, err
	}

	r.logger.Info("Reviews revealed", map[string]interface{}{
		"reason":           string(res.Reason),
		"iterations":       res.Iterations,
		"items":            res.Items,
		"height":           res.Height,
		"trigger_found":    res.TriggerFound,
		"load_more_clicks": res.LoadMoreClicks,
		"container_tier":   string(res.ContainerTier),
	})
	return res, nil
}

func (r *Revealer) step(ctx context.Context, page Page, state State, res *Result) (State, error) {
	if err := ctx.Err(); err != nil {
		return state, err
	}

	switch state {
	case StateInitial:
		if err := page.ScrollBy(ctx, r.cfg.Revealer.ScrollOffset); err != nil {
			r.logger.Debug("Initial scroll failed", map[string]interface{}{"error": err.Error()})
		}
		return StateScrolledIntoView, r.sleep(ctx, r.cfg.Revealer.ScrollPause)

	case StateScrolledIntoView:
		return StateTriggerSought, nil

	case StateTriggerSought:
		if r.cfg.Revealer.TriggerSelector == "" {
			return StateTriggerAbsent, nil
		}
		clicked, err := page.ClickWhenVisible(ctx, r.cfg.Revealer.TriggerSelector, r.cfg.Revealer.TriggerTimeout)
		if err != nil {
			r.logger.Debug("Trigger lookup failed", map[string]interface{}{"error": err.Error()})
		}
		if !clicked {
			r.logger.Info("Show more button not found, continuing with the visible reviews")
			return StateTriggerAbsent, nil
		}
		res.TriggerFound = true
		return StateTriggerActivated, r.sleep(ctx, r.cfg.Revealer.TriggerPause)

	case StateTriggerActivated:
		clicks, err := r.loadMore(ctx, page)
		res.LoadMoreClicks = clicks
		return StateConverging, err

	case StateTriggerAbsent:
		return StateConverging, nil

	case StateConverging:
		reason, err := r.converge(ctx, page, res)
		res.Reason = reason
		return StateDone, err
	}

	return StateDone, nil
}

func (r *Revealer) loadMore(ctx context.Context, page Page) (int, error) {
	clicks := 0
	for clicks < r.cfg.Revealer.LoadMoreClicks {
		clicked, err := page.ClickWithText(ctx, LoadMoreSelector, LoadMoreText, r.cfg.Revealer.LoadMoreTimeout)
		if err != nil {
			r.logger.Debug("Load more lookup failed", map[string]interface{}{"error": err.Error()})
		}
		if !clicked {
			break
		}
		clicks++
		if err := r.sleep(ctx, r.cfg.Revealer.LoadMorePause); err != nil {
			return clicks, err
		}
	}
	return clicks, nil
}

func (r *Revealer) converge(ctx context.Context, page Page, res *Result) (Reason, error) {
	container, tier := r.resolveContainer(ctx, page)
	res.ContainerTier = tier

	prev := r.observe(ctx, page, container)
	res.Height, res.Items = prev.height, prev.items
	stalls := newStallCounter(r.cfg.Revealer.StallThreshold)

	for res.Iterations < r.cfg.Revealer.MaxIterations {
		if err := ctx.Err(); err != nil {
			return ReasonCancelled, err
		}

		res.Iterations++
		if !r.advance(ctx, page, container) {
			r.logger.Debug("Unable to scroll further", map[string]interface{}{"iteration": res.Iterations})
			return ReasonExhausted, nil
		}

		if err := r.sleep(ctx, r.cfg.Revealer.SettleInterval); err != nil {
			return ReasonCancelled, err
		}

		cur := r.observe(ctx, page, container)
		grew := cur.grewFrom(prev)
		if grew {
			prev = cur
			res.Height, res.Items = cur.height, cur.items
		}
		if stalls.observe(grew) {
			return ReasonConverged, nil
		}
	}

	r.logger.Warn("Reveal stopped at iteration cap", map[string]interface{}{"max_iterations": r.cfg.Revealer.MaxIterations})
	return ReasonCapped, nil
}

// resolveContainer returns the first probe that yields a container
func (r *Revealer) resolveContainer(ctx context.Context, page Page) (Container, Tier) {
	for _, probe := range r.probes {
		container, ok, err := page.Container(ctx, probe)
		if err != nil {
			r.logger.Debug("Container probe failed", map[string]interface{}{
				"selector": probe.Selector,
				"error":    err.Error(),
			})
			continue
		}
		if ok {
			r.logger.Debug("Scroll container resolved", map[string]interface{}{
				"tier":     string(probe.Tier),
				"selector": probe.Selector,
			})
			return container, probe.Tier
		}
	}
	return nil, TierNone
}

// advance scrolls the container to its end, falling back to the last item
func (r *Revealer) advance(ctx context.Context, page Page, container Container) bool {
	if container != nil {
		moved, err := container.ScrollToBottom(ctx)
		if err != nil {
			r.logger.Debug("Container scroll failed", map[string]interface{}{"error": err.Error()})
		}
		if moved {
			return true
		}
	}

	ok, err := page.ScrollLastIntoView(ctx, r.itemSelector)
	if err != nil {
		r.logger.Debug("Scroll to last item failed", map[string]interface{}{"error": err.Error()})
	}
	return ok
}

func (r *Revealer) observe(ctx context.Context, page Page, container Container) sample {
	var s sample
	if container != nil {
		if h, err := container.ScrollHeight(ctx); err == nil {
			s.height = h
		}
	}
	if n, err := page.CountItems(ctx, r.itemSelector); err == nil {
		s.items = n
	}
	return s
}

// Sleep pauses for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
