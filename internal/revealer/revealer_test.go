package revealer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-harvester/internal/config"
	"review-harvester/internal/logging"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...map[string]interface{}) {}
func (nopLogger) Info(string, ...map[string]interface{})  {}
func (nopLogger) Warn(string, ...map[string]interface{})  {}
func (nopLogger) Error(string, ...map[string]interface{}) {}
func (nopLogger) Fatal(string, ...map[string]interface{}) {}

var _ logging.FieldLogger = nopLogger{}

// growingContainer grows by one item per scroll until growFor scrolls happened
type growingContainer struct {
	page    *fakePage
	growFor int
	scrolls int
	stuck   bool
	height  int
}

func (c *growingContainer) ScrollHeight(context.Context) (int, error) { return c.height, nil }

func (c *growingContainer) ScrollToBottom(context.Context) (bool, error) {
	if c.stuck {
		return false, nil
	}
	c.scrolls++
	if c.scrolls <= c.growFor {
		c.height += 100
		c.page.items++
	}
	return true, nil
}

type fakePage struct {
	triggerPresent bool
	loadMore       int
	items          int
	container      *growingContainer
	containerTier  Tier

	scrolledBy      []int
	probesTried     []ContainerProbe
	textClicks      int
	lastIntoView    int
	containerErrFor string
}

func (p *fakePage) ScrollBy(_ context.Context, dy int) error {
	p.scrolledBy = append(p.scrolledBy, dy)
	return nil
}

func (p *fakePage) ClickWhenVisible(context.Context, string, time.Duration) (bool, error) {
	return p.triggerPresent, nil
}

func (p *fakePage) ClickWithText(_ context.Context, _ string, text string, _ time.Duration) (bool, error) {
	if text != LoadMoreText || p.loadMore == 0 {
		return false, nil
	}
	p.loadMore--
	p.textClicks++
	p.items += 10
	return true, nil
}

func (p *fakePage) Container(_ context.Context, probe ContainerProbe) (Container, bool, error) {
	p.probesTried = append(p.probesTried, probe)
	if probe.Selector == p.containerErrFor {
		return nil, false, errors.New("cdp failure")
	}
	if p.container != nil && probe.Tier == p.containerTier {
		return p.container, true, nil
	}
	return nil, false, nil
}

func (p *fakePage) CountItems(context.Context, string) (int, error) { return p.items, nil }

func (p *fakePage) ScrollLastIntoView(context.Context, string) (bool, error) {
	if p.items == 0 {
		return false, nil
	}
	p.lastIntoView++
	return true, nil
}

func testConfig() *config.Config {
	return config.Default()
}

func newTestRevealer(cfg *config.Config, slept *[]time.Duration) *Revealer {
	return New(cfg,
		WithLogger(nopLogger{}),
		WithSleep(func(_ context.Context, d time.Duration) error {
			if slept != nil {
				*slept = append(*slept, d)
			}
			return nil
		}),
	)
}

func TestReveal_HaltsWithinGrowthPlusThreshold(t *testing.T) {
	for _, n := range []int{0, 1, 4, 25} {
		page := &fakePage{items: 1, containerTier: TierContent}
		page.container = &growingContainer{page: page, growFor: n}

		res, err := newTestRevealer(testConfig(), nil).Reveal(context.Background(), page)
		require.NoError(t, err)

		assert.Equal(t, ReasonConverged, res.Reason, "n=%d", n)
		assert.Equal(t, n+5, res.Iterations, "n=%d", n)
		assert.Equal(t, 1+n, res.Items)
		assert.Equal(t, 100*n, res.Height)
	}
}

func TestReveal_StateSequenceWithTrigger(t *testing.T) {
	page := &fakePage{triggerPresent: true, loadMore: 2, items: 3, containerTier: TierModal}
	page.container = &growingContainer{page: page}

	var slept []time.Duration
	cfg := testConfig()
	res, err := newTestRevealer(cfg, &slept).Reveal(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, []State{
		StateInitial,
		StateScrolledIntoView,
		StateTriggerSought,
		StateTriggerActivated,
		StateConverging,
		StateDone,
	}, res.Transitions)
	assert.True(t, res.TriggerFound)
	assert.Equal(t, 2, res.LoadMoreClicks)
	assert.Equal(t, TierModal, res.ContainerTier)
	assert.Equal(t, []int{800}, page.scrolledBy)

	require.GreaterOrEqual(t, len(slept), 4)
	assert.Equal(t, cfg.Revealer.ScrollPause, slept[0])
	assert.Equal(t, cfg.Revealer.TriggerPause, slept[1])
	assert.Equal(t, cfg.Revealer.LoadMorePause, slept[2])
	assert.Equal(t, cfg.Revealer.LoadMorePause, slept[3])
	assert.Equal(t, cfg.Revealer.FinalSettle, slept[len(slept)-1])
}

func TestReveal_LoadMoreIsBounded(t *testing.T) {
	page := &fakePage{triggerPresent: true, loadMore: 10, items: 1, containerTier: TierBody}
	page.container = &growingContainer{page: page}

	res, err := newTestRevealer(testConfig(), nil).Reveal(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 3, res.LoadMoreClicks)
	assert.Equal(t, 3, page.textClicks)
}

func TestReveal_TriggerAbsentStillConverges(t *testing.T) {
	page := &fakePage{items: 2, containerTier: TierBody}
	page.container = &growingContainer{page: page, growFor: 2}

	res, err := newTestRevealer(testConfig(), nil).Reveal(context.Background(), page)
	require.NoError(t, err)

	assert.False(t, res.TriggerFound)
	assert.Contains(t, res.Transitions, StateTriggerAbsent)
	assert.NotContains(t, res.Transitions, StateTriggerActivated)
	assert.Equal(t, ReasonConverged, res.Reason)
	assert.Equal(t, 7, res.Iterations)
	assert.Zero(t, page.textClicks)
}

func TestReveal_ExhaustedWhenNothingScrolls(t *testing.T) {
	page := &fakePage{items: 0, containerTier: TierBody}
	page.container = &growingContainer{page: page, stuck: true}

	res, err := newTestRevealer(testConfig(), nil).Reveal(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, ReasonExhausted, res.Reason)
	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, StateDone, res.Transitions[len(res.Transitions)-1])
}

func TestReveal_FallsBackToLastItem(t *testing.T) {
	page := &fakePage{items: 4, containerTier: TierBody}
	page.container = &growingContainer{page: page, stuck: true}

	res, err := newTestRevealer(testConfig(), nil).Reveal(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, ReasonConverged, res.Reason)
	assert.Equal(t, 5, page.lastIntoView)
}

func TestReveal_NoContainerUsesItems(t *testing.T) {
	page := &fakePage{items: 4}

	res, err := newTestRevealer(testConfig(), nil).Reveal(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, TierNone, res.ContainerTier)
	assert.Equal(t, ReasonConverged, res.Reason)
	assert.Len(t, page.probesTried, len(DefaultProbes()))
}

func TestReveal_IterationCap(t *testing.T) {
	cfg := testConfig()
	cfg.Revealer.MaxIterations = 12

	page := &fakePage{items: 1, containerTier: TierContent}
	page.container = &growingContainer{page: page, growFor: 1 << 30}

	res, err := newTestRevealer(cfg, nil).Reveal(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, ReasonCapped, res.Reason)
	assert.Equal(t, 12, res.Iterations)
}

func TestReveal_StallThresholdFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Revealer.StallThreshold = 2

	page := &fakePage{items: 1, containerTier: TierContent}
	page.container = &growingContainer{page: page, growFor: 3}

	res, err := newTestRevealer(cfg, nil).Reveal(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Iterations)
}

func TestReveal_ProbeOrderStopsAtFirstMatch(t *testing.T) {
	page := &fakePage{items: 1, containerTier: TierModal, containerErrFor: ".review-list-container"}
	page.container = &growingContainer{page: page}

	res, err := newTestRevealer(testConfig(), nil).Reveal(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, TierModal, res.ContainerTier)

	require.Len(t, page.probesTried, len(contentSelectors)+1)
	for i, sel := range contentSelectors {
		assert.Equal(t, sel, page.probesTried[i].Selector)
	}
	assert.Equal(t, ".review-modal", page.probesTried[len(contentSelectors)].Selector)
}

func TestReveal_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	page := &fakePage{items: 1, containerTier: TierContent}
	page.container = &growingContainer{page: page, growFor: 1 << 30}

	calls := 0
	r := New(testConfig(),
		WithLogger(nopLogger{}),
		WithSleep(func(ctx context.Context, _ time.Duration) error {
			calls++
			if calls == 5 {
				cancel()
			}
			return ctx.Err()
		}),
	)

	res, err := r.Reveal(ctx, page)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ReasonCancelled, res.Reason)
}

func TestDefaultProbes_Order(t *testing.T) {
	probes := DefaultProbes()
	require.Len(t, probes, len(contentSelectors)+len(modalSelectors)+2)

	assert.Equal(t, ".feedback-list-container", probes[0].Selector)
	assert.Equal(t, TierModal, probes[len(contentSelectors)].Tier)

	overflow := probes[len(probes)-2]
	assert.Equal(t, TierOverflow, overflow.Tier)
	assert.True(t, overflow.ScanAll)

	body := probes[len(probes)-1]
	assert.Equal(t, TierBody, body.Tier)
	assert.False(t, body.RequireOverflow)

	for _, p := range probes[:len(probes)-1] {
		assert.True(t, p.RequireOverflow, p.Selector)
	}
}

func TestStallCounter(t *testing.T) {
	s := newStallCounter(3)
	assert.False(t, s.observe(false))
	assert.False(t, s.observe(false))
	assert.False(t, s.observe(true))
	assert.False(t, s.observe(false))
	assert.False(t, s.observe(false))
	assert.True(t, s.observe(false))

	assert.True(t, newStallCounter(0).observe(false))
}

func TestSleep_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, Sleep(context.Background(), 0))
}
