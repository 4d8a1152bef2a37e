package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"review-harvester/internal/revealer"
)

const (
	jsScrollBy = `(dy) => window.scrollBy({ top: dy, behavior: 'instant' })`

	jsButtonState = `() => {
	const style = window.getComputedStyle(this);
	return { text: this.innerText || '', display: style.display, visibility: style.visibility };
}`

	jsCenter = `() => this.scrollIntoView({ block: 'center', behavior: 'instant' })`

	jsDOMClick = `() => this.click()`

	jsCountItems = `(sel) => document.querySelectorAll(sel).length`

	jsScrollLastIntoView = `(sel) => {
	const items = document.querySelectorAll(sel);
	if (items.length === 0) return false;
	items[items.length - 1].scrollIntoView({ block: 'end', behavior: 'instant' });
	return true;
}`

	jsOverflows = `() => this.scrollHeight > this.clientHeight`

	// the body defers to the document scroller in standards mode
	jsScrollTarget = `const el = this === document.body ? (document.scrollingElement || this) : this;`

	jsScrollHeight = `() => { ` + jsScrollTarget + ` return el.scrollHeight; }`

	jsScrollToBottom = `() => {
	` + jsScrollTarget + `
	const before = el.scrollTop;
	el.scrollTo({ top: el.scrollHeight, behavior: 'instant' });
	return el.scrollTop !== before;
}`
)

// rodPage adapts a rod page to the revealer
type rodPage struct {
	page *rod.Page
}

var _ revealer.Page = (*rodPage)(nil)

func (p *rodPage) ScrollBy(ctx context.Context, dy int) error {
	_, err := p.page.Context(ctx).Eval(jsScrollBy, dy)
	return err
}

func (p *rodPage) ClickWhenVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	el, found, err := p.waitElement(ctx, selector, timeout)
	if !found {
		return false, err
	}

	if err := clickBounded(ctx, timeout, mouseClick(el), domClick(el)); err != nil {
		return false, err
	}
	return true, nil
}

// ClickWithText clicks the first rendered element matching selector whose
// label contains text, ignoring case.
func (p *rodPage) ClickWithText(ctx context.Context, selector, text string, timeout time.Duration) (bool, error) {
	if _, found, err := p.waitElement(ctx, selector, timeout); !found {
		return false, err
	}

	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return false, err
	}

	states := make([]buttonState, len(els))
	for i, el := range els {
		res, err := el.Eval(jsButtonState)
		if err != nil {
			// detached between the query and the read
			states[i] = buttonState{Display: "none"}
			continue
		}
		if err := res.Value.Unmarshal(&states[i]); err != nil {
			states[i] = buttonState{Display: "none"}
		}
	}

	idx := firstOffering(states, text)
	if idx < 0 {
		return false, nil
	}

	el := els[idx]
	_, _ = el.Eval(jsCenter)
	if err := clickBounded(ctx, timeout, mouseClick(el), domClick(el)); err != nil {
		return false, err
	}
	return true, nil
}

func (p *rodPage) Container(ctx context.Context, probe revealer.ContainerProbe) (revealer.Container, bool, error) {
	els, err := p.page.Context(ctx).Elements(probe.Selector)
	if err != nil {
		return nil, false, err
	}
	if !probe.ScanAll && len(els) > 1 {
		els = els[:1]
	}

	for _, el := range els {
		if probe.RequireOverflow {
			res, err := el.Eval(jsOverflows)
			if err != nil || !res.Value.Bool() {
				continue
			}
		}
		return &rodContainer{el: el}, true, nil
	}
	return nil, false, nil
}

func (p *rodPage) CountItems(ctx context.Context, selector string) (int, error) {
	res, err := p.page.Context(ctx).Eval(jsCountItems, selector)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (p *rodPage) ScrollLastIntoView(ctx context.Context, selector string) (bool, error) {
	res, err := p.page.Context(ctx).Eval(jsScrollLastIntoView, selector)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// buttonState is how a candidate button is rendered
type buttonState struct {
	Text       string `json:"text"`
	Display    string `json:"display"`
	Visibility string `json:"visibility"`
}

// offers reports whether the button is rendered and its label contains text.
// innerText follows text-transform, so both sides are lowercased.
func (b buttonState) offers(text string) bool {
	if b.Display == "none" || b.Visibility == "hidden" {
		return false
	}
	return strings.Contains(strings.ToLower(b.Text), strings.ToLower(text))
}

// firstOffering returns the index of the first button offering text, or -1
func firstOffering(states []buttonState, text string) int {
	for i, state := range states {
		if state.offers(text) {
			return i
		}
	}
	return -1
}

// clickBounded tries a mouse click for at most timeout, then a DOM click
// bounded the same way. rod's mouse click waits while the element is covered,
// so it must never run on the caller's context alone.
func clickBounded(ctx context.Context, timeout time.Duration, mouse, dom func(context.Context) error) error {
	mouseCtx, cancel := context.WithTimeout(ctx, timeout)
	err := mouse(mouseCtx)
	cancel()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	domCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if domErr := dom(domCtx); domErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("click failed: %w (dom click: %v)", err, domErr)
	}
	return nil
}

func mouseClick(el *rod.Element) func(context.Context) error {
	return func(ctx context.Context) error {
		return el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
	}
}

func domClick(el *rod.Element) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := el.Context(ctx).Eval(jsDOMClick)
		return err
	}
}

// waitElement waits up to timeout for selector. A timeout is reported as
// not found; only the caller's own cancellation is an error.
func (p *rodPage) waitElement(ctx context.Context, selector string, timeout time.Duration) (*rod.Element, bool, error) {
	el, err := p.page.Context(ctx).Timeout(timeout).Element(selector)
	if err == nil {
		return el.CancelTimeout(), true, nil
	}
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, false, nil
	}
	return nil, false, err
}

// rodContainer is a scrollable element handle
type rodContainer struct {
	el *rod.Element
}

func (c *rodContainer) ScrollHeight(ctx context.Context) (int, error) {
	res, err := c.el.Context(ctx).Eval(jsScrollHeight)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (c *rodContainer) ScrollToBottom(ctx context.Context) (bool, error) {
	res, err := c.el.Context(ctx).Eval(jsScrollToBottom)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}
