package revealer

import (
	"context"
	"time"
)

// Page is the slice of a live browser page the revealer drives.
// Absence is reported through the bool results; errors are reserved for
// transport failures and are treated as absence by the revealer.
type Page interface {
	// ScrollBy scrolls the window vertically by dy pixels
	ScrollBy(ctx context.Context, dy int) error
	// ClickWhenVisible waits up to timeout for selector and clicks it
	ClickWhenVisible(ctx context.Context, selector string, timeout time.Duration) (bool, error)
	// ClickWithText waits up to timeout for selector, then clicks the first
	// visible match whose text contains text
	ClickWithText(ctx context.Context, selector, text string, timeout time.Duration) (bool, error)
	// Container resolves probe to a scroll container
	Container(ctx context.Context, probe ContainerProbe) (Container, bool, error)
	// CountItems counts elements matching selector
	CountItems(ctx context.Context, selector string) (int, error)
	// ScrollLastIntoView scrolls the last element matching selector into view.
	// It reports false when nothing matches.
	ScrollLastIntoView(ctx context.Context, selector string) (bool, error)
}

// Container is a scrollable element
type Container interface {
	ScrollHeight(ctx context.Context) (int, error)
	// ScrollToBottom jumps to the end and reports whether the scroll offset changed
	ScrollToBottom(ctx context.Context) (bool, error)
}
