package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtonState_Offers(t *testing.T) {
	cases := []struct {
		name  string
		state buttonState
		want  bool
	}{
		{"plain label", buttonState{Text: "Ver mais", Display: "block", Visibility: "visible"}, true},
		{"uppercase transform", buttonState{Text: "VER MAIS", Display: "inline-flex", Visibility: "visible"}, true},
		{"capitalised prefix", buttonState{Text: "Mais avaliações", Display: "block", Visibility: "visible"}, true},
		{"other label", buttonState{Text: "Fechar", Display: "block", Visibility: "visible"}, false},
		{"display none", buttonState{Text: "Ver mais", Display: "none", Visibility: "visible"}, false},
		{"visibility hidden", buttonState{Text: "Ver mais", Display: "block", Visibility: "hidden"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.state.offers("mais"))
		})
	}
}

func TestFirstOffering(t *testing.T) {
	states := []buttonState{
		{Text: "Ver mais", Display: "none"},
		{Text: "Fechar", Display: "block"},
		{Text: "CARREGAR MAIS", Display: "block", Visibility: "visible"},
		{Text: "mais", Display: "block"},
	}

	assert.Equal(t, 2, firstOffering(states, "mais"))
	assert.Equal(t, -1, firstOffering(states[:2], "mais"))
	assert.Equal(t, -1, firstOffering(nil, "mais"))
}

// blockedMouse behaves like a mouse click on a covered element: it only
// returns once its context is done.
func blockedMouse(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestClickBounded_CoveredElementFallsBackToDOMClick(t *testing.T) {
	domClicked := false
	dom := func(ctx context.Context) error {
		require.NoError(t, ctx.Err())
		domClicked = true
		return nil
	}

	start := time.Now()
	err := clickBounded(context.Background(), 50*time.Millisecond, blockedMouse, dom)

	require.NoError(t, err)
	assert.True(t, domClicked)
	assert.Less(t, time.Since(start), 2*time.Second, "the mouse click must be bounded by the timeout")
}

func TestClickBounded_MouseClickWins(t *testing.T) {
	domCalled := false
	err := clickBounded(context.Background(), time.Second,
		func(context.Context) error { return nil },
		func(context.Context) error { domCalled = true; return nil },
	)

	require.NoError(t, err)
	assert.False(t, domCalled)
}

func TestClickBounded_BothFail(t *testing.T) {
	mouseErr := errors.New("detached")
	err := clickBounded(context.Background(), time.Second,
		func(context.Context) error { return mouseErr },
		func(context.Context) error { return errors.New("no node") },
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, mouseErr)
}

func TestClickBounded_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	domCalled := false
	err := clickBounded(ctx, time.Second, blockedMouse, func(context.Context) error {
		domCalled = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, domCalled)
}
