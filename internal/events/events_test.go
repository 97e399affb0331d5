package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ureserve/internal/window"
)

func TestBusPublishesToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var a, b []Transition
	bus.Subscribe(func(tr Transition) { a = append(a, tr) })
	bus.Subscribe(func(tr Transition) { b = append(b, tr) })

	bus.Publish(Transition{Code: "R-1", From: window.StatePending, To: window.StateActive})

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, "R-1", a[0].Code)
	assert.False(t, a[0].At.IsZero(), "publish stamps the time")
}

func TestListenerPublishesOnlyOnStateChange(t *testing.T) {
	bus := NewBus()
	var got []Transition
	bus.Subscribe(func(tr Transition) { got = append(got, tr) })

	listen := bus.Listener()
	listen("R-1", window.Result{State: window.StateActive, Text: "01h 00min 00s"})
	listen("R-1", window.Result{State: window.StateActive, Text: "00h 59min 59s"})
	listen("R-1", window.Result{State: window.StateExpired, Text: window.TextExpired})
	listen("R-1", window.Result{State: window.StateExpired, Text: window.TextExpired})

	require.Len(t, got, 2, "same-state ticks are deduplicated")
	assert.Equal(t, window.StatePending, got[0].From)
	assert.Equal(t, window.StateActive, got[0].To)
	assert.Equal(t, window.StateActive, got[1].From)
	assert.Equal(t, window.StateExpired, got[1].To)
}

func TestListenerTracksRowsIndependently(t *testing.T) {
	bus := NewBus()
	var got []Transition
	bus.Subscribe(func(tr Transition) { got = append(got, tr) })

	listen := bus.Listener()
	listen("R-1", window.Result{State: window.StateActive})
	listen("R-2", window.Result{State: window.StateInvalid, Text: window.TextInvalid})
	listen("R-1", window.Result{State: window.StateActive})

	require.Len(t, got, 2)
	assert.Equal(t, "R-1", got[0].Code)
	assert.Equal(t, "R-2", got[1].Code)
	assert.Equal(t, window.StateInvalid, got[1].To)
}
