// Package events is an in-process pub/sub bus for reservation window
// transitions. The countdown manager publishes a transition whenever a
// row changes state; subscribers (logging, future notification hooks)
// react without the manager knowing about them.
package events

import (
	"sync"
	"time"

	"ureserve/internal/window"
)

// Transition is one reservation window state change.
type Transition struct {
	Code string
	From window.State
	To   window.State
	Text string
	At   time.Time
}

// Handler reacts to a transition.
type Handler func(tr Transition)

// Bus provides in-process pub/sub for window transitions.
type Bus struct {
	subscribers []Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all transitions.
func (b *Bus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, handler)
}

// Publish notifies subscribers of the transition. Handlers run
// synchronously; the caller decides the concurrency model.
func (b *Bus) Publish(tr Transition) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers...)
	b.mu.RUnlock()

	if tr.At.IsZero() {
		tr.At = time.Now()
	}
	for _, handler := range handlers {
		handler(tr)
	}
}

// Listener adapts the bus to the countdown manager's listener shape,
// publishing only when a row's state actually changes.
func (b *Bus) Listener() func(code string, res window.Result) {
	var mu sync.Mutex
	last := make(map[string]window.State)

	return func(code string, res window.Result) {
		mu.Lock()
		prev, seen := last[code]
		last[code] = res.State
		mu.Unlock()

		if seen && prev == res.State {
			return
		}
		if !seen {
			prev = window.StatePending
		}
		b.Publish(Transition{Code: code, From: prev, To: res.State, Text: res.Text})
	}
}
