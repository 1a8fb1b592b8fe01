// Package button turns polled button levels into debounced press events.
// Time is always injectable via time.Time parameters.
package button

import "time"

// Edge detects rising edges (released -> pressed). After a press, further
// edges are ignored until the hold-off has elapsed, which replaces a blocking
// anti-bounce sleep.
type Edge struct {
	holdOff   time.Duration
	last      bool
	lastPress time.Time
	pressed   bool // a press has been accepted at least once
	presses   int
}

// NewEdge creates an edge detector with the given hold-off.
func NewEdge(holdOff time.Duration) *Edge {
	return &Edge{holdOff: holdOff}
}

// Process takes the current level and reports whether it is an accepted press.
func (e *Edge) Process(level bool, now time.Time) bool {
	rising := level && !e.last
	e.last = level
	if !rising {
		return false
	}
	if e.pressed && now.Sub(e.lastPress) < e.holdOff {
		return false
	}
	e.pressed = true
	e.lastPress = now
	e.presses++
	return true
}

// Presses returns the number of accepted presses.
func (e *Edge) Presses() int {
	return e.presses
}
