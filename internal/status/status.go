// Package status provides a thread-safe view of the running exercise.
// It is written by the control loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"
)

// Config contains process configuration for display.
type Config struct {
	PollMs   int64
	Broker   string
	HTTPAddr string
}

// Reading is one named value shown on the status page, e.g. "setpoint".
type Reading struct {
	Name  string
	Value string
}

// Snapshot is a point-in-time view of the exercise state.
// It is a value type: safe to use after the lock is released.
type Snapshot struct {
	Exercise      string
	Mode          string
	Lines         [2]string // display contents, empty when no display
	Readings      []Reading
	Events        int
	Faults        int
	LastFault     string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the exercise started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable exercise state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker for the named exercise.
func NewTracker(exercise string, startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Exercise:  exercise,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the current mode and readings. Called from the run loop on
// every tick.
func (t *Tracker) Update(mode string, readings ...Reading) {
	r := make([]Reading, len(readings))
	copy(r, readings)
	t.mu.Lock()
	t.snap.Mode = mode
	t.snap.Readings = r
	t.mu.Unlock()
}

// SetLines records what the display shows.
func (t *Tracker) SetLines(lines [2]string) {
	t.mu.Lock()
	t.snap.Lines = lines
	t.mu.Unlock()
}

// RecordEvent counts one published event.
func (t *Tracker) RecordEvent() {
	t.mu.Lock()
	t.snap.Events++
	t.mu.Unlock()
}

// RecordFault counts one recovered step failure.
func (t *Tracker) RecordFault(msg string) {
	t.mu.Lock()
	t.snap.Faults++
	t.snap.LastFault = msg
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the exercise state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Readings = append([]Reading(nil), t.snap.Readings...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
