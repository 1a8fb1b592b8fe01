// Package mqtt publishes exercise telemetry with an abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// TopicPrefix is the root of every labkit topic.
const TopicPrefix = "labkit"

// TopicSystem is the MQTT topic for lifecycle events.
const TopicSystem = TopicPrefix + "/system"

// Topic returns the events topic of an exercise.
func Topic(exercise string) string {
	return TopicPrefix + "/" + exercise + "/events"
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an exercise event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event is something an exercise wants to report, such as a mode change or
// a tempo measurement.
type Event struct {
	Timestamp time.Time
	Exercise  string
	Type      string         // e.g. "MODE", "BPM", "CLOCK"
	Fields    map[string]any // event specific values
}

// Lifecycle event names.
const (
	EventStartup  = "STARTUP"
	EventShutdown = "SHUTDOWN"
	EventOffline  = "OFFLINE"
)

// SystemEvent represents a process lifecycle event.
type SystemEvent struct {
	Timestamp time.Time
	Event     string // EventStartup, EventShutdown, EventOffline
	Exercise  string
	Reason    string // e.g. "SIGTERM" (shutdown only)
	Retained  bool
}

// Payload is the MQTT message payload of an exercise event.
type Payload struct {
	Labkit EventPayload `json:"labkit"`
}

// EventPayload contains the event details.
type EventPayload struct {
	Timestamp string         `json:"timestamp"`
	Exercise  string         `json:"exercise"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

// FormatPayload creates the JSON payload for an exercise event.
func FormatPayload(event Event) ([]byte, error) {
	return json.Marshal(Payload{
		Labkit: EventPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Exercise:  event.Exercise,
			Event:     event.Type,
			Data:      event.Fields,
		},
	})
}

// SystemPayload is the MQTT message payload of a lifecycle event.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Exercise  string `json:"exercise,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event. A zero
// timestamp is omitted, which is what the broker-held will message uses.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	inner := SystemPayloadInner{
		Event:    event.Event,
		Exercise: event.Exercise,
		Reason:   event.Reason,
	}
	if !event.Timestamp.IsZero() {
		inner.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(SystemPayload{System: inner})
}

// Nop discards everything. It stands in when no broker is configured.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(Event) error { return nil }

// PublishSystem does nothing.
func (Nop) PublishSystem(SystemEvent) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }

// IsConnected always reports false.
func (Nop) IsConnected() bool { return false }
