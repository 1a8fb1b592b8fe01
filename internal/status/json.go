package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Exercise      string            `json:"exercise"`
	Mode          string            `json:"mode"`
	Display       []string          `json:"display,omitempty"`
	Readings      map[string]string `json:"readings"`
	Events        int               `json:"events"`
	Faults        int               `json:"faults"`
	LastFault     string            `json:"last_fault,omitempty"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	StartTime     string            `json:"start_time"`
	Timestamp     string            `json:"timestamp"`
	MQTT          MQTTStatus        `json:"mqtt"`
	Config        ConfigJSON        `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of process config.
type ConfigJSON struct {
	PollMs   int64  `json:"poll_ms"`
	Broker   string `json:"broker"`
	HTTPAddr string `json:"http_addr"`
}

// FormatJSON returns the indented JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	mode := snap.Mode
	if mode == "" {
		mode = "UNKNOWN"
	}

	readings := make(map[string]string, len(snap.Readings))
	for _, r := range snap.Readings {
		readings[r.Name] = r.Value
	}

	inner := StatusInner{
		Exercise:      snap.Exercise,
		Mode:          mode,
		Readings:      readings,
		Events:        snap.Events,
		Faults:        snap.Faults,
		LastFault:     snap.LastFault,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:   snap.Config.PollMs,
			Broker:   snap.Config.Broker,
			HTTPAddr: snap.Config.HTTPAddr,
		},
	}
	if snap.Lines != [2]string{} {
		inner.Display = []string{snap.Lines[0], snap.Lines[1]}
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
