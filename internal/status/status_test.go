package status

import (
	"sync"
	"testing"
	"time"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{PollMs: 10, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"}
	tr := NewTracker("thermostat", start, cfg)

	snap := tr.Snapshot()
	if snap.Exercise != "thermostat" {
		t.Errorf("Exercise: got %q", snap.Exercise)
	}
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PollMs != 10 || snap.Config.HTTPAddr != ":8080" {
		t.Errorf("Config: got %+v", snap.Config)
	}
	if snap.Mode != "" || snap.MQTTConnected {
		t.Errorf("unexpected initial state: %+v", snap)
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker("beats", time.Now(), Config{})
	tr.Update("LISTENING", Reading{"bpm", "120.00"}, Reading{"beats", "3"})

	snap := tr.Snapshot()
	if snap.Mode != "LISTENING" {
		t.Errorf("Mode: got %q", snap.Mode)
	}
	if len(snap.Readings) != 2 || snap.Readings[0] != (Reading{"bpm", "120.00"}) {
		t.Errorf("Readings: got %v", snap.Readings)
	}
}

func TestSetLines(t *testing.T) {
	tr := NewTracker("thermostat", time.Now(), Config{})
	tr.SetLines([2]string{"Set: 22.0C", "Amb: 21.0C"})
	if got := tr.Snapshot().Lines; got[1] != "Amb: 21.0C" {
		t.Errorf("Lines: got %v", got)
	}
}

func TestCounters(t *testing.T) {
	tr := NewTracker("melody", time.Now(), Config{})
	tr.RecordEvent()
	tr.RecordEvent()
	tr.RecordFault("dht20: busy")

	snap := tr.Snapshot()
	if snap.Events != 2 || snap.Faults != 1 || snap.LastFault != "dht20: busy" {
		t.Errorf("counters: %+v", snap)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker("clock", time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{StartTime: start, Now: start.Add(15 * time.Minute)}
	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker("beats", time.Now(), Config{})
	readings := []Reading{{"bpm", "90.00"}}
	tr.Update("LISTENING", readings...)
	readings[0].Value = "changed"

	snap := tr.Snapshot()
	snap.Readings[0].Value = "mutated"

	if got := tr.Snapshot().Readings[0].Value; got != "90.00" {
		t.Errorf("tracker state leaked: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker("blink", time.Now(), Config{})
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.Update("SLOW", Reading{"led", "on"})
				tr.RecordEvent()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = tr.Snapshot()
			}
		}()
	}
	wg.Wait()
	if got := tr.Snapshot().Events; got != 1000 {
		t.Errorf("Events: got %d, want 1000", got)
	}
}
