package mqtt

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

func TestTopic(t *testing.T) {
	if got := Topic("thermostat"); got != "labkit/thermostat/events" {
		t.Errorf("Topic = %q", got)
	}
	if TopicSystem != "labkit/system" {
		t.Errorf("TopicSystem = %q", TopicSystem)
	}
}

func TestFormatPayload(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Exercise:  "thermostat",
		Type:      "MODE",
		Fields:    map[string]any{"mode": "ALARM", "setpoint": 22.0},
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Labkit.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Labkit.Timestamp)
	}
	if parsed.Labkit.Exercise != "thermostat" || parsed.Labkit.Event != "MODE" {
		t.Errorf("unexpected header: %+v", parsed.Labkit)
	}
	if parsed.Labkit.Data["mode"] != "ALARM" {
		t.Errorf("unexpected mode: %v", parsed.Labkit.Data["mode"])
	}
	if parsed.Labkit.Data["setpoint"] != 22.0 {
		t.Errorf("unexpected setpoint: %v", parsed.Labkit.Data["setpoint"])
	}
}

func TestFormatPayloadOmitsEmptyData(t *testing.T) {
	payload, err := FormatPayload(Event{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Exercise:  "blink",
		Type:      "BLINK_MODE",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"labkit":{"timestamp":"2026-01-01T00:00:00Z","exercise":"blink","event":"BLINK_MODE"}}`
	if string(payload) != want {
		t.Errorf("got %s, want %s", payload, want)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	paris := time.FixedZone("CEST", 2*3600)
	payload, err := FormatPayload(Event{
		Timestamp: time.Date(2026, 6, 1, 14, 0, 0, 0, paris),
		Exercise:  "clock",
		Type:      "CLOCK",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(payload), `"2026-06-01T12:00:00Z"`) {
		t.Errorf("timestamp not converted to UTC: %s", payload)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
		Event:     EventShutdown,
		Exercise:  "beats",
		Reason:    "SIGTERM",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"system":{"timestamp":"2026-02-03T10:00:00Z","event":"SHUTDOWN","exercise":"beats","reason":"SIGTERM"}}`
	if string(payload) != want {
		t.Errorf("got %s, want %s", payload, want)
	}
}

func TestFormatSystemPayloadStartupOmitsReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC),
		Event:     EventStartup,
		Exercise:  "melody",
	})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(payload), "reason") {
		t.Errorf("startup payload should omit reason: %s", payload)
	}
}

func TestWillPayloadFormat(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{Event: EventOffline, Exercise: "clock"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"system":{"event":"OFFLINE","exercise":"clock"}}`
	if string(payload) != want {
		t.Errorf("got %s, want %s", payload, want)
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(Event{Type: "X"}); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{Event: EventStartup}); err != nil {
		t.Errorf("PublishSystem: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if (Nop{}).IsConnected() {
		t.Error("Nop should never be connected")
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(Event{Exercise: "blink", Type: "BLINK_MODE"})
	f.Publish(Event{Exercise: "blink", Type: "BLINK_MODE"})
	f.PublishSystem(SystemEvent{Event: EventStartup})

	if len(f.Events) != 2 || len(f.Payloads) != 2 {
		t.Errorf("expected 2 events, got %d/%d", len(f.Events), len(f.Payloads))
	}
	if len(f.SystemEvents) != 1 || len(f.SystemPayloads) != 1 {
		t.Errorf("expected 1 system event, got %d", len(f.SystemEvents))
	}
	if got := f.EventTypes(); len(got) != 2 || got[0] != "BLINK_MODE" {
		t.Errorf("EventTypes() = %v", got)
	}

	f.Reset()
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 || f.Closed {
		t.Error("Reset should clear everything")
	}
}

func TestFakePublisherErrors(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")
	f.PublishSystemError = errors.New("broker down")

	if err := f.Publish(Event{}); err == nil {
		t.Error("expected Publish error")
	}
	if err := f.PublishSystem(SystemEvent{}); err == nil {
		t.Error("expected PublishSystem error")
	}
	if len(f.Events) != 0 || len(f.SystemEvents) != 0 {
		t.Error("failed publishes should not be recorded")
	}
}

type fakeConn struct {
	open      bool
	failNext  int
	published []bufferedMsg
	closed    bool
}

func (c *fakeConn) IsConnectionOpen() bool { return c.open }

func (c *fakeConn) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if c.failNext > 0 {
		c.failNext--
		return errors.New("publish failed")
	}
	c.published = append(c.published, bufferedMsg{topic: topic, payload: payload, qos: qos, retained: retained})
	return nil
}

func (c *fakeConn) Disconnect(uint) { c.closed = true }

func TestRealPublisherSendsWhenConnected(t *testing.T) {
	c := &fakeConn{open: true}
	p := newPublisherWithConn(c)

	if err := p.Publish(Event{Exercise: "beats", Type: "BPM"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{Event: EventStartup, Retained: true}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}
	if len(c.published) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.published))
	}
	if c.published[0].topic != "labkit/beats/events" || c.published[0].qos != 0 {
		t.Errorf("event message: %+v", c.published[0])
	}
	if c.published[1].topic != TopicSystem || c.published[1].qos != 1 || !c.published[1].retained {
		t.Errorf("system message: %+v", c.published[1])
	}
	if !p.IsConnected() {
		t.Error("expected connected")
	}
}

func TestRealPublisherBuffersWhileDisconnected(t *testing.T) {
	c := &fakeConn{open: false}
	p := newPublisherWithConn(c)

	for i := 0; i < 3; i++ {
		if err := p.Publish(Event{Exercise: "clock", Type: "CLOCK"}); err != nil {
			t.Fatalf("Publish while offline should not fail: %v", err)
		}
	}
	if p.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", p.Pending())
	}
	if len(c.published) != 0 {
		t.Fatal("nothing should reach the broker while offline")
	}

	c.open = true
	p.flush()
	if len(c.published) != 3 {
		t.Errorf("expected 3 replayed messages, got %d", len(c.published))
	}
	if p.Pending() != 0 {
		t.Errorf("Pending() after flush = %d", p.Pending())
	}
}

func TestRealPublisherBufferIsBounded(t *testing.T) {
	c := &fakeConn{}
	p := newPublisherWithConn(c)
	for i := 0; i < BufferSize+20; i++ {
		p.Publish(Event{Exercise: "beats", Type: "BPM"})
	}
	if p.Pending() != BufferSize {
		t.Errorf("Pending() = %d, want %d", p.Pending(), BufferSize)
	}
}

func TestRealPublisherRequeuesFailedPublish(t *testing.T) {
	c := &fakeConn{open: true, failNext: 1}
	p := newPublisherWithConn(c)

	if err := p.Publish(Event{Exercise: "melody", Type: "MELODY"}); err == nil {
		t.Fatal("expected publish error")
	}
	if p.Pending() != 1 {
		t.Fatalf("failed message should be buffered, Pending() = %d", p.Pending())
	}

	c.failNext = 1
	p.Publish(Event{Exercise: "melody", Type: "MELODY"})
	c.failNext = 1
	p.flush()
	if p.Pending() != 2 {
		t.Errorf("failed replay should re-queue, Pending() = %d", p.Pending())
	}
	p.flush()
	if p.Pending() != 0 || len(c.published) != 2 {
		t.Errorf("expected everything sent, pending=%d sent=%d", p.Pending(), len(c.published))
	}
}

func TestRealPublisherClose(t *testing.T) {
	c := &fakeConn{open: true}
	p := newPublisherWithConn(c)
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !c.closed {
		t.Error("Close should disconnect")
	}
}

func TestClientIDIsUnique(t *testing.T) {
	a, b := ClientID("blink"), ClientID("blink")
	if a == b {
		t.Error("client IDs should differ")
	}
	if !strings.HasPrefix(a, "labkit-blink-") {
		t.Errorf("ClientID = %q", a)
	}
}

// pendingToken never completes, like a connect to a broker that is down.
type pendingToken struct{ err error }

func (t pendingToken) Wait() bool                     { return false }
func (t pendingToken) WaitTimeout(time.Duration) bool { return false }
func (t pendingToken) Done() <-chan struct{}          { return make(chan struct{}) }
func (t pendingToken) Error() error                   { return t.err }

// doneToken has already completed with err.
type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }

func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func TestDialBrokerDownBuffersAndReplays(t *testing.T) {
	c := &fakeConn{open: false}
	p := &RealPublisher{pending: newOutbox(BufferSize)}

	err := p.dial(c, func() paho.Token { return pendingToken{} }, time.Millisecond)
	if err != nil {
		t.Fatalf("dial with unreachable broker should not fail: %v", err)
	}
	if c.closed {
		t.Fatal("client must keep retrying, not be disconnected")
	}

	if err := p.PublishSystem(SystemEvent{Event: EventStartup, Retained: true}); err != nil {
		t.Fatalf("PublishSystem: %v", err)
	}
	if err := p.Publish(Event{Exercise: "beats", Type: "BPM"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if p.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", p.Pending())
	}

	// The broker comes up and the OnConnect handler runs.
	c.open = true
	p.flush()

	if p.Pending() != 0 || len(c.published) != 2 {
		t.Fatalf("expected replay, pending=%d sent=%d", p.Pending(), len(c.published))
	}
	if c.published[0].topic != TopicSystem || c.published[1].topic != "labkit/beats/events" {
		t.Errorf("replay order: %+v", c.published)
	}
}

func TestDialRefusedDisconnects(t *testing.T) {
	c := &fakeConn{}
	p := &RealPublisher{pending: newOutbox(BufferSize)}

	err := p.dial(c, func() paho.Token { return doneToken{err: errors.New("not authorized")} }, time.Second)
	if err == nil || !strings.Contains(err.Error(), "not authorized") {
		t.Fatalf("expected connect error, got %v", err)
	}
	if !c.closed {
		t.Error("refused client should be disconnected")
	}
	if p.IsConnected() {
		t.Error("publisher should not report a connection")
	}
}

func TestDialConnected(t *testing.T) {
	c := &fakeConn{open: true}
	p := &RealPublisher{pending: newOutbox(BufferSize)}

	if err := p.dial(c, func() paho.Token { return doneToken{} }, time.Second); err != nil {
		t.Fatalf("dial: %v", err)
	}
	if !p.IsConnected() {
		t.Error("expected connected")
	}
}
