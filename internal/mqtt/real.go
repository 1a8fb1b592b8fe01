package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// BufferSize is the number of messages kept while disconnected.
const BufferSize = 100

// conn is the part of a broker connection the publisher needs.
type conn interface {
	IsConnectionOpen() bool
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Disconnect(quiesceMillis uint)
}

// pahoConn adapts a paho client to conn.
type pahoConn struct {
	client paho.Client
}

func (c pahoConn) IsConnectionOpen() bool {
	return c.client.IsConnectionOpen()
}

func (c pahoConn) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	return token.Error()
}

func (c pahoConn) Disconnect(quiesceMillis uint) {
	c.client.Disconnect(quiesceMillis)
}

// RealPublisher publishes to an actual MQTT broker. Messages published while
// the connection is down are buffered and replayed on reconnect.
type RealPublisher struct {
	mu      sync.Mutex
	conn    conn
	pending *outbox
}

// ClientID returns a unique client identifier for an exercise.
func ClientID(exercise string) string {
	return "labkit-" + exercise + "-" + uuid.NewString()[:8]
}

// NewRealPublisher creates a publisher for the given broker. A broker that is
// down at startup is retried in the background.
func NewRealPublisher(broker, exercise string) (*RealPublisher, error) {
	p := &RealPublisher{pending: newOutbox(BufferSize)}

	will, err := FormatSystemPayload(SystemEvent{Event: EventOffline, Exercise: exercise})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(ClientID(exercise)).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, true).
		SetOnConnectHandler(func(paho.Client) {
			log.Printf("mqtt: connected to %s", broker)
			p.flush()
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	client := paho.NewClient(opts)
	if err := p.dial(pahoConn{client: client}, client.Connect, connectTimeout); err != nil {
		return nil, err
	}
	return p, nil
}

// connectTimeout bounds the wait for the first connection at startup.
const connectTimeout = 10 * time.Second

// dial attaches c and starts connecting. A broker that does not answer within
// timeout is not an error: the client keeps retrying, messages are buffered
// and the OnConnect handler replays them.
func (p *RealPublisher) dial(c conn, connect func() paho.Token, timeout time.Duration) error {
	p.mu.Lock()
	p.conn = c
	p.mu.Unlock()

	token := connect()
	if !token.WaitTimeout(timeout) {
		log.Printf("mqtt: broker not reachable yet, buffering until connected")
		return nil
	}
	if err := token.Error(); err != nil {
		p.mu.Lock()
		p.conn = nil
		p.mu.Unlock()
		c.Disconnect(0)
		return fmt.Errorf("connect to broker: %w", err)
	}
	return nil
}

func newPublisherWithConn(c conn) *RealPublisher {
	return &RealPublisher{conn: c, pending: newOutbox(BufferSize)}
}

// Publish sends an exercise event, QoS 0 and not retained.
func (p *RealPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(bufferedMsg{topic: Topic(event.Exercise), payload: payload})
}

// PublishSystem sends a lifecycle event with QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || !p.conn.IsConnectionOpen() {
		p.pending.push(msg)
		return nil
	}
	if err := p.conn.Publish(msg.topic, msg.qos, msg.retained, msg.payload); err != nil {
		p.pending.push(msg)
		return fmt.Errorf("publish %s: %w", msg.topic, err)
	}
	return nil
}

// flush replays buffered messages in order. Messages that fail again are
// re-queued.
func (p *RealPublisher) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return
	}
	msgs := p.pending.drainAll()
	if len(msgs) == 0 {
		return
	}
	sent := 0
	for i, msg := range msgs {
		if err := p.conn.Publish(msg.topic, msg.qos, msg.retained, msg.payload); err != nil {
			log.Printf("mqtt: replay failed: %v", err)
			for _, rest := range msgs[i:] {
				p.pending.push(rest)
			}
			break
		}
		sent++
	}
	log.Printf("mqtt: replayed %d buffered messages", sent)
}

// Pending returns the number of buffered messages.
func (p *RealPublisher) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending.len()
}

// IsConnected reports whether the broker connection is open.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil && p.conn.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.mu.Lock()
	c := p.conn
	p.mu.Unlock()
	if c != nil {
		c.Disconnect(1000)
	}
	return nil
}
