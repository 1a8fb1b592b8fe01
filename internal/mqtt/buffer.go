package mqtt

import (
	"log"

	"github.com/sweeney/labkit/internal/filter"
)

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages while the broker is unreachable, dropping the oldest
// once full. Not safe for concurrent use; caller must synchronize.
type outbox struct {
	ring     *filter.Ring[bufferedMsg]
	overflow bool // a message was dropped since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{ring: filter.NewRing[bufferedMsg](capacity)}
}

func (o *outbox) push(msg bufferedMsg) {
	if o.ring.Len() == o.ring.Cap() && !o.overflow {
		log.Printf("mqtt: buffer full (%d messages), dropping oldest", o.ring.Cap())
		o.overflow = true
	}
	o.ring.Push(msg)
}

func (o *outbox) drainAll() []bufferedMsg {
	msgs := o.ring.Values()
	o.ring.Clear()
	o.overflow = false
	return msgs
}

func (o *outbox) len() int {
	return o.ring.Len()
}
