package mqtt

import "log"

// outboxMsg is one serialized telemetry message awaiting delivery.
type outboxMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages produced while the broker is unreachable, oldest
// first, and hands them back for replay on reconnect. When the bound is hit
// the oldest message is discarded, the same loss policy the session feed
// applies to slow subscribers. Not safe for concurrent use; the publisher
// synchronizes.
type outbox struct {
	msgs    []outboxMsg
	bound   int
	dropped bool // a message was dropped since the last drain
}

func newOutbox(bound int) *outbox {
	return &outbox{bound: bound}
}

func (o *outbox) push(m outboxMsg) {
	if len(o.msgs) == o.bound {
		if !o.dropped {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.bound)
			o.dropped = true
		}
		o.msgs = o.msgs[1:]
	}
	o.msgs = append(o.msgs, m)
}

// drain hands over every queued message in arrival order and empties the
// outbox.
func (o *outbox) drain() []outboxMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	msgs := o.msgs
	o.msgs = nil
	o.dropped = false
	return msgs
}

func (o *outbox) len() int {
	return len(o.msgs)
}
