package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/telemetry-sim/internal/session"
)

// outboxBound bounds how many messages are held while the broker is
// unreachable. A session tick produces at most a handful of entries, so this
// covers several minutes of outage at the default tick period.
const outboxBound = 256

// RealPublisher publishes to an actual MQTT broker. Messages sent while
// disconnected are held in an outbox and replayed in order on reconnect.
type RealPublisher struct {
	client paho.Client

	mu      sync.Mutex
	pending *outbox
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{pending: newOutbox(outboxBound)}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("telemetry-sim").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect)

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// PublishEntry sends a session log entry to the MQTT broker.
func (p *RealPublisher) PublishEntry(e session.Entry) error {
	payload, err := FormatEntryPayload(e)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0 (at-most-once), not retained
	return p.send(Topic, 0, false, payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	return p.send(TopicSystem, 1, event.Retained, payload)
}

// IsConnected reports whether the broker connection is active.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.pending.push(outboxMsg{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// onConnect replays the outbox in order after a reconnect.
func (p *RealPublisher) onConnect(client paho.Client) {
	p.mu.Lock()
	msgs := p.pending.drain()
	p.mu.Unlock()

	for _, m := range msgs {
		token := client.Publish(m.topic, m.qos, m.retained, m.payload)
		token.WaitTimeout(5 * time.Second)
	}
}
