// Package mqtt publishes session log entries and system lifecycle events
// with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/telemetry-sim/internal/session"
)

// Topic is the MQTT topic for session log entries.
const Topic = "telemetry/sim/records"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "telemetry/sim/system"

// Publisher publishes session data to MQTT.
type Publisher interface {
	// PublishEntry sends one session log entry to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishEntry(e session.Entry) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload for a session log entry.
type Payload struct {
	Telemetry TelemetryPayload `json:"telemetry"`
}

// TelemetryPayload wraps one log entry with its publication timestamp.
type TelemetryPayload struct {
	Timestamp string        `json:"timestamp"`
	Entry     session.Entry `json:"entry"`
}

// FormatEntryPayload creates the JSON payload for a session log entry.
func FormatEntryPayload(e session.Entry) ([]byte, error) {
	payload := Payload{
		Telemetry: TelemetryPayload{
			Timestamp: e.Time.UTC().Format(time.RFC3339),
			Entry:     e,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
