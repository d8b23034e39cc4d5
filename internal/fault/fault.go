// Package fault provides session-scoped fault scheduling and application.
// Events are scheduled ahead of time or on demand, never overlap on the same
// channel, and may be revoked only before their start tick is reached.
package fault

import (
	"errors"
	"fmt"

	"github.com/sweeney/telemetry-sim/internal/sensor"
)

// Kind identifies the way a fault perturbs a channel.
type Kind string

const (
	Stuck     Kind = "STUCK"      // value frozen at the event's first active tick
	Dropout   Kind = "DROPOUT"    // reading marked invalid
	Spike     Kind = "SPIKE"      // magnitude added while active
	DriftBias Kind = "DRIFT_BIAS" // linearly growing offset while active
)

// Kinds returns the supported fault kinds.
func Kinds() [4]Kind {
	return [4]Kind{Stuck, Dropout, Spike, DriftBias}
}

// Event is a scheduled fault. Immutable once scheduled.
// A nil TickEnd means open-ended: active from TickStart until the session stops.
type Event struct {
	ID        string         `json:"id"`
	Channel   sensor.Channel `json:"channel"`
	TickStart int64          `json:"tick_start"`
	TickEnd   *int64         `json:"tick_end"` // exclusive; nil = open-ended
	Kind      Kind           `json:"kind"`
	Magnitude float64        `json:"magnitude"`
}

// ActiveAt reports whether the event is active at the given tick.
func (e Event) ActiveAt(tick int64) bool {
	if tick < e.TickStart {
		return false
	}
	return e.TickEnd == nil || tick < *e.TickEnd
}

// overlaps reports whether two half-open windows on the same channel intersect.
func (e Event) overlaps(o Event) bool {
	if e.Channel != o.Channel {
		return false
	}
	if e.TickEnd != nil && *e.TickEnd <= o.TickStart {
		return false
	}
	if o.TickEnd != nil && *o.TickEnd <= e.TickStart {
		return false
	}
	return true
}

// OverlapError is returned when a new event's window overlaps an existing
// event on the same channel.
type OverlapError struct {
	Channel  sensor.Channel
	Existing string // ID of the conflicting event
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("fault: window overlaps event %s on channel %s", e.Existing, e.Channel)
}

// TooLateError is returned when revoking an event whose start tick has
// already been reached.
type TooLateError struct {
	ID          string
	TickStart   int64
	CurrentTick int64
}

func (e *TooLateError) Error() string {
	return fmt.Sprintf("fault: event %s started at tick %d, current tick %d", e.ID, e.TickStart, e.CurrentTick)
}

// ErrUnknownEvent is returned when revoking an ID that was never scheduled.
var ErrUnknownEvent = errors.New("fault: unknown event id")
