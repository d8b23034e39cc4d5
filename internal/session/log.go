package session

import (
	"time"

	"github.com/sweeney/telemetry-sim/internal/fault"
	"github.com/sweeney/telemetry-sim/internal/logic"
	"github.com/sweeney/telemetry-sim/internal/sensor"
)

// EntryKind tags the variants of a session log entry.
type EntryKind string

const (
	EntryTick  EntryKind = "TICK"
	EntryFault EntryKind = "FAULT"
	EntryTrend EntryKind = "TREND"
	EntryState EntryKind = "STATE"
)

// Entry is one record in the ordered append-only session log.
// Exactly one of the payload pointers is set, matching Kind.
type Entry struct {
	Seq   int64            `json:"seq"`
	Kind  EntryKind        `json:"kind"`
	Time  time.Time        `json:"time"`
	Tick  *TickRecord      `json:"tick,omitempty"`
	Fault *fault.Event     `json:"fault,omitempty"`
	Trend *TrendTransition `json:"trend,omitempty"`
	State *StateChange     `json:"state,omitempty"`
}

// TickRecord is the full result of one completed tick: the three readings,
// the redundancy verdict, both trend states, and the derived status string.
type TickRecord struct {
	Tick             int64            `json:"tick"`
	Frame            sensor.Frame     `json:"frame"`
	Verdict          logic.Verdict    `json:"verdict"`
	TempTrend        logic.TrendState `json:"temp_trend"`
	PressureTrend    logic.TrendState `json:"pressure_trend"`
	PressureExceeded bool             `json:"pressure_exceeded"`
	Status           string           `json:"status"`
}

// TrendTransition records a change of classification on one analyzed channel.
// Emitted only when the classification actually changes.
type TrendTransition struct {
	Tick    int64                `json:"tick"`
	Channel string               `json:"channel"`
	From    logic.Classification `json:"from"`
	To      logic.Classification `json:"to"`
	Slope   float64              `json:"slope"`
}

// StateChange records a control-state transition.
type StateChange struct {
	Tick   int64  `json:"tick"`
	From   Status `json:"from"`
	To     Status `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// Tick status strings, matching the operator-facing vocabulary.
const (
	StatusOK           = "OK"
	StatusTempFail     = "TEMP SENSOR FAIL"
	StatusTempMismatch = "TEMP SENSOR MISMATCH"
	StatusPressure     = "PRESSURE FAULT"
)

// statusFor derives the tick status string. Pressure conditions take
// precedence over temperature conditions.
func statusFor(f sensor.Frame, v logic.Verdict, pressureExceeded bool) string {
	s := StatusOK
	if !f.TempA.Valid || !f.TempB.Valid {
		s = StatusTempFail
	} else if v.Flagged {
		s = StatusTempMismatch
	}
	if !f.Pressure.Valid || pressureExceeded {
		s = StatusPressure
	}
	return s
}
