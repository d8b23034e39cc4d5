// Package status provides a thread-safe status tracker for the telemetry
// daemon. It is read by HTTP handlers and the MQTT system-event publisher.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/telemetry-sim/internal/logic"
	"github.com/sweeney/telemetry-sim/internal/sensor"
)

// Config contains session configuration for display.
type Config struct {
	TickPeriodMs        int64
	NoiseSeed           uint64
	RedundancyThreshold float64
	TrendWindowSize     int
	TrendEpsilon        float64
	Broker              string
	HTTPAddr            string
	HeartbeatMs         int64
}

// Counts tracks session totals since start.
type Counts struct {
	Ticks            int64
	FlaggedTicks     int
	FaultsScheduled  int
	TrendTransitions int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	SessionID     string
	State         string // IDLE, RUNNING, PAUSED, STOPPED
	CurrentTick   int64
	StartTime     time.Time
	Now           time.Time
	Frame         sensor.Frame
	Verdict       logic.Verdict
	TempTrend     logic.TrendState
	PressureTrend logic.TrendState
	TickStatus    string // OK, TEMP SENSOR FAIL, ...
	HealthScore   int
	Counts        Counts
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the session started, or zero if it
// has not started.
func (s Snapshot) Uptime() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given config.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Config:      cfg,
			CurrentTick: -1,
			HealthScore: 100,
		},
	}
}

// SetSession sets the session identity, state, and start time.
func (t *Tracker) SetSession(id, state string, startTime time.Time) {
	t.mu.Lock()
	t.snap.SessionID = id
	t.snap.State = state
	t.snap.StartTime = startTime
	t.mu.Unlock()
}

// SetState sets the control state.
func (t *Tracker) SetState(state string) {
	t.mu.Lock()
	t.snap.State = state
	t.mu.Unlock()
}

// UpdateTick records the outcome of one completed tick.
// Called from the pipeline on every tick.
func (t *Tracker) UpdateTick(tick int64, frame sensor.Frame, verdict logic.Verdict,
	tempTrend, pressureTrend logic.TrendState, tickStatus string, health int, counts Counts) {
	t.mu.Lock()
	t.snap.CurrentTick = tick
	t.snap.Frame = frame
	t.snap.Verdict = verdict
	t.snap.TempTrend = tempTrend
	t.snap.PressureTrend = pressureTrend
	t.snap.TickStatus = tickStatus
	t.snap.HealthScore = health
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
