package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/telemetry-sim/internal/logic"
	"github.com/sweeney/telemetry-sim/internal/sensor"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string           `json:"event,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	SessionID     string           `json:"session_id"`
	State         string           `json:"state"`
	CurrentTick   int64            `json:"current_tick"`
	TickStatus    string           `json:"tick_status"`
	HealthScore   int              `json:"health_score"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time,omitempty"`
	Timestamp     string           `json:"timestamp"`
	Readings      ReadingsJSON     `json:"readings"`
	Verdict       logic.Verdict    `json:"verdict"`
	TempTrend     logic.TrendState `json:"temp_trend"`
	PressureTrend logic.TrendState `json:"pressure_trend"`
	MQTT          MQTTStatus       `json:"mqtt"`
	Counts        CountsJSON       `json:"counts"`
	Config        ConfigJSON       `json:"config"`
}

// ReadingsJSON is the JSON representation of the latest frame.
type ReadingsJSON struct {
	TempA    sensor.Reading `json:"temp_a"`
	TempB    sensor.Reading `json:"temp_b"`
	Pressure sensor.Reading `json:"pressure"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of session counts.
type CountsJSON struct {
	Ticks            int64 `json:"ticks"`
	FlaggedTicks     int   `json:"flagged_ticks"`
	FaultsScheduled  int   `json:"faults_scheduled"`
	TrendTransitions int   `json:"trend_transitions"`
}

// ConfigJSON is the JSON representation of session config.
type ConfigJSON struct {
	TickPeriodMs        int64   `json:"tick_period_ms"`
	NoiseSeed           uint64  `json:"noise_seed"`
	RedundancyThreshold float64 `json:"redundancy_threshold"`
	TrendWindowSize     int     `json:"trend_window_size"`
	TrendEpsilon        float64 `json:"trend_epsilon"`
	Broker              string  `json:"broker"`
	HTTPAddr            string  `json:"http_addr"`
	HeartbeatMs         int64   `json:"heartbeat_ms"`
}

func buildInner(snap Snapshot) StatusInner {
	state := snap.State
	if state == "" {
		state = "IDLE"
	}

	inner := StatusInner{
		SessionID:     snap.SessionID,
		State:         state,
		CurrentTick:   snap.CurrentTick,
		TickStatus:    snap.TickStatus,
		HealthScore:   snap.HealthScore,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Readings: ReadingsJSON{
			TempA:    snap.Frame.TempA,
			TempB:    snap.Frame.TempB,
			Pressure: snap.Frame.Pressure,
		},
		Verdict:       snap.Verdict,
		TempTrend:     snap.TempTrend,
		PressureTrend: snap.PressureTrend,
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Ticks:            snap.Counts.Ticks,
			FlaggedTicks:     snap.Counts.FlaggedTicks,
			FaultsScheduled:  snap.Counts.FaultsScheduled,
			TrendTransitions: snap.Counts.TrendTransitions,
		},
		Config: ConfigJSON{
			TickPeriodMs:        snap.Config.TickPeriodMs,
			NoiseSeed:           snap.Config.NoiseSeed,
			RedundancyThreshold: snap.Config.RedundancyThreshold,
			TrendWindowSize:     snap.Config.TrendWindowSize,
			TrendEpsilon:        snap.Config.TrendEpsilon,
			Broker:              snap.Config.Broker,
			HTTPAddr:            snap.Config.HTTPAddr,
			HeartbeatMs:         snap.Config.HeartbeatMs,
		},
	}

	if !snap.StartTime.IsZero() {
		inner.StartTime = snap.StartTime.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
