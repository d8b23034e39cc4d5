package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/telemetry-sim/internal/logic"
	"github.com/sweeney/telemetry-sim/internal/sensor"
)

func testConfig() Config {
	return Config{
		TickPeriodMs:        1000,
		NoiseSeed:           1,
		RedundancyThreshold: 1.5,
		TrendWindowSize:     10,
		TrendEpsilon:        0.05,
		Broker:              "tcp://127.0.0.1:1883",
		HTTPAddr:            ":8080",
		HeartbeatMs:         900000,
	}
}

func testFrame(tick int64) sensor.Frame {
	f := sensor.Frame{Tick: tick}
	f.TempA = sensor.Reading{Tick: tick, Channel: sensor.TempA, Value: 25.1, Valid: true}
	f.TempB = sensor.Reading{Tick: tick, Channel: sensor.TempB, Value: 25.3, Valid: true}
	f.Pressure = sensor.Reading{Tick: tick, Channel: sensor.Pressure, Value: 101.2, Valid: true}
	return f
}

func TestTrackerInitialSnapshot(t *testing.T) {
	tr := NewTracker(testConfig())
	snap := tr.Snapshot()

	if snap.CurrentTick != -1 {
		t.Errorf("current tick: got %d, want -1", snap.CurrentTick)
	}
	if snap.HealthScore != 100 {
		t.Errorf("health: got %d, want 100", snap.HealthScore)
	}
	if snap.Uptime() != 0 {
		t.Errorf("uptime before start: got %v, want 0", snap.Uptime())
	}
	if snap.Config.Broker != "tcp://127.0.0.1:1883" {
		t.Errorf("config broker: got %q", snap.Config.Broker)
	}
}

func TestTrackerSessionAndState(t *testing.T) {
	tr := NewTracker(testConfig())
	start := time.Now().Add(-time.Minute)

	tr.SetSession("sess-1", "RUNNING", start)
	snap := tr.Snapshot()
	if snap.SessionID != "sess-1" || snap.State != "RUNNING" {
		t.Errorf("session: got (%q, %q)", snap.SessionID, snap.State)
	}
	if !snap.StartTime.Equal(start) {
		t.Errorf("start time: got %v, want %v", snap.StartTime, start)
	}
	if snap.Uptime() <= 0 {
		t.Errorf("uptime after start: got %v, want positive", snap.Uptime())
	}

	tr.SetState("PAUSED")
	if got := tr.Snapshot().State; got != "PAUSED" {
		t.Errorf("state: got %q, want PAUSED", got)
	}
}

func TestTrackerUpdateTick(t *testing.T) {
	tr := NewTracker(testConfig())

	verdict := logic.Verdict{Tick: 7, TrustedValue: 25.2, HasTrusted: true, Disagreement: 0.2}
	trend := logic.TrendState{Channel: "TEMP", Classification: logic.Rising, WindowSlope: 0.1, LastUpdated: 7}
	counts := Counts{Ticks: 8, FlaggedTicks: 1, FaultsScheduled: 2, TrendTransitions: 3}

	tr.UpdateTick(7, testFrame(7), verdict, trend, logic.TrendState{}, "OK", 99, counts)

	snap := tr.Snapshot()
	if snap.CurrentTick != 7 {
		t.Errorf("tick: got %d, want 7", snap.CurrentTick)
	}
	if snap.Frame.TempA.Value != 25.1 {
		t.Errorf("frame: got %g, want 25.1", snap.Frame.TempA.Value)
	}
	if snap.Verdict != verdict {
		t.Errorf("verdict: got %+v", snap.Verdict)
	}
	if snap.TempTrend != trend {
		t.Errorf("trend: got %+v", snap.TempTrend)
	}
	if snap.TickStatus != "OK" || snap.HealthScore != 99 {
		t.Errorf("status/health: got %q/%d", snap.TickStatus, snap.HealthScore)
	}
	if snap.Counts != counts {
		t.Errorf("counts: got %+v", snap.Counts)
	}
}

func TestTrackerMQTTConnected(t *testing.T) {
	tr := NewTracker(testConfig())

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected connected")
	}
	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected disconnected")
	}
}

func TestFormatJSON(t *testing.T) {
	tr := NewTracker(testConfig())
	start := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	tr.SetSession("sess-1", "RUNNING", start)
	tr.UpdateTick(3, testFrame(3),
		logic.Verdict{Tick: 3, TrustedValue: 25.2, HasTrusted: true, Disagreement: 0.2},
		logic.TrendState{Channel: "TEMP", Classification: logic.Stable},
		logic.TrendState{Channel: "PRESSURE", Classification: logic.Stable},
		"OK", 100, Counts{Ticks: 4})

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	in := parsed.Status
	if in.SessionID != "sess-1" || in.State != "RUNNING" {
		t.Errorf("identity: got (%q, %q)", in.SessionID, in.State)
	}
	if in.CurrentTick != 3 || in.TickStatus != "OK" {
		t.Errorf("tick: got (%d, %q)", in.CurrentTick, in.TickStatus)
	}
	if in.Readings.TempB.Value != 25.3 {
		t.Errorf("readings: got %g, want 25.3", in.Readings.TempB.Value)
	}
	if !in.Verdict.HasTrusted || in.Verdict.TrustedValue != 25.2 {
		t.Errorf("verdict: got %+v", in.Verdict)
	}
	if in.StartTime != "2026-08-23T12:00:00Z" {
		t.Errorf("start time: got %q", in.StartTime)
	}
	if in.Event != "" || in.Reason != "" {
		t.Errorf("web status must not carry event fields: %q %q", in.Event, in.Reason)
	}
	if in.Counts.Ticks != 4 {
		t.Errorf("counts: got %d, want 4", in.Counts.Ticks)
	}
	if in.Config.TickPeriodMs != 1000 {
		t.Errorf("config: got %d, want 1000", in.Config.TickPeriodMs)
	}
}

func TestFormatJSONDefaultsToIdle(t *testing.T) {
	tr := NewTracker(testConfig())

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Status.State != "IDLE" {
		t.Errorf("state: got %q, want IDLE", parsed.Status.State)
	}
	if parsed.Status.StartTime != "" {
		t.Errorf("start time before start: got %q, want empty", parsed.Status.StartTime)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(testConfig())
	tr.SetSession("sess-1", "STOPPED", time.Now())

	var parsed StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM"), &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q", parsed.Status.Event)
	}
	if parsed.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q", parsed.Status.Reason)
	}
}
