// Package logic contains pure analysis logic for the telemetry rig:
// redundancy voting over the dual temperature channels and sliding-window
// trend classification. This package has no external dependencies and no
// clocks; ticks are always injected by the caller.
package logic

// Classification labels a channel's short-term slope.
type Classification string

const (
	Rising  Classification = "RISING"
	Falling Classification = "FALLING"
	Stable  Classification = "STABLE"
)

// Verdict is the outcome of redundancy voting for one tick.
// HasTrusted=false marks a no-trusted-value gap (both channels invalid);
// callers must treat it as missing data, never as a zero.
type Verdict struct {
	Tick         int64   `json:"tick"`
	TrustedValue float64 `json:"trusted_value"`
	HasTrusted   bool    `json:"has_trusted"`
	Disagreement float64 `json:"disagreement"`
	Flagged      bool    `json:"flagged"`
}

// TrendState is the live trend classification for one analyzed channel.
type TrendState struct {
	Channel        string         `json:"channel"`
	Classification Classification `json:"classification"`
	WindowSlope    float64        `json:"window_slope"`
	LastUpdated    int64          `json:"last_updated_tick"`
}

// LimitCheck is an inclusive operating band.
type LimitCheck struct {
	Low  float64
	High float64
}

// Exceeds reports whether the value is outside the band.
func (l LimitCheck) Exceeds(v float64) bool {
	return v < l.Low || v > l.High
}
