package logic

import "sort"

// Default trend analysis parameters. The epsilon is calibrated above the
// simulator's noise floor so noise alone never flips a classification, and
// so a single spike cannot dominate a full window's slope.
const (
	DefaultWindowSize = 10
	DefaultEpsilon    = 0.05 // units per tick
)

type sample struct {
	tick  int64
	value float64
}

type channelTrend struct {
	samples []sample
	state   TrendState
}

// Analyzer maintains a fixed-size sliding window of valid samples per
// channel and classifies each channel's short-term trend by a robust slope
// fit. Invalid samples must simply not be offered; the window only ever
// holds actually-observed points.
type Analyzer struct {
	windowSize int
	epsilon    float64
	channels   map[string]*channelTrend
}

// NewAnalyzer creates an analyzer with the given window size and epsilon.
func NewAnalyzer(windowSize int, epsilon float64) *Analyzer {
	return &Analyzer{
		windowSize: windowSize,
		epsilon:    epsilon,
		channels:   make(map[string]*channelTrend),
	}
}

// Update appends a valid sample for the channel and returns the new trend
// state. Fewer than 2 samples in the window classifies as STABLE
// (insufficient evidence).
func (a *Analyzer) Update(channel string, tick int64, value float64) TrendState {
	ct := a.channel(channel)

	ct.samples = append(ct.samples, sample{tick: tick, value: value})
	if len(ct.samples) > a.windowSize {
		ct.samples = ct.samples[len(ct.samples)-a.windowSize:]
	}

	slope := windowSlope(ct.samples)

	cls := Stable
	if len(ct.samples) >= 2 {
		if slope > a.epsilon {
			cls = Rising
		} else if slope < -a.epsilon {
			cls = Falling
		}
	}

	ct.state = TrendState{
		Channel:        channel,
		Classification: cls,
		WindowSlope:    slope,
		LastUpdated:    tick,
	}
	return ct.state
}

// State returns the channel's current trend state without updating it.
// A channel that has never been updated reports STABLE.
func (a *Analyzer) State(channel string) TrendState {
	return a.channel(channel).state
}

// Reset clears all windows. Called at session start.
func (a *Analyzer) Reset() {
	a.channels = make(map[string]*channelTrend)
}

func (a *Analyzer) channel(name string) *channelTrend {
	ct, ok := a.channels[name]
	if !ok {
		ct = &channelTrend{
			state: TrendState{Channel: name, Classification: Stable},
		}
		a.channels[name] = ct
	}
	return ct
}

// windowSlope fits a linear slope over the samples using the median of all
// pairwise slopes (Theil-Sen). A single spiked sample cannot dominate the
// estimate, which a plain least-squares fit does not guarantee.
// Returns 0 for fewer than 2 samples.
func windowSlope(samples []sample) float64 {
	n := len(samples)
	if n < 2 {
		return 0
	}

	slopes := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dt := float64(samples[j].tick - samples[i].tick)
			if dt == 0 {
				continue
			}
			slopes = append(slopes, (samples[j].value-samples[i].value)/dt)
		}
	}
	if len(slopes) == 0 {
		return 0
	}

	sort.Float64s(slopes)
	mid := len(slopes) / 2
	if len(slopes)%2 == 1 {
		return slopes[mid]
	}
	return (slopes[mid-1] + slopes[mid]) / 2
}
