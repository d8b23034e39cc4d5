package logic

import (
	"math"
	"testing"
)

func TestTrendInsufficientEvidence(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, DefaultEpsilon)

	st := a.Update("TEMP", 0, 25.0)

	if st.Classification != Stable {
		t.Errorf("single sample: got %s, want %s", st.Classification, Stable)
	}
	if st.WindowSlope != 0 {
		t.Errorf("single sample slope: got %g, want 0", st.WindowSlope)
	}
}

func TestTrendRising(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, DefaultEpsilon)

	var st TrendState
	for tick := int64(0); tick < 10; tick++ {
		st = a.Update("TEMP", tick, 20.0+0.5*float64(tick))
	}

	if st.Classification != Rising {
		t.Errorf("got %s, want %s", st.Classification, Rising)
	}
	if math.Abs(st.WindowSlope-0.5) > 1e-9 {
		t.Errorf("slope: got %g, want 0.5", st.WindowSlope)
	}
	if st.LastUpdated != 9 {
		t.Errorf("last updated: got %d, want 9", st.LastUpdated)
	}
}

func TestTrendFalling(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, DefaultEpsilon)

	var st TrendState
	for tick := int64(0); tick < 10; tick++ {
		st = a.Update("PRESSURE", tick, 101.3-0.2*float64(tick))
	}

	if st.Classification != Falling {
		t.Errorf("got %s, want %s", st.Classification, Falling)
	}
}

func TestTrendStableFlat(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, DefaultEpsilon)

	var st TrendState
	for tick := int64(0); tick < 10; tick++ {
		st = a.Update("TEMP", tick, 25.0)
	}

	if st.Classification != Stable {
		t.Errorf("got %s, want %s", st.Classification, Stable)
	}
	if st.WindowSlope != 0 {
		t.Errorf("slope: got %g, want 0", st.WindowSlope)
	}
}

func TestTrendJitterBelowEpsilonStaysStable(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, DefaultEpsilon)

	jitter := []float64{0.01, -0.02, 0.015, -0.01, 0.02, -0.015, 0.005, -0.005, 0.01, -0.01}
	var st TrendState
	for tick, j := range jitter {
		st = a.Update("TEMP", int64(tick), 25.0+j)
	}

	if st.Classification != Stable {
		t.Errorf("got %s, want %s", st.Classification, Stable)
	}
}

func TestTrendSingleSpikeDoesNotFlip(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, DefaultEpsilon)

	for tick := int64(0); tick < 9; tick++ {
		a.Update("PRESSURE", tick, 100.0)
	}
	st := a.Update("PRESSURE", 9, 150.0)

	if st.Classification != Stable {
		t.Errorf("one spiked sample flipped classification to %s", st.Classification)
	}
	if st.WindowSlope != 0 {
		t.Errorf("slope: got %g, want 0", st.WindowSlope)
	}
}

func TestTrendWindowEviction(t *testing.T) {
	a := NewAnalyzer(5, DefaultEpsilon)

	// Fill with a rising ramp, then hold flat long enough that the ramp
	// falls out of the 5-wide window entirely.
	tick := int64(0)
	for ; tick < 5; tick++ {
		a.Update("TEMP", tick, float64(tick))
	}
	var st TrendState
	for ; tick < 10; tick++ {
		st = a.Update("TEMP", tick, 4.0)
	}

	if st.Classification != Stable {
		t.Errorf("after eviction: got %s, want %s", st.Classification, Stable)
	}
	if st.WindowSlope != 0 {
		t.Errorf("after eviction slope: got %g, want 0", st.WindowSlope)
	}
}

func TestTrendGapsInTicks(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, DefaultEpsilon)

	// Samples at non-contiguous ticks, as happens when invalid readings
	// are skipped. Slope is per tick, not per sample.
	ticks := []int64{0, 1, 4, 5, 8}
	var st TrendState
	for _, tk := range ticks {
		st = a.Update("TEMP", tk, 20.0+0.5*float64(tk))
	}

	if st.Classification != Rising {
		t.Errorf("got %s, want %s", st.Classification, Rising)
	}
	if math.Abs(st.WindowSlope-0.5) > 1e-9 {
		t.Errorf("slope: got %g, want 0.5", st.WindowSlope)
	}
}

func TestTrendStateWithoutUpdates(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, DefaultEpsilon)

	st := a.State("TEMP")

	if st.Channel != "TEMP" {
		t.Errorf("channel: got %q, want TEMP", st.Channel)
	}
	if st.Classification != Stable {
		t.Errorf("got %s, want %s", st.Classification, Stable)
	}
}

func TestTrendReset(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, DefaultEpsilon)

	for tick := int64(0); tick < 10; tick++ {
		a.Update("TEMP", tick, float64(tick))
	}
	if a.State("TEMP").Classification != Rising {
		t.Fatal("precondition: expected rising trend")
	}

	a.Reset()

	st := a.State("TEMP")
	if st.Classification != Stable || st.LastUpdated != 0 {
		t.Errorf("after reset: got %+v, want fresh stable state", st)
	}

	// Two fresh samples classify on their own, unpolluted by old data.
	a.Update("TEMP", 0, 5.0)
	st = a.Update("TEMP", 1, 5.0)
	if st.Classification != Stable || st.WindowSlope != 0 {
		t.Errorf("after reset update: got %+v, want flat", st)
	}
}

func TestTrendChannelsIndependent(t *testing.T) {
	a := NewAnalyzer(DefaultWindowSize, DefaultEpsilon)

	for tick := int64(0); tick < 10; tick++ {
		a.Update("TEMP", tick, 20.0+float64(tick))
		a.Update("PRESSURE", tick, 101.3)
	}

	if got := a.State("TEMP").Classification; got != Rising {
		t.Errorf("TEMP: got %s, want %s", got, Rising)
	}
	if got := a.State("PRESSURE").Classification; got != Stable {
		t.Errorf("PRESSURE: got %s, want %s", got, Stable)
	}
}
