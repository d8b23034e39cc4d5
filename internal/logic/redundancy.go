package logic

import (
	"math"

	"github.com/sweeney/telemetry-sim/internal/sensor"
)

// DefaultThreshold is the disagreement above which the dual temperature
// channels are flagged as divergent.
const DefaultThreshold = 1.5

// Checker votes a single trusted temperature from the two redundant channels.
type Checker struct {
	// Threshold is the maximum tolerated |A-B| before flagging.
	Threshold float64
}

// NewChecker creates a checker with the given disagreement threshold.
func NewChecker(threshold float64) Checker {
	return Checker{Threshold: threshold}
}

// Vote derives the verdict for one tick from the two temperature readings.
// aSuspect/bSuspect mark channels with recent fault history; a suspect
// channel loses the vote when the pair disagrees. TEMP_A is the nominal
// channel and wins ties.
//
// Single-channel operation (exactly one valid reading) is itself a flagged
// condition. Both readings invalid yields HasTrusted=false.
func (c Checker) Vote(a, b sensor.Reading, aSuspect, bSuspect bool) Verdict {
	v := Verdict{Tick: a.Tick}

	switch {
	case a.Valid && b.Valid:
		v.Disagreement = math.Abs(a.Value - b.Value)
		v.HasTrusted = true
		if v.Disagreement > c.Threshold {
			v.Flagged = true
			if aSuspect && !bSuspect {
				v.TrustedValue = b.Value
			} else {
				v.TrustedValue = a.Value
			}
		} else {
			v.TrustedValue = (a.Value + b.Value) / 2
		}

	case a.Valid:
		v.TrustedValue = a.Value
		v.HasTrusted = true
		v.Flagged = true

	case b.Valid:
		v.TrustedValue = b.Value
		v.HasTrusted = true
		v.Flagged = true

	default:
		// No trusted value. Reported, never thrown: the pipeline keeps
		// running, this is the condition it exists to detect.
		v.Flagged = true
	}

	return v
}
