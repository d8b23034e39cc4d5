package logic

import (
	"math"
	"testing"

	"github.com/sweeney/telemetry-sim/internal/sensor"
)

func reading(ch sensor.Channel, value float64) sensor.Reading {
	return sensor.Reading{Tick: 7, Channel: ch, Value: value, Valid: true}
}

func invalid(ch sensor.Channel) sensor.Reading {
	return sensor.Reading{Tick: 7, Channel: ch, Valid: false}
}

func TestVoteAgreement(t *testing.T) {
	c := NewChecker(1.5)

	v := c.Vote(reading(sensor.TempA, 25.0), reading(sensor.TempB, 25.4), false, false)

	if v.Tick != 7 {
		t.Errorf("tick: got %d, want 7", v.Tick)
	}
	if v.Flagged {
		t.Error("agreement within threshold should not flag")
	}
	if !v.HasTrusted {
		t.Error("expected a trusted value")
	}
	if math.Abs(v.TrustedValue-25.2) > 1e-9 {
		t.Errorf("trusted: got %g, want mean 25.2", v.TrustedValue)
	}
	if math.Abs(v.Disagreement-0.4) > 1e-9 {
		t.Errorf("disagreement: got %g, want 0.4", v.Disagreement)
	}
}

func TestVoteDisagreementPrefersNominalChannel(t *testing.T) {
	c := NewChecker(1.5)

	v := c.Vote(reading(sensor.TempA, 25.0), reading(sensor.TempB, 28.0), false, false)

	if !v.Flagged {
		t.Error("expected flagged verdict above threshold")
	}
	if v.TrustedValue != 25.0 {
		t.Errorf("trusted: got %g, want TEMP_A value 25.0", v.TrustedValue)
	}
}

func TestVoteDisagreementSuspectLoses(t *testing.T) {
	c := NewChecker(1.5)

	tests := []struct {
		name        string
		aSuspect    bool
		bSuspect    bool
		wantTrusted float64
	}{
		{"a suspect", true, false, 28.0},
		{"b suspect", false, true, 25.0},
		{"both suspect", true, true, 25.0},
		{"neither suspect", false, false, 25.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Vote(reading(sensor.TempA, 25.0), reading(sensor.TempB, 28.0), tt.aSuspect, tt.bSuspect)
			if !v.Flagged {
				t.Error("expected flagged verdict")
			}
			if v.TrustedValue != tt.wantTrusted {
				t.Errorf("trusted: got %g, want %g", v.TrustedValue, tt.wantTrusted)
			}
		})
	}
}

func TestVoteSingleChannel(t *testing.T) {
	c := NewChecker(1.5)

	v := c.Vote(reading(sensor.TempA, 25.0), invalid(sensor.TempB), false, false)
	if !v.Flagged {
		t.Error("single-channel operation must be flagged")
	}
	if !v.HasTrusted || v.TrustedValue != 25.0 {
		t.Errorf("trusted: got (%v, %g), want (true, 25.0)", v.HasTrusted, v.TrustedValue)
	}

	v = c.Vote(invalid(sensor.TempA), reading(sensor.TempB, 26.0), false, false)
	if !v.Flagged {
		t.Error("single-channel operation must be flagged")
	}
	if !v.HasTrusted || v.TrustedValue != 26.0 {
		t.Errorf("trusted: got (%v, %g), want (true, 26.0)", v.HasTrusted, v.TrustedValue)
	}
}

func TestVoteNoTrustedValue(t *testing.T) {
	c := NewChecker(1.5)

	v := c.Vote(invalid(sensor.TempA), invalid(sensor.TempB), false, false)

	if !v.Flagged {
		t.Error("dual-invalid must be flagged")
	}
	if v.HasTrusted {
		t.Error("dual-invalid must not report a trusted value")
	}
}

func TestVoteDisagreementProperty(t *testing.T) {
	c := NewChecker(1.5)

	pairs := []struct{ a, b float64 }{
		{25, 25}, {25, 26.5}, {25, 26.500001}, {30, 22}, {-1, 1}, {0, 0},
	}

	for _, p := range pairs {
		v := c.Vote(reading(sensor.TempA, p.a), reading(sensor.TempB, p.b), false, false)
		want := math.Abs(p.a - p.b)
		if math.Abs(v.Disagreement-want) > 1e-9 {
			t.Errorf("(%g,%g): disagreement got %g, want %g", p.a, p.b, v.Disagreement, want)
		}
		if v.Flagged != (want > c.Threshold) {
			t.Errorf("(%g,%g): flagged got %v, want %v", p.a, p.b, v.Flagged, want > c.Threshold)
		}
	}
}

func TestLimitCheck(t *testing.T) {
	l := LimitCheck{Low: 95, High: 105}

	if l.Exceeds(100) || l.Exceeds(95) || l.Exceeds(105) {
		t.Error("in-band values must not exceed")
	}
	if !l.Exceeds(94.9) {
		t.Error("expected low exceedance")
	}
	if !l.Exceeds(105.1) {
		t.Error("expected high exceedance")
	}
}
