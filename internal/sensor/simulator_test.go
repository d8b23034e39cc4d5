package sensor

import "testing"

func TestSimulatorDeterminism(t *testing.T) {
	a := NewSimulator(42)
	b := NewSimulator(42)

	for tick := int64(0); tick < 100; tick++ {
		fa, err := a.Read(tick)
		if err != nil {
			t.Fatalf("read a: %v", err)
		}
		fb, err := b.Read(tick)
		if err != nil {
			t.Fatalf("read b: %v", err)
		}
		if fa != fb {
			t.Fatalf("tick %d: same seed diverged:\n  %+v\n  %+v", tick, fa, fb)
		}
	}
}

func TestSimulatorSeedsDiffer(t *testing.T) {
	a := NewSimulator(1)
	b := NewSimulator(2)

	differs := false
	for tick := int64(0); tick < 10; tick++ {
		fa, _ := a.Read(tick)
		fb, _ := b.Read(tick)
		if fa.TempA.Value != fb.TempA.Value {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("different seeds produced identical streams")
	}
}

func TestSimulatorFrameShape(t *testing.T) {
	s := NewSimulator(7)

	f, err := s.Read(13)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if f.Tick != 13 {
		t.Errorf("frame tick: got %d, want 13", f.Tick)
	}
	for _, ch := range Channels() {
		r := f.Get(ch)
		if r.Tick != 13 {
			t.Errorf("%s tick: got %d, want 13", ch, r.Tick)
		}
		if r.Channel != ch {
			t.Errorf("channel: got %s, want %s", r.Channel, ch)
		}
		if !r.Valid {
			t.Errorf("%s: nominal reading must be valid", ch)
		}
	}
}

func TestSimulatorValueRanges(t *testing.T) {
	s := NewSimulator(99)

	for tick := int64(0); tick < 500; tick++ {
		f, err := s.Read(tick)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		for _, ch := range []Channel{TempA, TempB} {
			v := f.Get(ch).Value
			if v < 18 || v > 32 {
				t.Fatalf("tick %d %s: %g outside plausible band", tick, ch, v)
			}
		}
		if p := f.Pressure.Value; p < 95 || p > 108 {
			t.Fatalf("tick %d pressure: %g outside plausible band", tick, p)
		}
	}
}

func TestSimulatorChannelsIndependentNoise(t *testing.T) {
	s := NewSimulator(5)

	same := 0
	for tick := int64(0); tick < 50; tick++ {
		f, _ := s.Read(tick)
		if f.TempA.Value == f.TempB.Value {
			same++
		}
	}
	if same == 50 {
		t.Error("TEMP_A and TEMP_B share a noise draw")
	}
}

func TestSimulatorClose(t *testing.T) {
	s := NewSimulator(1)
	if err := s.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
