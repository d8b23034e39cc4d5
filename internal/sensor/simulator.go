package sensor

import (
	"math"
	"math/rand/v2"
)

// model describes the nominal physical behaviour of one channel:
// a slow oscillation around a mean, a linear ramp, and Gaussian noise.
type model struct {
	mean      float64
	amplitude float64
	period    float64 // ticks per full oscillation
	ramp      float64 // units per tick
	noise     float64 // Gaussian sigma
}

// Default channel models. Temperatures in °C, pressure in kPa.
// Both temperature channels share a model; they differ only in noise draws.
var (
	tempModel     = model{mean: 25.0, amplitude: 2.5, period: 120, ramp: 0.002, noise: 0.15}
	pressureModel = model{mean: 101.3, amplitude: 1.5, period: 200, ramp: 0, noise: 0.2}
)

// NoiseSigma returns the noise standard deviation of a channel's model.
// Used to calibrate trend epsilon against the noise floor.
func NoiseSigma(ch Channel) float64 {
	if ch == Pressure {
		return pressureModel.noise
	}
	return tempModel.noise
}

// Simulator generates deterministic nominal readings. The same seed produces
// a bit-identical sequence of frames, provided Read is called once per tick
// in increasing tick order. Fault application happens downstream; the
// simulator itself is pure signal.
type Simulator struct {
	rng    *rand.Rand
	models map[Channel]model
}

// NewSimulator creates a simulator seeded from the session seed.
func NewSimulator(seed uint64) *Simulator {
	return &Simulator{
		rng: rand.New(rand.NewPCG(seed, seed)),
		models: map[Channel]model{
			TempA:    tempModel,
			TempB:    tempModel,
			Pressure: pressureModel,
		},
	}
}

// Read generates the frame for the given tick. Noise is drawn in fixed
// channel order so the stream stays reproducible.
func (s *Simulator) Read(tick int64) (Frame, error) {
	f := Frame{Tick: tick}
	for _, ch := range Channels() {
		f.Set(ch, Reading{
			Tick:    tick,
			Channel: ch,
			Value:   s.nominal(ch, tick),
			Valid:   true,
		})
	}
	return f, nil
}

func (s *Simulator) nominal(ch Channel, tick int64) float64 {
	m := s.models[ch]
	t := float64(tick)
	baseline := m.mean + m.amplitude*math.Sin(2*math.Pi*t/m.period) + m.ramp*t
	return baseline + s.rng.NormFloat64()*m.noise
}

// Close releases nothing; the simulator holds no resources.
func (s *Simulator) Close() error {
	return nil
}
