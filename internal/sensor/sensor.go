// Package sensor provides synthetic sensor readings with source abstraction.
// The Simulator is the production source and generates deterministic signals.
// The fake implementation allows scripted tests.
package sensor

// Channel identifies one of the three monitored signal paths.
type Channel string

const (
	TempA    Channel = "TEMP_A"
	TempB    Channel = "TEMP_B"
	Pressure Channel = "PRESSURE"
)

// Channels returns the fixed channel set in generation order.
func Channels() [3]Channel {
	return [3]Channel{TempA, TempB, Pressure}
}

// Reading is a single sample from one channel at one tick.
// Valid=false marks a dropout; Value is meaningless in that case.
type Reading struct {
	Tick    int64   `json:"tick"`
	Channel Channel `json:"channel"`
	Value   float64 `json:"value"`
	Valid   bool    `json:"valid"`
}

// Frame holds the three readings produced for one tick, exactly one per channel.
type Frame struct {
	Tick     int64   `json:"tick"`
	TempA    Reading `json:"temp_a"`
	TempB    Reading `json:"temp_b"`
	Pressure Reading `json:"pressure"`
}

// Get returns the frame's reading for the given channel.
func (f Frame) Get(ch Channel) Reading {
	switch ch {
	case TempA:
		return f.TempA
	case TempB:
		return f.TempB
	default:
		return f.Pressure
	}
}

// Set replaces the frame's reading for the given channel.
func (f *Frame) Set(ch Channel, r Reading) {
	switch ch {
	case TempA:
		f.TempA = r
	case TempB:
		f.TempB = r
	default:
		f.Pressure = r
	}
}

// Source produces one frame per tick.
type Source interface {
	// Read returns the readings for the given tick.
	// Implementations must produce exactly one reading per channel.
	Read(tick int64) (Frame, error)

	// Close releases source resources.
	Close() error
}
