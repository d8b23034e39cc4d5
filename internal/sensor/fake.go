package sensor

import "errors"

// FakeSource is a test double that returns scripted frames.
type FakeSource struct {
	// Frames contains scripted frames to return.
	// Each call to Read() consumes the next frame.
	Frames []Frame

	// index tracks current position in Frames
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeSource creates a FakeSource with the given frames.
func NewFakeSource(frames []Frame) *FakeSource {
	return &FakeSource{Frames: frames}
}

// Read returns the next scripted frame, restamped with the requested tick.
// If frames are exhausted, returns the last frame repeatedly.
func (f *FakeSource) Read(tick int64) (Frame, error) {
	if f.ReadError != nil {
		return Frame{}, f.ReadError
	}

	if len(f.Frames) == 0 {
		return Frame{}, errors.New("no frames configured")
	}

	frame := f.Frames[f.index]
	if f.index < len(f.Frames)-1 {
		f.index++
	}

	return restamp(frame, tick), nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the source to the beginning of frames.
func (f *FakeSource) Reset() {
	f.index = 0
	f.Closed = false
}

// ScriptFrame builds a fully valid frame for tests. The tick is filled in
// by Read, so scripted frames can be declared positionally.
func ScriptFrame(tempA, tempB, pressure float64) Frame {
	f := Frame{}
	f.TempA = Reading{Channel: TempA, Value: tempA, Valid: true}
	f.TempB = Reading{Channel: TempB, Value: tempB, Valid: true}
	f.Pressure = Reading{Channel: Pressure, Value: pressure, Valid: true}
	return f
}

func restamp(f Frame, tick int64) Frame {
	f.Tick = tick
	f.TempA.Tick = tick
	f.TempB.Tick = tick
	f.Pressure.Tick = tick
	return f
}
