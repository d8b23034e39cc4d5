package fault

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sweeney/telemetry-sim/internal/sensor"
)

// recentWindow is how many ticks after a fault ends its channel is still
// considered suspect for the redundancy-voting tie-break.
const recentWindow = 10

// Injector holds the ordered set of fault events for one session.
// Safe for concurrent use: Schedule and Revoke may be called from a control
// surface while the tick pipeline reads per-tick snapshots.
type Injector struct {
	mu     sync.Mutex
	events []Event
	stuck  map[string]float64 // event ID -> frozen value, captured on first apply
}

// NewInjector creates an empty injector.
func NewInjector() *Injector {
	return &Injector{stuck: make(map[string]float64)}
}

// Schedule validates and adds an event, assigning an ID if none is set.
// Returns *OverlapError if the window overlaps an existing event on the
// same channel.
func (in *Injector) Schedule(ev Event) (Event, error) {
	if err := validate(ev); err != nil {
		return Event{}, err
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	for _, existing := range in.events {
		if ev.overlaps(existing) {
			return Event{}, &OverlapError{Channel: ev.Channel, Existing: existing.ID}
		}
	}

	in.events = append(in.events, ev)
	return ev, nil
}

// Revoke removes a scheduled event. Fails with *TooLateError once the
// event's start tick has been reached, and ErrUnknownEvent for unknown IDs.
func (in *Injector) Revoke(id string, currentTick int64) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	for i, ev := range in.events {
		if ev.ID != id {
			continue
		}
		if ev.TickStart <= currentTick {
			return &TooLateError{ID: id, TickStart: ev.TickStart, CurrentTick: currentTick}
		}
		in.events = append(in.events[:i], in.events[i+1:]...)
		return nil
	}
	return ErrUnknownEvent
}

// ActiveAt returns the event active on the channel at the given tick, or nil.
func (in *Injector) ActiveAt(ch sensor.Channel, tick int64) *Event {
	in.mu.Lock()
	defer in.mu.Unlock()

	for _, ev := range in.events {
		if ev.Channel == ch && ev.ActiveAt(tick) {
			e := ev
			return &e
		}
	}
	return nil
}

// Events returns the scheduled events ordered by start tick.
func (in *Injector) Events() []Event {
	in.mu.Lock()
	defer in.mu.Unlock()

	out := make([]Event, len(in.events))
	copy(out, in.events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TickStart < out[j].TickStart })
	return out
}

// SnapshotAt returns an immutable per-tick view of the fault table.
// The tick pipeline takes one snapshot per tick so a Schedule or Revoke
// racing with the tick can never produce a torn window.
func (in *Injector) SnapshotAt(tick int64) *View {
	in.mu.Lock()
	defer in.mu.Unlock()

	v := &View{
		tick:   tick,
		inj:    in,
		active: make(map[sensor.Channel]Event),
		recent: make(map[sensor.Channel]bool),
	}
	for _, ev := range in.events {
		if ev.ActiveAt(tick) {
			v.active[ev.Channel] = ev
			v.recent[ev.Channel] = true
			continue
		}
		if ev.TickEnd != nil && *ev.TickEnd <= tick && tick-*ev.TickEnd < recentWindow {
			v.recent[ev.Channel] = true
		}
	}
	return v
}

// stuckValue returns the frozen value for a STUCK event, capturing the
// nominal value on first call. Deterministic because the pipeline applies
// faults exactly once per tick in increasing tick order.
func (in *Injector) stuckValue(id string, nominal float64) float64 {
	in.mu.Lock()
	defer in.mu.Unlock()

	if v, ok := in.stuck[id]; ok {
		return v
	}
	in.stuck[id] = nominal
	return nominal
}

// View is a per-tick snapshot of the fault table.
type View struct {
	tick   int64
	inj    *Injector
	active map[sensor.Channel]Event
	recent map[sensor.Channel]bool
}

// Active returns the event active on the channel at the view's tick.
func (v *View) Active(ch sensor.Channel) (Event, bool) {
	ev, ok := v.active[ch]
	return ev, ok
}

// Recent reports whether the channel had a fault active at the view's tick
// or ending within the last few ticks. Used as the voting tie-break.
func (v *View) Recent(ch sensor.Channel) bool {
	return v.recent[ch]
}

// Apply perturbs a nominal reading according to the active fault on its
// channel, if any.
func (v *View) Apply(r sensor.Reading) sensor.Reading {
	ev, ok := v.active[r.Channel]
	if !ok {
		return r
	}

	switch ev.Kind {
	case Stuck:
		r.Value = v.inj.stuckValue(ev.ID, r.Value)
	case Dropout:
		r.Value = 0
		r.Valid = false
	case Spike:
		r.Value += ev.Magnitude
	case DriftBias:
		r.Value += ev.Magnitude * float64(v.tick-ev.TickStart+1)
	}
	return r
}

// ApplyFrame applies active faults to every reading in the frame.
func (v *View) ApplyFrame(f sensor.Frame) sensor.Frame {
	for _, ch := range sensor.Channels() {
		f.Set(ch, v.Apply(f.Get(ch)))
	}
	return f
}

func validate(ev Event) error {
	switch ev.Channel {
	case sensor.TempA, sensor.TempB, sensor.Pressure:
	default:
		return fmt.Errorf("fault: unknown channel %q", ev.Channel)
	}
	switch ev.Kind {
	case Stuck, Dropout, Spike, DriftBias:
	default:
		return fmt.Errorf("fault: unknown kind %q", ev.Kind)
	}
	if ev.TickStart < 0 {
		return fmt.Errorf("fault: negative start tick %d", ev.TickStart)
	}
	if ev.TickEnd != nil && *ev.TickEnd <= ev.TickStart {
		return fmt.Errorf("fault: empty window [%d,%d)", ev.TickStart, *ev.TickEnd)
	}
	return nil
}
