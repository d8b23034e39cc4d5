// Package session owns the simulation lifecycle: the control state machine,
// the tick pipeline (generate, vote, trend update, log), the append-only
// session log, and the live entry feed. A Session is a self-contained value;
// multiple sessions can coexist, there is no process-wide state.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sweeney/telemetry-sim/internal/config"
	"github.com/sweeney/telemetry-sim/internal/fault"
	"github.com/sweeney/telemetry-sim/internal/logic"
	"github.com/sweeney/telemetry-sim/internal/sensor"
	"github.com/sweeney/telemetry-sim/internal/status"
)

// Status is the control state of a session.
type Status string

const (
	Idle    Status = "IDLE"
	Running Status = "RUNNING"
	Paused  Status = "PAUSED"
	Stopped Status = "STOPPED"
)

// Names of the analyzed trend channels: the voted temperature and pressure.
const (
	TrendTemp     = "TEMP"
	TrendPressure = "PRESSURE"
)

// Session is one simulation run. All control calls and the tick pipeline
// linearize on the session mutex, so a pause or stop takes effect only at a
// tick boundary, never mid-tick.
type Session struct {
	mu sync.Mutex

	id        string
	cfg       config.Config
	status    Status
	startTime time.Time
	tick      int64 // last executed tick, -1 before the first

	source   sensor.Source
	injector *fault.Injector
	checker  logic.Checker
	analyzer *logic.Analyzer
	limits   logic.LimitCheck
	tracker  *status.Tracker

	entries     []Entry
	seq         int64
	feed        *feed
	faultLogged map[string]bool

	flaggedTicks     int
	trendTransitions int
}

// New creates an IDLE session driven by the deterministic simulator.
// Configuration errors are the only fatal errors and prevent creation.
func New(cfg config.Config) (*Session, error) {
	return NewWithSource(cfg, sensor.NewSimulator(cfg.NoiseSeed))
}

// NewWithSource creates a session over a caller-supplied reading source.
// Used by tests to script exact values.
func NewWithSource(cfg config.Config, src sensor.Source) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		id:          uuid.NewString(),
		cfg:         cfg,
		status:      Idle,
		tick:        -1,
		source:      src,
		faultLogged: make(map[string]bool),
		injector:    fault.NewInjector(),
		checker:     logic.NewChecker(cfg.RedundancyThreshold),
		analyzer:    logic.NewAnalyzer(cfg.TrendWindowSize, cfg.TrendEpsilon),
		limits:      logic.LimitCheck{Low: cfg.PressureLowLimit, High: cfg.PressureHighLimit},
		feed:        newFeed(cfg.FeedQueueSize, cfg.FeedPolicy),
		tracker: status.NewTracker(status.Config{
			TickPeriodMs:        cfg.TickPeriodMs,
			NoiseSeed:           cfg.NoiseSeed,
			RedundancyThreshold: cfg.RedundancyThreshold,
			TrendWindowSize:     cfg.TrendWindowSize,
			TrendEpsilon:        cfg.TrendEpsilon,
			Broker:              cfg.Broker,
			HTTPAddr:            cfg.HTTPAddr,
			HeartbeatMs:         cfg.HeartbeatMs,
		}),
	}
	s.tracker.SetSession(s.id, string(Idle), time.Time{})
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Status returns the current control state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentTick returns the last executed tick, or -1 before the first.
func (s *Session) CurrentTick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Config returns the session's immutable configuration.
func (s *Session) Config() config.Config {
	return s.cfg
}

// Tracker exposes the session's status tracker for HTTP and MQTT consumers.
func (s *Session) Tracker() *status.Tracker {
	return s.tracker
}

// Start transitions IDLE -> RUNNING and resets analysis state.
func (s *Session) Start(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == Stopped {
		return &SessionClosedError{Op: "start"}
	}
	if s.status != Idle {
		return &InvalidTransitionError{Op: "start", From: s.status}
	}

	s.startTime = now
	s.tick = -1
	s.analyzer.Reset()
	s.transition(Running, now, "")
	s.tracker.SetSession(s.id, string(Running), now)
	return nil
}

// Pause transitions RUNNING -> PAUSED. No ticks occur while paused; all
// windows, fault schedules, and the current trusted value are preserved.
func (s *Session) Pause(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == Stopped {
		return &SessionClosedError{Op: "pause"}
	}
	if s.status != Running {
		return &InvalidTransitionError{Op: "pause", From: s.status}
	}

	s.transition(Paused, now, "")
	s.tracker.SetState(string(Paused))
	return nil
}

// Resume transitions PAUSED -> RUNNING. The next tick is exactly the
// pause tick plus one, regardless of wall-clock time spent paused.
func (s *Session) Resume(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == Stopped {
		return &SessionClosedError{Op: "resume"}
	}
	if s.status != Paused {
		return &InvalidTransitionError{Op: "resume", From: s.status}
	}

	s.transition(Running, now, "")
	s.tracker.SetState(string(Running))
	return nil
}

// Stop is terminal: RUNNING, PAUSED or IDLE -> STOPPED. Queued feed entries
// are flushed synchronously before Stop returns; any later call on the
// session fails with *SessionClosedError.
func (s *Session) Stop(now time.Time, reason string) error {
	s.mu.Lock()

	if s.status == Stopped {
		s.mu.Unlock()
		return &SessionClosedError{Op: "stop"}
	}

	s.transition(Stopped, now, reason)
	s.tracker.SetState(string(Stopped))
	if err := s.source.Close(); err != nil {
		log.Printf("session %s: close source: %v", s.id, err)
	}
	s.mu.Unlock()

	s.feed.close()
	return nil
}

// Step executes exactly one tick of the pipeline if the session is RUNNING:
// snapshot faults, generate, vote, update trends, log. Returns (nil, nil)
// in any other state; the tick counter does not advance.
func (s *Session) Step(now time.Time) (*TickRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != Running {
		return nil, nil
	}

	tick := s.tick + 1

	// One snapshot per tick: a schedule or revoke racing with this tick
	// either landed before the snapshot or waits for the next tick.
	view := s.injector.SnapshotAt(tick)

	frame, err := s.source.Read(tick)
	if err != nil {
		return nil, fmt.Errorf("read tick %d: %w", tick, err)
	}
	frame = view.ApplyFrame(frame)

	// Log each fault once, at the first tick it actually perturbs readings,
	// before the tick record it affects. An event injected with an
	// already-elapsed start tick first applies on the following tick, so
	// keying on the nominal start tick would skip its activation entry.
	for _, ch := range sensor.Channels() {
		if ev, ok := view.Active(ch); ok && !s.faultLogged[ev.ID] {
			s.faultLogged[ev.ID] = true
			e := ev
			s.append(now, Entry{Kind: EntryFault, Fault: &e})
		}
	}

	verdict := s.checker.Vote(frame.TempA, frame.TempB,
		view.Recent(sensor.TempA), view.Recent(sensor.TempB))

	tempTrend := s.updateTrend(now, TrendTemp, tick, verdict.TrustedValue, verdict.HasTrusted)
	pressTrend := s.updateTrend(now, TrendPressure, tick, frame.Pressure.Value, frame.Pressure.Valid)

	pressureExceeded := frame.Pressure.Valid && s.limits.Exceeds(frame.Pressure.Value)

	rec := TickRecord{
		Tick:             tick,
		Frame:            frame,
		Verdict:          verdict,
		TempTrend:        tempTrend,
		PressureTrend:    pressTrend,
		PressureExceeded: pressureExceeded,
		Status:           statusFor(frame, verdict, pressureExceeded),
	}
	s.append(now, Entry{Kind: EntryTick, Tick: &rec})

	s.tick = tick
	if verdict.Flagged || pressureExceeded {
		s.flaggedTicks++
	}

	s.tracker.UpdateTick(tick, frame, verdict, tempTrend, pressTrend,
		rec.Status, s.healthScore(), s.counts())

	return &rec, nil
}

// Run drives Step from a ticker channel until the context is cancelled or
// the session is stopped. The channel is injectable for tests.
func (s *Session) Run(ctx context.Context, tick <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-tick:
			if s.Status() == Stopped {
				return nil
			}
			if _, err := s.Step(now); err != nil {
				log.Printf("session %s: %v", s.id, err)
			}
		}
	}
}

// Inject schedules a fault from the control surface. The window is resolved
// against tick boundaries: an event cannot affect a tick already in flight.
func (s *Session) Inject(ev fault.Event) (fault.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == Stopped {
		return fault.Event{}, &SessionClosedError{Op: "inject fault"}
	}
	return s.injector.Schedule(ev)
}

// RevokeFault removes a scheduled fault that has not started yet.
func (s *Session) RevokeFault(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == Stopped {
		return &SessionClosedError{Op: "revoke fault"}
	}
	return s.injector.Revoke(id, s.tick)
}

// FaultEvents returns the scheduled fault events ordered by start tick.
func (s *Session) FaultEvents() []fault.Event {
	return s.injector.Events()
}

// Log returns a copy of the ordered session log. The full log is intended
// for export collaborators once the session is STOPPED, but reads are safe
// at any time.
func (s *Session) Log() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Subscribe returns a live feed of log entries. The channel is closed when
// the session stops.
func (s *Session) Subscribe() <-chan Entry {
	return s.feed.subscribe()
}

func (s *Session) updateTrend(now time.Time, channel string, tick int64, value float64, valid bool) logic.TrendState {
	if !valid {
		// Gaps are skipped, not zero-filled; the window holds only
		// actually-observed points.
		return s.analyzer.State(channel)
	}

	prev := s.analyzer.State(channel)
	next := s.analyzer.Update(channel, tick, value)
	if next.Classification != prev.Classification {
		s.trendTransitions++
		s.append(now, Entry{Kind: EntryTrend, Trend: &TrendTransition{
			Tick:    tick,
			Channel: channel,
			From:    prev.Classification,
			To:      next.Classification,
			Slope:   next.WindowSlope,
		}})
	}
	return next
}

// transition records a state change. Caller holds the lock and has already
// validated the transition.
func (s *Session) transition(to Status, now time.Time, reason string) {
	from := s.status
	s.status = to
	s.append(now, Entry{Kind: EntryState, State: &StateChange{
		Tick:   s.tick,
		From:   from,
		To:     to,
		Reason: reason,
	}})
}

// append stamps, logs, and feeds an entry. Caller holds the lock.
func (s *Session) append(now time.Time, e Entry) {
	e.Seq = s.seq
	e.Time = now
	s.seq++
	s.entries = append(s.entries, e)
	s.feed.publish(e)
}

func (s *Session) healthScore() int {
	score := 100 - s.flaggedTicks
	if score < 0 {
		score = 0
	}
	return score
}

func (s *Session) counts() status.Counts {
	return status.Counts{
		Ticks:            s.tick + 1,
		FlaggedTicks:     s.flaggedTicks,
		FaultsScheduled:  len(s.injector.Events()),
		TrendTransitions: s.trendTransitions,
	}
}
