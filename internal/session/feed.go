package session

import (
	"sync"

	"github.com/sweeney/telemetry-sim/internal/config"
)

// feed fans session log entries out to subscribers over bounded channels.
// Under DropOldest a slow subscriber loses its oldest queued entries and can
// never stall the tick pipeline; under Block the pipeline waits (the
// integrator chose backpressure over loss).
type feed struct {
	mu     sync.Mutex
	size   int
	policy config.FeedPolicy
	subs   []chan Entry
	closed bool
}

func newFeed(size int, policy config.FeedPolicy) *feed {
	return &feed{size: size, policy: policy}
}

// subscribe returns a new entry channel. After the feed is closed the
// returned channel is already closed.
func (f *feed) subscribe() <-chan Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan Entry, f.size)
	if f.closed {
		close(ch)
		return ch
	}
	f.subs = append(f.subs, ch)
	return ch
}

// publish delivers the entry to every subscriber.
func (f *feed) publish(e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	for _, ch := range f.subs {
		if f.policy == config.Block {
			ch <- e
			continue
		}
		select {
		case ch <- e:
		default:
			// Queue full: drop the oldest entry and retry once.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- e:
			default:
			}
		}
	}
}

// close flushes by closing all subscriber channels; entries already queued
// remain readable. Idempotent.
func (f *feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	for _, ch := range f.subs {
		close(ch)
	}
	f.subs = nil
}
