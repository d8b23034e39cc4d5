package session

import (
	"math"

	"github.com/sweeney/telemetry-sim/internal/sensor"
)

// ChannelStats aggregates the valid readings of one channel.
type ChannelStats struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// Summary is the aggregate view of a session, intended for the report
// collaborator. Text layout is the consumer's concern.
type Summary struct {
	SessionID        string                          `json:"session_id"`
	Ticks            int64                           `json:"ticks"`
	FlaggedTicks     int                             `json:"flagged_ticks"`
	FaultsScheduled  int                             `json:"faults_scheduled"`
	TrendTransitions int                             `json:"trend_transitions"`
	HealthScore      int                             `json:"health_score"`
	Channels         map[sensor.Channel]ChannelStats `json:"channels"`
	StatusCounts     map[string]int                  `json:"status_counts"`
}

// Summary computes aggregate statistics over the session log.
// Dropped-out readings are excluded from the per-channel stats.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := make(map[sensor.Channel]float64)
	stats := make(map[sensor.Channel]ChannelStats)
	statusCounts := make(map[string]int)

	for _, e := range s.entries {
		if e.Kind != EntryTick {
			continue
		}
		rec := e.Tick
		statusCounts[rec.Status]++
		for _, ch := range sensor.Channels() {
			r := rec.Frame.Get(ch)
			if !r.Valid {
				continue
			}
			cs, ok := stats[ch]
			if !ok {
				cs = ChannelStats{Min: math.Inf(1), Max: math.Inf(-1)}
			}
			cs.Count++
			cs.Min = math.Min(cs.Min, r.Value)
			cs.Max = math.Max(cs.Max, r.Value)
			sums[ch] += r.Value
			stats[ch] = cs
		}
	}

	for ch, cs := range stats {
		cs.Mean = sums[ch] / float64(cs.Count)
		stats[ch] = cs
	}

	return Summary{
		SessionID:        s.id,
		Ticks:            s.tick + 1,
		FlaggedTicks:     s.flaggedTicks,
		FaultsScheduled:  len(s.injector.Events()),
		TrendTransitions: s.trendTransitions,
		HealthScore:      s.healthScore(),
		Channels:         stats,
		StatusCounts:     statusCounts,
	}
}
