// Package config holds session configuration. Options are supplied at
// session creation and immutable for the session's lifetime.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FeedPolicy selects what the live feed does when a subscriber falls behind.
type FeedPolicy string

const (
	// DropOldest discards the oldest queued entry to make room (default).
	DropOldest FeedPolicy = "drop_oldest"
	// Block applies backpressure: the tick pipeline waits for the subscriber.
	Block FeedPolicy = "block"
)

// Config is the full session configuration.
type Config struct {
	TickPeriodMs        int64      `yaml:"tick_period_ms"`
	NoiseSeed           uint64     `yaml:"noise_seed"`
	RedundancyThreshold float64    `yaml:"redundancy_threshold"`
	TrendWindowSize     int        `yaml:"trend_window_size"`
	TrendEpsilon        float64    `yaml:"trend_epsilon"`
	PressureLowLimit    float64    `yaml:"pressure_low_limit"`
	PressureHighLimit   float64    `yaml:"pressure_high_limit"`
	FeedQueueSize       int        `yaml:"feed_queue_size"`
	FeedPolicy          FeedPolicy `yaml:"feed_policy"`
	Broker              string     `yaml:"broker"`
	HTTPAddr            string     `yaml:"http_addr"`
	HeartbeatMs         int64      `yaml:"heartbeat_ms"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		TickPeriodMs:        1000,
		NoiseSeed:           1,
		RedundancyThreshold: 1.5,
		TrendWindowSize:     10,
		TrendEpsilon:        0.05,
		PressureLowLimit:    95,
		PressureHighLimit:   105,
		FeedQueueSize:       64,
		FeedPolicy:          DropOldest,
		Broker:              "tcp://127.0.0.1:1883",
		HTTPAddr:            ":8080",
		HeartbeatMs:         900000,
	}
}

// Load reads a YAML config file over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations that cannot produce a working session.
// These are the only fatal errors in the system; everything downstream is
// flagged data, not failure.
func (c Config) Validate() error {
	if c.TickPeriodMs <= 0 {
		return fmt.Errorf("config: tick_period_ms must be positive, got %d", c.TickPeriodMs)
	}
	if c.TrendWindowSize < 2 {
		return fmt.Errorf("config: trend_window_size must be at least 2, got %d", c.TrendWindowSize)
	}
	if c.RedundancyThreshold < 0 {
		return fmt.Errorf("config: redundancy_threshold must not be negative, got %g", c.RedundancyThreshold)
	}
	if c.TrendEpsilon < 0 {
		return fmt.Errorf("config: trend_epsilon must not be negative, got %g", c.TrendEpsilon)
	}
	if c.PressureLowLimit >= c.PressureHighLimit {
		return fmt.Errorf("config: pressure limits inverted: [%g, %g]", c.PressureLowLimit, c.PressureHighLimit)
	}
	if c.FeedQueueSize <= 0 {
		return fmt.Errorf("config: feed_queue_size must be positive, got %d", c.FeedQueueSize)
	}
	if c.FeedPolicy != DropOldest && c.FeedPolicy != Block {
		return fmt.Errorf("config: unknown feed_policy %q", c.FeedPolicy)
	}
	return nil
}
