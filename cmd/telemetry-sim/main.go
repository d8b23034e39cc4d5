// Command telemetry-sim runs the redundant-sensor simulation engine and
// exposes it over HTTP (control surface, live feed) and MQTT (telemetry
// records, lifecycle events).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/telemetry-sim/internal/config"
	"github.com/sweeney/telemetry-sim/internal/mqtt"
	"github.com/sweeney/telemetry-sim/internal/session"
	"github.com/sweeney/telemetry-sim/internal/status"
	"github.com/sweeney/telemetry-sim/internal/web"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (defaults apply if empty)")
	tickPeriod := flag.Duration("tick", 0, "Tick period (overrides config)")
	seed := flag.Uint64("seed", 0, "Noise seed (overrides config; 0 keeps config value)")
	broker := flag.String("broker", "", `MQTT broker address (overrides config; "off" disables MQTT)`)
	httpAddr := flag.String("http", "", "HTTP address (overrides config; empty keeps config value)")
	heartbeat := flag.Duration("heartbeat", -1, "Heartbeat interval (overrides config; 0 disables)")
	autostart := flag.Bool("autostart", true, "Start the session immediately")

	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *tickPeriod > 0 {
		cfg.TickPeriodMs = tickPeriod.Milliseconds()
	}
	if *seed != 0 {
		cfg.NoiseSeed = *seed
	}
	if *broker != "" {
		cfg.Broker = *broker
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *heartbeat >= 0 {
		cfg.HeartbeatMs = heartbeat.Milliseconds()
	}

	if err := run(cfg, *autostart); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, autostart bool) error {
	sess, err := session.New(cfg)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	// Initialize MQTT
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.Broker != "off" {
		real, err := mqtt.NewRealPublisher(cfg.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer real.Close()
		publisher = real
		mqttStatus = real
	}

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := sess.Tracker().Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}

		// Pump session log entries to the broker.
		go func() {
			for e := range sess.Subscribe() {
				if err := publisher.PublishEntry(e); err != nil {
					log.Printf("publish entry error: %v", err)
				}
			}
		}()
	}

	// Start HTTP control/status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, sess)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http server listening on %s", cfg.HTTPAddr)
	}

	if autostart {
		if err := sess.Start(time.Now()); err != nil {
			return fmt.Errorf("start session: %w", err)
		}
	}

	log.Printf("session %s: tick=%dms seed=%d broker=%s heartbeat=%dms",
		sess.ID(), cfg.TickPeriodMs, cfg.NoiseSeed, cfg.Broker, cfg.HeartbeatMs)

	ticker := time.NewTicker(time.Duration(cfg.TickPeriodMs) * time.Millisecond)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	heartbeat := time.Duration(cfg.HeartbeatMs) * time.Millisecond
	return runLoop(sess, publisher, mqttStatus, heartbeat, time.Now, ticker.C, sigCh)
}

// runLoop drives the session from the ticker and handles shutdown signals
// and heartbeats. The tick and signal channels are injectable for tests.
func runLoop(sess *session.Session, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			if err := sess.Stop(now(), signalName); err != nil {
				log.Printf("stop session: %v", err)
			}

			if publisher != nil {
				if mqttStatus != nil {
					sess.Tracker().SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := sess.Tracker().Snapshot()
				event := mqtt.SystemEvent{
					Timestamp:  snap.Now,
					Event:      "SHUTDOWN",
					Reason:     signalName,
					Retained:   true,
					RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
				}
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-tick:
			t := now()
			rec, err := sess.Step(t)
			if err != nil {
				log.Printf("tick error: %v", err)
				continue
			}
			if rec != nil && rec.Status != session.StatusOK {
				log.Printf("tick %d: %s", rec.Tick, rec.Status)
			}

			if mqttStatus != nil {
				sess.Tracker().SetMQTTConnected(mqttStatus.IsConnected())
			}

			// Check for heartbeat
			if publisher != nil && heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				snap := sess.Tracker().Snapshot()
				hbEvent := mqtt.SystemEvent{
					Timestamp:  t,
					Event:      "HEARTBEAT",
					RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}
