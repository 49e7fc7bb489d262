// Package presence watches the motion sensor and opens a session on each
// rising edge.  Re-triggering is suppressed while a session is active, and a
// sustained presence interval is treated as a single trigger: the monitor
// always waits for the falling edge before re-arming.
package presence

import (
	"context"
	"log"
	"time"

	"doorwarden/internal/hw"
	"doorwarden/internal/warden/notify"
)

const (
	msgPrompt    = "Password please"
	msgAlertText = "Someone is at the door. Send the password to unlock."
)

// Opener is the session coordinator surface the monitor needs.
type Opener interface {
	TryOpen() bool
}

// Config carries the monitor's tunables.
type Config struct {
	// AlertTo is the user to push motion alerts to.  Empty disables alerts.
	AlertTo string

	// Settle is the pause after a falling edge before re-arming, absorbing
	// sensor chatter.  Defaults to 500ms.
	Settle time.Duration
}

type Monitor struct {
	sensor   hw.MotionSensor
	sessions Opener
	display  hw.Display
	sink     notify.Sink
	alertTo  string
	settle   time.Duration
	logger   *log.Logger
}

func NewMonitor(sensor hw.MotionSensor, sessions Opener, display hw.Display, sink notify.Sink, cfg Config, logger *log.Logger) *Monitor {
	if cfg.Settle <= 0 {
		cfg.Settle = 500 * time.Millisecond
	}
	return &Monitor{
		sensor:   sensor,
		sessions: sessions,
		display:  display,
		sink:     sink,
		alertTo:  cfg.AlertTo,
		settle:   cfg.Settle,
		logger:   logger,
	}
}

// Run blocks on motion edges for the lifetime of ctx.  It returns ctx's
// error on cancellation, or the first hardware error.  There is no restart
// policy; the caller decides whether a dead monitor is fatal.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		if err := m.sensor.WaitForMotion(ctx); err != nil {
			return err
		}

		// Only the winning rising edge prompts; while a session is active the
		// edge is swallowed and we fall through to wait for motion-end.
		if m.sessions.TryOpen() {
			if err := m.display.Message(msgPrompt, 1); err != nil {
				return err
			}
			m.logger.Printf("motion detected: awaiting password")

			if m.alertTo != "" {
				if err := m.sink.Push(ctx, m.alertTo, msgAlertText); err != nil {
					m.logger.Printf("motion alert to %s: %v", m.alertTo, err)
				}
			}
		}

		if err := m.sensor.WaitForNoMotion(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.settle):
		}
	}
}
