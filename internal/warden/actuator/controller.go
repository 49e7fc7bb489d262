// Package actuator runs the physical grant and deny choreography: lamps,
// buzzer, door travel and display updates, in the fixed order the hardware
// expects.  Sequences block; the session coordinator runs them on their own
// goroutine.
package actuator

import (
	"context"
	"fmt"
	"log"
	"time"

	"doorwarden/internal/hw"
	"doorwarden/internal/warden/notify"
)

const (
	msgGranted   = "Access Granted"
	msgDenied    = "Access Denied"
	msgUnlocked  = "Door unlocked. It closes again shortly."
	msgBadSecret = "Wrong password. The alarm has been raised."
)

// Outputs bundles the physical outputs a Controller drives.
type Outputs struct {
	Door      Door
	GrantLamp hw.Switch
	DenyLamp  hw.Switch
	Alarm     hw.Switch
	Display   hw.Display
}

// Config carries the fixed hold durations of the two sequences.
type Config struct {
	// OpenHold is how long the door stays open, shown as a one-second
	// countdown on the display.  Defaults to 5s.
	OpenHold time.Duration

	// DenyHold is how long the deny lamp and alarm stay on.  Defaults to 3s.
	DenyHold time.Duration

	// Sleep replaces the blocking holds in tests.  Defaults to time.Sleep.
	Sleep SleepFunc
}

type Controller struct {
	out      Outputs
	sink     notify.Sink
	logger   *log.Logger
	openHold time.Duration
	denyHold time.Duration
	sleep    SleepFunc
}

func NewController(out Outputs, sink notify.Sink, logger *log.Logger, cfg Config) *Controller {
	if cfg.OpenHold <= 0 {
		cfg.OpenHold = 5 * time.Second
	}
	if cfg.DenyHold <= 0 {
		cfg.DenyHold = 3 * time.Second
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Controller{
		out:      out,
		sink:     sink,
		logger:   logger,
		openHold: cfg.OpenHold,
		denyHold: cfg.DenyHold,
		sleep:    cfg.Sleep,
	}
}

// RunGrant opens the door: lamp on, ramp open, countdown, ramp closed, lamp
// off, display cleared.  Output errors abort the sequence; they are hardware
// faults with no recovery path.
func (c *Controller) RunGrant(ctx context.Context, userID string) error {
	if err := c.out.Display.Message(msgGranted, 1); err != nil {
		return err
	}
	if err := c.out.GrantLamp.On(); err != nil {
		return err
	}
	if err := c.out.Door.Travel(PositionClosed, PositionOpen); err != nil {
		return err
	}

	c.push(ctx, userID, msgUnlocked)

	for i := int(c.openHold / time.Second); i >= 1; i-- {
		if err := c.out.Display.Message(fmt.Sprintf("Closing in %ds", i), 2); err != nil {
			return err
		}
		c.sleep(time.Second)
	}

	if err := c.out.Door.Travel(PositionOpen, PositionClosed); err != nil {
		return err
	}
	if err := c.out.GrantLamp.Off(); err != nil {
		return err
	}
	return c.out.Display.Clear()
}

// RunDeny raises the alarm: lamp and buzzer on, fixed hold, both off,
// display cleared.
func (c *Controller) RunDeny(ctx context.Context, userID string) error {
	if err := c.out.Display.Message(msgDenied, 1); err != nil {
		return err
	}
	if err := c.out.DenyLamp.On(); err != nil {
		return err
	}
	if err := c.out.Alarm.On(); err != nil {
		return err
	}

	c.push(ctx, userID, msgBadSecret)

	c.sleep(c.denyHold)

	if err := c.out.DenyLamp.Off(); err != nil {
		return err
	}
	if err := c.out.Alarm.Off(); err != nil {
		return err
	}
	return c.out.Display.Clear()
}

// push notifies the user of the outcome.  Delivery failures are logged and
// otherwise ignored; the physical sequence is never rolled back for them.
func (c *Controller) push(ctx context.Context, userID, text string) {
	if userID == "" {
		return
	}
	if err := c.sink.Push(ctx, userID, text); err != nil {
		c.logger.Printf("notify %s: %v", userID, err)
	}
}
