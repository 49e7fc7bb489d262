package actuator

import (
	"time"

	"doorwarden/internal/hw"
)

// Door positions.  The lock hardware swings from the servo midpoint
// to its minimum, so open is -1 rather than +1.
const (
	PositionClosed = 0.0
	PositionOpen   = -1.0
)

// SleepFunc lets tests replace the blocking holds with a recorder.
type SleepFunc func(d time.Duration)

// Door abstracts the door output kind: a continuous actuator ramps between
// positions, an on/off relay snaps at the endpoints.  One controller serves
// both.
type Door interface {
	Travel(from, to float64) error
}

// SmoothMove drives act from start to end in equal linear increments,
// holding each of the steps+1 positions for duration/steps.  Stepping the
// command avoids the torque and current spike of slewing the full swing at
// once.
func SmoothMove(act hw.PositionActuator, start, end float64, duration time.Duration, steps int, sleep SleepFunc) error {
	if steps <= 0 {
		steps = 1
	}
	if sleep == nil {
		sleep = time.Sleep
	}

	delta := (end - start) / float64(steps)
	hold := duration / time.Duration(steps)
	for i := 0; i <= steps; i++ {
		if err := act.SetPosition(start + delta*float64(i)); err != nil {
			return err
		}
		sleep(hold)
	}
	return nil
}

// ServoDoor moves a continuous-position actuator with a smooth ramp.
type ServoDoor struct {
	servo    hw.PositionActuator
	duration time.Duration
	steps    int
	sleep    SleepFunc
}

func NewServoDoor(servo hw.PositionActuator, duration time.Duration, steps int, sleep SleepFunc) *ServoDoor {
	if duration <= 0 {
		duration = time.Second
	}
	if steps <= 0 {
		steps = 20
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	return &ServoDoor{servo: servo, duration: duration, steps: steps, sleep: sleep}
}

func (d *ServoDoor) Travel(from, to float64) error {
	return SmoothMove(d.servo, from, to, d.duration, d.steps, d.sleep)
}

// RelayDoor drives a binary lock: energized away from the closed position,
// released at it.  The ramp parameters have no meaning for a relay.
type RelayDoor struct {
	relay hw.Switch
}

func NewRelayDoor(relay hw.Switch) *RelayDoor {
	return &RelayDoor{relay: relay}
}

func (d *RelayDoor) Travel(_, to float64) error {
	if to == PositionClosed {
		return d.relay.Off()
	}
	return d.relay.On()
}
