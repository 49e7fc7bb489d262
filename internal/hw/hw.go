// Package hw defines the hardware boundary of the system: the motion sensor,
// the on/off outputs (lamps, buzzer, relay), the door actuator and the text
// display.  A periph.io Raspberry Pi backend is selected by build tags; every
// other platform gets simulated hardware so the daemon and its tests run on a
// desktop machine.
package hw

import "context"

// MotionSensor exposes blocking waits on the PIR's rising and falling edges.
// Both return when the edge occurs or ctx is cancelled.
type MotionSensor interface {
	WaitForMotion(ctx context.Context) error
	WaitForNoMotion(ctx context.Context) error
}

// Switch is an on/off output: an indicator lamp, a buzzer, a relay coil.
type Switch interface {
	On() error
	Off() error
}

// PositionActuator is a continuously settable output such as a hobby servo.
// Positions range -1..+1 with 0 as the neutral (door closed) position.
type PositionActuator interface {
	SetPosition(v float64) error
}

// Display is a small character display addressed by 1-based line number.
type Display interface {
	Message(text string, line int) error
	Clear() error
}

// Config carries the pin assignments (BCM numbering) and the I2C address of
// the display backpack.
type Config struct {
	PIRPin    int
	GreenPin  int
	RedPin    int
	BuzzerPin int
	ServoPin  int
	RelayPin  int
	LCDAddr   int
}

// Set bundles the opened hardware.  Servo and Relay are alternatives: the
// one not selected by the door kind is left nil by the caller's wiring.
type Set struct {
	Motion  MotionSensor
	Green   Switch
	Red     Switch
	Buzzer  Switch
	Servo   PositionActuator
	Relay   Switch
	Display Display

	closers []func() error
}

// Close releases the underlying hardware resources.
func (s *Set) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
