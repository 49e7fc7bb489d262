//go:build linux && (arm || arm64) && !nogpio

package hw

import (
	"context"
	"fmt"
	"log"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Open initialises periph and claims every configured pin.  Pins are
// addressed by their BCM numbers.  Any failure here is fatal to startup;
// there is no degraded mode on real hardware.
func Open(cfg Config, logger *log.Logger) (*Set, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %w", err)
	}

	pir, err := openInput(cfg.PIRPin)
	if err != nil {
		return nil, err
	}
	green, err := openOutput(cfg.GreenPin)
	if err != nil {
		return nil, err
	}
	red, err := openOutput(cfg.RedPin)
	if err != nil {
		return nil, err
	}
	buzzer, err := openOutput(cfg.BuzzerPin)
	if err != nil {
		return nil, err
	}
	servoPin, err := byName(cfg.ServoPin)
	if err != nil {
		return nil, err
	}
	relay, err := openOutput(cfg.RelayPin)
	if err != nil {
		return nil, err
	}

	display, err := newLCD(cfg.LCDAddr)
	if err != nil {
		return nil, err
	}

	logger.Printf("gpio ready: pir=%d green=%d red=%d buzzer=%d servo=%d relay=%d lcd=0x%02x",
		cfg.PIRPin, cfg.GreenPin, cfg.RedPin, cfg.BuzzerPin, cfg.ServoPin, cfg.RelayPin, cfg.LCDAddr)

	servo := &servoOut{pin: servoPin}

	return &Set{
		Motion:  &pirSensor{pin: pir},
		Green:   green,
		Red:     red,
		Buzzer:  buzzer,
		Servo:   servo,
		Relay:   relay,
		Display: display,
		closers: []func() error{servoPin.Halt, display.close},
	}, nil
}

func byName(pin int) (gpio.PinIO, error) {
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", pin))
	if p == nil {
		return nil, fmt.Errorf("gpio pin %d not found", pin)
	}
	return p, nil
}

func openInput(pin int) (gpio.PinIO, error) {
	p, err := byName(pin)
	if err != nil {
		return nil, err
	}
	if err := p.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("gpio pin %d as input: %w", pin, err)
	}
	return p, nil
}

func openOutput(pin int) (*gpioSwitch, error) {
	p, err := byName(pin)
	if err != nil {
		return nil, err
	}
	if err := p.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("gpio pin %d as output: %w", pin, err)
	}
	return &gpioSwitch{pin: p}, nil
}

type gpioSwitch struct {
	pin gpio.PinIO
}

func (s *gpioSwitch) On() error  { return s.pin.Out(gpio.High) }
func (s *gpioSwitch) Off() error { return s.pin.Out(gpio.Low) }

// pirSensor waits for PIR edges.  Edge waits use a short timeout so context
// cancellation is noticed within a second.
type pirSensor struct {
	pin gpio.PinIO
}

func (p *pirSensor) WaitForMotion(ctx context.Context) error {
	return p.waitFor(ctx, gpio.High)
}

func (p *pirSensor) WaitForNoMotion(ctx context.Context) error {
	return p.waitFor(ctx, gpio.Low)
}

func (p *pirSensor) waitFor(ctx context.Context, level gpio.Level) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.pin.Read() == level {
			return nil
		}
		p.pin.WaitForEdge(time.Second)
	}
}

// servoOut drives a hobby servo with a standard 50 Hz signal: 1.5 ms pulse
// at neutral, ±0.5 ms at full deflection.
type servoOut struct {
	pin gpio.PinIO
}

func (s *servoOut) SetPosition(v float64) error {
	if v < -1 {
		v = -1
	}
	if v > 1 {
		v = 1
	}
	frac := 0.075 + 0.025*v // pulse width as a fraction of the 20 ms period
	duty := gpio.Duty(frac * float64(gpio.DutyMax))
	return s.pin.PWM(duty, 50*physic.Hertz)
}
