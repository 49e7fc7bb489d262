//go:build !(linux && (arm || arm64)) || nogpio

package hw

import (
	"log"

	"doorwarden/internal/hw/fake"
)

// Open returns simulated hardware on platforms without GPIO (or when built
// with the nogpio tag).  The simulated motion sensor never fires, so on a
// desktop machine only the webhook path is exercised.
func Open(_ Config, logger *log.Logger) (*Set, error) {
	logger.Printf("gpio unavailable on this platform; using simulated hardware")
	return &Set{
		Motion:  fake.NewMotionSensor(),
		Green:   fake.NewSwitch(),
		Red:     fake.NewSwitch(),
		Buzzer:  fake.NewSwitch(),
		Servo:   fake.NewActuator(),
		Relay:   fake.NewSwitch(),
		Display: fake.NewDisplay(),
	}, nil
}
