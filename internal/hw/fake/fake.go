// Package fake provides in-memory hardware implementations for tests and for
// running the daemon on machines without GPIO.  The types record every call
// so tests can assert on the exact output choreography.
package fake

import (
	"context"
	"fmt"
	"sync"
)

// MotionSensor is driven by tests through Detect and Clear.  Both block until
// a waiter consumes the edge, which gives tests a cheap synchronization
// point: when Clear returns, the monitor has finished the actions it took
// between the two edges.
type MotionSensor struct {
	motion chan struct{}
	clear  chan struct{}
}

func NewMotionSensor() *MotionSensor {
	return &MotionSensor{
		motion: make(chan struct{}),
		clear:  make(chan struct{}),
	}
}

func (m *MotionSensor) WaitForMotion(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.motion:
		return nil
	}
}

func (m *MotionSensor) WaitForNoMotion(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.clear:
		return nil
	}
}

// Detect delivers a rising edge to a blocked WaitForMotion call.
func (m *MotionSensor) Detect() { m.motion <- struct{}{} }

// Clear delivers a falling edge to a blocked WaitForNoMotion call.
func (m *MotionSensor) Clear() { m.clear <- struct{}{} }

// Switch records its on/off transitions.
type Switch struct {
	mu      sync.Mutex
	on      bool
	history []bool
}

func NewSwitch() *Switch { return &Switch{} }

func (s *Switch) On() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.on = true
	s.history = append(s.history, true)
	return nil
}

func (s *Switch) Off() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.on = false
	s.history = append(s.history, false)
	return nil
}

func (s *Switch) IsOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// History returns every transition in order (true=on, false=off).
func (s *Switch) History() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bool, len(s.history))
	copy(out, s.history)
	return out
}

// Actuator records every commanded position.
type Actuator struct {
	mu        sync.Mutex
	positions []float64
}

func NewActuator() *Actuator { return &Actuator{} }

func (a *Actuator) SetPosition(v float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.positions = append(a.positions, v)
	return nil
}

func (a *Actuator) Positions() []float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]float64, len(a.positions))
	copy(out, a.positions)
	return out
}

// Display records messages as "line:text" entries plus the current content
// of each line.
type Display struct {
	mu      sync.Mutex
	lines   map[int]string
	history []string
	cleared int
}

func NewDisplay() *Display {
	return &Display{lines: make(map[int]string)}
}

func (d *Display) Message(text string, line int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines[line] = text
	d.history = append(d.history, fmt.Sprintf("%d:%s", line, text))
	return nil
}

func (d *Display) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = make(map[int]string)
	d.cleared++
	return nil
}

// Line returns the current text on the given 1-based line.
func (d *Display) Line(n int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lines[n]
}

func (d *Display) History() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.history))
	copy(out, d.history)
	return out
}

func (d *Display) Cleared() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cleared
}
