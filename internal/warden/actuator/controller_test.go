package actuator_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"reflect"
	"sync"
	"testing"
	"time"

	"doorwarden/internal/hw/fake"
	"doorwarden/internal/warden/actuator"
)

// fakeSink records pushes as "user|text" and can be made to fail.
type fakeSink struct {
	mu     sync.Mutex
	pushes []string
	err    error
}

func (s *fakeSink) Push(_ context.Context, userID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.pushes = append(s.pushes, fmt.Sprintf("%s|%s", userID, text))
	return nil
}

func (s *fakeSink) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.pushes))
	copy(out, s.pushes)
	return out
}

type testRig struct {
	controller *actuator.Controller
	servo      *fake.Actuator
	green      *fake.Switch
	red        *fake.Switch
	buzzer     *fake.Switch
	display    *fake.Display
	sink       *fakeSink
	sleeps     *sleepRecorder
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	r := &testRig{
		servo:   fake.NewActuator(),
		green:   fake.NewSwitch(),
		red:     fake.NewSwitch(),
		buzzer:  fake.NewSwitch(),
		display: fake.NewDisplay(),
		sink:    &fakeSink{},
		sleeps:  &sleepRecorder{},
	}
	door := actuator.NewServoDoor(r.servo, time.Second, 20, r.sleeps.sleep)
	r.controller = actuator.NewController(actuator.Outputs{
		Door:      door,
		GrantLamp: r.green,
		DenyLamp:  r.red,
		Alarm:     r.buzzer,
		Display:   r.display,
	}, r.sink, log.New(io.Discard, "", 0), actuator.Config{
		OpenHold: 5 * time.Second,
		DenyHold: 3 * time.Second,
		Sleep:    r.sleeps.sleep,
	})
	return r
}

func TestRunGrant_Choreography(t *testing.T) {
	r := newTestRig(t)

	if err := r.controller.RunGrant(context.Background(), "U1"); err != nil {
		t.Fatalf("RunGrant: %v", err)
	}

	wantDisplay := []string{
		"1:Access Granted",
		"2:Closing in 5s",
		"2:Closing in 4s",
		"2:Closing in 3s",
		"2:Closing in 2s",
		"2:Closing in 1s",
	}
	if got := r.display.History(); !reflect.DeepEqual(got, wantDisplay) {
		t.Errorf("display history:\n got %v\nwant %v", got, wantDisplay)
	}
	if r.display.Cleared() != 1 {
		t.Errorf("expected display cleared once, got %d", r.display.Cleared())
	}

	if got := r.green.History(); !reflect.DeepEqual(got, []bool{true, false}) {
		t.Errorf("expected grant lamp [on off], got %v", got)
	}
	if r.red.IsOn() || r.buzzer.IsOn() {
		t.Error("deny outputs must stay off during a grant")
	}

	positions := r.servo.Positions()
	if len(positions) != 42 {
		t.Fatalf("expected 42 ramp samples, got %d", len(positions))
	}
	if positions[20] != -1 || positions[41] != 0 {
		t.Errorf("expected open then closed endpoints, got mid=%g end=%g", positions[20], positions[41])
	}

	if got := r.sink.recorded(); len(got) != 1 || got[0] != "U1|Door unlocked. It closes again shortly." {
		t.Errorf("unexpected pushes: %v", got)
	}

	// Five one-second countdown holds on top of the ramp holds.
	var seconds int
	for _, h := range r.sleeps.recorded() {
		if h == time.Second {
			seconds++
		}
	}
	if seconds != 5 {
		t.Errorf("expected 5 one-second holds, got %d", seconds)
	}
}

func TestRunGrant_NoUser_NoPush(t *testing.T) {
	r := newTestRig(t)

	if err := r.controller.RunGrant(context.Background(), ""); err != nil {
		t.Fatalf("RunGrant: %v", err)
	}
	if got := r.sink.recorded(); len(got) != 0 {
		t.Errorf("expected no pushes without a user, got %v", got)
	}
}

func TestRunGrant_PushFailure_SequenceCompletes(t *testing.T) {
	r := newTestRig(t)
	r.sink.err = errors.New("transport down")

	if err := r.controller.RunGrant(context.Background(), "U1"); err != nil {
		t.Fatalf("RunGrant should swallow notification errors, got %v", err)
	}
	if r.green.IsOn() {
		t.Error("expected grant lamp off at end of sequence")
	}
	if r.display.Cleared() != 1 {
		t.Error("expected display cleared despite failed notification")
	}
}

func TestRunDeny_Choreography(t *testing.T) {
	r := newTestRig(t)

	if err := r.controller.RunDeny(context.Background(), "U1"); err != nil {
		t.Fatalf("RunDeny: %v", err)
	}

	if got := r.display.History(); !reflect.DeepEqual(got, []string{"1:Access Denied"}) {
		t.Errorf("unexpected display history: %v", got)
	}
	if r.display.Cleared() != 1 {
		t.Errorf("expected display cleared once, got %d", r.display.Cleared())
	}

	if got := r.red.History(); !reflect.DeepEqual(got, []bool{true, false}) {
		t.Errorf("expected deny lamp [on off], got %v", got)
	}
	if got := r.buzzer.History(); !reflect.DeepEqual(got, []bool{true, false}) {
		t.Errorf("expected alarm [on off], got %v", got)
	}
	if len(r.servo.Positions()) != 0 {
		t.Error("door must not move on a deny")
	}

	var held bool
	for _, h := range r.sleeps.recorded() {
		if h == 3*time.Second {
			held = true
		}
	}
	if !held {
		t.Error("expected a 3s alarm hold")
	}

	if got := r.sink.recorded(); len(got) != 1 || got[0] != "U1|Wrong password. The alarm has been raised." {
		t.Errorf("unexpected pushes: %v", got)
	}
}
