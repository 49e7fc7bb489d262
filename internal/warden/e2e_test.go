// End-to-end flow through the real components over fake hardware: motion
// edge -> password prompt -> inbound text -> grant/deny choreography ->
// re-armed sensor.
package warden_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"reflect"
	"sync"
	"testing"
	"time"

	"doorwarden/internal/hw/fake"
	"doorwarden/internal/warden/actuator"
	"doorwarden/internal/warden/gateway"
	"doorwarden/internal/warden/presence"
	"doorwarden/internal/warden/session"
	"doorwarden/internal/warden/store/memory"
)

type recordingSink struct {
	mu     sync.Mutex
	pushes []string
}

func (s *recordingSink) Push(_ context.Context, userID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushes = append(s.pushes, fmt.Sprintf("%s|%s", userID, text))
	return nil
}

func (s *recordingSink) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.pushes))
	copy(out, s.pushes)
	return out
}

type rig struct {
	sensor   *fake.MotionSensor
	servo    *fake.Actuator
	green    *fake.Switch
	red      *fake.Switch
	buzzer   *fake.Switch
	display  *fake.Display
	sink     *recordingSink
	sessions *session.Coordinator
	gateway  *gateway.Gateway
}

func startRig(t *testing.T) *rig {
	t.Helper()

	r := &rig{
		sensor:  fake.NewMotionSensor(),
		servo:   fake.NewActuator(),
		green:   fake.NewSwitch(),
		red:     fake.NewSwitch(),
		buzzer:  fake.NewSwitch(),
		display: fake.NewDisplay(),
		sink:    &recordingSink{},
	}
	logger := log.New(io.Discard, "", 0)
	instant := func(time.Duration) {}

	controller := actuator.NewController(actuator.Outputs{
		Door:      actuator.NewServoDoor(r.servo, time.Second, 20, instant),
		GrantLamp: r.green,
		DenyLamp:  r.red,
		Alarm:     r.buzzer,
		Display:   r.display,
	}, r.sink, logger, actuator.Config{
		OpenHold: 5 * time.Second,
		DenyHold: 3 * time.Second,
		Sleep:    instant,
	})

	r.sessions = session.New("1234", controller, memory.NewSessionEventStore(), logger, time.Minute)
	r.gateway = gateway.New(r.sessions, logger)

	monitor := presence.NewMonitor(r.sensor, r.sessions, r.display, r.sink, presence.Config{
		AlertTo: "admin",
		Settle:  time.Millisecond,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = monitor.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("monitor did not exit")
		}
	})
	return r
}

func TestEndToEnd_GrantFlow(t *testing.T) {
	r := startRig(t)

	// Visitor approaches.
	r.sensor.Detect()
	r.sensor.Clear()

	if got := r.display.Line(1); got != "Password please" {
		t.Fatalf("expected password prompt, got %q", got)
	}

	// Correct password arrives over the webhook path.
	r.gateway.HandleText(context.Background(), "1234", "U1", nil)
	r.sessions.Wait()

	wantDisplay := []string{
		"1:Password please",
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
	if positions := r.servo.Positions(); len(positions) != 42 {
		t.Errorf("expected a full open+close ramp (42 samples), got %d", len(positions))
	}

	pushes := r.sink.recorded()
	if len(pushes) != 2 {
		t.Fatalf("expected motion alert + unlock notice, got %v", pushes)
	}
	if pushes[0][:6] != "admin|" {
		t.Errorf("expected first push to admin, got %q", pushes[0])
	}
	if pushes[1][:3] != "U1|" {
		t.Errorf("expected unlock notice to U1, got %q", pushes[1])
	}

	// The sensor re-arms: a new approach opens a fresh session.
	r.sensor.Detect()
	r.sensor.Clear()
	if got := r.display.Line(1); got != "Password please" {
		t.Errorf("expected a new prompt after re-arm, got %q", got)
	}
}

func TestEndToEnd_DenyFlow(t *testing.T) {
	r := startRig(t)

	r.sensor.Detect()
	r.sensor.Clear()

	r.gateway.HandleText(context.Background(), "0000", "U1", nil)
	r.sessions.Wait()

	if got := r.red.History(); !reflect.DeepEqual(got, []bool{true, false}) {
		t.Errorf("expected deny lamp [on off], got %v", got)
	}
	if got := r.buzzer.History(); !reflect.DeepEqual(got, []bool{true, false}) {
		t.Errorf("expected alarm [on off], got %v", got)
	}
	if positions := r.servo.Positions(); len(positions) != 0 {
		t.Errorf("door must not move on a deny, got %d samples", len(positions))
	}

	// Session resolved: the next approach prompts again.
	if !r.sessions.TryOpen() {
		t.Error("expected the session to be re-armed after the deny sequence")
	}
}
