// Package session owns the single mutable unit of state in the system: the
// window during which the door is awaiting a password.  All transitions go
// through the Coordinator under one mutex; the presence monitor and the
// inbound gateway never touch session state directly.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"doorwarden/internal/warden/store"
	"doorwarden/internal/warden/types"
)

// ErrNoActiveSession is returned by Submit when no session is awaiting a
// password.  This covers both the idle state and the window where an earlier
// attempt is still being processed; every opened session accepts exactly
// one attempt.
var ErrNoActiveSession = errors.New("no active session")

// State is the coordinator's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingPassword
	StateProcessing
)

// Sequencer runs the physical grant or deny choreography.  Implementations
// block until all output work is done.
type Sequencer interface {
	RunGrant(ctx context.Context, userID string) error
	RunDeny(ctx context.Context, userID string) error
}

// Coordinator gates the access flow: IDLE -> AWAITING_PASSWORD (TryOpen) ->
// PROCESSING (Submit) -> IDLE (Close, after the dispatched sequence ends).
// There is deliberately no timeout path from AWAITING_PASSWORD back to IDLE:
// a session that never receives an attempt stays open until one arrives.
type Coordinator struct {
	secret   string
	seq      Sequencer
	events   store.SessionEventStore
	logger   *log.Logger
	watchdog time.Duration

	mu    sync.Mutex
	state State
	id    uuid.UUID

	wg sync.WaitGroup
}

func New(secret string, seq Sequencer, events store.SessionEventStore, logger *log.Logger, watchdog time.Duration) *Coordinator {
	return &Coordinator{
		secret:   secret,
		seq:      seq,
		events:   events,
		logger:   logger,
		watchdog: watchdog,
	}
}

// TryOpen atomically activates a session if none is active.  Exactly one of
// any set of concurrent callers wins; the rest get false and cause no side
// effect.
func (c *Coordinator) TryOpen() bool {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return false
	}
	c.state = StateAwaitingPassword
	c.id = uuid.New()
	id := c.id
	c.mu.Unlock()

	c.record(store.SessionEventRecord{SessionID: id, Kind: store.EventSessionOpened})
	return true
}

// Submit consumes one password attempt.  When a session is awaiting a
// password it decides the outcome, dispatches the matching sequence on its
// own goroutine and returns immediately; the session stays active until that
// sequence completes.  Otherwise it returns ErrNoActiveSession.
func (c *Coordinator) Submit(_ context.Context, att types.AccessAttempt) (types.Outcome, error) {
	text := strings.TrimSpace(att.Text)

	c.mu.Lock()
	if c.state != StateAwaitingPassword {
		id := c.id // uuid.Nil when idle
		c.mu.Unlock()
		c.record(store.SessionEventRecord{SessionID: id, Kind: store.EventAttemptRejected, UserID: att.SenderID})
		return "", ErrNoActiveSession
	}
	granted := text == c.secret
	c.state = StateProcessing
	id := c.id
	c.mu.Unlock()

	outcome := types.OutcomeDenied
	kind := store.EventAccessDenied
	if granted {
		outcome = types.OutcomeGranted
		kind = store.EventAccessGranted
	}
	c.record(store.SessionEventRecord{SessionID: id, Kind: kind, UserID: att.SenderID})

	c.dispatch(id, granted, att.SenderID)
	return outcome, nil
}

// Close resolves the session after the dispatched sequence has finished all
// output work.  Calling it in any state other than PROCESSING is a no-op.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.state != StateProcessing {
		c.mu.Unlock()
		return
	}
	id := c.id
	c.state = StateIdle
	c.id = uuid.Nil
	c.mu.Unlock()

	c.record(store.SessionEventRecord{SessionID: id, Kind: store.EventSessionClosed})
}

// Wait blocks until any in-flight grant/deny sequence has completed.  Used
// at shutdown so the door is never left mid-sequence.
func (c *Coordinator) Wait() { c.wg.Wait() }

func (c *Coordinator) dispatch(id uuid.UUID, granted bool, userID string) {
	done := make(chan struct{})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)

		// The sequence must run to completion even though the webhook
		// request that carried the attempt has long been answered.
		ctx := context.Background()
		var err error
		if granted {
			err = c.seq.RunGrant(ctx, userID)
		} else {
			err = c.seq.RunDeny(ctx, userID)
		}
		if err != nil {
			c.logger.Printf("session %s: access sequence: %v", id, err)
		}
		c.Close()
	}()

	if c.watchdog > 0 {
		go c.watch(id, done)
	}
}

// watch logs when a sequence overruns the deadline.  It never force-closes
// the session: a stuck sequence keeps the session open indefinitely, since
// there is no cancellation path once outputs are moving.
func (c *Coordinator) watch(id uuid.UUID, done <-chan struct{}) {
	t := time.NewTimer(c.watchdog)
	defer t.Stop()

	select {
	case <-done:
	case <-t.C:
		c.logger.Printf("session %s: access sequence still running after %s; session stays open until it completes", id, c.watchdog)
	}
}

// record appends to the audit log.  A failed audit write must not block the
// door, so errors are logged and swallowed.
func (c *Coordinator) record(rec store.SessionEventRecord) {
	rec.OccurredAt = time.Now().UTC()
	if err := c.events.RecordEvent(context.Background(), rec); err != nil {
		c.logger.Printf("audit write: %v", err)
	}
}
