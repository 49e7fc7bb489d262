package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventKind labels one entry in the session audit trail.
type EventKind string

const (
	// EventSessionOpened is recorded when a motion edge opens a session.
	EventSessionOpened EventKind = "opened"
	// EventAccessGranted is recorded when an attempt matches the password.
	EventAccessGranted EventKind = "granted"
	// EventAccessDenied is recorded when an attempt does not match.
	EventAccessDenied EventKind = "denied"
	// EventAttemptRejected is recorded when text arrives with no session
	// awaiting a password (idle, or an attempt already being processed).
	EventAttemptRejected EventKind = "rejected"
	// EventSessionClosed is recorded when the grant/deny sequence finishes
	// and the session returns to idle.
	EventSessionClosed EventKind = "closed"
)

// SessionEventRecord captures one session lifecycle event for the audit log.
// SessionID is uuid.Nil for attempts rejected while no session existed.
type SessionEventRecord struct {
	SessionID  uuid.UUID
	Kind       EventKind
	UserID     string // sender identity where one is involved
	OccurredAt time.Time
}

// SessionEventStore persists session events as an append-only audit log.
type SessionEventStore interface {
	RecordEvent(ctx context.Context, rec SessionEventRecord) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
