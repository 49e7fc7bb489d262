package memory

import (
	"context"
	"sync"
	"time"

	"doorwarden/internal/warden/store"
)

// SessionEventStore is an in-memory append-only log of session events.
// It is intended for use in tests and dev environments.
type SessionEventStore struct {
	mu     sync.Mutex
	events []store.SessionEventRecord
}

func NewSessionEventStore() *SessionEventStore {
	return &SessionEventStore{}
}

func (s *SessionEventStore) RecordEvent(_ context.Context, rec store.SessionEventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	s.events = append(s.events, rec)
	return nil
}

func (s *SessionEventStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var deleted int64
	for _, ev := range s.events {
		if ev.OccurredAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, ev)
	}
	s.events = kept
	return deleted, nil
}

// Events returns a copy of all recorded events.  Test-only helper.
func (s *SessionEventStore) Events() []store.SessionEventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.SessionEventRecord, len(s.events))
	copy(out, s.events)
	return out
}
