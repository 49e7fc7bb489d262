package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	dbpkg "doorwarden/internal/db"
	"doorwarden/internal/warden/store"
)

type SessionEventStore struct {
	writer *dbpkg.Writer
}

func NewSessionEventStore(writer *dbpkg.Writer) *SessionEventStore {
	return &SessionEventStore{writer: writer}
}

func (s *SessionEventStore) RecordEvent(ctx context.Context, rec store.SessionEventRecord) error {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	occurredMs := rec.OccurredAt.UTC().UnixMilli()

	// NULL user_id for lifecycle events that carry no sender identity.
	var userID any
	if rec.UserID != "" {
		userID = rec.UserID
	}

	sessionID := ""
	if rec.SessionID != uuid.Nil {
		sessionID = rec.SessionID.String()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO session_events(session_id, kind, user_id, occurred_at_ms)
VALUES (?, ?, ?, ?);
`, sessionID, string(rec.Kind), userID, occurredMs); err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}
		return nil
	})
}

func (s *SessionEventStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM session_events WHERE occurred_at_ms < ?;",
			cutoff.UTC().UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("PruneOlderThan delete: %w", err)
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("PruneOlderThan rows affected: %w", err)
		}
		return nil
	})
	return deleted, err
}
