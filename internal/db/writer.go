package db

import (
	"context"
	"database/sql"
)

// TxFn runs inside a transaction owned by the Writer.
type TxFn func(ctx context.Context, tx *sql.Tx) error

type job struct {
	ctx context.Context
	fn  TxFn
	ch  chan error
}

// Writer serializes all write transactions through a single goroutine.
// With SQLite's one-writer-at-a-time model this turns lock contention into
// simple queueing.
type Writer struct {
	db   *sql.DB
	jobs chan job
	done chan struct{}
}

func NewWriter(db *sql.DB) *Writer {
	w := &Writer{
		db:   db,
		jobs: make(chan job, 256),
		done: make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Writer) Close() {
	close(w.jobs)
	<-w.done
}

// Do enqueues fn and waits for it to run inside a transaction.  If the
// caller's context expires while the job is queued or executing, Do returns
// the context error; the writer loop still completes the transaction and
// the result lands in the buffered channel, where it is discarded.
func (w *Writer) Do(ctx context.Context, fn TxFn) error {
	ch := make(chan error, 1)
	j := job{ctx: ctx, fn: fn, ch: ch}

	select {
	case w.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) loop() {
	defer close(w.done)

	for j := range w.jobs {
		tx, err := w.db.BeginTx(j.ctx, nil)
		if err != nil {
			j.ch <- err
			continue
		}

		if err := j.fn(j.ctx, tx); err != nil {
			_ = tx.Rollback()
			j.ch <- err
			continue
		}

		j.ch <- tx.Commit()
	}
}
