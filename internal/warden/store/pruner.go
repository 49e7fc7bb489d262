package store

import (
	"context"
	"log"
	"time"
)

// EventPruner periodically deletes audit rows older than a configurable
// retention period.  It runs as a background goroutine and is safe to stop
// via its context or the Stop method.
//
// A retention of 0 disables pruning entirely.
type EventPruner struct {
	store     SessionEventStore
	retention time.Duration
	interval  time.Duration
	logger    *log.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

// PrunerConfig holds the parameters for NewEventPruner.
type PrunerConfig struct {
	// RetentionDays is how many days of session history to keep.
	// 0 means keep everything (pruner will not start).
	RetentionDays int

	// IntervalHours is how often the pruner runs.  Defaults to 6.
	IntervalHours int
}

// NewEventPruner creates a pruner but does not start it.
// Call Start to begin the background loop.
func NewEventPruner(s SessionEventStore, cfg PrunerConfig, logger *log.Logger) *EventPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	return &EventPruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins the background pruning loop.  It prunes once immediately,
// then repeats on the configured interval until ctx is cancelled or Stop
// is called.
func (p *EventPruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		p.logger.Printf("audit pruner disabled (retention=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Printf("audit pruner started (retention=%dd, interval=%dh)",
		int(p.retention.Hours()/24), int(p.interval.Hours()))
}

// Stop signals the pruner to exit and waits for it to finish.
func (p *EventPruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *EventPruner) loop(ctx context.Context) {
	defer close(p.done)

	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *EventPruner) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-p.retention)
	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Printf("audit prune error: %v", err)
		return
	}
	if deleted > 0 {
		p.logger.Printf("audit prune: deleted %d rows older than %s",
			deleted, cutoff.Format(time.RFC3339))
	}
}
