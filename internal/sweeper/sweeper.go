// Package sweeper runs the periodic retention job that trims old event rows.
// The feed only ever serves events newer than a cursor, so a late or skipped
// sweep grows storage but never affects correctness.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner is the single event log operation the sweeper needs, defined here
// in the consumer package so tests can inject a fake.
type Cleaner interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// Sweeper periodically deletes events older than the retention horizon.
type Sweeper struct {
	events    Cleaner
	retention time.Duration
	interval  time.Duration
	log       *slog.Logger
}

// New constructs a Sweeper. The logger may be nil, in which case
// slog.Default() is used.
func New(events Cleaner, retention, interval time.Duration, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{events: events, retention: retention, interval: interval, log: log}
}

// Run sweeps once immediately, then on every interval tick until ctx is
// canceled. Sweep failures are logged and skipped — the next tick retries.
// Run blocks; start it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.events.Cleanup(ctx, s.retention)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.WarnContext(ctx, "event cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		s.log.InfoContext(ctx, "event cleanup", "deleted", deleted, "retention", s.retention.String())
	}
}
