package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"beamclip/internal/metrics"
	"beamclip/storage"
)

// Reaper deletes expired rooms and aged consumed items. Cleanup is
// best-effort: failures are logged, never surfaced to the request that
// happened to trigger a sweep.
type Reaper struct {
	store     storage.Store
	retention time.Duration
	logger    *slog.Logger

	// minInterval throttles request-triggered sweeps so a polling client
	// does not pay for deletes on every poll.
	minInterval time.Duration

	mu        sync.Mutex
	lastSweep time.Time
}

// NewReaper creates a reaper over the given store. Consumed items are kept
// for the retention window; request-triggered sweeps run at most once per
// minInterval.
func NewReaper(store storage.Store, retention, minInterval time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		store:       store,
		retention:   retention,
		logger:      logger,
		minInterval: minInterval,
	}
}

// Sweep runs one cleanup pass: expired rooms, then consumed items older than
// the retention window. Deletions are commutative and idempotent, so
// concurrent sweeps need no coordination.
func (r *Reaper) Sweep(ctx context.Context) {
	now := time.Now()

	rooms, err := r.store.DeleteExpiredRooms(ctx, now)
	if err != nil {
		r.logger.Warn("Failed to delete expired rooms", "error", err)
	} else if rooms > 0 {
		metrics.RoomsReaped.Add(float64(rooms))
		r.logger.Debug("Deleted expired rooms", "count", rooms)
	}

	items, err := r.store.DeleteConsumedBefore(ctx, now.Add(-r.retention))
	if err != nil {
		r.logger.Warn("Failed to delete consumed items", "error", err)
	} else if items > 0 {
		metrics.ItemsReaped.Add(float64(items))
		r.logger.Debug("Deleted consumed items", "count", items)
	}
}

// MaybeSweep runs a sweep unless one ran within the throttle window. With no
// background scheduler, staleness stays bounded by request frequency.
func (r *Reaper) MaybeSweep(ctx context.Context) {
	r.mu.Lock()
	if time.Since(r.lastSweep) < r.minInterval {
		r.mu.Unlock()
		return
	}
	r.lastSweep = time.Now()
	r.mu.Unlock()

	r.Sweep(ctx)
}

// Start runs sweeps on an interval until the context is cancelled. Used in
// server mode to keep cleanup off the request path.
func (r *Reaper) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep(ctx)
			}
		}
	}()
}
