package sweeper

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Runner executes both sweeps on a fixed interval. An in-memory re-entrancy
// flag makes a tick skip itself while a previous run is still in flight;
// this guards a single process only and is not a substitute for a
// distributed lock when scaling horizontally.
type Runner struct {
	sweeper  *Sweeper
	interval time.Duration
	logger   *zap.Logger
	inFlight atomic.Bool
}

// NewRunner creates a Runner sweeping every interval.
func NewRunner(sweeper *Sweeper, interval time.Duration, logger *zap.Logger) *Runner {
	return &Runner{sweeper: sweeper, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes both sweeps, skipping entirely when a previous run is
// still in flight. Returns true when the run executed.
func (r *Runner) RunOnce(ctx context.Context) bool {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.logger.Warn("Skipping sweep: previous run still in flight")
		sweepRuns.WithLabelValues("skipped").Inc()
		return false
	}
	defer r.inFlight.Store(false)

	outcome := "ok"
	if _, err := r.sweeper.SweepShiftStatuses(ctx); err != nil {
		r.logger.Error("Shift status sweep failed", zap.Error(err))
		outcome = "error"
	}
	if _, err := r.sweeper.SweepStalePending(ctx); err != nil {
		r.logger.Error("Stale pending sweep failed", zap.Error(err))
		outcome = "error"
	}

	sweepRuns.WithLabelValues(outcome).Inc()
	return true
}
