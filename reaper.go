package queuectl

import (
	"context"
	"log/slog"
	"time"

	"github.com/p-v-srinag/queuectl/internal"
	"github.com/p-v-srinag/queuectl/job"
)

// ReaperConfig defines the scheduling and staleness threshold for a
// Reaper. A PROCESSING job whose UpdatedAt is older than now - Stale
// is assumed to belong to a worker that crashed or was killed
// without a chance to record an outcome, and is requeued as Pending
// (open question 1). Its attempt count is left untouched: the claim
// that put it into PROCESSING already charged the one attempt the
// crashed worker made.
type ReaperConfig struct {
	Interval time.Duration
	Stale    time.Duration
}

// Reaper periodically scans for PROCESSING jobs abandoned by a dead
// worker and returns them to Pending.
//
// Reaper has no equivalent in the original implementation, which
// never recovers from a worker dying mid-command; it is modeled on
// gqs's CleanWorker, repurposed from retention sweeping to crash
// recovery. Reaper does not participate in normal job dispatch and
// never touches COMPLETED, FAILED or DEAD jobs.
type Reaper struct {
	lcBase
	store    Store
	task     internal.TimerTask
	log      *slog.Logger
	interval time.Duration
	stale    time.Duration
}

// NewReaper creates a Reaper. It is not started automatically.
func NewReaper(store Store, config *ReaperConfig, log *slog.Logger) *Reaper {
	return &Reaper{
		store:    store,
		log:      log,
		interval: config.Interval,
		stale:    config.Stale,
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	stuck, err := r.store.ListByState(ctx, job.Processing)
	if err != nil {
		r.log.Error("reaper: cannot list processing jobs", "err", err)
		return
	}
	cutoff := time.Now().Add(-r.stale)
	var recovered int
	for _, jb := range stuck {
		if jb.UpdatedAt.After(cutoff) {
			continue
		}
		// ClaimNextPending already incremented Attempts when it put
		// this row into Processing; don't charge it twice for the
		// one attempt the crashed worker actually made.
		jb.Status = job.Pending
		if err := r.store.UpdateJob(ctx, jb); err != nil {
			r.log.Error("reaper: cannot requeue stale job", "id", jb.ID, "err", err)
			continue
		}
		recovered++
	}
	if recovered > 0 {
		r.log.Warn("reaper: recovered stale jobs", "count", recovered)
	}
}

// Start begins the periodic sweep. Start returns ErrDoubleStarted if
// the reaper has already been started.
func (r *Reaper) Start(ctx context.Context) error {
	if err := r.tryStart(); err != nil {
		return err
	}
	r.task.Start(ctx, r.sweep, r.interval)
	return nil
}

// Stop terminates the background sweep, waiting up to timeout for the
// current iteration to finish.
func (r *Reaper) Stop(timeout time.Duration) error {
	return r.tryStop(timeout, r.task.Stop)
}
