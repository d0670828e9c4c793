package queuectl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/p-v-srinag/queuectl/internal"
	"github.com/p-v-srinag/queuectl/internal/metrics"
	"github.com/p-v-srinag/queuectl/job"
)

// WorkerConfig defines the runtime behavior of a Worker.
type WorkerConfig struct {
	// PollInterval is how long the worker sleeps after an empty
	// claim before trying again. The spec suggests 1 second.
	PollInterval time.Duration
}

// Worker is the per-process consumer of spec section 4.3: claim,
// execute, classify, and either complete, retry-with-backoff, or kill.
//
// Unlike gqs's Worker, this does not dispatch into a concurrent
// pool: each job-queue Worker is a single OS process and runs its
// loop fully serially — there is no concurrency to bound within one
// process (see spec section 5).
type Worker struct {
	lcBase
	store    Store
	executor Executor
	config   func() Config
	poll     time.Duration
	log      *slog.Logger
	metrics  *metrics.Metrics

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewWorker creates a Worker. config is invoked on every failed
// attempt to read the live backoff_base and the live max_retries
// fallback; m may be nil if metrics are not wanted.
func NewWorker(store Store, executor Executor, config func() Config, cfg *WorkerConfig, log *slog.Logger, m *metrics.Metrics) *Worker {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = time.Second
	}
	return &Worker{
		store:    store,
		executor: executor,
		config:   config,
		poll:     poll,
		log:      log,
		metrics:  m,
	}
}

// Start begins the claim/execute/classify loop in a background
// goroutine. Start returns ErrDoubleStarted if already running.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.tryStart(); err != nil {
		return err
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run(ctx)
	return nil
}

// Stop signals the loop to exit after its current iteration and
// waits up to timeout for it to do so. A job that is mid-execution
// runs to completion (or failure classification) before the loop
// observes cancellation — there is no forced preemption.
func (w *Worker) Stop(timeout time.Duration) error {
	return w.tryStop(timeout, func() internal.DoneChan {
		w.cancel()
		return internal.WrapWaitGroup(&w.wg)
	})
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.iterate(ctx)
	}
}

// iterate performs one claim/execute/classify cycle. It never returns
// an error: storage and execution failures are logged and handled by
// the retry/DLQ policy, matching spec section 7's propagation policy
// (internal faults don't kill the loop).
func (w *Worker) iterate(ctx context.Context) {
	jb, err := w.store.ClaimNextPending(ctx)
	if err != nil {
		w.log.Error("claim failed", "err", err)
		w.sleep(ctx, w.poll)
		return
	}
	if jb == nil {
		w.sleep(ctx, w.poll)
		return
	}
	if w.metrics != nil {
		w.metrics.Claimed.Inc()
	}

	// Once a job is claimed it runs to completion even if Stop is
	// called mid-execution: execCtx keeps ctx's values but strips its
	// cancellation, so w.cancel() in Stop cannot reach into the
	// in-flight command or the outcome write that follows it. Only
	// the next ClaimNextPending (and an idle sleep) observe ctx.Done().
	execCtx := context.WithoutCancel(ctx)
	outcome := w.executor.Execute(execCtx, jb.Command)
	if outcome.ok() {
		w.complete(execCtx, jb)
		return
	}
	w.handleFailure(execCtx, jb)
}

func (w *Worker) complete(ctx context.Context, jb *job.Job) {
	jb.Status = job.Completed
	if err := w.store.UpdateJob(ctx, jb); err != nil {
		w.log.Error("cannot complete job", "id", jb.ID, "err", err)
		return
	}
	if w.metrics != nil {
		w.metrics.Completed.Inc()
	}
}

func (w *Worker) handleFailure(ctx context.Context, jb *job.Job) {
	maxRetries := jb.MaxRetries
	if maxRetries == 0 {
		maxRetries = w.config().MaxRetries
	}
	base := w.config().BackoffBase

	bc := backoffCounter{maxRetries: maxRetries, base: base}
	delay, retry := bc.next(jb.Attempts)

	if !retry {
		if err := w.store.MoveToDLQ(ctx, jb); err != nil {
			w.log.Error("cannot move job to DLQ", "id", jb.ID, "err", err)
			return
		}
		w.log.Warn("job dead", "id", jb.ID, "attempts", jb.Attempts, "max_retries", maxRetries)
		if w.metrics != nil {
			w.metrics.Dead.Inc()
		}
		return
	}

	// Intermediate FAILED write (spec 4.2): book-keeping only. The
	// Pending write follows immediately, before the backoff sleep; the
	// attempt count itself was already persisted by the claim.
	jb.Status = job.Failed
	if err := w.store.UpdateJob(ctx, jb); err != nil {
		w.log.Error("cannot record failed attempt", "id", jb.ID, "err", err)
		return
	}

	jb.Status = job.Pending
	if err := w.store.UpdateJob(ctx, jb); err != nil {
		w.log.Error("cannot requeue job", "id", jb.ID, "err", err)
		return
	}
	if w.metrics != nil {
		w.metrics.Retried.Inc()
	}
	w.log.Info("job retrying", "id", jb.ID, "attempts", jb.Attempts, "max_retries", maxRetries, "delay", delay)
	w.sleep(ctx, delay)
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
