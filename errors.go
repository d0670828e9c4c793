// Package queuectl implements the dispatch and lifecycle engine of a
// durable, multi-worker background job queue: the Job state machine,
// the atomic claim-next-pending primitive, retry/backoff/DLQ policy,
// and the worker/supervisor processes that drive it.
//
// # Overview
//
// A Job is a shell command enqueued for asynchronous execution. The
// system guarantees each enqueued job is eventually executed by
// exactly one worker at a time, with bounded retries and a terminal
// dead-letter queue (DLQ) for jobs that exhaust their retry budget.
//
// # State Machine
//
//	Pending    -> Processing            (Store.ClaimNextPending)
//	Processing -> Completed             (successful execution)
//	Processing -> Pending               (failed, attempts < max)
//	Processing -> Dead                  (failed, attempts >= max)
//	Dead       -> Pending               (operator retry)
//
// # Interfaces
//
// queuectl defines the storage-agnostic contract a backend must
// satisfy: Enqueuer, Dispatcher, Observer (composed as Store). The sql
// package provides a bun-backed implementation against SQLite.
//
// # Concurrency Model
//
// Each Worker runs a serial claim -> execute -> classify loop inside
// its own OS process; safety across concurrently running workers is
// provided entirely by Dispatcher.ClaimNextPending's atomic state
// transition, not by in-process coordination. A Supervisor spawns,
// signals and reports on worker processes.
package queuectl

import "errors"

var (
	// ErrDuplicateID is returned by Enqueuer.AddJob when a job with
	// the same id already exists in the active jobs table.
	ErrDuplicateID = errors.New("queuectl: job id already exists")

	// ErrDLQNotFound is returned when an operation references a DLQ
	// entry that does not exist.
	ErrDLQNotFound = errors.New("queuectl: job not found in dead-letter queue")

	// ErrActiveIDConflict is returned by Dispatcher.RetryFromDLQ when
	// a job with the same id already exists in the active jobs table.
	// Resolves spec open question 4: the original silently failed the
	// insert, this is reported as a conflict instead.
	ErrActiveIDConflict = errors.New("queuectl: job id already active")

	// ErrUnknownConfigKey is returned when a config key outside the
	// fixed tunable set is referenced.
	ErrUnknownConfigKey = errors.New("queuectl: unknown config key")

	// ErrBadConfigValue is returned when a config value cannot be
	// converted to the tunable's expected type.
	ErrBadConfigValue = errors.New("queuectl: invalid config value")

	// ErrDoubleStarted is returned when Start is called on a
	// component that has already been started.
	ErrDoubleStarted = errors.New("queuectl: double start")

	// ErrDoubleStopped is returned when Stop is called on a
	// component that is not currently running.
	ErrDoubleStopped = errors.New("queuectl: double stop")

	// ErrStopTimeout is returned when a component fails to shut down
	// within the timeout passed to Stop.
	ErrStopTimeout = errors.New("queuectl: stop timeout")
)
