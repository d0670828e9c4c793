package queuectl

import (
	"context"

	"github.com/p-v-srinag/queuectl/job"
)

// Dispatcher defines the read-write contract for claiming and
// transitioning jobs through their lifecycle.
//
// Dispatcher provides the at-most-one-claim guarantee that makes
// concurrent workers safe: ClaimNextPending is the sole path from
// Pending to Processing, and its implementation must serialize
// concurrent callers so that no two callers ever observe the same
// row transitioning.
type Dispatcher interface {

	// ClaimNextPending selects the single oldest-created Pending job,
	// atomically transitions it to Processing, and returns it.
	//
	// If no Pending job exists, or the underlying store could not
	// acquire its write lock within its configured busy-timeout,
	// ClaimNextPending returns (nil, nil) — an empty claim is not an
	// error, it means the worker's poll loop should try again later.
	// Any other storage error is also treated as transient and
	// reported as (nil, nil) after being logged by the implementation.
	ClaimNextPending(ctx context.Context) (*job.Job, error)

	// UpdateJob persists j.Status, j.Attempts and a refreshed
	// UpdatedAt for the row identified by j.ID. UpdateJob is used for
	// in-place transitions that stay within the active jobs table
	// (Processing -> Completed, Processing -> Failed -> Pending).
	UpdateJob(ctx context.Context, j *job.Job) error

	// MoveToDLQ atomically moves j out of the active jobs table and
	// into the dead-letter queue with Status set to Dead. Insertion
	// into dlq and deletion from jobs happen in a single transaction.
	MoveToDLQ(ctx context.Context, j *job.Job) error

	// RetryFromDLQ atomically moves the job identified by id out of
	// the dead-letter queue and back into the active jobs table with
	// Status set to Pending and Attempts reset to zero.
	//
	// RetryFromDLQ returns ErrDLQNotFound if no such id exists in the
	// DLQ, or ErrActiveIDConflict if a job with the same id already
	// exists in the active jobs table.
	RetryFromDLQ(ctx context.Context, id string) (*job.Job, error)
}
