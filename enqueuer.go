package queuectl

import (
	"context"

	"github.com/p-v-srinag/queuectl/job"
)

// Enqueuer defines the write-side entry point of the queue.
type Enqueuer interface {

	// AddJob persists a new job in the Pending state.
	//
	// The caller supplies j.ID (or leaves it empty, in which case
	// implementations must generate one), j.Command, and j.MaxRetries
	// (snapshotted from current config by the caller). CreatedAt and
	// UpdatedAt are assigned by the implementation.
	//
	// AddJob returns ErrDuplicateID if a job with the same id already
	// exists in the active jobs table. On any other error the job must
	// not be considered enqueued.
	AddJob(ctx context.Context, j *job.Job) error
}
