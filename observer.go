package queuectl

import (
	"context"

	"github.com/p-v-srinag/queuectl/job"
)

// Observer provides read-only access to jobs stored in the queue.
//
// Observer never modifies job state. Returned Job values are
// independent snapshots; mutating them does not affect storage.
type Observer interface {

	// ListByState returns jobs in the given state, ordered by
	// CreatedAt ascending. For job.Dead this reads the dead-letter
	// queue; for every other state it reads the active jobs table.
	// job.Unknown matches every row of the active jobs table.
	ListByState(ctx context.Context, state job.State) ([]*job.Job, error)

	// FindInDLQ returns the dead-letter entry with the given id, or
	// (nil, nil) if no such entry exists.
	FindInDLQ(ctx context.Context, id string) (*job.Job, error)

	// Stats returns a count of jobs per state, keyed by the state's
	// canonical string (job.State.String). Dead counts come from the
	// dead-letter queue; all other counts come from the active jobs
	// table.
	Stats(ctx context.Context) (map[string]int64, error)
}
