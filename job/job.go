package job

import "time"

// Job represents a single shell command managed by the queue.
//
// CreatedAt is set once on first insertion and never mutated.
// UpdatedAt is refreshed on every state or attempt change.
//
// MaxRetries is snapshotted from config at enqueue time and carried
// unchanged through a DLQ retry; a Job's own value takes precedence
// over live config for the lifetime of that row.
//
// Job values returned by a Store are snapshots. Mutating fields
// directly does not change the underlying queue state; transitions
// must be performed through Store operations.
type Job struct {
	ID      string `json:"id"`
	Command string `json:"command"`

	Status   State  `json:"state"`
	Attempts uint32 `json:"attempts"`

	MaxRetries uint32 `json:"max_retries"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
