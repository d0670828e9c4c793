package sql

import (
	"time"

	"github.com/p-v-srinag/queuectl/job"
	"github.com/uptrace/bun"
)

// jobModel is the bun row mapping for the active jobs table. It
// holds every job currently Pending, Processing, Completed or Failed
// (Failed is transient and never observed at rest, see job.State).
type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`
	ID            string `bun:"id,pk"`
	Command string `bun:"command,notnull"`

	Status   job.State `bun:"status,notnull"`
	Attempts uint32    `bun:"attempts,notnull,default:0"`

	MaxRetries uint32 `bun:"max_retries,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// dlqModel is the bun row mapping for the dead-letter queue table.
// It mirrors jobModel's columns exactly; the two tables are kept
// physically separate (rather than a single table with a Dead
// status) so administrative listing of dead jobs never needs to
// filter the hot active table.
type dlqModel struct {
	bun.BaseModel `bun:"table:dlq"`
	ID            string `bun:"id,pk"`
	Command string `bun:"command,notnull"`

	Status   job.State `bun:"status,notnull"`
	Attempts uint32    `bun:"attempts,notnull,default:0"`

	MaxRetries uint32 `bun:"max_retries,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (jm *jobModel) toJob() *job.Job {
	return &job.Job{
		ID:         jm.ID,
		Command:    jm.Command,
		Status:     jm.Status,
		Attempts:   jm.Attempts,
		MaxRetries: jm.MaxRetries,
		CreatedAt:  jm.CreatedAt,
		UpdatedAt:  jm.UpdatedAt,
	}
}

func (dm *dlqModel) toJob() *job.Job {
	return &job.Job{
		ID:         dm.ID,
		Command:    dm.Command,
		Status:     dm.Status,
		Attempts:   dm.Attempts,
		MaxRetries: dm.MaxRetries,
		CreatedAt:  dm.CreatedAt,
		UpdatedAt:  dm.UpdatedAt,
	}
}

func fromJob(jb *job.Job) *jobModel {
	return &jobModel{
		ID:         jb.ID,
		Command:    jb.Command,
		Status:     jb.Status,
		Attempts:   jb.Attempts,
		MaxRetries: jb.MaxRetries,
		CreatedAt:  jb.CreatedAt,
		UpdatedAt:  jb.UpdatedAt,
	}
}

func dlqFromJob(jb *job.Job) *dlqModel {
	return &dlqModel{
		ID:         jb.ID,
		Command:    jb.Command,
		Status:     job.Dead,
		Attempts:   jb.Attempts,
		MaxRetries: jb.MaxRetries,
		CreatedAt:  jb.CreatedAt,
		UpdatedAt:  jb.UpdatedAt,
	}
}
