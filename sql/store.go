package sql

import (
	"context"
	stdsql "database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	qc "github.com/p-v-srinag/queuectl"
	"github.com/p-v-srinag/queuectl/job"
)

// Store is a bun-backed implementation of the root package's Store
// interface (Enqueuer, Dispatcher, Observer) against SQLite.
//
// Store keeps active jobs (Pending, Processing, Completed, Failed)
// in the jobs table and dead-lettered jobs in a physically separate
// dlq table, moving rows between them inside a single transaction,
// the way the original implementation's move_to_dlq and
// retry_dlq_job do.
type Store struct {
	db  *bun.DB
	log *slog.Logger
}

// NewStore creates a Store. db must already have had InitDB run
// against it. log may be nil, in which case a discarding logger is
// used.
func NewStore(db *bun.DB, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{db: db, log: log}
}

// AddJob implements queuectl.Enqueuer.
func (s *Store) AddJob(ctx context.Context, jb *job.Job) error {
	if jb.ID == "" {
		jb.ID = uuid.NewString()
	}
	now := time.Now()
	jb.Status = job.Pending
	jb.Attempts = 0
	jb.CreatedAt = now
	jb.UpdatedAt = now

	model := fromJob(jb)
	_, err := s.db.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return qc.ErrDuplicateID
		}
		return err
	}
	return nil
}

// ClaimNextPending implements queuectl.Dispatcher.
//
// It runs a SELECT (ORDER BY created_at ASC LIMIT 1) followed by an
// UPDATE inside one RunInTx call. Because Store's connection string
// sets _txlock=immediate, the transaction acquires SQLite's write
// lock (BEGIN IMMEDIATE) before the SELECT runs, so no two
// concurrent callers can ever select the same row: a losing caller
// blocks on the write lock until the winner commits, then sees the
// row already Processing and finds nothing eligible. This mirrors
// the original implementation's get_next_pending_job_atomic.
func (s *Store) ClaimNextPending(ctx context.Context) (*job.Job, error) {
	var claimed *jobModel
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row jobModel
		err := tx.NewSelect().
			Model(&row).
			Where("status = ?", job.Pending).
			Order("created_at ASC").
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, stdsql.ErrNoRows) {
				return nil
			}
			return err
		}

		now := time.Now()
		res, err := tx.NewUpdate().
			Model((*jobModel)(nil)).
			Set("status = ?", job.Processing).
			Set("attempts = attempts + 1").
			Set("updated_at = ?", now).
			Where("id = ?", row.ID).
			Where("status = ?", job.Pending).
			Exec(ctx)
		if err != nil {
			return err
		}
		if !isAffected(res) {
			// Lost a race to another caller between the select and
			// the update; treat it the same as an empty claim.
			return nil
		}
		row.Status = job.Processing
		row.Attempts++
		row.UpdatedAt = now
		claimed = &row
		return nil
	})
	if err != nil {
		if isBusyErr(err) {
			return nil, nil
		}
		s.log.Error("claim failed", "err", err)
		return nil, nil
	}
	if claimed == nil {
		return nil, nil
	}
	return claimed.toJob(), nil
}

// UpdateJob implements queuectl.Dispatcher.
func (s *Store) UpdateJob(ctx context.Context, jb *job.Job) error {
	jb.UpdatedAt = time.Now()
	_, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", jb.Status).
		Set("attempts = ?", jb.Attempts).
		Set("updated_at = ?", jb.UpdatedAt).
		Where("id = ?", jb.ID).
		Exec(ctx)
	return err
}

// MoveToDLQ implements queuectl.Dispatcher.
func (s *Store) MoveToDLQ(ctx context.Context, jb *job.Job) error {
	jb.Status = job.Dead
	jb.UpdatedAt = time.Now()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(dlqFromJob(jb)).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*jobModel)(nil)).
			Where("id = ?", jb.ID).
			Exec(ctx)
		return err
	})
}

// RetryFromDLQ implements queuectl.Dispatcher.
func (s *Store) RetryFromDLQ(ctx context.Context, id string) (*job.Job, error) {
	var revived *job.Job
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row dlqModel
		err := tx.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
		if err != nil {
			if errors.Is(err, stdsql.ErrNoRows) {
				return qc.ErrDLQNotFound
			}
			return err
		}

		var exists int
		exists, err = tx.NewSelect().
			Model((*jobModel)(nil)).
			Where("id = ?", id).
			Count(ctx)
		if err != nil {
			return err
		}
		if exists > 0 {
			return qc.ErrActiveIDConflict
		}

		now := time.Now()
		row.Status = job.Pending
		row.Attempts = 0
		row.UpdatedAt = now
		if _, err := tx.NewInsert().Model(&jobModel{
			ID:         row.ID,
			Command:    row.Command,
			Status:     job.Pending,
			Attempts:   0,
			MaxRetries: row.MaxRetries,
			CreatedAt:  row.CreatedAt,
			UpdatedAt:  now,
		}).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*dlqModel)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return err
		}
		revived = row.toJob()
		revived.Status = job.Pending
		revived.Attempts = 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revived, nil
}

// ListByState implements queuectl.Observer.
func (s *Store) ListByState(ctx context.Context, state job.State) ([]*job.Job, error) {
	if state == job.Dead {
		var rows []*dlqModel
		if err := s.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
			return nil, err
		}
		ret := make([]*job.Job, 0, len(rows))
		for _, r := range rows {
			ret = append(ret, r.toJob())
		}
		return ret, nil
	}

	var rows []*jobModel
	query := s.db.NewSelect().Model(&rows).Order("created_at ASC")
	if state != job.Unknown {
		query = query.Where("status = ?", state)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	ret := make([]*job.Job, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, r.toJob())
	}
	return ret, nil
}

// FindInDLQ implements queuectl.Observer.
func (s *Store) FindInDLQ(ctx context.Context, id string) (*job.Job, error) {
	var row dlqModel
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return row.toJob(), nil
}

// Stats implements queuectl.Observer.
func (s *Store) Stats(ctx context.Context) (map[string]int64, error) {
	ret := map[string]int64{
		job.Pending.String():    0,
		job.Processing.String(): 0,
		job.Completed.String():  0,
		job.Failed.String():     0,
		job.Dead.String():       0,
	}

	var rows []struct {
		Status job.State `bun:"status"`
		Count  int64     `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*jobModel)(nil)).
		ColumnExpr("status, count(*) as count").
		Group("status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		ret[r.Status.String()] = r.Count
	}

	dead, err := s.db.NewSelect().Model((*dlqModel)(nil)).Count(ctx)
	if err != nil {
		return nil, err
	}
	ret[job.Dead.String()] = int64(dead)
	return ret, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isBusyErr(err error) bool {
	return strings.Contains(err.Error(), "database is locked") ||
		strings.Contains(err.Error(), "SQLITE_BUSY")
}
