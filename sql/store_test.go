package sql_test

import (
	"context"
	"errors"
	"testing"

	qc "github.com/p-v-srinag/queuectl"
	"github.com/p-v-srinag/queuectl/job"
	qsql "github.com/p-v-srinag/queuectl/sql"
)

func TestAddJobAssignsIDAndRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := qsql.NewStore(db, nil)

	jb := &job.Job{Command: "echo hello", MaxRetries: 3}
	if err := store.AddJob(ctx, jb); err != nil {
		t.Fatal(err)
	}
	if jb.ID == "" {
		t.Fatal("expected AddJob to assign an id")
	}
	if jb.Status != job.Pending {
		t.Fatalf("expected Pending, got %v", jb.Status)
	}

	dup := &job.Job{ID: jb.ID, Command: "echo again"}
	err := store.AddJob(ctx, dup)
	if !errors.Is(err, qc.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestAddJobHonorsCallerSuppliedID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := qsql.NewStore(db, nil)

	jb := &job.Job{ID: "j1", Command: "echo hi"}
	if err := store.AddJob(ctx, jb); err != nil {
		t.Fatal(err)
	}
	if jb.ID != "j1" {
		t.Fatalf("expected caller-supplied id to survive, got %q", jb.ID)
	}
}

func TestClaimNextPendingOrdersByCreatedAt(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := qsql.NewStore(db, nil)

	first := &job.Job{ID: "first", Command: "true"}
	second := &job.Job{ID: "second", Command: "true"}
	if err := store.AddJob(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := store.AddJob(ctx, second); err != nil {
		t.Fatal(err)
	}

	claimed, err := store.ClaimNextPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if claimed == nil {
		t.Fatal("expected a claimed job")
	}
	if claimed.ID != "first" {
		t.Fatalf("expected oldest job to be claimed first, got %s", claimed.ID)
	}
	if claimed.Status != job.Processing {
		t.Fatalf("expected Processing, got %v", claimed.Status)
	}
	if claimed.Attempts != 1 {
		t.Fatalf("expected attempts incremented to 1, got %d", claimed.Attempts)
	}
}

func TestClaimNextPendingEmptyQueue(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := qsql.NewStore(db, nil)

	claimed, err := store.ClaimNextPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if claimed != nil {
		t.Fatal("expected no job to be claimed from an empty queue")
	}
}

func TestUpdateJobToCompleted(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := qsql.NewStore(db, nil)

	jb := &job.Job{ID: "j1", Command: "true"}
	if err := store.AddJob(ctx, jb); err != nil {
		t.Fatal(err)
	}
	claimed, err := store.ClaimNextPending(ctx)
	if err != nil {
		t.Fatal(err)
	}

	claimed.Status = job.Completed
	if err := store.UpdateJob(ctx, claimed); err != nil {
		t.Fatal(err)
	}

	rows, err := store.ListByState(ctx, job.Completed)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ID != "j1" {
		t.Fatalf("expected completed job j1, got %+v", rows)
	}
}

func TestMoveToDLQAndRetryFromDLQ(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := qsql.NewStore(db, nil)

	jb := &job.Job{ID: "doomed", Command: "false", MaxRetries: 1}
	if err := store.AddJob(ctx, jb); err != nil {
		t.Fatal(err)
	}
	claimed, err := store.ClaimNextPending(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := store.MoveToDLQ(ctx, claimed); err != nil {
		t.Fatal(err)
	}

	active, err := store.ListByState(ctx, job.Processing)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("expected job to be removed from active table, found %+v", active)
	}

	dead, err := store.FindInDLQ(ctx, "doomed")
	if err != nil {
		t.Fatal(err)
	}
	if dead == nil || dead.Status != job.Dead {
		t.Fatalf("expected dead job in DLQ, got %+v", dead)
	}

	revived, err := store.RetryFromDLQ(ctx, "doomed")
	if err != nil {
		t.Fatal(err)
	}
	if revived.Status != job.Pending || revived.Attempts != 0 {
		t.Fatalf("expected revived job Pending with attempts reset, got %+v", revived)
	}

	stillDead, err := store.FindInDLQ(ctx, "doomed")
	if err != nil {
		t.Fatal(err)
	}
	if stillDead != nil {
		t.Fatal("expected job to be removed from DLQ after retry")
	}
}

func TestRetryFromDLQNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := qsql.NewStore(db, nil)

	_, err := store.RetryFromDLQ(ctx, "nonexistent")
	if !errors.Is(err, qc.ErrDLQNotFound) {
		t.Fatalf("expected ErrDLQNotFound, got %v", err)
	}
}

func TestRetryFromDLQActiveConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := qsql.NewStore(db, nil)

	jb := &job.Job{ID: "dup", Command: "false"}
	if err := store.AddJob(ctx, jb); err != nil {
		t.Fatal(err)
	}
	claimed, err := store.ClaimNextPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.MoveToDLQ(ctx, claimed); err != nil {
		t.Fatal(err)
	}

	// A new active job reuses the same id that is now in the DLQ.
	reused := &job.Job{ID: "dup", Command: "true"}
	if err := store.AddJob(ctx, reused); err != nil {
		t.Fatal(err)
	}

	_, err = store.RetryFromDLQ(ctx, "dup")
	if !errors.Is(err, qc.ErrActiveIDConflict) {
		t.Fatalf("expected ErrActiveIDConflict, got %v", err)
	}
}

func TestStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := qsql.NewStore(db, nil)

	for _, id := range []string{"a", "b", "c"} {
		if err := store.AddJob(ctx, &job.Job{ID: id, Command: "true"}); err != nil {
			t.Fatal(err)
		}
	}
	claimed, err := store.ClaimNextPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	claimed.Status = job.Completed
	if err := store.UpdateJob(ctx, claimed); err != nil {
		t.Fatal(err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats[job.Pending.String()] != 2 {
		t.Fatalf("expected 2 pending, got %d", stats[job.Pending.String()])
	}
	if stats[job.Completed.String()] != 1 {
		t.Fatalf("expected 1 completed, got %d", stats[job.Completed.String()])
	}
	if stats[job.Dead.String()] != 0 {
		t.Fatalf("expected 0 dead, got %d", stats[job.Dead.String()])
	}
}
