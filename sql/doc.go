// Package sql provides a bun-based SQL storage implementation of
// queuectl.Store.
//
// # Overview
//
// This package implements the root package's Enqueuer, Dispatcher
// and Observer interfaces (composed as Store) against SQLite, using
// two physical tables: jobs holds every active job (Pending,
// Processing, Completed, Failed); dlq holds every job that has
// exhausted its retry budget. Moves between the two tables happen
// inside a single transaction.
//
// # Concurrency Model
//
// ClaimNextPending relies on the connection string's _txlock=immediate
// setting (see Open) to acquire SQLite's write lock before its SELECT
// runs, so concurrent callers serialize on that lock rather than
// racing to claim the same row. A busy_timeout is also configured so
// a blocked caller waits briefly instead of failing outright; if the
// wait still times out, ClaimNextPending reports an empty claim
// rather than an error, matching the root package's Dispatcher
// contract.
//
// # Schema
//
// InitDB (or MustInitDB) creates the jobs table, the dlq table, and
// the (status, created_at) index that ClaimNextPending and
// ListByState rely on. InitDB is idempotent and runs inside a
// transaction; it performs no destructive migrations.
//
// # Database Lifecycle
//
// This package does not manage connection pooling beyond capping
// max-open-connections at one (SQLite's single-writer model). The
// caller is responsible for running InitDB once before first use.
package sql
