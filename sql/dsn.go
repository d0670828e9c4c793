package sql

import (
	stdsql "database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

// Open connects to a SQLite database at path and wraps it as a
// *bun.DB ready for use with the rest of this package.
//
// The connection string sets _txlock=immediate so that every
// bun.DB.RunInTx acquires a write lock (BEGIN IMMEDIATE) up front
// rather than on first write, which is what makes
// Store.ClaimNextPending's select-then-update safe against
// concurrent workers. It also sets a busy_timeout so that a writer
// blocked behind another transaction waits briefly instead of
// failing immediately with "database is locked".
//
// Open sets a single max-open-connection, matching SQLite's
// single-writer model.
func Open(path string) (*bun.DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		path,
	)
	sqlDB, err := stdsql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}
