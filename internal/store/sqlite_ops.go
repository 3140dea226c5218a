// sqlite_ops.go provides SQLite connection management and low-level operations.
//
// Separated to isolate SQLite-specific concerns (pragmas, connection pooling,
// driver registration) from business logic. This is the only file that imports
// the SQLite driver, making it easier to swap implementations if needed.
//
// Design: WAL mode with busy timeout balances concurrency and durability.
// WAL allows concurrent readers during writes. The 5-second busy timeout
// prevents "database is locked" errors without waiting forever on a stuck
// connection. Foreign keys are enforced so the doc/blob/version/link graph
// cannot drift into a dangling-reference state silently.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base32"
	"fmt"
	"strings"
	"sync"

	// Register sqlite driver
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the document engine's persistence layer on top of a
// single SQLite connection. All mutating operations acquire mu before
// beginning a transaction, per spec.md §5's single-connection concurrency
// model: readers and writers share the lock, and long-running preparation
// (FS walks, link extraction) must happen outside of it.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens the SQLite database file at path, applies the PRAGMA set
// required by spec.md §4.1, and executes the schema DDL idempotently.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	pragmas := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA synchronous=NORMAL`,
		`PRAGMA busy_timeout=5000`,
		`PRAGMA foreign_keys=ON`,
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting %s: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := execSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for the snapshot/backup path and for
// extensions that need custom tables.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Tx executes fn inside a transaction while holding the store's single lock,
// handling Begin/Commit/Rollback automatically. Per spec.md §5, every
// multi-statement mutation (upsert, import merge, link rewrite) goes through
// this helper so the lock scope is exactly the commit-sized critical section.
func (s *SQLiteStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// genID creates a unique 8-character identifier using crypto/rand, used
// wherever a random (non content-addressed) id is needed: plugin rows,
// provenance rows, anchor ids.
func genID() (string, error) {
	b := make([]byte, 5) // 5 bytes = 8 base32 chars
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return strings.ToLower(base32.StdEncoding.EncodeToString(b)), nil
}
