// Package library provides Store and Tx for database access.
package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/castkeep/castkeep/internal/migrations"
)

// querier abstracts *sql.DB and *sql.Tx for shared query logic.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

// Store owns the single read/write handle to the backing file. Every
// operation in this package goes through it; per-operation connections
// are never created.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the backing file at path and applies the
// embedded schema. It is idempotent: opening an already-initialized
// store changes nothing. WAL mode keeps the file readable by a second
// process while this one writes; when both processes write, the later
// commit wins and the other's in-memory view is stale until reload.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// NewStore wraps an already-open database handle. The caller is
// responsible for the schema; tests and embedding processes use this.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Path returns the backing file location, empty for NewStore handles.
func (s *Store) Path() string { return s.path }

// DB exposes the underlying handle for collaborators that persist
// alongside the library in the same file, such as the event log.
func (s *Store) DB() *sql.DB { return s.db }

// Checkpoint flushes the write-ahead log into the main database file.
// With nothing pending it is a no-op. The host calls this on lifecycle
// transitions (backgrounding, shutdown).
func (s *Store) Checkpoint() error {
	var busy, logFrames, moved int
	err := s.db.QueryRow("PRAGMA wal_checkpoint(TRUNCATE)").Scan(&busy, &logFrames, &moved)
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

// Close checkpoints pending changes and releases the handle.
func (s *Store) Close() error {
	cerr := s.Checkpoint()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return cerr
}

// Begin starts a transaction.
func (s *Store) Begin() (*Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx}, nil
}

// Tx wraps a database transaction with the same methods as Store.
type Tx struct {
	tx *sql.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
