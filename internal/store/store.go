// Package store implements the metadata store (spec §4.2): a durable
// relational surface, backed by a pure-Go SQLite driver, that records
// per output artifact the command used to produce it and the
// (input_path, last_mtime) pairs observed when it was produced.
//
// This is grounded directly on the teacher's internal/fabric/sqlite.go:
// single-writer connection, WAL journal mode, busy timeout, and an
// idempotent CREATE TABLE IF NOT EXISTS schema applied on open.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver.

	"github.com/forgebuild/forge/internal/depsinfo"
	"github.com/forgebuild/forge/internal/forgeerr"
)

const schema = `
CREATE TABLE IF NOT EXISTS compilations (
    output_path TEXT PRIMARY KEY,
    command     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deps (
    output_path TEXT NOT NULL,
    input_path  TEXT NOT NULL,
    input_mtime INTEGER NOT NULL,
    PRIMARY KEY (output_path, input_path)
);
`

// InputFileInfo is a single recorded (input_path, last_mtime) pair.
type InputFileInfo struct {
	Path      string
	LastMtime time.Time
}

// Store is a handle to the metadata database for one build invocation.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the metadata database at path, enabling WAL
// mode and a busy timeout, and creates the schema if absent. A failure
// here — including a schema mismatch from a future major version —
// wraps forgeerr.ErrStore; the forge build and watch commands return it
// and abort rather than run against a possibly-corrupt store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", forgeerr.ErrStore, path, err)
	}

	// SQLite supports only one writer; a single connection avoids
	// SQLITE_BUSY contention between pooled connections that would each
	// need their own PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enable WAL mode: %v", forgeerr.ErrStore, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set busy timeout: %v", forgeerr.ErrStore, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", forgeerr.ErrStore, err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// CommandOf returns the command string stored for output, and whether a
// record exists at all.
func (s *Store) CommandOf(ctx context.Context, output string) (string, bool, error) {
	var cmd string
	err := s.db.QueryRowContext(ctx, `SELECT command FROM compilations WHERE output_path = ?`, output).Scan(&cmd)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: command_of %s: %v", forgeerr.ErrStore, output, err)
	}
	return cmd, true, nil
}

// InputsOf returns every recorded input for output and its mtime. The
// second return distinguishes "no inputs recorded" (ok=false, meaning no
// row at all exists) from "zero inputs recorded" (ok=true, empty slice).
func (s *Store) InputsOf(ctx context.Context, output string) ([]InputFileInfo, bool, error) {
	// Absence of a compilation record also means absence of inputs.
	if _, has, err := s.CommandOf(ctx, output); err != nil {
		return nil, false, err
	} else if !has {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT input_path, input_mtime FROM deps WHERE output_path = ?`, output)
	if err != nil {
		return nil, false, fmt.Errorf("%w: inputs_of %s: %v", forgeerr.ErrStore, output, err)
	}
	defer rows.Close()

	var out []InputFileInfo
	for rows.Next() {
		var path string
		var nanos int64
		if err := rows.Scan(&path, &nanos); err != nil {
			return nil, false, fmt.Errorf("%w: scan input row: %v", forgeerr.ErrStore, err)
		}
		out = append(out, InputFileInfo{Path: path, LastMtime: time.Unix(0, nanos)})
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: iterate input rows: %v", forgeerr.ErrStore, err)
	}
	return out, true, nil
}

// RecordCompilation upserts the command string for output.
func (s *Store) RecordCompilation(ctx context.Context, tx *sql.Tx, output, command string) error {
	const q = `
		INSERT INTO compilations (output_path, command) VALUES (?, ?)
		ON CONFLICT(output_path) DO UPDATE SET command = excluded.command`
	if _, err := tx.ExecContext(ctx, q, output, command); err != nil {
		return fmt.Errorf("%w: record_compilation %s: %v", forgeerr.ErrStore, output, err)
	}
	return nil
}

// ForgetInputsOf deletes every recorded input for output.
func (s *Store) ForgetInputsOf(ctx context.Context, tx *sql.Tx, output string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM deps WHERE output_path = ?`, output); err != nil {
		return fmt.Errorf("%w: forget_inputs_of %s: %v", forgeerr.ErrStore, output, err)
	}
	return nil
}

// RecordDep inserts one (input, output, mtime) row.
func (s *Store) RecordDep(ctx context.Context, tx *sql.Tx, input, output string, mtime time.Time) error {
	const q = `INSERT INTO deps (output_path, input_path, input_mtime) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q, output, input, mtime.UnixNano()); err != nil {
		return fmt.Errorf("%w: record_dep %s -> %s: %v", forgeerr.ErrStore, input, output, err)
	}
	return nil
}

// Begin starts a transaction for the update protocol.
func (s *Store) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", forgeerr.ErrStore, err)
	}
	return tx, nil
}

// ApplyUpdate commits the update protocol (spec §4.2) as one atomic
// transaction: record the command, forget the prior inputs, record each
// new (input, mtime) pair from the freshly parsed dependency info. A
// crash mid-update leaves either the full prior record or the full new
// one — SQLite's transaction log guarantees it, never a mix.
func (s *Store) ApplyUpdate(ctx context.Context, deps depsinfo.FileDepsInfo, mtimes map[string]time.Time) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op once committed

	if err := s.RecordCompilation(ctx, tx, deps.Output, deps.Command); err != nil {
		return err
	}
	if err := s.ForgetInputsOf(ctx, tx, deps.Output); err != nil {
		return err
	}
	for _, input := range deps.Inputs {
		mtime, ok := mtimes[input]
		if !ok {
			return fmt.Errorf("%w: no mtime observed for recorded input %s", forgeerr.ErrStore, input)
		}
		if err := s.RecordDep(ctx, tx, input, deps.Output, mtime); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit update for %s: %v", forgeerr.ErrStore, deps.Output, err)
	}
	return nil
}
