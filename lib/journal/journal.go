// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal persists run history for a case in a SQLite
// database under the case bookkeeping directory. Where the run record
// (lib/runlog) is a crash-safe trace of the run in flight, the
// journal is the queryable record of completed runs: `caseflow
// history` reads it, and each finished run inserts one row.
//
// Row layout favors queries over normalization: scalar columns for
// everything history filters or sorts on, and a single CBOR blob for
// the per-stage breakdown, which is only ever read back whole.
package journal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/caseflow-dev/caseflow/lib/codec"
	"github.com/caseflow-dev/caseflow/lib/sqlitepool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		workflow     TEXT NOT NULL,
		digest       TEXT NOT NULL,
		status       TEXT NOT NULL,
		failed_stage TEXT,
		error        TEXT,
		started_at   INTEGER NOT NULL,
		duration_ms  INTEGER NOT NULL,
		stages       BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
`

// Run is one completed (or failed) workflow run.
type Run struct {
	ID          int64
	Workflow    string
	Digest      string
	Status      string
	FailedStage string
	Error       string
	StartedAt   time.Time
	Duration    time.Duration
	Stages      []StageRecord
}

// StageRecord is the per-stage breakdown stored inside a run row.
type StageRecord struct {
	Index      int    `cbor:"index"`
	Name       string `cbor:"name"`
	Status     string `cbor:"status"`
	DurationMS int64  `cbor:"duration_ms"`
	Error      string `cbor:"error,omitempty"`
}

// Journal is the run history store for a single case. Safe for
// concurrent use.
type Journal struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
	limit  int
}

// Open opens (creating if needed) the journal database at path.
// historyLimit bounds the number of retained runs; zero or negative
// disables pruning. The caller must Close the journal when done.
func Open(path string, historyLimit int, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}

	return &Journal{
		pool:   pool,
		logger: logger,
		limit:  historyLimit,
	}, nil
}

// Close releases the underlying connection pool.
func (j *Journal) Close() error {
	return j.pool.Close()
}

// RecordRun inserts a completed run and prunes history beyond the
// configured limit. The run's ID field is ignored on insert.
func (j *Journal) RecordRun(ctx context.Context, run Run) error {
	stages, err := codec.Marshal(run.Stages)
	if err != nil {
		return fmt.Errorf("journal: encoding stage records: %w", err)
	}

	conn, err := j.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer j.pool.Put(conn)

	err = sqlitex.Execute(conn, `INSERT INTO runs
		(workflow, digest, status, failed_stage, error, started_at, duration_ms, stages)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				run.Workflow,
				run.Digest,
				run.Status,
				nullable(run.FailedStage),
				nullable(run.Error),
				run.StartedAt.UnixMilli(),
				run.Duration.Milliseconds(),
				stages,
			},
		})
	if err != nil {
		return fmt.Errorf("journal: inserting run: %w", err)
	}

	if j.limit > 0 {
		if err := j.prune(conn); err != nil {
			// Pruning failure must not fail the run that was just
			// recorded successfully.
			j.logger.Warn("journal prune failed", "error", err)
		}
	}
	return nil
}

// Recent returns up to n runs, newest first. Each run includes its
// full stage breakdown.
func (j *Journal) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		n = j.limit
	}
	if n <= 0 {
		n = 20
	}

	conn, err := j.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer j.pool.Put(conn)

	var runs []Run
	var scanErr error
	err = sqlitex.Execute(conn, `SELECT
			id, workflow, digest, status, failed_stage, error,
			started_at, duration_ms, stages
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{n},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				run := Run{
					ID:          stmt.ColumnInt64(0),
					Workflow:    stmt.ColumnText(1),
					Digest:      stmt.ColumnText(2),
					Status:      stmt.ColumnText(3),
					FailedStage: stmt.ColumnText(4),
					Error:       stmt.ColumnText(5),
					StartedAt:   time.UnixMilli(stmt.ColumnInt64(6)).UTC(),
					Duration:    time.Duration(stmt.ColumnInt64(7)) * time.Millisecond,
				}
				blob := make([]byte, stmt.ColumnLen(8))
				stmt.ColumnBytes(8, blob)
				if err := codec.Unmarshal(blob, &run.Stages); err != nil {
					scanErr = fmt.Errorf("journal: decoding stage records for run %d: %w", run.ID, err)
					return scanErr
				}
				runs = append(runs, run)
				return nil
			},
		})
	if err != nil {
		if scanErr != nil {
			return nil, scanErr
		}
		return nil, fmt.Errorf("journal: querying runs: %w", err)
	}
	return runs, nil
}

// prune deletes the oldest rows beyond the history limit.
func (j *Journal) prune(conn *sqlite.Conn) error {
	return sqlitex.Execute(conn, `DELETE FROM runs WHERE id IN (
			SELECT id FROM runs ORDER BY started_at DESC, id DESC
			LIMIT -1 OFFSET ?
		)`,
		&sqlitex.ExecOptions{
			Args: []any{j.limit},
		})
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
