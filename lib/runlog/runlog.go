// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package runlog writes the per-run JSONL record. Each line is an
// independent JSON object, making the record:
//
//   - Crash-safe: a SIGKILL mid-run preserves all completed stage
//     results. A single JSON document would be truncated and
//     unparseable.
//   - Streamable: an operator can tail the file for stage-by-stage
//     progress of a multi-hour solve instead of waiting for the end.
//
// The record lives at <case>/.caseflow/run.jsonl. Before a new run
// starts, the previous record is archived to a zstd-compressed,
// timestamp-named sibling so the history of a long campaign stays
// inspectable without growing a single unbounded file.
package runlog

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/caseflow-dev/caseflow/lib/runstate"
)

// FileName is the active run record name inside the case bookkeeping
// directory.
const FileName = "run.jsonl"

// StageStatus is the recorded outcome of a single stage.
type StageStatus string

const (
	StageOK      StageStatus = "ok"
	StageFailed  StageStatus = "failed"
	StageSkipped StageStatus = "skipped"
)

// Record writes structured JSONL during workflow execution. All
// methods are nil-safe: when the receiver is nil they are no-ops, so
// the engine can log unconditionally whether or not a record is
// configured.
type Record struct {
	logger  *slog.Logger
	file    *os.File
	encoder *json.Encoder
}

// Path returns the active run record path for a case root.
func Path(caseRoot string) string {
	return filepath.Join(caseRoot, runstate.Dir, FileName)
}

// New creates the run record for a case, truncating any existing
// content. Call [Archive] first to preserve the previous run.
func New(caseRoot string, logger *slog.Logger) (*Record, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(filepath.Join(caseRoot, runstate.Dir), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", runstate.Dir, err)
	}
	file, err := os.Create(Path(caseRoot))
	if err != nil {
		return nil, fmt.Errorf("creating run record: %w", err)
	}
	return &Record{
		logger:  logger,
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

// Close flushes and closes the run record file.
func (r *Record) Close() error {
	if r == nil {
		return nil
	}
	return r.file.Close()
}

// WriteStart records run start.
func (r *Record) WriteStart(workflow, digest string, stageCount int) {
	if r == nil {
		return
	}
	r.write(startEntry{
		Type:       "start",
		Workflow:   workflow,
		Digest:     digest,
		StageCount: stageCount,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// WriteStage records the outcome of a single stage.
func (r *Record) WriteStage(index int, name string, status StageStatus, duration time.Duration, stageError string) {
	if r == nil {
		return
	}
	r.write(stageEntry{
		Type:       "stage",
		Index:      index,
		Name:       name,
		Status:     status,
		DurationMS: duration.Milliseconds(),
		Error:      stageError,
	})
}

// WriteComplete records successful run completion.
func (r *Record) WriteComplete(duration time.Duration) {
	if r == nil {
		return
	}
	r.write(completeEntry{
		Type:       "complete",
		Status:     "ok",
		DurationMS: duration.Milliseconds(),
	})
}

// WriteFailed records run failure.
func (r *Record) WriteFailed(failedStage, errorMessage string, duration time.Duration) {
	if r == nil {
		return
	}
	r.write(failedEntry{
		Type:        "failed",
		Status:      "failed",
		Error:       errorMessage,
		FailedStage: failedStage,
		DurationMS:  duration.Milliseconds(),
	})
}

func (r *Record) write(entry any) {
	if err := r.encoder.Encode(entry); err != nil {
		r.logger.Warn("failed to write run record entry", "error", err)
		return
	}
	// Sync after each line so partial records survive a crash and are
	// visible to readers tailing for progress immediately.
	if err := r.file.Sync(); err != nil {
		r.logger.Warn("failed to sync run record", "error", err)
	}
}

// Archive compresses the previous run record (if any) to
// run-<modtime>.jsonl.zst next to it and removes the original.
// Missing previous record is not an error — first runs are normal.
func Archive(caseRoot string) error {
	activePath := Path(caseRoot)

	info, err := os.Stat(activePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat run record: %w", err)
	}

	stamp := info.ModTime().UTC().Format("20060102T150405Z")
	archivePath := filepath.Join(filepath.Dir(activePath), fmt.Sprintf("run-%s.jsonl.zst", stamp))

	source, err := os.Open(activePath)
	if err != nil {
		return fmt.Errorf("opening run record for archive: %w", err)
	}
	defer source.Close()

	destination, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("creating archive %s: %w", archivePath, err)
	}

	// Level 3 default: run records are JSON text, where zstd earns
	// its keep over faster byte-oriented codecs.
	writer, err := zstd.NewWriter(destination)
	if err != nil {
		destination.Close()
		return fmt.Errorf("creating zstd writer: %w", err)
	}

	if _, err := io.Copy(writer, source); err != nil {
		writer.Close()
		destination.Close()
		os.Remove(archivePath)
		return fmt.Errorf("compressing run record: %w", err)
	}
	if err := writer.Close(); err != nil {
		destination.Close()
		os.Remove(archivePath)
		return fmt.Errorf("finishing archive: %w", err)
	}
	if err := destination.Close(); err != nil {
		os.Remove(archivePath)
		return fmt.Errorf("closing archive: %w", err)
	}

	if err := os.Remove(activePath); err != nil {
		return fmt.Errorf("removing archived run record: %w", err)
	}
	return nil
}

// JSONL entry types. Separate structs (rather than one with omitempty
// everywhere) make the wire format explicit and self-documenting.

// startEntry is the first line, written at run start.
type startEntry struct {
	Type       string `json:"type"`
	Workflow   string `json:"workflow"`
	Digest     string `json:"digest"`
	StageCount int    `json:"stage_count"`
	Timestamp  string `json:"timestamp"`
}

// stageEntry is written after each stage completes (or is skipped).
type stageEntry struct {
	Type       string      `json:"type"`
	Index      int         `json:"index"`
	Name       string      `json:"name"`
	Status     StageStatus `json:"status"`
	DurationMS int64       `json:"duration_ms"`
	Error      string      `json:"error,omitempty"`
}

// completeEntry is the last line on successful completion.
type completeEntry struct {
	Type       string `json:"type"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
}

// failedEntry is the last line when the run fails.
type failedEntry struct {
	Type        string `json:"type"`
	Status      string `json:"status"`
	Error       string `json:"error"`
	FailedStage string `json:"failed_stage"`
	DurationMS  int64  `json:"duration_ms"`
}
