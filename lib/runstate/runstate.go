// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package runstate provides atomic state-file operations for tracking
// a workflow run's progress through its stages. The engine writes the
// state after every stage transition; the status command reads it to
// attribute exactly where a run stopped, instead of leaving the
// operator to infer the failure point from the directory tree.
//
// The state file is written atomically (write to temporary file,
// fsync, rename) so readers never see a partial or corrupt state,
// even if the engine is killed mid-write.
package runstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Dir is the bookkeeping directory inside a case, holding the state
// file, the run record, and archived run records.
const Dir = ".caseflow"

// FileName is the state file name inside [Dir].
const FileName = "state.json"

// Run statuses recorded in the state file.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// State records a workflow run's progress. Written before the first
// stage, after every stage completion, and at termination.
type State struct {
	// Workflow is the workflow description or file name being run.
	Workflow string `json:"workflow"`

	// Digest is the hex BLAKE3 digest of the workflow definition
	// bytes. A status reader can tell whether the case was produced
	// by the workflow revision they are holding.
	Digest string `json:"digest"`

	// Status is one of StatusRunning, StatusComplete, StatusFailed.
	Status string `json:"status"`

	// Stage is the name of the stage most recently completed (or, for
	// StatusFailed, the stage that failed). Empty before any stage
	// has finished.
	Stage string `json:"stage,omitempty"`

	// StageIndex is the zero-based index of Stage. -1 before any
	// stage has finished.
	StageIndex int `json:"stage_index"`

	// StageCount is the total number of stages in the workflow.
	StageCount int `json:"stage_count"`

	// Error is the failure message for StatusFailed.
	Error string `json:"error,omitempty"`

	// UpdatedAt is when this state was written.
	UpdatedAt time.Time `json:"updated_at"`
}

// Path returns the state file path for a case root.
func Path(caseRoot string) string {
	return filepath.Join(caseRoot, Dir, FileName)
}

// Write atomically writes the state file for a case, stamping
// UpdatedAt with the current time. The bookkeeping directory is
// created if needed. The file is written to a temporary location in
// the same directory, fsynced, and renamed into place.
func Write(caseRoot string, state State) error {
	if err := os.MkdirAll(filepath.Join(caseRoot, Dir), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", Dir, err)
	}

	state.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run state: %w", err)
	}
	data = append(data, '\n')

	path := Path(caseRoot)
	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating temporary state file: %w", err)
	}

	// Write, sync, close — in that order. If any step fails, remove
	// the temporary file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary state file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary state file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary state file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming state file into place: %w", err)
	}

	// Sync the parent directory so the rename survives power loss.
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}

// Read reads and parses the state file for a case. When the file does
// not exist, the returned error wraps os.ErrNotExist (testable with
// errors.Is).
func Read(caseRoot string) (State, error) {
	data, err := os.ReadFile(Path(caseRoot))
	if err != nil {
		return State{}, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parsing state file %s: %w", Path(caseRoot), err)
	}
	return state, nil
}
