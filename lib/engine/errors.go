// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import "fmt"

// EnvironmentError reports a required environment variable that is
// unset or empty. It is returned before any stage runs and before any
// file in the case is touched.
type EnvironmentError struct {
	Variable string
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("required environment variable %s is not set; activate the solver environment before running", e.Variable)
}

// StageError wraps a failure with the stage it occurred in. The
// wrapped error is the stage's own failure (non-zero exit, snapshot
// precondition violation, filesystem error).
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
