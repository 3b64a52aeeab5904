// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package casedir

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultStrip lists the subdirectories removed from a promoted
// snapshot by default. polyMesh is the per-step mesh copy (the case's
// permanent mesh lives in constant/polyMesh and must not be shadowed)
// and uniform holds per-run administrative data meaningless as an
// initial condition.
var DefaultStrip = []string{"polyMesh", "uniform"}

// SnapshotError reports a snapshot promotion whose precondition
// failed: the expected result-time directory is absent or empty,
// usually because the solver failed or produced a different time
// value than the workflow expects.
type SnapshotError struct {
	// Snapshot is the requested snapshot ("500" or "latest").
	Snapshot string

	// Reason describes the failed precondition.
	Reason string
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %q: %s", e.Snapshot, e.Reason)
}

// PromoteSnapshot makes a result snapshot the new time-zero state:
// verify the snapshot directory exists and is non-empty, delete the
// current time-zero directory, rename the snapshot into its place,
// and strip the listed subdirectories from it. A nil strip list means
// [DefaultStrip]; an explicit empty list strips nothing.
//
// snapshot is either a literal time directory name ("500") or
// "latest" for the numerically greatest result time.
//
// Returns the name of the promoted time directory. On a precondition
// failure the case is left exactly as it was — nothing is deleted
// before the snapshot is known to be usable.
func (c Case) PromoteSnapshot(snapshot string, strip []string) (string, error) {
	name := snapshot
	if snapshot == "latest" {
		latest, err := c.LatestTime()
		if err != nil {
			return "", err
		}
		name = latest.Name
	}

	source, err := c.Path(name)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &SnapshotError{Snapshot: snapshot, Reason: fmt.Sprintf("result-time directory %s does not exist", name)}
		}
		return "", fmt.Errorf("reading snapshot %s: %w", name, err)
	}
	if len(entries) == 0 {
		return "", &SnapshotError{Snapshot: snapshot, Reason: fmt.Sprintf("result-time directory %s is empty", name)}
	}

	timeZero, err := c.Path(TimeZeroDir)
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(timeZero); err != nil {
		return "", fmt.Errorf("removing old time-zero state: %w", err)
	}
	if err := os.Rename(source, timeZero); err != nil {
		return "", fmt.Errorf("promoting %s to time-zero: %w", name, err)
	}

	if strip == nil {
		strip = DefaultStrip
	}
	for _, subdir := range strip {
		if err := os.RemoveAll(filepath.Join(timeZero, subdir)); err != nil {
			return "", fmt.Errorf("stripping %s from promoted snapshot: %w", subdir, err)
		}
	}

	return name, nil
}
