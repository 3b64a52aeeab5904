// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package casedir

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Status is a point-in-time inspection of a case directory, used by
// the status command to show an operator where a case stands without
// spelunking the directory tree by hand.
type Status struct {
	// MeshPresent reports whether constant/polyMesh exists and is
	// non-empty — the solver-native mesh produced by the mesh stage.
	MeshPresent bool `json:"mesh_present"`

	// TimeZeroPresent reports whether the 0/ directory exists.
	TimeZeroPresent bool `json:"time_zero_present"`

	// TimeZeroFields lists the field files in 0/, sorted.
	TimeZeroFields []string `json:"time_zero_fields,omitempty"`

	// TimeDirs lists result-time directory names, ascending.
	TimeDirs []string `json:"time_dirs,omitempty"`

	// ProcessorDirs lists decomposed result directories. Non-empty
	// outside a running parallel solve means a reconstruction never
	// happened — usually the signature of a failed run.
	ProcessorDirs []string `json:"processor_dirs,omitempty"`

	// LogFiles lists log.* files in the case root, sorted.
	LogFiles []string `json:"log_files,omitempty"`
}

// Inspect gathers a Status for the case.
func (c Case) Inspect() (Status, error) {
	var status Status

	meshEntries, err := os.ReadDir(filepath.Join(c.root, "constant", "polyMesh"))
	if err == nil && len(meshEntries) > 0 {
		status.MeshPresent = true
	}

	timeZero := filepath.Join(c.root, TimeZeroDir)
	if entries, err := os.ReadDir(timeZero); err == nil {
		status.TimeZeroPresent = true
		for _, entry := range entries {
			status.TimeZeroFields = append(status.TimeZeroFields, entry.Name())
		}
		sort.Strings(status.TimeZeroFields)
	}

	times, err := c.TimeDirs()
	if err != nil {
		return Status{}, err
	}
	for _, time := range times {
		status.TimeDirs = append(status.TimeDirs, time.Name)
	}

	if status.ProcessorDirs, err = c.ProcessorDirs(); err != nil {
		return Status{}, err
	}

	rootEntries, err := os.ReadDir(c.root)
	if err != nil {
		return Status{}, err
	}
	for _, entry := range rootEntries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "log.") {
			status.LogFiles = append(status.LogFiles, entry.Name())
		}
	}
	sort.Strings(status.LogFiles)

	return status, nil
}
