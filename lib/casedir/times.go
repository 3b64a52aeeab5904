// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package casedir

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// TimeDir is a numbered result-time directory: solver output captured
// at a specific simulated time, named by that value.
type TimeDir struct {
	// Name is the directory name exactly as it appears on disk
	// ("500", "0.005"). Renames must use Name, not a reformatted
	// Value — "0.0050" and "0.005" are different directories.
	Name string

	// Value is the parsed simulated time.
	Value float64
}

// TimeDirs returns the result-time directories in the case, sorted
// ascending by simulated time. The time-zero directory is excluded:
// it is the input to the next run, never a result. Non-numeric
// directory names (system, constant, 0_orig, processorN) are ignored.
func (c Case) TimeDirs() ([]TimeDir, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("reading case directory: %w", err)
	}

	var times []TimeDir
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == TimeZeroDir {
			continue
		}
		value, err := strconv.ParseFloat(entry.Name(), 64)
		if err != nil {
			continue
		}
		times = append(times, TimeDir{Name: entry.Name(), Value: value})
	}

	sort.Slice(times, func(i, j int) bool { return times[i].Value < times[j].Value })
	return times, nil
}

// LatestTime returns the result-time directory with the greatest
// simulated time. Returns a SnapshotError when the case has no result
// times — the caller asked to consume solver output that was never
// produced.
func (c Case) LatestTime() (TimeDir, error) {
	times, err := c.TimeDirs()
	if err != nil {
		return TimeDir{}, err
	}
	if len(times) == 0 {
		return TimeDir{}, &SnapshotError{Snapshot: "latest", Reason: "case has no result-time directories"}
	}
	return times[len(times)-1], nil
}

// ProcessorDirs returns the names of decomposed per-MPI-rank result
// directories (processor0, processor1, ...), sorted by rank.
func (c Case) ProcessorDirs() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("reading case directory: %w", err)
	}

	type rankDir struct {
		name string
		rank int
	}
	var dirs []rankDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		suffix, found := strings.CutPrefix(entry.Name(), processorPrefix)
		if !found {
			continue
		}
		rank, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		dirs = append(dirs, rankDir{name: entry.Name(), rank: rank})
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].rank < dirs[j].rank })
	names := make([]string, len(dirs))
	for index, dir := range dirs {
		names[index] = dir.name
	}
	return names, nil
}

// RemoveProcessorDirs deletes every processorN directory. Decomposed
// results are transient: they exist only between a parallel solver
// run and its reconstruction, and anything left behind would be
// re-read (stale) by the next decomposition.
//
// Returns the number of directories removed.
func (c Case) RemoveProcessorDirs() (int, error) {
	dirs, err := c.ProcessorDirs()
	if err != nil {
		return 0, err
	}
	for _, name := range dirs {
		path, err := c.Path(name)
		if err != nil {
			return 0, err
		}
		if err := os.RemoveAll(path); err != nil {
			return 0, fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return len(dirs), nil
}
