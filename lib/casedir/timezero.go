// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package casedir

import (
	"fmt"
	"os"
	"path/filepath"
)

// SeedTimeZero populates the time-zero directory from a template
// directory (conventionally "0_orig"). Any existing destination is
// removed first, so seeding is idempotent: re-seeding a processed
// case yields the same state as seeding a fresh one, never a merge of
// old and new fields.
//
// The template must exist and contain at least one entry — seeding
// from an empty or missing template would hand the next solver an
// initial state it cannot run from.
func (c Case) SeedTimeZero(from, to string) error {
	if to == "" {
		to = TimeZeroDir
	}

	source, err := c.Path(from)
	if err != nil {
		return err
	}
	destination, err := c.Path(to)
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return fmt.Errorf("reading seed template %s: %w", from, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("seed template %s is empty", from)
	}

	if err := os.RemoveAll(destination); err != nil {
		return fmt.Errorf("clearing %s: %w", to, err)
	}
	if err := copyTree(source, destination); err != nil {
		return fmt.Errorf("seeding %s from %s: %w", to, from, err)
	}
	return nil
}

// PurgeFields deletes entries directly inside the time-zero directory
// whose names match any of the glob patterns. Matching directories
// are removed recursively. A pattern that matches nothing is not an
// error — the field a purge targets may belong to a tool that did not
// run (e.g., phi before the first potentialFoam pass).
//
// Returns the names of the removed entries.
func (c Case) PurgeFields(patterns []string) ([]string, error) {
	timeZero, err := c.Path(TimeZeroDir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(timeZero)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", TimeZeroDir, err)
	}

	var removed []string
	for _, entry := range entries {
		for _, pattern := range patterns {
			matched, err := filepath.Match(pattern, entry.Name())
			if err != nil {
				return removed, fmt.Errorf("purge pattern %q: %w", pattern, err)
			}
			if !matched {
				continue
			}
			if err := os.RemoveAll(filepath.Join(timeZero, entry.Name())); err != nil {
				return removed, fmt.Errorf("purging %s: %w", entry.Name(), err)
			}
			removed = append(removed, entry.Name())
			break
		}
	}
	return removed, nil
}
