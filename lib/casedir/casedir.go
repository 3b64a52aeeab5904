// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package casedir

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TimeZeroDir is the conventional name of the time-zero state
// directory consumed by the next solver invocation.
const TimeZeroDir = "0"

// processorPrefix is the naming convention for decomposed per-MPI-rank
// result directories (processor0, processor1, ...).
const processorPrefix = "processor"

// Case is a handle on a case directory. All paths in the API are
// relative to the case root; the zero value is not usable — construct
// with [Open].
type Case struct {
	root string
}

// Open validates that root exists and is a directory, and returns a
// Case rooted there. No further structure is required at open time —
// a fresh case may contain nothing but a mesh-description input and
// template files.
func Open(root string) (Case, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Case{}, fmt.Errorf("opening case directory: %w", err)
	}
	if !info.IsDir() {
		return Case{}, fmt.Errorf("case path %s is not a directory", root)
	}
	return Case{root: root}, nil
}

// Root returns the case root path as passed to Open.
func (c Case) Root() string {
	return c.root
}

// Path resolves a case-relative path against the root. The relative
// path must not escape the case directory.
func (c Case) Path(relative string) (string, error) {
	if filepath.IsAbs(relative) {
		return "", fmt.Errorf("path %q must be relative to the case directory", relative)
	}
	cleaned := filepath.Clean(relative)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the case directory", relative)
	}
	return filepath.Join(c.root, cleaned), nil
}

// copyFile copies a regular file, preserving its permission bits. The
// destination is truncated if it exists; parent directories are
// created as needed.
func copyFile(source, destination string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("stat %s: %w", source, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", source)
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(destination), err)
	}

	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening %s: %w", source, err)
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", destination, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", source, destination, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", destination, err)
	}
	return nil
}

// copyTree recursively copies the directory at source to destination.
// Regular files and directories only; anything else (symlinks, device
// nodes) is an error — case templates contain neither, and silently
// following a symlink out of the case directory would be worse than
// failing.
func copyTree(source, destination string) error {
	return filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relative, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		target := filepath.Join(destination, relative)

		switch {
		case entry.IsDir():
			info, err := entry.Info()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			return nil
		case entry.Type().IsRegular():
			return copyFile(path, target)
		default:
			return fmt.Errorf("%s: unsupported file type %v", path, entry.Type())
		}
	})
}
