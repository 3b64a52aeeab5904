// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for caseflow packages.
//
// [CaseDir] builds a minimal case-directory fixture: a time-zero
// template (0_orig/), stage configuration templates in system/, and a
// constant/polyMesh placeholder. Individual tests add or remove
// entries to set up the precondition they exercise.
//
// [StubTool] writes an executable shell script into a directory that
// tests prepend to PATH, standing in for external solver tools
// (reconstructPar, potentialFoam, mpirun) in engine tests.
//
// All helpers call t.Fatal on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// CaseDir creates a temporary case directory with the conventional
// fixture layout and returns its path. The directory is removed when
// the test completes.
//
// Layout:
//
//	0_orig/U, 0_orig/p, 0_orig/nuTilda   initial-condition template
//	system/controlDict                    active configuration triple
//	system/fvSchemes
//	system/fvSolution
//	constant/polyMesh/points              mesh placeholder
func CaseDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	for _, field := range []string{"U", "p", "nuTilda"} {
		WriteFile(t, root, filepath.Join("0_orig", field), "template "+field+"\n")
	}
	for _, name := range []string{"controlDict", "fvSchemes", "fvSolution"} {
		WriteFile(t, root, filepath.Join("system", name), "active "+name+"\n")
	}
	WriteFile(t, root, filepath.Join("constant", "polyMesh", "points"), "mesh points\n")

	return root
}

// WriteFile writes content to relative (under root), creating parent
// directories as needed.
func WriteFile(t *testing.T, root, relative, content string) {
	t.Helper()
	path := filepath.Join(root, relative)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// StubTool writes an executable shell script named name into binDir.
// Tests prepend binDir to PATH so engine stages invoke the stub
// instead of a real solver tool.
func StubTool(t *testing.T, binDir, name, script string) {
	t.Helper()
	path := filepath.Join(binDir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("writing stub tool %s: %v", name, err)
	}
}

// ReadFile reads a file relative to root and returns its content.
func ReadFile(t *testing.T, root, relative string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, relative))
	if err != nil {
		t.Fatalf("reading %s: %v", relative, err)
	}
	return string(data)
}
