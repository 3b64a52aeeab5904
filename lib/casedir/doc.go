// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package casedir implements the case-directory state machine: the
// file-system transitions between solver stages of a CFD workflow.
//
// A case directory holds the solver package's on-disk state: the
// active configuration files in system/, the time-zero initial
// condition snapshot in 0/, numbered result-time directories produced
// by solver runs, and transient per-MPI-rank processorN/ directories
// that exist only between a parallel run and its reconstruction.
//
// The lifecycle rule every stage transition follows:
//
//	produce → reconstruct → delete transient parallel state →
//	delete old time-zero → promote new snapshot → strip metadata
//
// Unlike the shell scripts this package replaces, every destructive
// transition checks its preconditions first: promoting a snapshot that
// does not exist (because a solver failed or wrote a different time
// value) surfaces as a typed [SnapshotError] instead of a confusing
// downstream failure.
//
// The package never inspects field file contents — formats belong to
// the solver package.
package casedir
