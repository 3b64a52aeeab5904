// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine executes a workflow definition against a case
// directory: stages run strictly in order, and the first failure of a
// non-optional stage halts the run. There is no retry and no partial
// continuation — a solver stage that ran on stale configuration or a
// half-promoted snapshot poisons everything downstream, so the only
// safe response is to stop and report which stage failed.
//
// The engine touches the case only after the environment guard
// passes. A run rejected by [CheckEnvironment] leaves the case
// directory, the run record, and the journal exactly as they were.
//
// Stage actions split into two kinds. Process actions (run, solver,
// reconstruct) spawn external tools in their own process group so a
// timeout kills the whole tree, not just the shell. Filesystem
// actions (configs, seed, purge, promote) are performed in-process by
// lib/casedir and never outlive the engine.
package engine
