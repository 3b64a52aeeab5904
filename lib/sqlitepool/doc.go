// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool backing the
// run journal. It wraps zombiezen.com/go/sqlite with defaults suited
// to a CLI that writes rarely and reads from concurrent status
// commands: WAL journal mode, NORMAL synchronous, and a busy timeout
// so a `caseflow history` invocation does not fail with SQLITE_BUSY
// while a run is recording its result.
//
// Callers [Pool.Take] a connection, perform work, and [Pool.Put] it
// back. Connections are NOT safe for concurrent use; each goroutine
// must hold its own connection for the duration of its work.
//
// The package is intentionally thin: it applies standard pragmas and
// exposes the underlying zombiezen types directly. Callers write SQL
// and use sqlitex.Execute; there is no query builder.
package sqlitepool
