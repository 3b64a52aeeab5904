// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// NewCommandLogger creates a structured logger for CLI command
// operations. When stderr is a terminal, uses slog.TextHandler for
// human-readable output. When stderr is piped or redirected (batch
// schedulers, CI, scripts), uses slog.JSONHandler for
// machine-parseable output.
//
// The level defaults to info; CASEFLOW_LOG_LEVEL accepts any value
// slog.Level parses ("debug", "warn", "error").
//
// Callers scope the logger with command-specific context via With():
//
//	logger := cli.NewCommandLogger().With(
//	    "command", "run",
//	    "workflow", name,
//	)
func NewCommandLogger() *slog.Logger {
	level := slog.LevelInfo
	if value := os.Getenv("CASEFLOW_LOG_LEVEL"); value != "" {
		// An unparseable level falls back to info rather than failing
		// the command over a logging knob.
		level.UnmarshalText([]byte(value))
	}

	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
