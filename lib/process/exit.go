// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. [Fatal]
// centralizes the one legitimate raw-stderr pattern that exists
// before the structured logger is initialized.
package process

import (
	"fmt"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it
// in main() for errors from run() where the structured logger may not
// be initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
