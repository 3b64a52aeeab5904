// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete caseflow CLI command tree.
package commands

import (
	"fmt"

	"github.com/caseflow-dev/caseflow/cmd/caseflow/cli"
	"github.com/caseflow-dev/caseflow/lib/version"
)

// Root builds and returns the complete caseflow CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "caseflow",
		Description: `Caseflow: simulation case workflow runner.

Run multi-stage solver workflows (mesh, initialize, solve, reconstruct,
promote) against a case directory, with per-stage logging, a crash-safe
run record, and a queryable run history.`,
		Subcommands: []*cli.Command{
			runCommand(),
			validateCommand(),
			showCommand(),
			statusCommand(),
			historyCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("caseflow %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Run a workflow against the current directory",
				Command:     "caseflow run periodic-hill.jsonc",
			},
			{
				Description: "Validate a workflow file without running it",
				Command:     "caseflow validate periodic-hill.jsonc",
			},
			{
				Description: "Inspect the state of a case directory",
				Command:     "caseflow status --case runs/hill-re5600",
			},
		},
	}
}
