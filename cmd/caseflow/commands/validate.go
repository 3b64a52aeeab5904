// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/caseflow-dev/caseflow/cmd/caseflow/cli"
	"github.com/caseflow-dev/caseflow/lib/workflowdef"
)

// validateCommand returns the "validate" subcommand for checking
// workflow files without running them.
func validateCommand() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Summary: "Validate a workflow JSONC file",
		Description: `Validate a workflow definition file. Checks that the JSONC is
well-formed and conforms to the workflow schema: at least one stage,
each stage has a name and exactly one action, timeouts parse, config
installs use relative paths, and so on.

This is a purely local check — no tools are invoked and the case
directory is not touched. Exits 2 when issues are found, so scripts
can distinguish a broken workflow file from a failed run (exit 1).

Workflow files use JSONC: JSON extended with // line comments,
/* block comments */, and trailing commas. Comments are stripped
before validation.`,
		Usage: "caseflow validate <workflow-file>",
		Examples: []cli.Example{
			{
				Description: "Validate a workflow definition",
				Command:     "caseflow validate periodic-hill.jsonc",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caseflow validate <workflow-file>")
			}

			path := args[0]
			def, err := workflowdef.ReadFile(path)
			if err != nil {
				return err
			}

			issues := workflowdef.Validate(def)
			if len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintf(os.Stderr, "  - %s\n", issue)
				}
				fmt.Fprintf(os.Stderr, "%s: %d validation issue(s) found\n", path, len(issues))
				return &cli.ExitError{Code: 2}
			}

			fmt.Fprintf(os.Stdout, "%s: valid\n", path)
			return nil
		},
	}
}
