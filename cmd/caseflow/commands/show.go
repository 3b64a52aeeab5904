// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/pflag"

	"github.com/caseflow-dev/caseflow/cmd/caseflow/cli"
	"github.com/caseflow-dev/caseflow/lib/fingerprint"
	"github.com/caseflow-dev/caseflow/lib/schema/workflow"
	"github.com/caseflow-dev/caseflow/lib/workflowdef"
)

// showCommand returns the "show" subcommand for displaying a workflow
// definition.
func showCommand() *cli.Command {
	var outputJSON bool

	return &cli.Command{
		Name:    "show",
		Summary: "Show a workflow definition",
		Description: `Display a workflow's definition: description, requirements, declared
variables, and the stage sequence. With --json, the parsed definition
is printed as formatted JSON (comments stripped).`,
		Usage: "caseflow show [flags] <workflow-file>",
		Examples: []cli.Example{
			{
				Description: "Summarize a workflow's stages",
				Command:     "caseflow show periodic-hill.jsonc",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("show", pflag.ContinueOnError)
			flagSet.BoolVar(&outputJSON, "json", false, "output the parsed definition as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caseflow show [flags] <workflow-file>")
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading workflow file: %w", err)
			}
			def, err := workflowdef.Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if outputJSON {
				return cli.WriteJSON(def)
			}

			fmt.Printf("%s (%s)\n", workflowName(path), fingerprint.Short(fingerprint.Bytes(data)))
			if def.Description != "" {
				fmt.Printf("  %s\n", def.Description)
			}
			if def.Requires != nil && len(def.Requires.Env) > 0 {
				fmt.Printf("\nRequires environment:\n")
				for _, variable := range def.Requires.Env {
					fmt.Printf("  %s\n", variable)
				}
			}
			if len(def.Variables) > 0 {
				names := make([]string, 0, len(def.Variables))
				for name := range def.Variables {
					names = append(names, name)
				}
				sort.Strings(names)
				fmt.Printf("\nVariables:\n")
				for _, name := range names {
					variable := def.Variables[name]
					line := "  " + name
					if variable.Required {
						line += " (required)"
					} else if variable.Default != "" {
						line += fmt.Sprintf(" (default %q)", variable.Default)
					}
					if variable.Description != "" {
						line += " — " + variable.Description
					}
					fmt.Println(line)
				}
			}
			fmt.Printf("\nStages (%d):\n", len(def.Stages))
			for index, stage := range def.Stages {
				fmt.Printf("  %2d. %-24s %s\n", index+1, stage.Name, stageKind(stage))
			}
			if len(def.OnFailure) > 0 {
				fmt.Printf("\nOn failure (%d):\n", len(def.OnFailure))
				for index, stage := range def.OnFailure {
					fmt.Printf("  %2d. %-24s %s\n", index+1, stage.Name, stageKind(stage))
				}
			}
			return nil
		},
	}
}

// stageKind names a stage's action for the summary listing.
func stageKind(stage workflow.Stage) string {
	switch {
	case stage.Run != "":
		return "run"
	case stage.Solver != nil:
		if stage.Solver.Processors > 1 {
			return fmt.Sprintf("solver %s (%d procs)", stage.Solver.Application, stage.Solver.Processors)
		}
		return "solver " + stage.Solver.Application
	case stage.Reconstruct != nil:
		return "reconstruct"
	case stage.Configs != nil:
		return fmt.Sprintf("configs (%d files)", len(stage.Configs.Files))
	case stage.Seed != nil:
		return "seed " + stage.Seed.From
	case stage.Purge != nil:
		return "purge"
	case stage.Promote != nil:
		return "promote " + stage.Promote.Snapshot
	}
	return "(no action)"
}
