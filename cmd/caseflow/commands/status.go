// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/caseflow-dev/caseflow/cmd/caseflow/cli"
	"github.com/caseflow-dev/caseflow/lib/casedir"
	"github.com/caseflow-dev/caseflow/lib/runstate"
)

// statusCommand returns the "status" subcommand: inspect a case
// directory and the state of its most recent run.
func statusCommand() *cli.Command {
	var (
		casePath   string
		outputJSON bool
	)

	return &cli.Command{
		Name:    "status",
		Summary: "Inspect a case directory",
		Description: `Show where a case stands: whether the mesh and time-zero state are
present, which result time directories exist, whether decomposed
processor directories are lying around (the signature of a failed or
interrupted parallel run), and the outcome of the most recent workflow
run if one has been recorded.`,
		Usage: "caseflow status [flags]",
		Examples: []cli.Example{
			{
				Description: "Status of the case in the current directory",
				Command:     "caseflow status",
			},
			{
				Description: "Status of another case, as JSON",
				Command:     "caseflow status --case runs/hill-re5600 --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flagSet.StringVar(&casePath, "case", ".", "case directory to inspect")
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("usage: caseflow status [flags]")
			}

			caseDir, err := casedir.Open(casePath)
			if err != nil {
				return err
			}
			status, err := caseDir.Inspect()
			if err != nil {
				return err
			}

			state, stateErr := runstate.Read(caseDir.Root())
			haveState := stateErr == nil
			if stateErr != nil && !errors.Is(stateErr, fs.ErrNotExist) {
				return stateErr
			}

			if outputJSON {
				output := struct {
					Case    casedir.Status  `json:"case"`
					LastRun *runstate.State `json:"last_run,omitempty"`
				}{Case: status}
				if haveState {
					output.LastRun = &state
				}
				return cli.WriteJSON(output)
			}

			fmt.Printf("case %s\n", caseDir.Root())
			fmt.Printf("  mesh:       %s\n", presence(status.MeshPresent))
			if status.TimeZeroPresent {
				fmt.Printf("  time zero:  present (%d fields)\n", len(status.TimeZeroFields))
			} else {
				fmt.Printf("  time zero:  missing\n")
			}
			if len(status.TimeDirs) > 0 {
				fmt.Printf("  time dirs:  %s\n", strings.Join(status.TimeDirs, ", "))
			}
			if len(status.ProcessorDirs) > 0 {
				fmt.Printf("  processors: %d decomposed directories (run not reconstructed)\n", len(status.ProcessorDirs))
			}
			if len(status.LogFiles) > 0 {
				fmt.Printf("  logs:       %s\n", strings.Join(status.LogFiles, ", "))
			}

			if haveState {
				fmt.Printf("\nlast run: %s (%s)\n", state.Workflow, state.Status)
				if state.Stage != "" {
					fmt.Printf("  stage:   %d/%d %s\n", state.StageIndex+1, state.StageCount, state.Stage)
				}
				if state.Error != "" {
					fmt.Printf("  error:   %s\n", state.Error)
				}
				fmt.Printf("  updated: %s\n", state.UpdatedAt.Local().Format(time.RFC3339))
			} else {
				fmt.Printf("\nno recorded runs\n")
			}
			return nil
		},
	}
}

func presence(present bool) string {
	if present {
		return "present"
	}
	return "missing"
}
