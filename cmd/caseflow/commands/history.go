// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/caseflow-dev/caseflow/cmd/caseflow/cli"
	"github.com/caseflow-dev/caseflow/lib/casedir"
	"github.com/caseflow-dev/caseflow/lib/journal"
	"github.com/caseflow-dev/caseflow/lib/runstate"
)

// historyCommand returns the "history" subcommand: list recorded runs
// from the case journal.
func historyCommand() *cli.Command {
	var (
		casePath   string
		configPath string
		limit      int
		outputJSON bool
	)

	return &cli.Command{
		Name:    "history",
		Summary: "List recorded workflow runs for a case",
		Description: `List the runs recorded in the case journal, newest first: workflow
name, outcome, failed stage if any, duration, and start time. The
journal is written when a run finishes; a run killed hard enough to
skip its own bookkeeping appears only in the JSONL run record.`,
		Usage: "caseflow history [flags]",
		Examples: []cli.Example{
			{
				Description: "Last runs of the case in the current directory",
				Command:     "caseflow history",
			},
			{
				Description: "Last three runs, as JSON",
				Command:     "caseflow history --limit 3 --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("history", pflag.ContinueOnError)
			flagSet.StringVar(&casePath, "case", ".", "case directory to inspect")
			flagSet.StringVar(&configPath, "config", "", "tool configuration file (default: $CASEFLOW_CONFIG, else built-in defaults)")
			flagSet.IntVar(&limit, "limit", 0, "maximum runs to list (default: the journal's history limit)")
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("usage: caseflow history [flags]")
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			caseDir, err := casedir.Open(casePath)
			if err != nil {
				return err
			}

			journalPath := cfg.Journal.Path
			if !filepath.IsAbs(journalPath) {
				journalPath = filepath.Join(caseDir.Root(), runstate.Dir, journalPath)
			}
			if _, err := os.Stat(journalPath); err != nil {
				if os.IsNotExist(err) {
					fmt.Println("no recorded runs")
					return nil
				}
				return err
			}

			hist, err := journal.Open(journalPath, cfg.Journal.HistoryLimit, nil)
			if err != nil {
				return err
			}
			defer hist.Close()

			runs, err := hist.Recent(context.Background(), limit)
			if err != nil {
				return err
			}

			if outputJSON {
				return cli.WriteJSON(runs)
			}

			if len(runs) == 0 {
				fmt.Println("no recorded runs")
				return nil
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "WORKFLOW\tSTATUS\tFAILED STAGE\tDURATION\tSTARTED")
			for _, run := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					run.Workflow,
					run.Status,
					orDash(run.FailedStage),
					run.Duration.Round(time.Second),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
				)
			}
			return tw.Flush()
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
