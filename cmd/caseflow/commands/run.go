// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/caseflow-dev/caseflow/cmd/caseflow/cli"
	"github.com/caseflow-dev/caseflow/lib/casedir"
	"github.com/caseflow-dev/caseflow/lib/config"
	"github.com/caseflow-dev/caseflow/lib/engine"
	"github.com/caseflow-dev/caseflow/lib/fingerprint"
	"github.com/caseflow-dev/caseflow/lib/journal"
	"github.com/caseflow-dev/caseflow/lib/runlog"
	"github.com/caseflow-dev/caseflow/lib/runstate"
	"github.com/caseflow-dev/caseflow/lib/workflowdef"
)

// runCommand returns the "run" subcommand: execute a workflow file
// against a case directory.
func runCommand() *cli.Command {
	var (
		casePath   string
		configPath string
		params     []string
	)

	return &cli.Command{
		Name:    "run",
		Summary: "Run a workflow against a case directory",
		Description: `Execute a workflow definition against a case directory. Stages run
strictly in order; the first failing non-optional stage halts the run
and its name is reported. SIGINT and SIGTERM interrupt the active
stage's whole process tree and fail the run.

Before anything runs, the workflow's environment requirements are
checked (for OpenFOAM-derived toolchains this is typically WM_PROJECT).
A failed requirement leaves the case directory untouched.

Progress is written to the console, a JSONL run record to
<case>/.caseflow/run.jsonl, and a history row to the case journal on
completion.`,
		Usage: "caseflow run [flags] <workflow-file>",
		Examples: []cli.Example{
			{
				Description: "Run with the case in the current directory",
				Command:     "caseflow run periodic-hill.jsonc",
			},
			{
				Description: "Run against another case with a parameter override",
				Command:     "caseflow run periodic-hill.jsonc --case runs/hill-re5600 --param PROCS=8",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			flagSet.StringVar(&casePath, "case", ".", "case directory the workflow operates on")
			flagSet.StringVar(&configPath, "config", "", "tool configuration file (default: $CASEFLOW_CONFIG, else built-in defaults)")
			flagSet.StringArrayVar(&params, "param", nil, "workflow parameter as NAME=VALUE (repeatable)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: caseflow run [flags] <workflow-file>")
			}
			return runWorkflow(args[0], casePath, configPath, params)
		},
	}
}

func runWorkflow(workflowPath, casePath, configPath string, params []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(workflowPath)
	if err != nil {
		return fmt.Errorf("reading workflow file: %w", err)
	}
	digest := fingerprint.Bytes(data)

	def, err := workflowdef.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", workflowPath, err)
	}

	if issues := workflowdef.Validate(def); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		fmt.Fprintf(os.Stderr, "%s: %d validation issue(s) found\n", workflowPath, len(issues))
		return &cli.ExitError{Code: 2}
	}

	caseDir, err := casedir.Open(casePath)
	if err != nil {
		return err
	}

	parameters, err := parseParams(params)
	if err != nil {
		return err
	}
	variables, err := workflowdef.ResolveVariables(def.Variables, parameters, os.Getenv)
	if err != nil {
		return err
	}

	name := workflowName(workflowPath)
	logger := cli.NewCommandLogger().With("command", "run", "workflow", name)

	// The environment guard runs before the run record or journal are
	// touched: a rejected run leaves no trace in the case.
	guard := engine.New(engine.Options{Case: caseDir, Config: cfg, Logger: logger})
	if err := guard.CheckEnvironment(def.Requires); err != nil {
		return err
	}

	if cfg.RunRecord.ArchivePrevious == nil || *cfg.RunRecord.ArchivePrevious {
		if err := runlog.Archive(caseDir.Root()); err != nil {
			return fmt.Errorf("archiving previous run record: %w", err)
		}
	}
	record, err := runlog.New(caseDir.Root(), logger)
	if err != nil {
		return err
	}
	defer record.Close()

	journalPath := cfg.Journal.Path
	if !filepath.IsAbs(journalPath) {
		journalPath = filepath.Join(caseDir.Root(), runstate.Dir, journalPath)
	}
	// The journal is bookkeeping; the run itself matters more. A case
	// directory on a filesystem that SQLite cannot lock should still
	// run, just without history.
	hist, err := journal.Open(journalPath, cfg.Journal.HistoryLimit, logger)
	if err != nil {
		logger.Warn("opening run journal failed, continuing without history",
			"path", journalPath, "error", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	// SIGINT/SIGTERM cancel the context, which kills the active
	// stage's process group and fails the run.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.New(engine.Options{
		Case:    caseDir,
		Config:  cfg,
		Logger:  logger,
		Record:  record,
		Journal: hist,
	})
	return eng.Run(ctx, name, def, fingerprint.Format(digest), variables)
}

// loadConfig resolves tool configuration: an explicit --config path
// wins over the CASEFLOW_CONFIG environment variable, which wins over
// built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// parseParams converts NAME=VALUE strings into a map.
func parseParams(params []string) (map[string]string, error) {
	if len(params) == 0 {
		return nil, nil
	}
	result := make(map[string]string, len(params))
	for _, param := range params {
		name, value, found := strings.Cut(param, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid --param %q: expected NAME=VALUE", param)
		}
		result[name] = value
	}
	return result, nil
}

// workflowName derives the run's display name from the workflow file
// path: base name without extension.
func workflowName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
