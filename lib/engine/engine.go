// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/caseflow-dev/caseflow/lib/casedir"
	"github.com/caseflow-dev/caseflow/lib/config"
	"github.com/caseflow-dev/caseflow/lib/journal"
	"github.com/caseflow-dev/caseflow/lib/runlog"
	"github.com/caseflow-dev/caseflow/lib/runstate"
	"github.com/caseflow-dev/caseflow/lib/schema/workflow"
	"github.com/caseflow-dev/caseflow/lib/workflowdef"
)

// Options configures an Engine. Case and Config are required.
type Options struct {
	// Case is the case directory the workflow operates on.
	Case casedir.Case

	// Config is the tool configuration (launcher, promotion strip
	// list, journal limits).
	Config *config.Config

	// Logger receives operational messages. If nil, a no-op logger is
	// used.
	Logger *slog.Logger

	// Record receives the JSONL run record. Nil disables recording.
	Record *runlog.Record

	// Journal receives the completed-run row. Nil disables history.
	Journal *journal.Journal

	// Output receives progress lines and, for stages without a log
	// file, tool output. Defaults to os.Stdout.
	Output io.Writer

	// LookupEnv resolves environment variables for the environment
	// guard. Defaults to os.LookupEnv. Tests substitute their own.
	LookupEnv func(string) (string, bool)
}

// Engine runs workflows against a single case directory.
type Engine struct {
	caseDir   casedir.Case
	cfg       *config.Config
	logger    *slog.Logger
	record    *runlog.Record
	journal   *journal.Journal
	output    io.Writer
	lookupEnv func(string) (string, bool)
}

// New creates an Engine from options.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	lookupEnv := opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{
		caseDir:   opts.Case,
		cfg:       cfg,
		logger:    logger,
		record:    opts.Record,
		journal:   opts.Journal,
		output:    output,
		lookupEnv: lookupEnv,
	}
}

// CheckEnvironment verifies the workflow's environment preconditions.
// Returns an *EnvironmentError naming the first unset or empty
// variable. Callers run this before creating the run record so a
// rejected run leaves no trace in the case.
func (e *Engine) CheckEnvironment(requires *workflow.Requires) error {
	if requires == nil {
		return nil
	}
	for _, variable := range requires.Env {
		value, ok := e.lookupEnv(variable)
		if !ok || value == "" {
			return &EnvironmentError{Variable: variable}
		}
	}
	return nil
}

// Run executes every stage of the definition in order, halting on the
// first non-optional failure. name identifies the workflow in logs and
// history; digest is the fingerprint of the definition file; variables
// is the fully resolved substitution map (see
// workflowdef.ResolveVariables).
//
// The caller is expected to have run [Engine.CheckEnvironment] and
// workflowdef.Validate already; Run re-checks the environment guard as
// a final gate but assumes a structurally valid definition.
func (e *Engine) Run(ctx context.Context, name string, def *workflow.Definition, digest string, variables map[string]string) error {
	if err := e.CheckEnvironment(def.Requires); err != nil {
		return err
	}

	start := time.Now()
	total := len(def.Stages)

	fmt.Fprintf(e.output, "[caseflow] %s: starting (%d stages)\n", name, total)
	e.record.WriteStart(name, digest, total)

	e.writeState(runstate.State{
		Workflow:   name,
		Digest:     digest,
		Status:     runstate.StatusRunning,
		StageIndex: -1,
		StageCount: total,
	})

	var stageRecords []journal.StageRecord

	for index, stage := range def.Stages {
		expanded, err := workflowdef.ExpandStage(stage, variables)
		if err != nil {
			err = fmt.Errorf("expanding stage: %w", err)
			return e.fail(ctx, name, def, digest, variables, start, stageRecords, stage.Name, index, 0, err)
		}

		e.writeState(runstate.State{
			Workflow:   name,
			Digest:     digest,
			Status:     runstate.StatusRunning,
			Stage:      expanded.Name,
			StageIndex: index,
			StageCount: total,
		})

		result := e.executeStage(ctx, expanded, def.Log)

		switch result.status {
		case runlog.StageSkipped:
			fmt.Fprintf(e.output, "[caseflow] stage %d/%d: %s... skipped (guard condition not met)\n",
				index+1, total, expanded.Name)
			e.record.WriteStage(index, expanded.Name, runlog.StageSkipped, result.duration, "")
			stageRecords = append(stageRecords, journal.StageRecord{
				Index:      index,
				Name:       expanded.Name,
				Status:     string(runlog.StageSkipped),
				DurationMS: result.duration.Milliseconds(),
			})

		case runlog.StageFailed:
			if expanded.Optional {
				fmt.Fprintf(e.output, "[caseflow] stage %d/%d: %s... failed (optional, continuing): %v\n",
					index+1, total, expanded.Name, result.err)
				e.record.WriteStage(index, expanded.Name, runlog.StageFailed,
					result.duration, result.err.Error())
				stageRecords = append(stageRecords, journal.StageRecord{
					Index:      index,
					Name:       expanded.Name,
					Status:     "failed (optional)",
					DurationMS: result.duration.Milliseconds(),
					Error:      result.err.Error(),
				})
				continue
			}
			fmt.Fprintf(e.output, "[caseflow] stage %d/%d: %s... failed: %v\n",
				index+1, total, expanded.Name, result.err)
			stageRecords = append(stageRecords, journal.StageRecord{
				Index:      index,
				Name:       expanded.Name,
				Status:     string(runlog.StageFailed),
				DurationMS: result.duration.Milliseconds(),
				Error:      result.err.Error(),
			})
			return e.fail(ctx, name, def, digest, variables, start, stageRecords,
				expanded.Name, index, result.duration, result.err)

		default:
			fmt.Fprintf(e.output, "[caseflow] stage %d/%d: %s... ok (%s)\n",
				index+1, total, expanded.Name, formatDuration(result.duration))
			e.record.WriteStage(index, expanded.Name, runlog.StageOK, result.duration, "")
			stageRecords = append(stageRecords, journal.StageRecord{
				Index:      index,
				Name:       expanded.Name,
				Status:     string(runlog.StageOK),
				DurationMS: result.duration.Milliseconds(),
			})
		}
	}

	totalDuration := time.Since(start)
	fmt.Fprintf(e.output, "[caseflow] %s: complete (%s)\n", name, formatDuration(totalDuration))
	e.record.WriteComplete(totalDuration)
	e.writeState(runstate.State{
		Workflow:   name,
		Digest:     digest,
		Status:     runstate.StatusComplete,
		StageIndex: total - 1,
		StageCount: total,
	})
	e.recordJournal(ctx, journal.Run{
		Workflow:  name,
		Digest:    digest,
		Status:    "complete",
		StartedAt: start.UTC(),
		Duration:  totalDuration,
		Stages:    stageRecords,
	})
	return nil
}

// fail handles a terminal stage failure: the stage record, the
// on_failure stages, the state file, the run record trailer, the
// journal row, and the returned StageError.
func (e *Engine) fail(
	ctx context.Context,
	name string,
	def *workflow.Definition,
	digest string,
	variables map[string]string,
	start time.Time,
	stageRecords []journal.StageRecord,
	failedStage string,
	failedIndex int,
	duration time.Duration,
	stageErr error,
) error {
	e.record.WriteStage(failedIndex, failedStage, runlog.StageFailed, duration, stageErr.Error())

	e.runOnFailureStages(ctx, def.OnFailure, variables, def.Log, failedStage, stageErr)

	totalDuration := time.Since(start)
	e.record.WriteFailed(failedStage, stageErr.Error(), totalDuration)
	e.writeState(runstate.State{
		Workflow:   name,
		Digest:     digest,
		Status:     runstate.StatusFailed,
		Stage:      failedStage,
		StageIndex: failedIndex,
		StageCount: len(def.Stages),
		Error:      stageErr.Error(),
	})
	e.recordJournal(ctx, journal.Run{
		Workflow:    name,
		Digest:      digest,
		Status:      "failed",
		FailedStage: failedStage,
		Error:       stageErr.Error(),
		StartedAt:   start.UTC(),
		Duration:    totalDuration,
		Stages:      stageRecords,
	})
	return &StageError{Stage: failedStage, Err: stageErr}
}

// runOnFailureStages executes the on_failure stages after a workflow
// failure. They run with the main workflow's variables plus:
//
//   - FAILED_STAGE: the name of the stage that failed
//   - FAILED_ERROR: the error message from the failed stage
//
// All on_failure stages are best-effort: if one fails, the error is
// logged and the remaining stages still run, so a broken cleanup step
// cannot hide the original failure.
func (e *Engine) runOnFailureStages(ctx context.Context, stages []workflow.Stage, variables map[string]string, defaultLog, failedStage string, failedErr error) {
	if len(stages) == 0 {
		return
	}

	failureVariables := make(map[string]string, len(variables)+2)
	for key, value := range variables {
		failureVariables[key] = value
	}
	failureVariables["FAILED_STAGE"] = failedStage
	failureVariables["FAILED_ERROR"] = failedErr.Error()

	for _, stage := range stages {
		expanded, err := workflowdef.ExpandStage(stage, failureVariables)
		if err != nil {
			e.logger.Warn("on_failure stage expansion failed",
				"stage", stage.Name, "error", err)
			continue
		}
		result := e.executeStage(ctx, expanded, defaultLog)
		if result.status == runlog.StageFailed {
			e.logger.Warn("on_failure stage failed",
				"stage", expanded.Name, "error", result.err)
		}
	}
}

// writeState persists a state transition. State write failures are
// logged, not fatal: the run itself matters more than its bookkeeping.
func (e *Engine) writeState(state runstate.State) {
	if err := runstate.Write(e.caseDir.Root(), state); err != nil {
		e.logger.Warn("failed to write run state", "error", err)
	}
}

// recordJournal inserts the run row. Journal failures are logged, not
// fatal.
func (e *Engine) recordJournal(ctx context.Context, run journal.Run) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordRun(ctx, run); err != nil {
		e.logger.Warn("failed to record run in journal", "error", err)
	}
}

// formatDuration renders a duration for progress lines: sub-second
// durations keep millisecond detail, longer ones round to the second.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
