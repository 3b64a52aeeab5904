// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/caseflow-dev/caseflow/lib/runlog"
	"github.com/caseflow-dev/caseflow/lib/schema/workflow"
)

// defaultReconstructor is the merge tool used when a reconstruct
// stage does not name one.
const defaultReconstructor = "reconstructPar"

// stageResult captures the outcome of executing a single stage.
type stageResult struct {
	status   runlog.StageStatus
	duration time.Duration
	err      error
}

func failedResult(start time.Time, err error) stageResult {
	return stageResult{
		status:   runlog.StageFailed,
		duration: time.Since(start),
		err:      err,
	}
}

// executeStage runs a single stage: evaluates the when guard,
// performs the stage action, and runs the check command. defaultLog
// is the workflow-level log file used when the stage sets no LogTo.
func (e *Engine) executeStage(ctx context.Context, stage workflow.Stage, defaultLog string) stageResult {
	start := time.Now()

	// Timeout and grace period were validated at load time, but a
	// stage can reach the engine without passing through Validate
	// (tests, generated definitions). Fail loud rather than run
	// unbounded.
	var timeout time.Duration
	if stage.Timeout != "" {
		parsed, err := time.ParseDuration(stage.Timeout)
		if err != nil {
			return failedResult(start, fmt.Errorf("invalid timeout %q: %w", stage.Timeout, err))
		}
		timeout = parsed
	}
	var gracePeriod time.Duration
	if stage.GracePeriod != "" {
		parsed, err := time.ParseDuration(stage.GracePeriod)
		if err != nil {
			return failedResult(start, fmt.Errorf("invalid grace_period %q: %w", stage.GracePeriod, err))
		}
		gracePeriod = parsed
	}

	// An empty timeout means no deadline. Unsteady solves run for
	// days; imposing a default here would kill them mid-flight.
	stageCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logTo := stage.LogTo
	if logTo == "" {
		logTo = defaultLog
	}

	// Evaluate the when guard. Guards are quick verification commands
	// and always get immediate SIGKILL on timeout (gracePeriod 0).
	// Guard output goes to the console, never the stage log.
	if stage.When != "" {
		exitCode, err := e.runShellCommand(stageCtx, stage.When, stage.Env, "", 0)
		if err != nil {
			return failedResult(start, fmt.Errorf("when guard: %w", err))
		}
		if exitCode != 0 {
			return stageResult{status: runlog.StageSkipped, duration: time.Since(start)}
		}
	}

	// Perform the stage action.
	switch {
	case stage.Run != "":
		exitCode, err := e.runShellCommand(stageCtx, stage.Run, stage.Env, logTo, gracePeriod)
		if err != nil {
			return failedResult(start, fmt.Errorf("run: %w", err))
		}
		if exitCode != 0 {
			return failedResult(start, fmt.Errorf("run: exit code %d", exitCode))
		}

	case stage.Solver != nil:
		argv := e.solverCommand(stage.Solver)
		exitCode, err := e.runCommand(stageCtx, argv, stage.Env, logTo, gracePeriod)
		if err != nil {
			return failedResult(start, fmt.Errorf("solver %s: %w", stage.Solver.Application, err))
		}
		if exitCode != 0 {
			return failedResult(start, fmt.Errorf("solver %s: exit code %d", stage.Solver.Application, exitCode))
		}

	case stage.Reconstruct != nil:
		if err := e.reconstruct(stageCtx, stage.Reconstruct, stage.Env, logTo, gracePeriod); err != nil {
			return failedResult(start, err)
		}

	case stage.Configs != nil:
		if err := e.caseDir.InstallConfigs(stage.Configs.Files); err != nil {
			return failedResult(start, err)
		}

	case stage.Seed != nil:
		if err := e.caseDir.SeedTimeZero(stage.Seed.From, stage.Seed.To); err != nil {
			return failedResult(start, err)
		}

	case stage.Purge != nil:
		removed, err := e.caseDir.PurgeFields(stage.Purge.Patterns)
		if err != nil {
			return failedResult(start, err)
		}
		e.logger.Debug("purged time-zero fields", "stage", stage.Name, "removed", removed)

	case stage.Promote != nil:
		strip := stage.Promote.Strip
		if strip == nil {
			strip = e.cfg.Promote.Strip
		}
		promoted, err := e.caseDir.PromoteSnapshot(stage.Promote.Snapshot, strip)
		if err != nil {
			return failedResult(start, err)
		}
		e.logger.Info("promoted snapshot to time zero", "stage", stage.Name, "snapshot", promoted)

	default:
		// Validate rejects action-less stages; reaching here means the
		// definition bypassed validation.
		return failedResult(start, fmt.Errorf("stage has no action"))
	}

	// Run the check command after the action succeeds. Checks are
	// quick verification commands with immediate SIGKILL on timeout.
	if stage.Check != "" {
		exitCode, err := e.runShellCommand(stageCtx, stage.Check, stage.Env, "", 0)
		if err != nil {
			return failedResult(start, fmt.Errorf("check: %w", err))
		}
		if exitCode != 0 {
			return failedResult(start, fmt.Errorf("check: exit code %d", exitCode))
		}
	}

	return stageResult{status: runlog.StageOK, duration: time.Since(start)}
}

// solverCommand builds the argv for a solver stage. Parallel runs go
// through the MPI launcher with the solver's -parallel flag; serial
// runs invoke the application directly.
func (e *Engine) solverCommand(solver *workflow.SolverRun) []string {
	if solver.Processors <= 1 {
		return append([]string{solver.Application}, solver.Args...)
	}

	launcher := solver.Launcher
	if launcher == "" {
		launcher = e.cfg.Launcher.Binary
	}

	argv := []string{
		launcher,
		e.cfg.Launcher.ProcessFlag,
		strconv.Itoa(solver.Processors),
		solver.Application,
		"-parallel",
	}
	return append(argv, solver.Args...)
}

// reconstruct merges decomposed results into serial time directories
// and then deletes the processor directories. Deletion happens only
// after the reconstructor exits zero: until the merge succeeds, the
// decomposed copies are the only copy of the result.
func (e *Engine) reconstruct(ctx context.Context, rec *workflow.ReconstructRun, env map[string]string, logTo string, gracePeriod time.Duration) error {
	application := rec.Application
	if application == "" {
		application = defaultReconstructor
	}

	argv := []string{application}
	if rec.LatestTime {
		argv = append(argv, "-latestTime")
	}
	argv = append(argv, rec.Args...)

	exitCode, err := e.runCommand(ctx, argv, env, logTo, gracePeriod)
	if err != nil {
		return fmt.Errorf("reconstruct %s: %w", application, err)
	}
	if exitCode != 0 {
		return fmt.Errorf("reconstruct %s: exit code %d", application, exitCode)
	}

	removed, err := e.caseDir.RemoveProcessorDirs()
	if err != nil {
		return fmt.Errorf("removing processor directories: %w", err)
	}
	e.logger.Info("reconstruction complete", "processor_dirs_removed", removed)
	return nil
}
