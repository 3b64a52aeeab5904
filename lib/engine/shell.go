// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// runShellCommand executes a freeform command via sh -c in the case
// directory. The shell is resolved via PATH, not hardcoded to
// /bin/sh: HPC module environments and Nix-style toolchains put their
// shell on PATH, and /bin/sh may be absent or a different shell.
func (e *Engine) runShellCommand(ctx context.Context, command string, env map[string]string, logTo string, gracePeriod time.Duration) (int, error) {
	return e.runCommand(ctx, []string{"sh", "-c", command}, env, logTo, gracePeriod)
}

// runCommand executes argv in the case directory. Returns the exit
// code and any non-exit error (spawn failure, context cancellation).
//
// When logTo is non-empty, combined stdout and stderr are appended to
// that file (relative to the case directory) instead of the engine's
// output. Solver packages conventionally keep one log file per tool
// in the case root (log.blockMesh, log.reconstructPar); appending
// preserves output across restarted runs.
//
// The command runs in its own process group so that a timeout kills
// the launcher and all its children. An MPI launcher fans out worker
// processes that inherit the log file descriptor; signalling only the
// launcher would leave workers running and the file held open.
//
// When gracePeriod is zero, SIGKILL is sent immediately on timeout.
// When positive, SIGTERM is sent first so the solver can flush its
// output and write a restartable time directory; SIGKILL follows
// after the grace period if the group has not exited.
func (e *Engine) runCommand(ctx context.Context, argv []string, env map[string]string, logTo string, gracePeriod time.Duration) (int, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.caseDir.Root()

	if logTo != "" {
		logPath, err := e.caseDir.Path(logTo)
		if err != nil {
			return -1, fmt.Errorf("log file path: %w", err)
		}
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return -1, fmt.Errorf("opening log file: %w", err)
		}
		defer logFile.Close()
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	} else {
		cmd.Stdout = e.output
		cmd.Stderr = e.output
	}

	// Own process group: signals target the whole tree via the
	// negative PID.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if gracePeriod > 0 {
		cmd.Cancel = func() error {
			processGroupID := -cmd.Process.Pid
			if err := syscall.Kill(processGroupID, syscall.SIGTERM); err != nil {
				// SIGTERM failed (group already gone), escalate.
				return syscall.Kill(processGroupID, syscall.SIGKILL)
			}
			go func() {
				time.Sleep(gracePeriod)
				// Best-effort: ESRCH from a dead group is harmless.
				_ = syscall.Kill(processGroupID, syscall.SIGKILL)
			}()
			return nil
		}
	} else {
		cmd.Cancel = func() error {
			return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
	}

	if len(env) > 0 {
		cmd.Env = os.Environ()
		for name, value := range env {
			cmd.Env = append(cmd.Env, name+"="+value)
		}
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		return exitError.ExitCode(), nil
	}

	// Non-exit errors: context cancellation (timeout), spawn failure.
	if ctx.Err() != nil {
		return -1, fmt.Errorf("%w (%v)", ctx.Err(), err)
	}
	return -1, err
}
