// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package workflow

// Definition is a complete case workflow: an ordered list of stages
// executed sequentially against a single case directory. Workflows
// sequence external solver-package tools (mesh generators, flow
// solvers, reconstruction utilities) and the case-directory state
// transitions between them.
//
// Variable substitution (${NAME}) is applied to all string fields in
// stages before execution. Variables are resolved from stage-level
// env, run parameters, and the process environment.
type Definition struct {
	// Description is a human-readable summary of what this workflow
	// does (e.g., "Periodic hill: mesh, steady RANS, unsteady init").
	Description string `json:"description,omitempty"`

	// Requires declares preconditions checked before any stage runs.
	// A failed precondition means nothing executes and the case
	// directory is left untouched.
	Requires *Requires `json:"requires,omitempty"`

	// Variables declares the variables this workflow expects, with
	// optional defaults and required flags. The engine validates
	// required variables before starting execution.
	Variables map[string]Variable `json:"variables,omitempty"`

	// Stages is the ordered list of stages to execute. At least one
	// stage is required. Stages run strictly sequentially — the
	// engine never overlaps two stages; parallelism belongs to the
	// MPI launcher inside a solver stage.
	Stages []Stage `json:"stages"`

	// OnFailure is a list of stages to execute when a non-optional
	// stage fails. Best-effort: a failing on_failure stage is logged
	// and the remaining on_failure stages still run. The variables
	// FAILED_STAGE and FAILED_ERROR are injected for these stages.
	OnFailure []Stage `json:"on_failure,omitempty"`

	// Log is the default file (relative to the case directory) that
	// receives combined stdout/stderr of stages that do not set their
	// own LogTo. When empty, tool output is inherited from the engine
	// process (visible on the operator's console).
	Log string `json:"log,omitempty"`
}

// Requires declares workflow preconditions.
type Requires struct {
	// Env lists environment variables that must be set and non-empty
	// before the workflow starts. The canonical use is the solver
	// package's activation flag (e.g., WM_PROJECT for OpenFOAM-based
	// toolchains): when the variable is missing, the toolchain is not
	// loaded and every external invocation would fail confusingly.
	Env []string `json:"env,omitempty"`
}

// Variable declares an expected variable for a workflow. Declarations
// are informational for documentation and validation — actual values
// come from run parameters and the environment.
type Variable struct {
	// Description explains what this variable is for (shown by
	// caseflow show).
	Description string `json:"description,omitempty"`

	// Default is the fallback value when the variable is not provided
	// in any source. Empty string is a valid default.
	Default string `json:"default,omitempty"`

	// Required means the engine must fail if this variable has no
	// value from any source (including Default).
	Required bool `json:"required,omitempty"`
}

// Stage is a single stage in a workflow. Exactly one of the action
// fields must be set:
//   - Run: execute a shell command (mesh tools, initializers, drivers)
//   - Configs: install a stage configuration set into system/
//   - Seed: seed the time-zero state from a template directory
//   - Purge: delete stale field files from the time-zero state
//   - Solver: invoke a flow solver, optionally in parallel
//   - Reconstruct: merge decomposed results, drop processor dirs
//   - Promote: promote a result snapshot to the time-zero state
type Stage struct {
	// Name is a human-readable identifier for this stage, used in log
	// output, the run record, and stage-tagged errors (e.g.,
	// "generate-mesh", "steady-solve"). Required.
	Name string `json:"name"`

	// Run is a shell command executed via sh -c in the case
	// directory. Multi-line strings are supported. Variable
	// substitution (${NAME}) is applied before execution.
	Run string `json:"run,omitempty"`

	// Configs installs a configuration set: each entry copies a
	// template file over the active file, both relative to the case
	// directory. The active triple in system/ must match the solver
	// about to run; the solver itself performs no such check.
	Configs *ConfigInstall `json:"configs,omitempty"`

	// Seed populates the time-zero directory from a template
	// directory (conventionally 0_orig/). Any existing time-zero
	// state is removed first, so seeding is idempotent.
	Seed *SeedState `json:"seed,omitempty"`

	// Purge deletes field files matching glob patterns from the
	// time-zero directory. Used to clear fields a previous tool wrote
	// that the next solver must recompute (e.g., the phi flux field
	// after potentialFoam).
	Purge *PurgeFields `json:"purge,omitempty"`

	// Solver invokes a flow solver in the case directory, fanned out
	// across MPI processes when Processors > 1.
	Solver *SolverRun `json:"solver,omitempty"`

	// Reconstruct merges decomposed per-process results into a serial
	// result and deletes the processor directories.
	Reconstruct *ReconstructRun `json:"reconstruct,omitempty"`

	// Promote renames a result snapshot to become the new time-zero
	// state, stripping mesh/administrative subfolders.
	Promote *PromoteSnapshot `json:"promote,omitempty"`

	// Check is a post-stage verification command. Runs after the
	// stage action succeeds; a non-zero exit fails the stage. Catches
	// tools that exit zero without producing the expected result.
	// Only valid on Run and Solver stages.
	Check string `json:"check,omitempty"`

	// When is a guard condition command. Runs before the stage; a
	// non-zero exit skips the stage (not a failure). Only valid on
	// Run and Solver stages.
	When string `json:"when,omitempty"`

	// Optional means stage failure does not abort the workflow. The
	// failure is logged and execution continues.
	Optional bool `json:"optional,omitempty"`

	// Timeout is the maximum duration for this stage (e.g., "30m",
	// "12h"). Parsed by time.ParseDuration. The engine kills the
	// stage's process group if it exceeds this duration. When empty,
	// the stage has no deadline — unsteady solves legitimately run
	// for days.
	Timeout string `json:"timeout,omitempty"`

	// GracePeriod is the duration between SIGTERM and SIGKILL when a
	// stage's timeout expires. When set, the process group gets
	// SIGTERM first and this long to flush solver output before
	// SIGKILL. When empty, SIGKILL is immediate.
	GracePeriod string `json:"grace_period,omitempty"`

	// Env sets additional environment variables for this stage only.
	// Values support ${NAME} substitution against workflow variables.
	Env map[string]string `json:"env,omitempty"`

	// LogTo appends the stage's combined stdout and stderr to this
	// file, relative to the case directory (e.g.,
	// "log.meshGeneration"). Overrides the workflow-level Log field.
	// Only meaningful on stages that run external tools (Run, Solver,
	// Reconstruct).
	LogTo string `json:"log_to,omitempty"`
}

// ConfigInstall describes a configuration set installation. Every
// entry is copied template-over-active; files present only in the
// destination directory are left in place (the installer cannot know
// the solver's full configuration surface).
type ConfigInstall struct {
	// Files maps template path → active path, both relative to the
	// case directory (e.g., "system/controlDict_rhosimple" →
	// "system/controlDict").
	Files map[string]string `json:"files"`
}

// SeedState describes time-zero initialization from a template.
type SeedState struct {
	// From is the template directory, relative to the case directory
	// (conventionally "0_orig").
	From string `json:"from"`

	// To is the destination time directory. Defaults to "0".
	To string `json:"to,omitempty"`
}

// PurgeFields deletes field files from the time-zero directory.
type PurgeFields struct {
	// Patterns are glob patterns matched against entries directly
	// inside the time-zero directory (e.g., "phi", "phi_0", "*.gz").
	Patterns []string `json:"patterns"`
}

// SolverRun describes a solver invocation. When Processors > 1 the
// engine builds "<launcher> -np <N> <application> -parallel <args>";
// otherwise the application runs directly.
type SolverRun struct {
	// Application is the solver executable name (e.g.,
	// "DARhoSimpleFoam") or a driver script invocation target.
	Application string `json:"application"`

	// Args are additional arguments appended after the application.
	Args []string `json:"args,omitempty"`

	// Processors is the MPI process count. Zero or one means a
	// serial run with no launcher.
	Processors int `json:"processors,omitempty"`

	// Launcher overrides the configured MPI launcher binary for this
	// stage (default "mpirun", see lib/config).
	Launcher string `json:"launcher,omitempty"`
}

// ReconstructRun describes a reconstruction pass: merge processorN/
// output into serial time directories, then delete every processorN/
// directory. Deletion happens only after the reconstructor exits
// zero — decomposed results are the only copy until then.
type ReconstructRun struct {
	// Application is the reconstructor executable. Defaults to
	// "reconstructPar".
	Application string `json:"application,omitempty"`

	// LatestTime restricts reconstruction to the most recent time
	// directory (-latestTime). Used for long-horizon unsteady runs
	// where only the final state feeds the next stage.
	LatestTime bool `json:"latest_time,omitempty"`

	// Args are additional reconstructor arguments.
	Args []string `json:"args,omitempty"`
}

// PromoteSnapshot describes a snapshot promotion: the named result
// time directory replaces the time-zero state. The engine verifies
// the snapshot exists and is non-empty before deleting anything.
type PromoteSnapshot struct {
	// Snapshot is the result time directory to promote: either a
	// literal time value ("500") or "latest" for the numerically
	// greatest time directory.
	Snapshot string `json:"snapshot"`

	// Strip lists subdirectories removed from the promoted snapshot.
	// These belong to the case's permanent mesh and run metadata, not
	// to an initial-condition snapshot; a stale per-step copy would
	// shadow the real mesh. Defaults to ["polyMesh", "uniform"].
	Strip []string `json:"strip,omitempty"`
}
