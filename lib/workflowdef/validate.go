// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package workflowdef

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caseflow-dev/caseflow/lib/schema/workflow"
)

// Validate checks a workflow.Definition for structural issues. Returns
// a list of human-readable issue descriptions. An empty list means the
// workflow is valid.
//
// Structural checks include:
//   - At least one stage is required
//   - Each stage must have a non-empty Name
//   - Each stage must set exactly one action (Run, Configs, Seed,
//     Purge, Solver, Reconstruct, or Promote)
//   - Check and When are only valid on Run and Solver stages
//   - Configs must have at least one file mapping with relative paths
//   - Seed must name a template directory
//   - Purge must list at least one valid glob pattern
//   - Solver must name an application and a non-negative processor count
//   - Promote must name a snapshot ("latest" or a time value)
//   - Timeout and GracePeriod (when present) must parse
func Validate(definition *workflow.Definition) []string {
	var issues []string

	if len(definition.Stages) == 0 {
		issues = append(issues, "workflow has no stages (at least one stage is required)")
	}

	for index, stage := range definition.Stages {
		issues = append(issues, validateStage(fmt.Sprintf("stages[%d]", index), stage)...)
	}
	for index, stage := range definition.OnFailure {
		issues = append(issues, validateStage(fmt.Sprintf("on_failure[%d]", index), stage)...)
	}

	if definition.Requires != nil {
		for index, name := range definition.Requires.Env {
			if name == "" {
				issues = append(issues, fmt.Sprintf("requires.env[%d]: empty variable name", index))
			}
		}
	}

	if definition.Log != "" && filepath.IsAbs(definition.Log) {
		issues = append(issues, fmt.Sprintf("log: %q must be relative to the case directory", definition.Log))
	}

	return issues
}

func validateStage(prefix string, stage workflow.Stage) []string {
	var issues []string

	if stage.Name == "" {
		issues = append(issues, fmt.Sprintf("%s: name is required", prefix))
	} else {
		prefix = fmt.Sprintf("%s %q", prefix, stage.Name)
	}

	// Exactly one action must be set.
	var actions []string
	if stage.Run != "" {
		actions = append(actions, "run")
	}
	if stage.Configs != nil {
		actions = append(actions, "configs")
	}
	if stage.Seed != nil {
		actions = append(actions, "seed")
	}
	if stage.Purge != nil {
		actions = append(actions, "purge")
	}
	if stage.Solver != nil {
		actions = append(actions, "solver")
	}
	if stage.Reconstruct != nil {
		actions = append(actions, "reconstruct")
	}
	if stage.Promote != nil {
		actions = append(actions, "promote")
	}

	switch len(actions) {
	case 0:
		issues = append(issues, fmt.Sprintf("%s: must set exactly one of run, configs, seed, purge, solver, reconstruct, promote", prefix))
	case 1:
		// valid
	default:
		issues = append(issues, fmt.Sprintf("%s: %s are mutually exclusive (set exactly one)", prefix, strings.Join(actions, " and ")))
	}

	// Fields that are only meaningful for command-running stages.
	runsCommand := stage.Run != "" || stage.Solver != nil
	if !runsCommand {
		if stage.Check != "" {
			issues = append(issues, fmt.Sprintf("%s: check is only valid on run and solver stages", prefix))
		}
		if stage.When != "" {
			issues = append(issues, fmt.Sprintf("%s: when is only valid on run and solver stages", prefix))
		}
		if stage.LogTo != "" && stage.Reconstruct == nil {
			issues = append(issues, fmt.Sprintf("%s: log_to is only valid on stages that run external tools", prefix))
		}
	}

	if stage.Configs != nil {
		if len(stage.Configs.Files) == 0 {
			issues = append(issues, fmt.Sprintf("%s: configs.files must have at least one template → active mapping", prefix))
		}
		for template, active := range stage.Configs.Files {
			if filepath.IsAbs(template) || filepath.IsAbs(active) {
				issues = append(issues, fmt.Sprintf("%s: configs.files[%s]: paths must be relative to the case directory", prefix, template))
			}
			if active == "" {
				issues = append(issues, fmt.Sprintf("%s: configs.files[%s]: active path is required", prefix, template))
			}
		}
	}

	if stage.Seed != nil {
		if stage.Seed.From == "" {
			issues = append(issues, fmt.Sprintf("%s: seed.from is required", prefix))
		}
		if filepath.IsAbs(stage.Seed.From) || filepath.IsAbs(stage.Seed.To) {
			issues = append(issues, fmt.Sprintf("%s: seed paths must be relative to the case directory", prefix))
		}
	}

	if stage.Purge != nil {
		if len(stage.Purge.Patterns) == 0 {
			issues = append(issues, fmt.Sprintf("%s: purge.patterns must list at least one pattern", prefix))
		}
		for _, pattern := range stage.Purge.Patterns {
			if _, err := filepath.Match(pattern, ""); err != nil {
				issues = append(issues, fmt.Sprintf("%s: purge pattern %q: %v", prefix, pattern, err))
			}
			if strings.Contains(pattern, "/") {
				issues = append(issues, fmt.Sprintf("%s: purge pattern %q must not contain path separators", prefix, pattern))
			}
		}
	}

	if stage.Solver != nil {
		if stage.Solver.Application == "" {
			issues = append(issues, fmt.Sprintf("%s: solver.application is required", prefix))
		}
		if stage.Solver.Processors < 0 {
			issues = append(issues, fmt.Sprintf("%s: solver.processors must be >= 0, got %d", prefix, stage.Solver.Processors))
		}
	}

	if stage.Promote != nil && stage.Promote.Snapshot == "" {
		issues = append(issues, fmt.Sprintf("%s: promote.snapshot is required (a time value or \"latest\")", prefix))
	}

	if stage.Timeout != "" {
		if _, err := time.ParseDuration(stage.Timeout); err != nil {
			issues = append(issues, fmt.Sprintf("%s: invalid timeout %q: %v", prefix, stage.Timeout, err))
		}
	}
	if stage.GracePeriod != "" {
		if _, err := time.ParseDuration(stage.GracePeriod); err != nil {
			issues = append(issues, fmt.Sprintf("%s: invalid grace_period %q: %v", prefix, stage.GracePeriod, err))
		}
	}

	return issues
}
