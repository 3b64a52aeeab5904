// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package workflowdef

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/caseflow-dev/caseflow/lib/schema/workflow"
)

// variablePattern matches ${NAME} references in strings. Only the
// braced form is recognized — bare $NAME is left for shell
// interpretation. Variable names must start with a letter or
// underscore and contain only letters, digits, and underscores.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ResolveVariables merges variable sources according to workflow
// resolution order (lowest to highest priority):
//
//  1. Declared defaults from workflow variable declarations
//  2. Run parameters (--param flags)
//  3. Environment lookup via the environ function
//
// Returns the merged variable map. Returns an error if any required
// variable (per its declaration) has no value from any source.
//
// The environ function is typically os.Getenv for production use, or
// a stub for testing. It is only consulted for declared variables —
// the process environment is not pulled in wholesale.
func ResolveVariables(declarations map[string]workflow.Variable, parameters map[string]string, environ func(string) string) (map[string]string, error) {
	resolved := make(map[string]string, len(declarations)+len(parameters))

	for name, declaration := range declarations {
		if declaration.Default != "" {
			resolved[name] = declaration.Default
		}
	}

	for name, value := range parameters {
		resolved[name] = value
	}

	if environ != nil {
		for name := range declarations {
			if value := environ(name); value != "" {
				resolved[name] = value
			}
		}
	}

	var missing []string
	for name, declaration := range declarations {
		if declaration.Required {
			if _, exists := resolved[name]; !exists {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("required workflow variables not set: %s", strings.Join(missing, ", "))
	}

	return resolved, nil
}

// Expand replaces ${NAME} references in input with values from the
// variables map. Only the ${NAME} form is recognized (braces
// required); bare $NAME is left for shell interpretation.
//
// Returns an error listing all referenced variables that have no
// value in the map, so workflow definitions fail fast on unresolvable
// references rather than producing broken commands.
func Expand(input string, variables map[string]string) (string, error) {
	var unresolved []string

	result := variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[2 : len(match)-1]
		if value, exists := variables[name]; exists {
			return value
		}
		unresolved = append(unresolved, name)
		return match
	})

	if len(unresolved) > 0 {
		return "", fmt.Errorf("unresolved workflow variables: %s", strings.Join(unresolved, ", "))
	}

	return result, nil
}

// ExpandStage returns a copy of stage with all string fields expanded
// using Expand. Stage-level Env values are expanded first (against
// workflow variables only), then merged into the variable map for
// expanding the other fields, so a run command can reference stage
// env values with ${NAME}.
//
// The original stage and variables map are not modified.
func ExpandStage(stage workflow.Stage, variables map[string]string) (workflow.Stage, error) {
	var expandedEnv map[string]string
	if len(stage.Env) > 0 {
		expandedEnv = make(map[string]string, len(stage.Env))
		for name, value := range stage.Env {
			expandedValue, err := Expand(value, variables)
			if err != nil {
				return workflow.Stage{}, fmt.Errorf("stage %q env[%s]: %w", stage.Name, name, err)
			}
			expandedEnv[name] = expandedValue
		}
	}

	merged := make(map[string]string, len(variables)+len(expandedEnv))
	for name, value := range variables {
		merged[name] = value
	}
	for name, value := range expandedEnv {
		merged[name] = value
	}

	var err error

	if stage.Run, err = Expand(stage.Run, merged); err != nil {
		return workflow.Stage{}, fmt.Errorf("stage %q run: %w", stage.Name, err)
	}
	if stage.Check, err = Expand(stage.Check, merged); err != nil {
		return workflow.Stage{}, fmt.Errorf("stage %q check: %w", stage.Name, err)
	}
	if stage.When, err = Expand(stage.When, merged); err != nil {
		return workflow.Stage{}, fmt.Errorf("stage %q when: %w", stage.Name, err)
	}
	if stage.LogTo, err = Expand(stage.LogTo, merged); err != nil {
		return workflow.Stage{}, fmt.Errorf("stage %q log_to: %w", stage.Name, err)
	}
	stage.Env = expandedEnv

	if stage.Configs != nil {
		expanded := workflow.ConfigInstall{Files: make(map[string]string, len(stage.Configs.Files))}
		for template, active := range stage.Configs.Files {
			expandedTemplate, err := Expand(template, merged)
			if err != nil {
				return workflow.Stage{}, fmt.Errorf("stage %q configs: %w", stage.Name, err)
			}
			expandedActive, err := Expand(active, merged)
			if err != nil {
				return workflow.Stage{}, fmt.Errorf("stage %q configs: %w", stage.Name, err)
			}
			expanded.Files[expandedTemplate] = expandedActive
		}
		stage.Configs = &expanded
	}

	if stage.Seed != nil {
		expanded := *stage.Seed
		if expanded.From, err = Expand(expanded.From, merged); err != nil {
			return workflow.Stage{}, fmt.Errorf("stage %q seed.from: %w", stage.Name, err)
		}
		if expanded.To, err = Expand(expanded.To, merged); err != nil {
			return workflow.Stage{}, fmt.Errorf("stage %q seed.to: %w", stage.Name, err)
		}
		stage.Seed = &expanded
	}

	if stage.Purge != nil {
		expanded := workflow.PurgeFields{Patterns: make([]string, len(stage.Purge.Patterns))}
		for index, pattern := range stage.Purge.Patterns {
			if expanded.Patterns[index], err = Expand(pattern, merged); err != nil {
				return workflow.Stage{}, fmt.Errorf("stage %q purge[%d]: %w", stage.Name, index, err)
			}
		}
		stage.Purge = &expanded
	}

	if stage.Solver != nil {
		expanded := *stage.Solver
		if expanded.Application, err = Expand(expanded.Application, merged); err != nil {
			return workflow.Stage{}, fmt.Errorf("stage %q solver.application: %w", stage.Name, err)
		}
		if expanded.Launcher, err = Expand(expanded.Launcher, merged); err != nil {
			return workflow.Stage{}, fmt.Errorf("stage %q solver.launcher: %w", stage.Name, err)
		}
		expanded.Args = make([]string, len(stage.Solver.Args))
		for index, arg := range stage.Solver.Args {
			if expanded.Args[index], err = Expand(arg, merged); err != nil {
				return workflow.Stage{}, fmt.Errorf("stage %q solver.args[%d]: %w", stage.Name, index, err)
			}
		}
		stage.Solver = &expanded
	}

	if stage.Reconstruct != nil {
		expanded := *stage.Reconstruct
		if expanded.Application, err = Expand(expanded.Application, merged); err != nil {
			return workflow.Stage{}, fmt.Errorf("stage %q reconstruct.application: %w", stage.Name, err)
		}
		expanded.Args = make([]string, len(stage.Reconstruct.Args))
		for index, arg := range stage.Reconstruct.Args {
			if expanded.Args[index], err = Expand(arg, merged); err != nil {
				return workflow.Stage{}, fmt.Errorf("stage %q reconstruct.args[%d]: %w", stage.Name, index, err)
			}
		}
		stage.Reconstruct = &expanded
	}

	if stage.Promote != nil {
		expanded := *stage.Promote
		if expanded.Snapshot, err = Expand(expanded.Snapshot, merged); err != nil {
			return workflow.Stage{}, fmt.Errorf("stage %q promote.snapshot: %w", stage.Name, err)
		}
		// Strip distinguishes nil (use the configured default list)
		// from explicitly empty (strip nothing); expansion must not
		// collapse one into the other.
		if stage.Promote.Strip != nil {
			expanded.Strip = make([]string, len(stage.Promote.Strip))
			for index, entry := range stage.Promote.Strip {
				if expanded.Strip[index], err = Expand(entry, merged); err != nil {
					return workflow.Stage{}, fmt.Errorf("stage %q promote.strip[%d]: %w", stage.Name, index, err)
				}
			}
		}
		stage.Promote = &expanded
	}

	return stage, nil
}
