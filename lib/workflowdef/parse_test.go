// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package workflowdef

import (
	"strings"
	"testing"
)

func TestParseJSONC(t *testing.T) {
	t.Parallel()

	input := `{
		// steady RANS warmup
		"description": "minimal workflow",
		"requires": {"env": ["WM_PROJECT"]},
		"stages": [
			{
				"name": "solve",
				"solver": {"application": "potentialFoam"},
				/* trailing comma below is legal JSONC */
				"timeout": "10m",
			},
		],
	}`

	def, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if def.Description != "minimal workflow" {
		t.Errorf("description = %q", def.Description)
	}
	if def.Requires == nil || len(def.Requires.Env) != 1 || def.Requires.Env[0] != "WM_PROJECT" {
		t.Errorf("requires.env = %+v", def.Requires)
	}
	if len(def.Stages) != 1 {
		t.Fatalf("expected 1 stage, got %d", len(def.Stages))
	}
	stage := def.Stages[0]
	if stage.Name != "solve" || stage.Solver == nil || stage.Solver.Application != "potentialFoam" {
		t.Errorf("stage = %+v", stage)
	}
	if stage.Timeout != "10m" {
		t.Errorf("timeout = %q", stage.Timeout)
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"stages": [{}`))
	if err == nil {
		t.Fatal("expected error for truncated input")
	}
}

func TestReadFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ReadFile("/nonexistent/workflow.jsonc")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "workflow.jsonc") {
		t.Errorf("error should name the file: %v", err)
	}
}
