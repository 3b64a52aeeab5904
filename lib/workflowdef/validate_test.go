// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package workflowdef

import (
	"strings"
	"testing"

	"github.com/caseflow-dev/caseflow/lib/schema/workflow"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		definition     *workflow.Definition
		expectedIssues int
		wantSubstrings []string
	}{
		{
			name: "valid single run stage",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{
					{Name: "mesh", Run: "blockMesh"},
				},
			},
			expectedIssues: 0,
		},
		{
			name: "valid full workflow",
			definition: &workflow.Definition{
				Description: "mesh, solve, promote",
				Requires:    &workflow.Requires{Env: []string{"WM_PROJECT"}},
				Variables: map[string]workflow.Variable{
					"PROCS": {Default: "4"},
				},
				Stages: []workflow.Stage{
					{
						Name:    "mesh",
						Run:     "plot3dToFoam -noBlank volumeMesh.xyz",
						Check:   "test -d constant/polyMesh",
						LogTo:   "log.meshGeneration",
						Timeout: "30m",
					},
					{Name: "seed", Seed: &workflow.SeedState{From: "0_orig"}},
					{
						Name: "configs",
						Configs: &workflow.ConfigInstall{Files: map[string]string{
							"system/controlDict_rhosimple": "system/controlDict",
						}},
					},
					{Name: "purge", Purge: &workflow.PurgeFields{Patterns: []string{"phi*"}}},
					{
						Name:        "solve",
						Solver:      &workflow.SolverRun{Application: "potentialFoam"},
						When:        "test -f system/controlDict",
						GracePeriod: "2m",
					},
					{Name: "reconstruct", Reconstruct: &workflow.ReconstructRun{LatestTime: true}},
					{Name: "promote", Promote: &workflow.PromoteSnapshot{Snapshot: "latest"}},
				},
				OnFailure: []workflow.Stage{
					{Name: "note", Run: "echo failed"},
				},
			},
			expectedIssues: 0,
		},
		{
			name:           "no stages",
			definition:     &workflow.Definition{},
			expectedIssues: 1,
			wantSubstrings: []string{"no stages"},
		},
		{
			name: "missing name",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{{Run: "echo hi"}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"name is required"},
		},
		{
			name: "no action",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{{Name: "empty"}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"exactly one of"},
		},
		{
			name: "two actions",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{
					{
						Name:    "both",
						Run:     "echo hi",
						Promote: &workflow.PromoteSnapshot{Snapshot: "500"},
					},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"mutually exclusive"},
		},
		{
			name: "check on filesystem stage",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{
					{
						Name:  "seed",
						Seed:  &workflow.SeedState{From: "0_orig"},
						Check: "test -d 0",
					},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"check is only valid"},
		},
		{
			name: "absolute config paths",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{
					{
						Name: "configs",
						Configs: &workflow.ConfigInstall{Files: map[string]string{
							"/etc/controlDict": "system/controlDict",
						}},
					},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"relative to the case directory"},
		},
		{
			name: "purge pattern with separator",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{
					{
						Name:  "purge",
						Purge: &workflow.PurgeFields{Patterns: []string{"0/phi"}},
					},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"path separators"},
		},
		{
			name: "solver without application",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{
					{Name: "solve", Solver: &workflow.SolverRun{Processors: 4}},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"solver.application is required"},
		},
		{
			name: "negative processors",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{
					{Name: "solve", Solver: &workflow.SolverRun{Application: "simpleFoam", Processors: -1}},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"processors must be >= 0"},
		},
		{
			name: "bad timeout",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{
					{Name: "solve", Run: "echo hi", Timeout: "5 minutes"},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"invalid timeout"},
		},
		{
			name: "on_failure stages validated too",
			definition: &workflow.Definition{
				Stages: []workflow.Stage{
					{Name: "solve", Run: "echo hi"},
				},
				OnFailure: []workflow.Stage{{Name: "cleanup"}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"on_failure[0]"},
		},
		{
			name: "empty requires entry",
			definition: &workflow.Definition{
				Requires: &workflow.Requires{Env: []string{""}},
				Stages: []workflow.Stage{
					{Name: "solve", Run: "echo hi"},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"requires.env[0]"},
		},
		{
			name: "absolute workflow log",
			definition: &workflow.Definition{
				Log: "/var/log/caseflow.log",
				Stages: []workflow.Stage{
					{Name: "solve", Run: "echo hi"},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"must be relative"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			issues := Validate(test.definition)
			if len(issues) != test.expectedIssues {
				t.Fatalf("expected %d issues, got %d: %v", test.expectedIssues, len(issues), issues)
			}
			joined := strings.Join(issues, "\n")
			for _, want := range test.wantSubstrings {
				if !strings.Contains(joined, want) {
					t.Errorf("issues missing %q:\n%s", want, joined)
				}
			}
		})
	}
}
