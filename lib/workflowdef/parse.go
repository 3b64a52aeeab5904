// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflowdef provides parsing, validation, and variable
// expansion for Caseflow workflow definitions. Workflows are ordered
// sequences of stages (mesh tool invocations, configuration installs,
// solver runs, reconstruction and promotion steps) executed against a
// case directory.
//
// Workflow definitions are authored on disk as JSONC files (JSON
// extended with comments and trailing commas).
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → workflow.Definition
//  2. Validate: structural checks (exactly one action per stage,
//     required fields, parseable timeouts, etc.)
//  3. ResolveVariables: merge declarations + parameters + environment
//  4. ExpandStage: substitute ${NAME} references before execution
package workflowdef

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/caseflow-dev/caseflow/lib/schema/workflow"
)

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a workflow.Definition.
func Parse(data []byte) (*workflow.Definition, error) {
	stripped := jsonc.ToJSON(data)

	var definition workflow.Definition
	if err := json.Unmarshal(stripped, &definition); err != nil {
		return nil, fmt.Errorf("parsing workflow: %w", err)
	}

	return &definition, nil
}

// ReadFile reads a JSONC workflow file from disk and parses it.
// Returns a descriptive error if the file cannot be read or the JSON
// is malformed.
func ReadFile(path string) (*workflow.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	definition, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return definition, nil
}
