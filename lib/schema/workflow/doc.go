// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package workflow defines the Caseflow workflow definition types:
// the workflow document, stage configurations, and the structured
// case-directory actions (config install, time-zero seeding, field
// purge, solver invocation, reconstruction, snapshot promotion).
//
// These are the content structs for JSONC workflow files. Parsing,
// validation, and variable expansion live in lib/workflowdef.
package workflow
