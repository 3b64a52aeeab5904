// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openJournal(t *testing.T, historyLimit int) *Journal {
	t.Helper()

	journal, err := Open(filepath.Join(t.TempDir(), "journal.db"), historyLimit, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := journal.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return journal
}

func TestRecordAndRecent(t *testing.T) {
	t.Parallel()

	journal := openJournal(t, 20)
	ctx := context.Background()

	started := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	run := Run{
		Workflow:  "periodic-hill",
		Digest:    "abc123",
		Status:    "complete",
		StartedAt: started,
		Duration:  90 * time.Minute,
		Stages: []StageRecord{
			{Index: 0, Name: "generate-mesh", Status: "ok", DurationMS: 120000},
			{Index: 1, Name: "steady-solve", Status: "ok", DurationMS: 5280000},
		},
	}
	if err := journal.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	got := runs[0]
	if got.ID == 0 {
		t.Error("ID not assigned")
	}
	if got.Workflow != run.Workflow || got.Digest != run.Digest || got.Status != run.Status {
		t.Errorf("run = %+v", got)
	}
	if got.FailedStage != "" || got.Error != "" {
		t.Errorf("complete run has failure fields: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, started)
	}
	if got.Duration != run.Duration {
		t.Errorf("duration = %v, want %v", got.Duration, run.Duration)
	}
	if len(got.Stages) != 2 || got.Stages[1].Name != "steady-solve" || got.Stages[1].DurationMS != 5280000 {
		t.Errorf("stages = %+v", got.Stages)
	}
}

func TestRecordFailedRun(t *testing.T) {
	t.Parallel()

	journal := openJournal(t, 20)
	ctx := context.Background()

	run := Run{
		Workflow:    "periodic-hill",
		Digest:      "def456",
		Status:      "failed",
		FailedStage: "steady-solve",
		Error:       "exit code 1",
		StartedAt:   time.Now().UTC(),
		Stages: []StageRecord{
			{Index: 0, Name: "generate-mesh", Status: "ok", DurationMS: 1000},
			{Index: 1, Name: "steady-solve", Status: "failed", DurationMS: 500, Error: "exit code 1"},
		},
	}
	if err := journal.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := journal.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if runs[0].FailedStage != "steady-solve" || runs[0].Error != "exit code 1" {
		t.Errorf("run = %+v", runs[0])
	}
	if runs[0].Stages[1].Error != "exit code 1" {
		t.Errorf("stage error = %q", runs[0].Stages[1].Error)
	}
}

func TestRecentOrderNewestFirst(t *testing.T) {
	t.Parallel()

	journal := openJournal(t, 20)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := Run{
			Workflow:  fmt.Sprintf("run-%d", i),
			Digest:    "d",
			Status:    "complete",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Stages:    []StageRecord{},
		}
		if err := journal.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun %d: %v", i, err)
		}
	}

	runs, err := journal.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Workflow != "run-2" || runs[1].Workflow != "run-1" {
		t.Errorf("order = %s, %s; want run-2, run-1", runs[0].Workflow, runs[1].Workflow)
	}
}

func TestPruneToHistoryLimit(t *testing.T) {
	t.Parallel()

	journal := openJournal(t, 3)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := Run{
			Workflow:  fmt.Sprintf("run-%d", i),
			Digest:    "d",
			Status:    "complete",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Stages:    []StageRecord{},
		}
		if err := journal.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun %d: %v", i, err)
		}
	}

	runs, err := journal.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs after prune, want 3", len(runs))
	}
	// The oldest two runs were pruned.
	if runs[0].Workflow != "run-4" || runs[2].Workflow != "run-2" {
		t.Errorf("retained runs = %s .. %s; want run-4 .. run-2", runs[0].Workflow, runs[2].Workflow)
	}
}

func TestRecentDefaultsToLimit(t *testing.T) {
	t.Parallel()

	journal := openJournal(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		run := Run{
			Workflow:  "w",
			Digest:    "d",
			Status:    "complete",
			StartedAt: time.Now().UTC(),
			Stages:    []StageRecord{},
		}
		if err := journal.RecordRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := journal.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}

func TestReopenPersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	first, err := Open(path, 20, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run := Run{
		Workflow:  "w",
		Digest:    "d",
		Status:    "complete",
		StartedAt: time.Now().UTC(),
		Stages:    []StageRecord{{Index: 0, Name: "only", Status: "ok"}},
	}
	if err := first.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := Open(path, 20, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	runs, err := second.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Stages[0].Name != "only" {
		t.Errorf("runs after reopen = %+v", runs)
	}
}
