// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package runlog

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// readEntries parses every JSONL line in the active run record.
func readEntries(t *testing.T, caseRoot string) []map[string]any {
	t.Helper()

	file, err := os.Open(Path(caseRoot))
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(entries)+1, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	return entries
}

func TestRecordLifecycle(t *testing.T) {
	t.Parallel()

	caseRoot := t.TempDir()
	record, err := New(caseRoot, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	record.WriteStart("periodic-hill", "abc123", 3)
	record.WriteStage(0, "generate-mesh", StageOK, 1500*time.Millisecond, "")
	record.WriteStage(1, "optional-check", StageSkipped, 10*time.Millisecond, "")
	record.WriteStage(2, "steady-solve", StageFailed, 2*time.Second, "exit code 1")
	record.WriteFailed("steady-solve", "exit code 1", 4*time.Second)
	if err := record.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries := readEntries(t, caseRoot)
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}

	if entries[0]["type"] != "start" || entries[0]["workflow"] != "periodic-hill" ||
		entries[0]["digest"] != "abc123" || entries[0]["stage_count"] != float64(3) {
		t.Errorf("start entry = %v", entries[0])
	}
	if entries[1]["status"] != "ok" || entries[1]["duration_ms"] != float64(1500) {
		t.Errorf("stage entry = %v", entries[1])
	}
	if _, present := entries[1]["error"]; present {
		t.Error("ok stage entry carries an error field")
	}
	if entries[2]["status"] != "skipped" {
		t.Errorf("skipped entry = %v", entries[2])
	}
	if entries[3]["status"] != "failed" || entries[3]["error"] != "exit code 1" {
		t.Errorf("failed stage entry = %v", entries[3])
	}
	if entries[4]["type"] != "failed" || entries[4]["failed_stage"] != "steady-solve" {
		t.Errorf("terminal entry = %v", entries[4])
	}
}

func TestRecordComplete(t *testing.T) {
	t.Parallel()

	caseRoot := t.TempDir()
	record, err := New(caseRoot, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	record.WriteStart("w", "d", 1)
	record.WriteStage(0, "only", StageOK, time.Second, "")
	record.WriteComplete(time.Second)
	record.Close()

	entries := readEntries(t, caseRoot)
	last := entries[len(entries)-1]
	if last["type"] != "complete" || last["status"] != "ok" {
		t.Errorf("terminal entry = %v", last)
	}
}

func TestNewNilLoggerDefaults(t *testing.T) {
	t.Parallel()

	caseRoot := t.TempDir()
	record, err := New(caseRoot, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Force the write failure path, which logs through the record's
	// logger. A nil logger must not panic here.
	record.file.Close()
	record.WriteStart("periodic-hill", "abc", 1)
	record.WriteComplete(time.Second)
}

func TestNilRecordIsNoOp(t *testing.T) {
	t.Parallel()

	var record *Record
	record.WriteStart("w", "d", 1)
	record.WriteStage(0, "s", StageOK, time.Second, "")
	record.WriteComplete(time.Second)
	record.WriteFailed("s", "e", time.Second)
	if err := record.Close(); err != nil {
		t.Fatalf("Close on nil record: %v", err)
	}
}

func TestArchive(t *testing.T) {
	t.Parallel()

	caseRoot := t.TempDir()
	record, err := New(caseRoot, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	record.WriteStart("periodic-hill", "abc", 1)
	record.Close()

	if err := Archive(caseRoot); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	if _, err := os.Stat(Path(caseRoot)); !os.IsNotExist(err) {
		t.Error("active record still present after archive")
	}

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(Path(caseRoot)), "run-*.jsonl.zst"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d archives, want 1: %v", len(matches), matches)
	}

	// The archive round-trips back to the original JSONL content.
	compressed, err := os.Open(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer compressed.Close()

	reader, err := zstd.NewReader(compressed)
	if err != nil {
		t.Fatalf("zstd.NewReader: %v", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("decompressing archive: %v", err)
	}
	if !strings.Contains(string(content), `"workflow":"periodic-hill"`) {
		t.Errorf("archive content = %q", content)
	}
}

func TestArchiveNoPreviousRecord(t *testing.T) {
	t.Parallel()

	if err := Archive(t.TempDir()); err != nil {
		t.Fatalf("Archive with no record: %v", err)
	}
}
