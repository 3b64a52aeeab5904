// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "caseflow.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Launcher.Binary != "mpirun" || cfg.Launcher.ProcessFlag != "-np" {
		t.Errorf("launcher defaults = %+v", cfg.Launcher)
	}
	if len(cfg.Promote.Strip) != 2 || cfg.Promote.Strip[0] != "polyMesh" || cfg.Promote.Strip[1] != "uniform" {
		t.Errorf("promote.strip = %v", cfg.Promote.Strip)
	}
	if cfg.Journal.Path != "journal.db" || cfg.Journal.HistoryLimit != 20 {
		t.Errorf("journal defaults = %+v", cfg.Journal)
	}
	if cfg.RunRecord.ArchivePrevious == nil || !*cfg.RunRecord.ArchivePrevious {
		t.Error("run_record.archive_previous should default to true")
	}
}

func TestLoadWithoutEnvironment(t *testing.T) {
	t.Setenv("CASEFLOW_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Launcher.Binary != "mpirun" {
		t.Errorf("launcher.binary = %q, want defaults", cfg.Launcher.Binary)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	path := writeConfig(t, "launcher:\n  binary: srun\n  process_flag: -n\n")
	t.Setenv("CASEFLOW_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Launcher.Binary != "srun" || cfg.Launcher.ProcessFlag != "-n" {
		t.Errorf("launcher = %+v", cfg.Launcher)
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
journal:
  history_limit: 5
run_record:
  archive_previous: false
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Journal.HistoryLimit != 5 {
		t.Errorf("journal.history_limit = %d, want 5", cfg.Journal.HistoryLimit)
	}
	if cfg.Journal.Path != "journal.db" {
		t.Errorf("journal.path = %q, want default preserved", cfg.Journal.Path)
	}
	if cfg.RunRecord.ArchivePrevious == nil || *cfg.RunRecord.ArchivePrevious {
		t.Error("run_record.archive_previous = true, want false")
	}
	if cfg.Launcher.Binary != "mpirun" {
		t.Errorf("launcher.binary = %q, want default preserved", cfg.Launcher.Binary)
	}
}

func TestLoadFileStripOverride(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "promote:\n  strip: [polyMesh]\n")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(cfg.Promote.Strip) != 1 || cfg.Promote.Strip[0] != "polyMesh" {
		t.Errorf("promote.strip = %v, want [polyMesh]", cfg.Promote.Strip)
	}
}

func TestLoadFileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "malformed yaml",
			content: "launcher: [\n",
			want:    "parsing config",
		},
		{
			name:    "empty launcher binary",
			content: "launcher:\n  binary: \"\"\n",
			want:    "launcher.binary",
		},
		{
			name:    "zero history limit",
			content: "journal:\n  history_limit: 0\n",
			want:    "history_limit",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := LoadFile(writeConfig(t, test.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not mention %q", err, test.want)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
