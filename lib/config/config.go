// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the caseflow
// binary.
//
// Configuration is loaded from a single YAML file specified by:
//   - CASEFLOW_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There is no automatic discovery. Unlike most settings systems, the
// file is optional: every setting has a working default, and the file
// exists for machine-specific overrides (a cluster's MPI launcher, a
// site's archive policy). When neither the variable nor the flag is
// set, [Load] returns the defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the caseflow tool configuration.
type Config struct {
	// Launcher configures how parallel solver stages are launched.
	Launcher LauncherConfig `yaml:"launcher"`

	// Promote configures snapshot promotion defaults.
	Promote PromoteConfig `yaml:"promote"`

	// Journal configures the run-history database.
	Journal JournalConfig `yaml:"journal"`

	// RunRecord configures the per-run JSONL record.
	RunRecord RunRecordConfig `yaml:"run_record"`
}

// LauncherConfig configures the MPI launcher used for parallel solver
// stages.
type LauncherConfig struct {
	// Binary is the launcher executable. Default: mpirun.
	Binary string `yaml:"binary"`

	// ProcessFlag is the flag that carries the process count.
	// Default: -np. Some site launchers use -n.
	ProcessFlag string `yaml:"process_flag"`
}

// PromoteConfig configures snapshot promotion.
type PromoteConfig struct {
	// Strip lists subdirectories removed from promoted snapshots
	// when a workflow's promote stage does not specify its own list.
	// Default: [polyMesh, uniform].
	Strip []string `yaml:"strip"`
}

// JournalConfig configures the run-history database.
type JournalConfig struct {
	// Path is the journal database path, relative to the case
	// bookkeeping directory. Default: journal.db.
	Path string `yaml:"path"`

	// HistoryLimit is the default number of runs shown by
	// "caseflow history". Default: 20.
	HistoryLimit int `yaml:"history_limit"`
}

// RunRecordConfig configures the per-run JSONL record.
type RunRecordConfig struct {
	// ArchivePrevious compresses the previous run's record to
	// zstd before a new run starts. Default: true.
	ArchivePrevious *bool `yaml:"archive_previous"`
}

// Default returns the default configuration. Every field is usable
// without a config file.
func Default() *Config {
	archive := true
	return &Config{
		Launcher: LauncherConfig{
			Binary:      "mpirun",
			ProcessFlag: "-np",
		},
		Promote: PromoteConfig{
			Strip: []string{"polyMesh", "uniform"},
		},
		Journal: JournalConfig{
			Path:         "journal.db",
			HistoryLimit: 20,
		},
		RunRecord: RunRecordConfig{
			ArchivePrevious: &archive,
		},
	}
}

// Load loads configuration from the CASEFLOW_CONFIG environment
// variable, or returns [Default] when it is not set.
func Load() (*Config, error) {
	configPath := os.Getenv("CASEFLOW_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merged over
// the defaults. The config file is the single source of truth for
// what it sets; environment variables do not override config values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Launcher.Binary == "" {
		return fmt.Errorf("launcher.binary must not be empty")
	}
	if c.Journal.HistoryLimit < 1 {
		return fmt.Errorf("journal.history_limit must be >= 1, got %d", c.Journal.HistoryLimit)
	}
	return nil
}
