// Copyright 2026 The Caseflow Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatch(t *testing.T) {
	t.Parallel()

	var gotArgs []string
	root := &Command{
		Name: "caseflow",
		Subcommands: []*Command{
			{
				Name: "run",
				Run: func(args []string) error {
					gotArgs = args
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"run", "workflow.jsonc"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(gotArgs) != 1 || gotArgs[0] != "workflow.jsonc" {
		t.Errorf("args = %v, want [workflow.jsonc]", gotArgs)
	}
}

func TestExecuteUnknownCommandSuggests(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name: "caseflow",
		Subcommands: []*Command{
			{Name: "run", Run: func([]string) error { return nil }},
			{Name: "validate", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"validat"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "validate"?`) {
		t.Errorf("error = %q, want validate suggestion", err)
	}
}

func TestExecuteUnknownCommandNoSuggestion(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name: "caseflow",
		Subcommands: []*Command{
			{Name: "run", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"zzzzzzzzzz"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, want no suggestion for distant input", err)
	}
}

func TestExecuteNoArgsWithSubcommands(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name:        "caseflow",
		Subcommands: []*Command{{Name: "run", Run: func([]string) error { return nil }}},
	}

	err := root.Execute(nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("err = %v, want subcommand required", err)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	t.Parallel()

	var caseFlag string
	var positional []string
	command := &Command{
		Name: "status",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flagSet.StringVar(&caseFlag, "case", ".", "case directory")
			return flagSet
		},
		Run: func(args []string) error {
			positional = args
			return nil
		},
	}

	if err := command.Execute([]string{"--case", "/tmp/hill", "extra"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if caseFlag != "/tmp/hill" {
		t.Errorf("case = %q, want /tmp/hill", caseFlag)
	}
	if len(positional) != 1 || positional[0] != "extra" {
		t.Errorf("positional = %v", positional)
	}
}

func TestExecuteUnknownFlagSuggests(t *testing.T) {
	t.Parallel()

	command := &Command{
		Name: "status",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flagSet.String("case", ".", "case directory")
			return flagSet
		},
		Run: func([]string) error { return nil },
	}

	err := command.Execute([]string{"--cse", "/tmp/hill"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --case?") {
		t.Errorf("error = %q, want --case suggestion", err)
	}
}

func TestSuggestCommand(t *testing.T) {
	t.Parallel()

	commands := []*Command{
		{Name: "run"},
		{Name: "validate"},
		{Name: "history"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"validte", "validate"},
		{"histroy", "history"},
		{"rn", "run"},
		{"completely-different", ""},
	}

	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"run", "", 3},
		{"", "run", 3},
		{"run", "run", 0},
		{"run", "rn", 1},
		{"validate", "validte", 1},
		{"kitten", "sitting", 3},
	}

	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	err := &ExitError{Code: 2}
	if err.ExitCode() != 2 {
		t.Errorf("ExitCode = %d, want 2", err.ExitCode())
	}
	if err.Error() != "exit code 2" {
		t.Errorf("Error = %q", err.Error())
	}
}

func TestNormalizeNilSlice(t *testing.T) {
	t.Parallel()

	var nilSlice []string
	normalized := normalizeNilSlice(nilSlice)
	slice, ok := normalized.([]string)
	if !ok {
		t.Fatalf("normalized type = %T", normalized)
	}
	if slice == nil || len(slice) != 0 {
		t.Errorf("normalized = %#v, want empty non-nil slice", slice)
	}

	// Non-slice values pass through untouched.
	if got := normalizeNilSlice("text"); got != "text" {
		t.Errorf("string passthrough = %v", got)
	}
	populated := []int{1, 2}
	if got := normalizeNilSlice(populated); len(got.([]int)) != 2 {
		t.Errorf("populated passthrough = %v", got)
	}
}
