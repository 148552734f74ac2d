package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"leo/internal/vm"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "[run]\nentry = \"start\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok, err := findConfig(nested)
	if err != nil || !ok {
		t.Fatalf("findConfig: %v, %v", ok, err)
	}
	if got != want {
		t.Fatalf("found %q, want %q", got, want)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[run]
entry = "start"
stack-size = 64
max-call-depth = 8
item-delimiter = ";"
instruction-budget = 1000
jobs = 2

[trace]
level = "detail"
mode = "ring"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Run.Entry != "start" || cfg.Run.StackSize != 64 || cfg.Run.ItemDelimiter != ";" || cfg.Run.Jobs != 2 {
		t.Fatalf("run = %+v", cfg.Run)
	}
	if cfg.Trace.Level != "detail" || cfg.Trace.Mode != "ring" {
		t.Fatalf("trace = %+v", cfg.Trace)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[run\n", "failed to parse TOML"},
		{"unknown key", "[run]\nentri = \"x\"\n", "unknown key run.entri"},
		{"delimiter", "[run]\nitem-delimiter = \"ab\"\n", "single byte"},
		{"negative size", "[run]\nstack-size = -1\n", "must not be negative"},
		{"negative budget", "[run]\ninstruction-budget = -5\n", "instruction-budget"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := loadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func newRunFlagsCommand(f *runFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd, f)
	return cmd
}

func TestResolveRunFlags(t *testing.T) {
	cfg := runConfig{Entry: "start", StackSize: 64, ItemDelimiter: ";", InstructionBudget: 500}

	var f runFlags
	cmd := newRunFlagsCommand(&f)
	if err := cmd.ParseFlags([]string{"--stack-size", "32"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	entry, opts, err := f.resolve(cmd, cfg)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if entry != "start" {
		t.Fatalf("entry = %q", entry)
	}
	if opts.StackSize != 32 || opts.MaxCallDepth != vm.DefaultMaxCallDepth {
		t.Fatalf("sizes = %d, %d", opts.StackSize, opts.MaxCallDepth)
	}
	if opts.ItemDelimiter != ';' || opts.InstructionBudget != 500 {
		t.Fatalf("delimiter %q, budget %d", opts.ItemDelimiter, opts.InstructionBudget)
	}

	var g runFlags
	cmd = newRunFlagsCommand(&g)
	if err := cmd.ParseFlags([]string{"--item-delimiter", "::"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, _, err := g.resolve(cmd, runConfig{}); err == nil {
		t.Fatalf("expected a delimiter error")
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected an error")
	}
	if shouldUseTUI(uiModeAuto, 1) || !shouldUseTUI(uiModeOn, 1) || shouldUseTUI(uiModeOff, 5) {
		t.Fatalf("shouldUseTUI returned an unexpected mode")
	}
}
