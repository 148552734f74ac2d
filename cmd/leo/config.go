package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"leo/internal/driver"
	"leo/internal/vm"
)

const configFileName = "leo.toml"

// projectConfig is the contents of leo.toml. Command-line flags override it.
type projectConfig struct {
	Path  string      `toml:"-"`
	Run   runConfig   `toml:"run"`
	Trace traceConfig `toml:"trace"`
}

type runConfig struct {
	Entry             string `toml:"entry"`
	StackSize         int    `toml:"stack-size"`
	MaxCallDepth      int    `toml:"max-call-depth"`
	ItemDelimiter     string `toml:"item-delimiter"`
	InstructionBudget int64  `toml:"instruction-budget"`
	Jobs              int    `toml:"jobs"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return projectConfig{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	cfg.Path = path
	if meta.IsDefined("run", "item-delimiter") && len(cfg.Run.ItemDelimiter) != 1 {
		return projectConfig{}, fmt.Errorf("%s: [run].item-delimiter must be a single byte, got %q", path, cfg.Run.ItemDelimiter)
	}
	if cfg.Run.StackSize < 0 || cfg.Run.MaxCallDepth < 0 || cfg.Run.Jobs < 0 {
		return projectConfig{}, fmt.Errorf("%s: [run] sizes must not be negative", path)
	}
	if _, err := safecast.Conv[uint64](cfg.Run.InstructionBudget); err != nil {
		return projectConfig{}, fmt.Errorf("%s: [run].instruction-budget: %w", path, err)
	}
	return cfg, nil
}

// loadConfigForCommand reads the file named by --config, or the nearest
// leo.toml above the working directory. No file yields the zero config.
func loadConfigForCommand(cmd *cobra.Command) (projectConfig, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return projectConfig{}, err
	}
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil || !ok {
			return projectConfig{}, err
		}
		path = found
	}
	return loadConfig(path)
}

// runFlags are the execution flags shared by run and debug.
type runFlags struct {
	entry         string
	stackSize     int
	maxCallDepth  int
	itemDelimiter string
	budget        uint64
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.entry, "entry", driver.DefaultEntry, "command handler to start")
	cmd.Flags().IntVar(&f.stackSize, "stack-size", vm.DefaultStackSize, "operand stack capacity")
	cmd.Flags().IntVar(&f.maxCallDepth, "max-call-depth", vm.DefaultMaxCallDepth, "nested handler calls allowed")
	cmd.Flags().StringVar(&f.itemDelimiter, "item-delimiter", ",", "initial item delimiter")
	cmd.Flags().Uint64Var(&f.budget, "budget", 0, "stop after this many instructions (0 = unlimited)")
}

// resolve merges the flags over cfg. Flags win when set explicitly.
func (f *runFlags) resolve(cmd *cobra.Command, cfg runConfig) (string, vm.ContextOptions, error) {
	entry := f.entry
	if !cmd.Flags().Changed("entry") && cfg.Entry != "" {
		entry = cfg.Entry
	}
	opts := vm.ContextOptions{
		StackSize:         f.stackSize,
		MaxCallDepth:      f.maxCallDepth,
		InstructionBudget: f.budget,
	}
	if !cmd.Flags().Changed("stack-size") && cfg.StackSize > 0 {
		opts.StackSize = cfg.StackSize
	}
	if !cmd.Flags().Changed("max-call-depth") && cfg.MaxCallDepth > 0 {
		opts.MaxCallDepth = cfg.MaxCallDepth
	}
	if !cmd.Flags().Changed("budget") && cfg.InstructionBudget > 0 {
		budget, err := safecast.Conv[uint64](cfg.InstructionBudget)
		if err != nil {
			return "", opts, err
		}
		opts.InstructionBudget = budget
	}
	delim := f.itemDelimiter
	if !cmd.Flags().Changed("item-delimiter") && cfg.ItemDelimiter != "" {
		delim = cfg.ItemDelimiter
	}
	if len(delim) != 1 {
		return "", opts, fmt.Errorf("item delimiter must be a single byte, got %q", delim)
	}
	opts.ItemDelimiter = delim[0]
	return entry, opts, nil
}
