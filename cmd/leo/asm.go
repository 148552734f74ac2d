package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"leo/internal/driver"
	"leo/internal/hostio"
)

var asmOutput string

var asmCmd = &cobra.Command{
	Use:   "asm file.leoasm",
	Short: "Assemble a source file into a .leob image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := loadProgram(cmd, args[0])
		if err != nil {
			return err
		}
		if prog.File == nil {
			return fmt.Errorf("%s: already an image", args[0])
		}
		out := asmOutput
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + driver.ExtImage
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := prog.WriteImage(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("%s: %w", out, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
		}
		return nil
	},
}

var disasmCmd = &cobra.Command{
	Use:   "disasm file",
	Short: "Print a source file or image in assembler syntax",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := loadProgram(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), prog.Disassemble())
		return nil
	},
}

func init() {
	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "", "image path (default: input with .leob extension)")
}

// loadProgram loads path with the host instructions registered and prints
// its diagnostics.
func loadProgram(cmd *cobra.Command, path string) (*driver.Program, error) {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, err
	}
	table, err := hostio.NewTable(cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	prog, err := driver.Load(path, driver.LoadOptions{Table: table, MaxDiagnostics: maxDiagnostics})
	if prog != nil && prog.Bag.Len() > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), colorizeDiagnostics(prog.Diagnostics()))
	}
	return prog, err
}
