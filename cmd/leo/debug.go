package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"leo/internal/bytecode"
	"leo/internal/vm"
)

var (
	debugOpts   runFlags
	debugBreaks []string
)

var debugCmd = &cobra.Command{
	Use:   "debug [flags] file [-- args...]",
	Short: "Run a script under the interactive debugger",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDebugger,
}

func init() {
	addRunFlags(debugCmd, &debugOpts)
	debugCmd.Flags().StringArrayVarP(&debugBreaks, "break", "b", nil, "set a breakpoint at handler:pc (repeatable)")
}

func runDebugger(cmd *cobra.Command, args []string) error {
	files, scriptArgs := splitArgs(cmd, args)
	if len(files) != 1 {
		return errors.New("debug takes exactly one file")
	}
	entryName, ctxOpts, err := debugOpts.resolve(cmd, session.config.Run)
	if err != nil {
		return err
	}
	prog, err := loadProgram(cmd, files[0])
	if err != nil {
		return err
	}
	entry, err := prog.Entry(entryName)
	if err != nil {
		return err
	}

	c := vm.NewContext(prog.Group, prog.Table, ctxOpts)
	d := vm.NewDebugger(c, cmd.InOrStdin(), cmd.OutOrStdout(), isTerminal(os.Stdin))
	for _, loc := range debugBreaks {
		if err := addBreakpoint(d, prog.Script, loc); err != nil {
			return err
		}
	}
	if len(scriptArgs) > 0 && !c.PushArguments(scriptArgs...) {
		return c.Err()
	}

	res, vmErr := d.Run(prog.Script, entry)
	if vmErr != nil {
		fmt.Fprint(cmd.ErrOrStderr(), formatVMError(files[0], vmErr, prog))
		return fmt.Errorf("stopped after %d steps", res.Steps)
	}
	if res.Quit {
		return nil
	}
	if v := c.Result(); v != nil {
		if s, ok := v.AsString(c); ok && s != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "result: %s\n", s)
		}
	}
	return nil
}

func addBreakpoint(d *vm.Debugger, script *bytecode.Script, loc string) error {
	name, pc, err := vm.ParseLocation([]string{loc})
	if err != nil {
		return fmt.Errorf("--break %q: %w", loc, err)
	}
	h := script.HandlerNamed(name, false)
	if h == nil {
		h = script.HandlerNamed(name, true)
	}
	if h == nil {
		return fmt.Errorf("--break %q: no handler %q", loc, name)
	}
	if _, err := d.Breakpoints().Add(h, pc); err != nil {
		return fmt.Errorf("--break %q: %w", loc, err)
	}
	return nil
}
