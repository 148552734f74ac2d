package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"leo/internal/driver"
	"leo/internal/hostio"
	"leo/internal/trace"
	"leo/internal/vm"
)

var (
	runOpts       runFlags
	runJobs       int
	runUI         string
	runVMTrace    bool
	runShowResult bool
)

var runCmd = &cobra.Command{
	Use:   "run [flags] file... [-- args...]",
	Short: "Run the entry command of one or more scripts",
	Long: `Run loads each .leoasm source or .leob image and runs its entry command.
Files run in parallel, each with its own handler group. Arguments after --
are passed to the entry command as strings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExecution,
}

func init() {
	addRunFlags(runCmd, &runOpts)
	runCmd.Flags().IntVarP(&runJobs, "jobs", "j", 0, "files to run in parallel (0 = GOMAXPROCS)")
	runCmd.Flags().StringVar(&runUI, "ui", "off", "show a progress view (auto|on|off)")
	runCmd.Flags().BoolVar(&runVMTrace, "vm-trace", false, "trace every instruction to stderr")
	runCmd.Flags().BoolVar(&runShowResult, "result", false, "print the entry command's return value")
}

func runExecution(cmd *cobra.Command, args []string) error {
	files, scriptArgs := splitArgs(cmd, args)
	if len(files) == 0 {
		return errors.New("no input files")
	}
	cfg := session.config.Run

	entry, ctxOpts, err := runOpts.resolve(cmd, cfg)
	if err != nil {
		return err
	}
	mode, err := readUIMode(runUI)
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	jobs := runJobs
	if !cmd.Flags().Changed("jobs") && cfg.Jobs > 0 {
		jobs = cfg.Jobs
	}
	if runVMTrace {
		ctxOpts.Tracer = vm.NewTracer(cmd.ErrOrStderr())
		jobs = 1
	}

	useUI := shouldUseTUI(mode, len(files))
	var buffered bytes.Buffer
	var out io.Writer = cmd.OutOrStdout()
	if useUI {
		out = &buffered
	}
	table, err := hostio.NewTable(out)
	if err != nil {
		return err
	}

	opts := driver.RunOptions{
		Entry:          entry,
		Args:           scriptArgs,
		Context:        ctxOpts,
		Table:          table,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	}
	tracer := trace.FromContext(cmd.Context())
	span := trace.Begin(tracer, trace.ScopeDriver, "leo run", 0).WithExtra("files", strconv.Itoa(len(files)))
	ctx := trace.WithSpan(cmd.Context(), span)
	defer span.End("")

	var results []driver.RunResult
	if useUI {
		results, err = runFilesWithUI(ctx, "leo run", files, opts)
		if _, copyErr := buffered.WriteTo(cmd.OutOrStdout()); copyErr != nil && err == nil {
			err = copyErr
		}
	} else {
		results, err = driver.RunFiles(ctx, files, opts)
	}
	if err != nil {
		return err
	}

	failed := reportResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), results, quiet)
	if showTimings {
		printTimings(cmd.ErrOrStderr(), results)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// splitArgs separates input files from the arguments after "--".
func splitArgs(cmd *cobra.Command, args []string) (files, scriptArgs []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}

// reportResults prints diagnostics and runtime errors to errOut and
// returns the number of failed files.
func reportResults(out, errOut io.Writer, results []driver.RunResult, quiet bool) int {
	failed := 0
	for _, r := range results {
		if r.Program != nil && r.Program.Bag.Len() > 0 {
			fmt.Fprint(errOut, colorizeDiagnostics(r.Program.Diagnostics()))
		}
		switch {
		case r.Err != nil:
			failed++
			// Assembly failures were already reported as diagnostics.
			if !errors.Is(r.Err, driver.ErrAssembly) {
				fmt.Fprintf(errOut, "%s %v\n", color.RedString("error:"), r.Err)
			}
		case r.VMErr != nil:
			failed++
			fmt.Fprint(errOut, formatVMError(r.Path, r.VMErr, r.Program))
		case runShowResult:
			if len(results) > 1 {
				fmt.Fprintf(out, "%s: %s\n", r.Path, r.Result)
			} else {
				fmt.Fprintln(out, r.Result)
			}
		}
		if !quiet && r.Steps > 0 && len(results) > 1 {
			fmt.Fprintf(errOut, "%s %s (%d steps)\n", statusMark(r.Failed()), r.Path, r.Steps)
		}
	}
	return failed
}

func formatVMError(path string, vmErr *vm.VMError, prog *driver.Program) string {
	var text string
	if prog != nil {
		text = vmErr.FormatWithFile(prog.File)
	} else {
		text = vmErr.FormatWithFile(nil)
	}
	head, rest, _ := strings.Cut(text, "\n")
	return fmt.Sprintf("%s: %s\n%s", path, color.New(color.FgRed, color.Bold).Sprint(head), rest)
}

func colorizeDiagnostics(text string) string {
	if color.NoColor {
		return text
	}
	text = strings.ReplaceAll(text, ": error ", ": "+color.RedString("error")+" ")
	return strings.ReplaceAll(text, ": warning ", ": "+color.YellowString("warning")+" ")
}

func statusMark(failed bool) string {
	if failed {
		return color.RedString("FAIL")
	}
	return color.GreenString("ok")
}
