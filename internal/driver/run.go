package driver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"leo/internal/observ"
	"leo/internal/trace"
	"leo/internal/vm"
)

// DefaultEntry is the command RunFiles starts when none is configured.
const DefaultEntry = "main"

// RunOptions configures RunFiles.
type RunOptions struct {
	Entry          string   // command to run, DefaultEntry if empty
	Args           []string // passed to the entry command as strings
	Context        vm.ContextOptions
	Table          *vm.InstructionTable
	Jobs           int // parallel files, GOMAXPROCS if <= 0
	MaxDiagnostics int
	Progress       ProgressSink
}

// RunResult is the outcome of running one file.
type RunResult struct {
	Path    string
	Program *Program // nil when the file could not be read
	Err     error    // load, assembly or entry lookup failure
	VMErr   *vm.VMError
	Result  string // string form of the entry command's return value
	Steps   uint64
	Timer   *observ.Timer
}

// Failed reports whether the file failed to load or run.
func (r *RunResult) Failed() bool {
	return r.Err != nil || r.VMErr != nil
}

// RunFiles loads every file and runs its entry command, each in its own
// group and context. Files run in parallel; a failing file does not stop
// the others. The returned error is only set when ctx is cancelled.
func RunFiles(ctx context.Context, files []string, opts RunOptions) ([]RunResult, error) {
	if opts.Entry == "" {
		opts.Entry = DefaultEntry
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]RunResult, len(files))
	if len(files) == 0 {
		return results, nil
	}
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			// results[i] is only written by this goroutine.
			results[i] = runFile(gctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runFile(ctx context.Context, path string, opts RunOptions) RunResult {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "file "+path, trace.CurrentSpan(ctx).SpanID)
	res := RunResult{Path: path, Timer: observ.NewTimer()}
	defer func() {
		detail := ""
		if res.Failed() {
			detail = "failed"
		}
		span.WithExtra("steps", strconv.FormatUint(res.Steps, 10)).End(detail)
	}()

	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	endLoad := res.Timer.Start("load")
	prog, err := Load(path, LoadOptions{Table: opts.Table, MaxDiagnostics: opts.MaxDiagnostics})
	res.Program = prog
	if err != nil {
		res.Err = err
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: endLoad("")})
		return res
	}
	endLoad(fmt.Sprintf("%d handlers", len(prog.Script.Commands())+len(prog.Script.Functions())))

	entry, err := prog.Entry(opts.Entry)
	if err != nil {
		res.Err = err
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
		return res
	}

	emit(opts.Progress, Event{File: path, Stage: StageRun, Status: StatusWorking})
	copts := opts.Context
	copts.Events = tracer
	copts.TraceParent = span.ID()
	c := vm.NewContext(prog.Group, prog.Table, copts)
	if done := ctx.Done(); done != nil {
		c.PreInstruction = func(c *vm.Context) {
			select {
			case <-done:
				c.StopWithError(vm.ErrHost, "Run cancelled.")
			default:
			}
		}
	}

	endRun := res.Timer.Start("run")
	if len(opts.Args) > 0 && !c.PushArguments(opts.Args...) {
		res.VMErr = c.Err()
	} else {
		res.VMErr = c.Run(prog.Script, entry)
	}
	res.Steps = c.Steps()
	elapsed := endRun(strconv.FormatUint(res.Steps, 10) + " steps")

	if res.VMErr != nil {
		emit(opts.Progress, Event{File: path, Stage: StageRun, Status: StatusError, Err: res.VMErr, Elapsed: elapsed})
		return res
	}
	if v := c.Result(); v != nil {
		if s, ok := v.AsString(c); ok {
			res.Result = s
		}
	}
	emit(opts.Progress, Event{File: path, Stage: StageRun, Status: StatusDone, Elapsed: elapsed})
	return res
}
