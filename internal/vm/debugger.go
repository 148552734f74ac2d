package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"leo/internal/bytecode"
)

// Debugger is a line-oriented debugger for one Context. It drives the
// context through its PreInstruction and Prompt hooks.
type Debugger struct {
	ctx         *Context
	breakpoints *Breakpoints

	in          *bufio.Scanner
	out         io.Writer
	interactive bool

	stepping bool
	detached bool
	quit     bool
}

// DebuggerResult contains the result of a debugger session.
type DebuggerResult struct {
	Steps uint64
	Quit  bool
}

// NewDebugger attaches a debugger to c, replacing its hooks.
func NewDebugger(c *Context, in io.Reader, out io.Writer, interactive bool) *Debugger {
	if in == nil {
		in = strings.NewReader("")
	}
	if out == nil {
		out = io.Discard
	}
	d := &Debugger{
		ctx:         c,
		breakpoints: NewBreakpoints(),
		in:          bufio.NewScanner(in),
		out:         out,
		interactive: interactive,
	}
	c.PreInstruction = d.beforeInstruction
	c.Prompt = d.onError
	return d
}

// Breakpoints returns the breakpoints collection.
func (d *Debugger) Breakpoints() *Breakpoints {
	if d == nil {
		return nil
	}
	return d.breakpoints
}

// Run executes handler under the debugger, stopping before its first
// instruction. When the command input ends the program runs to completion
// without further stops.
func (d *Debugger) Run(script *bytecode.Script, handler *bytecode.Handler) (DebuggerResult, *VMError) {
	d.stepping = true
	vmErr := d.ctx.Run(script, handler)
	return DebuggerResult{Steps: d.ctx.Steps(), Quit: d.quit}, vmErr
}

func (d *Debugger) beforeInstruction(c *Context) {
	if d.detached {
		return
	}
	bp, hit := d.breakpoints.Match(c.CurrentInstruction())
	if !hit && !d.stepping {
		return
	}
	if hit {
		fmt.Fprintf(d.out, "stopped: breakpoint #%d\n", bp.ID) //nolint:errcheck
	}
	d.printLocation()
	d.commandLoop()
}

func (d *Debugger) onError(c *Context) {
	if d.detached {
		return
	}
	fmt.Fprintf(d.out, "stopped: %s\n", c.Err().Error()) //nolint:errcheck
	d.printLocation()
	d.commandLoop()
}

// commandLoop reads commands until one resumes execution.
func (d *Debugger) commandLoop() {
	for {
		if d.interactive {
			fmt.Fprint(d.out, "(leodb) ") //nolint:errcheck
		}
		if !d.in.Scan() {
			d.detached = true
			return
		}
		line := strings.TrimSpace(d.in.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if d.execCommand(line) {
			return
		}
	}
}

// execCommand runs one command and reports whether execution resumes.
func (d *Debugger) execCommand(line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "help", "h":
		d.help()
	case "step", "s":
		d.stepping = true
		return true
	case "continue", "c":
		d.stepping = false
		return true
	case "break", "b":
		if err := d.cmdBreak(args); err != nil {
			fmt.Fprintf(d.out, "error: %s\n", err.Error()) //nolint:errcheck
		}
	case "delete":
		if len(args) != 1 {
			fmt.Fprintln(d.out, "error: delete expects <id>") //nolint:errcheck
			return false
		}
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			fmt.Fprintln(d.out, "error: invalid breakpoint id") //nolint:errcheck
			return false
		}
		if !d.breakpoints.Delete(id) {
			fmt.Fprintln(d.out, "error: unknown breakpoint id") //nolint:errcheck
		}
	case "breaks":
		d.cmdBreaks()
	case "list", "l":
		d.cmdList()
	case "stack":
		d.cmdStack()
	case "bt":
		d.cmdBacktrace()
	case "print", "p":
		if len(args) != 1 {
			fmt.Fprintln(d.out, "error: print expects <offset|bos>") //nolint:errcheck
			return false
		}
		d.cmdPrint(args[0])
	case "quit", "q":
		d.quit = true
		d.detached = true
		d.ctx.Stop()
		return true
	default:
		fmt.Fprintln(d.out, "error: unknown command") //nolint:errcheck
	}
	return false
}

func (d *Debugger) cmdBreak(args []string) error {
	name, pc, err := ParseLocation(args)
	if err != nil {
		return err
	}
	s := d.ctx.Script()
	if s == nil {
		return fmt.Errorf("no script loaded")
	}
	h := s.HandlerNamed(name, false)
	if h == nil {
		h = s.HandlerNamed(name, true)
	}
	if h == nil {
		return fmt.Errorf("unknown handler %q", name)
	}
	bp, err := d.breakpoints.Add(h, pc)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "breakpoint %s\n", bp.Summary()) //nolint:errcheck
	return nil
}

func (d *Debugger) cmdBreaks() {
	fmt.Fprintln(d.out, "breakpoints:") //nolint:errcheck
	for _, bp := range d.breakpoints.List() {
		fmt.Fprintf(d.out, "  %s\n", bp.Summary()) //nolint:errcheck
	}
}

func (d *Debugger) cmdList() {
	c := d.ctx
	h := c.Handler()
	if h == nil {
		fmt.Fprintln(d.out, "error: no current handler") //nolint:errcheck
		return
	}
	for i, in := range h.Instructions {
		marker := "  "
		if i == c.PC() {
			marker = "=>"
		}
		fmt.Fprintf(d.out, "%s %04d %s\n", marker, i, bytecode.DisassembleInstruction(in, c.Script(), c.Table(), c.Group())) //nolint:errcheck
	}
}

func (d *Debugger) cmdStack() {
	c := d.ctx
	if c.StackDepth() == 0 {
		fmt.Fprintln(d.out, "stack: empty") //nolint:errcheck
		return
	}
	fmt.Fprintf(d.out, "stack: sp=%d bp=%d\n", c.StackDepth(), c.StackBase()) //nolint:errcheck
	for i := c.StackDepth() - 1; i >= 0; i-- {
		marker := "  "
		if i == c.StackBase() {
			marker = "bp"
		}
		fmt.Fprintf(d.out, "  %s %+5d  %s\n", marker, i-c.StackBase(), c.Describe(&c.stack[i])) //nolint:errcheck
	}
}

func (d *Debugger) cmdBacktrace() {
	c := d.ctx
	type row struct {
		name     string
		pc, line int
	}
	var rows []row
	if h := c.Handler(); h != nil {
		rows = append(rows, row{h.Name, c.PC(), c.Line()})
	}
	for i := len(c.frames) - 1; i >= 0; i-- {
		f := &c.frames[i]
		if f.ReturnHandler != nil {
			rows = append(rows, row{f.ReturnHandler.Name, f.ReturnPC - 1, f.ReturnLine})
		}
	}
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.name))
	}
	for i, r := range rows {
		fmt.Fprintf(d.out, "  #%d %s pc=%d", i, runewidth.FillRight(r.name, width), r.pc) //nolint:errcheck
		if r.line > 0 {
			fmt.Fprintf(d.out, " line %d", r.line) //nolint:errcheck
		}
		fmt.Fprintln(d.out) //nolint:errcheck
	}
}

func (d *Debugger) cmdPrint(arg string) {
	c := d.ctx
	var v *Value
	if arg == "bos" {
		v = c.Back(0)
	} else {
		off, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintf(d.out, "error: invalid offset %q\n", arg) //nolint:errcheck
			return
		}
		if i := c.StackBase() + off; i >= 0 && i < c.StackDepth() {
			v = &c.stack[i]
		}
	}
	if v == nil {
		fmt.Fprintln(d.out, "error: no such slot") //nolint:errcheck
		return
	}
	fmt.Fprintln(d.out, c.Describe(v)) //nolint:errcheck
}

func (d *Debugger) printLocation() {
	c := d.ctx
	h := c.Handler()
	if h == nil {
		return
	}
	instr := "<end>"
	if in := c.CurrentInstruction(); in != nil {
		instr = bytecode.DisassembleInstruction(*in, c.Script(), c.Table(), c.Group())
	}
	fmt.Fprintf(d.out, "at %s pc=%d %s\n", h.Name, c.PC(), instr) //nolint:errcheck
}

func (d *Debugger) help() {
	fmt.Fprintln(d.out, "commands:")                //nolint:errcheck
	fmt.Fprintln(d.out, "  help|h")                 //nolint:errcheck
	fmt.Fprintln(d.out, "  step|s")                 //nolint:errcheck
	fmt.Fprintln(d.out, "  continue|c")             //nolint:errcheck
	fmt.Fprintln(d.out, "  break|b <handler> [pc]") //nolint:errcheck
	fmt.Fprintln(d.out, "  delete <id>")            //nolint:errcheck
	fmt.Fprintln(d.out, "  breaks")                 //nolint:errcheck
	fmt.Fprintln(d.out, "  list|l")                 //nolint:errcheck
	fmt.Fprintln(d.out, "  stack")                  //nolint:errcheck
	fmt.Fprintln(d.out, "  bt")                     //nolint:errcheck
	fmt.Fprintln(d.out, "  print|p <offset|bos>")   //nolint:errcheck
	fmt.Fprintln(d.out, "  quit|q")                 //nolint:errcheck
}
