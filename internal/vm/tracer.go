package vm

import (
	"fmt"
	"io"

	"leo/internal/bytecode"
)

// Tracer outputs execution traces for debugging.
type Tracer struct {
	w io.Writer
}

// NewTracer creates a new tracer that writes to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// TraceInstr traces an instruction before it executes.
// Format: [depth=N] <handler> pc=K <instr> | sp=S bp=B top=<value>
func (t *Tracer) TraceInstr(c *Context, in bytecode.Instruction) {
	if t == nil || t.w == nil {
		return
	}

	name := "<no handler>"
	if c.handler != nil {
		name = c.handler.Name
	}
	instr := bytecode.DisassembleInstruction(in, c.script, c.table, c.group)

	fmt.Fprintf(t.w, "[depth=%d] %s pc=%d %s | sp=%d bp=%d", //nolint:errcheck
		len(c.frames), name, c.pc, instr, c.stackEnd, c.stackBase)
	if top := c.Back(0); top != nil {
		fmt.Fprintf(t.w, " top=%s", c.Describe(top)) //nolint:errcheck
	}
	fmt.Fprintln(t.w) //nolint:errcheck
}
