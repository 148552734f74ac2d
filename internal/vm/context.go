package vm

import (
	"leo/internal/bytecode"
	"leo/internal/chunk"
	"leo/internal/trace"
)

// Defaults for ContextOptions.
const (
	DefaultStackSize    = 1024
	DefaultMaxCallDepth = 256
)

// ContextOptions configures a Context.
type ContextOptions struct {
	StackSize         int    // operand stack capacity, a hard limit
	MaxCallDepth      int    // nested handler calls before a stack overflow error
	ItemDelimiter     byte   // initial item delimiter
	InstructionBudget uint64 // 0 means unlimited

	Tracer      *Tracer      // per-instruction text trace, optional
	Events      trace.Tracer // structured events, optional
	TraceParent uint64       // parent span for Events
}

func (o ContextOptions) withDefaults() ContextOptions {
	if o.StackSize <= 0 {
		o.StackSize = DefaultStackSize
	}
	if o.MaxCallDepth <= 0 {
		o.MaxCallDepth = DefaultMaxCallDepth
	}
	if o.ItemDelimiter == 0 {
		o.ItemDelimiter = chunk.DefaultItemDelimiter
	}
	if o.Events == nil {
		o.Events = trace.Nop
	}
	return o
}

// Frame is one handler activation on the call stack.
type Frame struct {
	Script        *bytecode.Script  // script the handler was found in
	Handler       *bytecode.Handler // the running handler
	ReturnHandler *bytecode.Handler // caller, nil for the entry handler
	ReturnPC      int
	ReturnLine    int
	SavedBase     int // caller's stack base
}

// Context is the execution state of one interpreter. It is not safe for
// concurrent use; run several contexts to get parallelism.
type Context struct {
	group *Group
	table *InstructionTable
	opts  ContextOptions

	stack     []Value
	stackBase int
	stackEnd  int

	script  *bytecode.Script
	handler *bytecode.Handler
	pc      int
	line    int
	advance bool
	frames  []Frame

	itemDelimiter byte
	running       bool
	err           *VMError
	steps         uint64
	traceInstr    bool
	runSpan       uint64

	eb *errorBuilder

	// PreInstruction runs before every instruction. Stopping the context
	// from it skips the instruction.
	PreInstruction func(*Context)
	// Prompt runs when the context stops with an error, before Run returns.
	Prompt func(*Context)
}

// NewContext creates a context in group that dispatches through table. A
// nil table means DefaultTable().
func NewContext(group *Group, table *InstructionTable, opts ContextOptions) *Context {
	if table == nil {
		table = DefaultTable()
	}
	opts = opts.withDefaults()
	c := &Context{
		group:         group,
		table:         table,
		opts:          opts,
		stack:         make([]Value, opts.StackSize),
		itemDelimiter: opts.ItemDelimiter,
	}
	c.eb = &errorBuilder{ctx: c}
	return c
}

// Group returns the context's group.
func (c *Context) Group() *Group { return c.group }

// Table returns the instruction table.
func (c *Context) Table() *InstructionTable { return c.table }

// Script returns the script of the running handler.
func (c *Context) Script() *bytecode.Script { return c.script }

// Handler returns the running handler.
func (c *Context) Handler() *bytecode.Handler { return c.handler }

// PC returns the index of the current instruction in the running handler.
func (c *Context) PC() int { return c.pc }

// Line returns the last source line recorded by a LineMarker.
func (c *Context) Line() int { return c.line }

// Frames returns the call stack, outermost first. The slice must not be
// modified.
func (c *Context) Frames() []Frame { return c.frames }

// Steps returns the number of instructions executed since Reset.
func (c *Context) Steps() uint64 { return c.steps }

// ItemDelimiter returns the current item delimiter.
func (c *Context) ItemDelimiter() byte { return c.itemDelimiter }

// SetItemDelimiter changes the item delimiter.
func (c *Context) SetItemDelimiter(d byte) { c.itemDelimiter = d }

// CurrentInstruction returns the instruction about to run, or nil. The
// pointer is stable for the lifetime of the script.
func (c *Context) CurrentInstruction() *bytecode.Instruction {
	if c.handler == nil || c.pc < 0 || c.pc >= len(c.handler.Instructions) {
		return nil
	}
	return &c.handler.Instructions[c.pc]
}

// StackDepth returns the number of live stack slots.
func (c *Context) StackDepth() int { return c.stackEnd }

// StackBase returns the current frame's base.
func (c *Context) StackBase() int { return c.stackBase }

// Push makes a new slot at the back of the stack and returns it dead, for
// the caller to construct a value in. It returns nil after stopping the
// context when the stack is full.
func (c *Context) Push() *Value {
	if c.stackEnd >= len(c.stack) {
		c.StopWithError(ErrStackOverflow, "Stack overflow.")
		return nil
	}
	v := &c.stack[c.stackEnd]
	c.stackEnd++
	return v
}

// PushNumber pushes a number.
func (c *Context) PushNumber(n float64) *Value {
	v := c.Push()
	if v != nil {
		v.InitNumber(n, InvalidateReferences, c)
	}
	return v
}

// PushInteger pushes an integer.
func (c *Context) PushInteger(n int64) *Value {
	v := c.Push()
	if v != nil {
		v.InitInteger(n, InvalidateReferences, c)
	}
	return v
}

// PushString pushes an owned string.
func (c *Context) PushString(s string) *Value {
	v := c.Push()
	if v != nil {
		v.InitString(s, InvalidateReferences, c)
	}
	return v
}

// PushStringConstant pushes a borrowed string.
func (c *Context) PushStringConstant(s string) *Value {
	v := c.Push()
	if v != nil {
		v.InitStringConstant(s, InvalidateReferences, c)
	}
	return v
}

// PushBoolean pushes a boolean.
func (c *Context) PushBoolean(b bool) *Value {
	v := c.Push()
	if v != nil {
		v.InitBoolean(b, InvalidateReferences, c)
	}
	return v
}

// PushUnset pushes the value of a fresh variable.
func (c *Context) PushUnset() *Value {
	v := c.Push()
	if v != nil {
		v.InitUnset(InvalidateReferences, c)
	}
	return v
}

// Pop cleans up the value at the back of the stack and removes it.
func (c *Context) Pop() bool {
	return c.PopN(1)
}

// PopN pops n values.
func (c *Context) PopN(n int) bool {
	if n > c.stackEnd {
		c.StopWithError(ErrCallStack, "Stack underflow.")
		return false
	}
	for ; n > 0; n-- {
		c.stackEnd--
		c.stack[c.stackEnd].CleanUp(InvalidateReferences, c)
	}
	return true
}

// Back returns the value n slots from the back of the stack (0 is the last
// pushed value), or nil.
func (c *Context) Back(n int) *Value {
	i := c.stackEnd - 1 - n
	if n < 0 || i < 0 {
		return nil
	}
	return &c.stack[i]
}

// Slot resolves an instruction's Param1: BackOfStack or a signed offset
// from the frame base. It returns nil for slots outside the live stack.
func (c *Context) Slot(param1 uint16) *Value {
	if param1 == bytecode.BackOfStack {
		return c.Back(0)
	}
	i := c.stackBase + int(int16(param1)) //nolint:gosec // G115: frame offsets are signed 16-bit immediates
	if i < 0 || i >= c.stackEnd {
		return nil
	}
	return &c.stack[i]
}

// slot is Slot that stops the context when the slot does not exist.
func (c *Context) slot(param1 uint16) *Value {
	v := c.Slot(param1)
	if v == nil {
		c.StopWithError(ErrBadOperand, "Invalid stack slot %d.", int16(param1)) //nolint:gosec // G115: see Slot
	}
	return v
}

// ParameterCount returns the argument count the caller pushed just below
// the frame base, or 0 when there is none.
func (c *Context) ParameterCount() int {
	if c.stackBase < 1 {
		return 0
	}
	cv := &c.stack[c.stackBase-1]
	if cv.kind != KindInteger {
		return 0
	}
	n := int(cv.integer)
	if n < 0 || n > c.stackBase-2 {
		return 0
	}
	return n
}

// Parameter returns argument n (1-based) of the running handler, or nil.
func (c *Context) Parameter(n int) *Value {
	count := c.ParameterCount()
	if n < 1 || n > count {
		return nil
	}
	return &c.stack[c.stackBase-2-count+n]
}

// ReturnSlot returns the slot the caller reserved for the return value, or
// nil.
func (c *Context) ReturnSlot() *Value {
	if c.stackBase < 2 {
		return nil
	}
	i := c.stackBase - 2 - c.ParameterCount()
	if i < 0 {
		return nil
	}
	return &c.stack[i]
}

// PushArguments pushes the calling convention block for an entry handler:
// an unset return slot, args as strings, then the count.
func (c *Context) PushArguments(args ...string) bool {
	if c.PushUnset() == nil {
		return false
	}
	for _, a := range args {
		if c.PushString(a) == nil {
			return false
		}
	}
	return c.PushInteger(int64(len(args))) != nil
}

// Result returns the entry handler's return value after a run, or nil
// when no arguments block was pushed.
func (c *Context) Result() *Value {
	if c.stackEnd < 2 || c.stack[0].IsDead() {
		return nil
	}
	return &c.stack[0]
}
