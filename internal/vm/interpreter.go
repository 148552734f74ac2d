package vm

import (
	"fmt"
	"strconv"

	"leo/internal/bytecode"
	"leo/internal/trace"
)

// Prepare makes handler of script the entry point of the next run. When
// the stack is empty an empty argument block is pushed first, so the
// handler always has a return slot and a parameter count below its base.
func (c *Context) Prepare(script *bytecode.Script, handler *bytecode.Handler) bool {
	if c.err != nil {
		return false
	}
	if script == nil {
		c.StopWithError(ErrCallStack, "No current script found.")
		return false
	}
	if handler == nil {
		c.StopWithError(ErrCallStack, "No current handler found.")
		return false
	}
	if c.stackEnd == 0 && !c.PushArguments() {
		return false
	}
	c.frames = append(c.frames, Frame{
		Script:    script,
		Handler:   handler,
		SavedBase: c.stackBase,
	})
	c.stackBase = c.stackEnd
	c.script = script
	c.handler = handler
	c.pc = 0
	c.line = 0
	c.running = true
	c.traceInstr = c.opts.Events.Level().ShouldEmit(trace.ScopeInstr)
	return true
}

// Run executes handler of script until it returns, exits or fails. The
// returned error is the one the context stopped with, if any.
func (c *Context) Run(script *bytecode.Script, handler *bytecode.Handler) *VMError {
	if !c.Prepare(script, handler) {
		return c.err
	}

	span := trace.Begin(c.opts.Events, trace.ScopeRun, "run "+handler.Name, c.opts.TraceParent)
	c.runSpan = span.ID()
	for c.running {
		c.Step()
	}
	span.WithExtra("steps", strconv.FormatUint(c.steps, 10))
	if c.err != nil {
		span.End(c.err.Code.String())
	} else {
		span.End("")
	}
	c.runSpan = 0
	return c.err
}

// Step executes one instruction and reports whether the context is still
// running. Running past the last instruction of a handler returns from it.
func (c *Context) Step() bool {
	if !c.running {
		return false
	}
	if c.handler == nil {
		c.StopWithError(ErrCallStack, "No current handler found.")
		return false
	}
	if c.pc >= len(c.handler.Instructions) {
		c.returnFromHandler()
		return c.running
	}
	if c.opts.InstructionBudget > 0 && c.steps >= c.opts.InstructionBudget {
		c.StopWithError(ErrBudgetExhausted, "Instruction budget of %d exhausted.", c.opts.InstructionBudget)
		return false
	}
	if c.PreInstruction != nil {
		c.PreInstruction(c)
		if !c.running {
			return false
		}
	}

	in := c.handler.Instructions[c.pc]
	if c.opts.Tracer != nil {
		c.opts.Tracer.TraceInstr(c, in)
	}
	if c.traceInstr {
		trace.Point(c.opts.Events, trace.ScopeInstr, c.table.OpcodeName(in.Opcode),
			c.handler.Name+" pc="+strconv.Itoa(c.pc), c.runSpan)
	}

	c.steps++
	c.advance = true
	c.table.lookup(in.Opcode)(c, in)
	if c.advance {
		c.pc++
	}
	return c.running
}

// Running reports whether the context is executing.
func (c *Context) Running() bool { return c.running }

// Err returns the error the context stopped with, or nil.
func (c *Context) Err() *VMError { return c.err }

// Stop halts the context without an error. Call frames are left in place.
func (c *Context) Stop() { c.running = false }

// StopWithError records an error and halts the context.
func (c *Context) StopWithError(code ErrorCode, format string, args ...any) {
	c.fail(c.eb.makeError(code, fmt.Sprintf(format, args...)))
}

// fail halts the context. The first error is kept; the prompt hook runs
// once for it.
func (c *Context) fail(e *VMError) {
	c.running = false
	if c.err != nil {
		return
	}
	c.err = e
	trace.Error(c.opts.Events, trace.ScopeRun, e.Error(), c.runSpan)
	if c.Prompt != nil {
		c.Prompt(c)
	}
}

// Reset disposes every stack value and clears all registers, so the
// context can run again.
func (c *Context) Reset() {
	c.PopN(c.stackEnd)
	c.stackBase = 0
	c.frames = c.frames[:0]
	c.script = nil
	c.handler = nil
	c.pc = 0
	c.line = 0
	c.running = false
	c.err = nil
	c.steps = 0
	c.itemDelimiter = c.opts.ItemDelimiter
}

// jump moves the program counter by offset relative to the current
// instruction. The target may be one past the end, which returns.
func (c *Context) jump(offset int32) {
	target := c.pc + int(offset)
	if target < 0 || target > len(c.handler.Instructions) {
		c.StopWithError(ErrBadOperand, "Jump target %d is outside handler %q.", target, c.handler.Name)
		return
	}
	c.pc = target
	c.advance = false
}

// callHandler enters a handler of the current script. The caller has
// already pushed the return slot, the arguments and their count.
func (c *Context) callHandler(id bytecode.HandlerID, flags uint16) {
	if c.script == nil {
		c.StopWithError(ErrCallStack, "No current script found.")
		return
	}
	h := c.script.Lookup(id, flags)
	if h == nil {
		c.StopWithError(ErrCallStack, "Couldn't find handler %q.", c.group.HandlerName(id))
		return
	}
	if len(c.frames) >= c.opts.MaxCallDepth {
		c.StopWithError(ErrStackOverflow, "Too many nested handler calls (%d).", len(c.frames))
		return
	}
	c.frames = append(c.frames, Frame{
		Script:        c.script,
		Handler:       h,
		ReturnHandler: c.handler,
		ReturnPC:      c.pc + 1,
		ReturnLine:    c.line,
		SavedBase:     c.stackBase,
	})
	trace.Point(c.opts.Events, trace.ScopeHandler, "call", h.Name, c.runSpan)
	c.stackBase = c.stackEnd
	c.handler = h
	c.pc = 0
	c.advance = false
}

// returnFromHandler pops the current frame. The operand stack is left
// alone; the caller pops the arguments itself. Returning from the entry
// handler ends the run.
func (c *Context) returnFromHandler() {
	if len(c.frames) == 0 {
		c.StopWithError(ErrCallStack, "attempted to return from handler that has never been called")
		return
	}
	top := len(c.frames) - 1
	f := c.frames[top]
	c.frames[top] = Frame{}
	c.frames = c.frames[:top]
	c.stackBase = f.SavedBase
	c.advance = false

	if f.ReturnHandler == nil {
		c.handler = nil
		c.pc = 0
		c.running = false
		return
	}
	trace.Point(c.opts.Events, trace.ScopeHandler, "return", f.Handler.Name, c.runSpan)
	c.handler = f.ReturnHandler
	c.pc = f.ReturnPC
	c.line = f.ReturnLine
	c.script = c.frames[len(c.frames)-1].Script
}

// CheckInvariants verifies the stack discipline: every slot past the end
// of the stack has been cleaned up and the frame bases are ordered.
func (c *Context) CheckInvariants() error {
	if c.stackBase > c.stackEnd {
		return fmt.Errorf("stack base %d is above stack end %d", c.stackBase, c.stackEnd)
	}
	for i := c.stackEnd; i < len(c.stack); i++ {
		v := &c.stack[i]
		if !v.IsDead() {
			return fmt.Errorf("slot %d past the stack end holds a %s", i, v.kind)
		}
		if v.refObjectID != 0 {
			return fmt.Errorf("slot %d past the stack end is still registered for references", i)
		}
	}
	prev := 0
	for i, f := range c.frames {
		if f.SavedBase < prev {
			return fmt.Errorf("frame %d saved base %d is below the previous frame's %d", i, f.SavedBase, prev)
		}
		prev = f.SavedBase
	}
	if prev > c.stackBase {
		return fmt.Errorf("innermost saved base %d is above the current base %d", prev, c.stackBase)
	}
	return nil
}
