package vm

import (
	"leo/internal/bytecode"
)

func opInvalid(c *Context, in bytecode.Instruction) {
	c.StopWithError(ErrInvalidInstruction, "Invalid instruction %d encountered.", uint16(in.Opcode))
}

func opExitToTop(c *Context, _ bytecode.Instruction) {
	c.Stop()
}

func opNoOp(*Context, bytecode.Instruction) {}

func opLineMarker(c *Context, in bytecode.Instruction) {
	c.line = int(in.Param2)
}

func opJumpRelative(c *Context, in bytecode.Instruction) {
	c.jump(in.SignedParam2())
}

func opJumpRelativeIfTrue(c *Context, in bytecode.Instruction) {
	if b, ok := c.popBoolean(); ok && b {
		c.jump(in.SignedParam2())
	}
}

func opJumpRelativeIfFalse(c *Context, in bytecode.Instruction) {
	if b, ok := c.popBoolean(); ok && !b {
		c.jump(in.SignedParam2())
	}
}

func opJumpRelativeIfGreaterThanZero(c *Context, in bytecode.Instruction) {
	if n, ok := c.popNumber(); ok && n > 0 {
		c.jump(in.SignedParam2())
	}
}

func opJumpRelativeIfLessThanZero(c *Context, in bytecode.Instruction) {
	if n, ok := c.popNumber(); ok && n < 0 {
		c.jump(in.SignedParam2())
	}
}

func opCallHandler(c *Context, in bytecode.Instruction) {
	c.callHandler(bytecode.HandlerID(in.Param2), in.Param1)
}

func opReturnFromHandler(c *Context, _ bytecode.Instruction) {
	c.returnFromHandler()
}

// opPushParameter pushes a copy of a parameter. References stay references,
// so a handler can write through an argument passed by reference. Missing
// parameters read as unset.
func opPushParameter(c *Context, in bytecode.Instruction) {
	n := int(in.Param1)
	if in.IsBackOfStack() {
		i, ok := c.popInteger()
		if !ok {
			return
		}
		n = int(i)
	}
	p := c.Parameter(n)
	v := c.Push()
	if v == nil {
		return
	}
	if p == nil {
		v.InitUnset(InvalidateReferences, c)
		return
	}
	v.InitCopy(p, InvalidateReferences, c)
}

func opPushParameterCount(c *Context, _ bytecode.Instruction) {
	c.PushInteger(int64(c.ParameterCount()))
}

// opSetReturnValue stores a plain copy of a slot in the caller's return
// slot. References to the return slot stay valid.
func opSetReturnValue(c *Context, in bytecode.Instruction) {
	src := c.target(in.Param1, 0)
	if src == nil {
		return
	}
	dst := c.ReturnSlot()
	if dst == nil {
		c.StopWithError(ErrCallStack, "No return value slot found.")
		return
	}
	if src == dst {
		return
	}
	var tmp Value
	if !tmp.InitSimpleCopy(src, InvalidateReferences, c) {
		return
	}
	dst.CleanUp(KeepReferences, c)
	dst.moveFrom(&tmp)
	if in.IsBackOfStack() {
		c.Pop()
	}
}

// opParameterKeepRefs copies parameter Param2 into slot Param1 without
// invalidating references to the slot.
func opParameterKeepRefs(c *Context, in bytecode.Instruction) {
	dst := c.slot(in.Param1)
	if dst == nil {
		return
	}
	p := c.Parameter(int(in.Param2))
	if p == dst {
		return
	}
	var tmp Value
	if p == nil {
		tmp.InitUnset(InvalidateReferences, c)
	} else {
		tmp.InitCopy(p, InvalidateReferences, c)
	}
	dst.CleanUp(KeepReferences, c)
	dst.moveFrom(&tmp)
}
