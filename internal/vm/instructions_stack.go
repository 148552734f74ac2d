package vm

import (
	"leo/internal/bytecode"
	"leo/internal/chunk"
)

func opPushStringFromTable(c *Context, in bytecode.Instruction) {
	s, ok := c.script.String(in.Param2)
	if !ok {
		c.StopWithError(ErrBadOperand, "Invalid string table index %d.", in.Param2)
		return
	}
	c.PushStringConstant(s)
}

func opPushNumber(c *Context, in bytecode.Instruction) {
	c.PushNumber(float64(in.FloatParam2()))
}

func opPushInteger(c *Context, in bytecode.Instruction) {
	c.PushInteger(int64(in.SignedParam2()))
}

func opPushBoolean(c *Context, in bytecode.Instruction) {
	c.PushBoolean(in.Param2 != 0)
}

func opPushUnsetValue(c *Context, _ bytecode.Instruction) {
	c.PushUnset()
}

func opPopValue(c *Context, _ bytecode.Instruction) {
	c.Pop()
}

// opPushCopy pushes a plain copy of a slot: references are dereferenced and
// variants lose their variant tag.
func opPushCopy(c *Context, in bytecode.Instruction) {
	src := c.target(in.Param1, 0)
	if src == nil {
		return
	}
	var tmp Value
	if !tmp.InitSimpleCopy(src, InvalidateReferences, c) {
		return
	}
	if v := c.Push(); v != nil {
		v.moveFrom(&tmp)
	}
}

// opPutValueIntoValue assigns the value at the back of the stack to the
// destination slot (or the value below it) and pops it.
func opPutValueIntoValue(c *Context, in bytecode.Instruction) {
	src := c.operand(0)
	if src == nil {
		return
	}
	dst := c.target(in.Param1, 1)
	if dst == nil {
		return
	}
	if dst != src && !src.PutInto(dst, c) {
		return
	}
	c.Pop()
}

func opPushReference(c *Context, in bytecode.Instruction) {
	t := c.target(in.Param1, 0)
	if t == nil {
		return
	}
	if v := c.Push(); v != nil {
		v.InitReference(t, InvalidateReferences, c)
	}
}

// opPushChunkReference pops a chunk range and pushes a reference to that
// chunk of a slot. With BackOfStack the reference at the back of the stack
// is narrowed in place.
func opPushChunkReference(c *Context, in bytecode.Instruction) {
	typ, ok := c.chunkType(in.Param2)
	if !ok {
		return
	}
	start, end, ok := c.popChunkRange()
	if !ok {
		return
	}
	if !in.IsBackOfStack() {
		t := c.slot(in.Param1)
		if t == nil {
			return
		}
		if v := c.Push(); v != nil {
			v.InitChunkReference(t, typ, start, end, InvalidateReferences, c)
		}
		return
	}

	top := c.operand(0)
	if top == nil {
		return
	}
	if top.kind != KindReference {
		c.fail(c.eb.typeMismatch("reference", top.kind.TypeName()))
		return
	}
	var outer Value
	outer.InitCopy(top, InvalidateReferences, c)
	var tmp Value
	if !tmp.InitChunkReference(&outer, typ, start, end, InvalidateReferences, c) {
		return
	}
	c.replaceTop(func(v *Value) { v.moveFrom(&tmp) })
}

// opPushChunk pops a chunk range and pushes the chunk's text as a string.
func opPushChunk(c *Context, in bytecode.Instruction) {
	typ, ok := c.chunkType(in.Param2)
	if !ok {
		return
	}
	start, end, ok := c.popChunkRange()
	if !ok {
		return
	}
	t := c.target(in.Param1, 0)
	if t == nil {
		return
	}
	s, ok := t.RangeAsString(typ, start, end, c)
	if !ok {
		return
	}
	if in.IsBackOfStack() {
		c.replaceTop(func(v *Value) { v.InitString(s, InvalidateReferences, c) })
		return
	}
	c.PushString(s)
}

// opSetChunk pops a chunk range and a value and replaces that chunk of the
// target with the value's text.
func opSetChunk(c *Context, in bytecode.Instruction) {
	typ, ok := c.chunkType(in.Param2)
	if !ok {
		return
	}
	start, end, ok := c.popChunkRange()
	if !ok {
		return
	}
	src := c.operand(0)
	if src == nil {
		return
	}
	t := c.target(in.Param1, 1)
	if t == nil {
		return
	}
	text, ok := src.AsString(c)
	if !ok {
		return
	}
	if !t.SetRangeAsString(typ, start, end, text, c) {
		return
	}
	c.Pop()
}

// opDeleteChunk pops a chunk range and removes the chunk together with its
// delimiter.
func opDeleteChunk(c *Context, in bytecode.Instruction) {
	typ, ok := c.chunkType(in.Param2)
	if !ok {
		return
	}
	start, end, ok := c.popChunkRange()
	if !ok {
		return
	}
	t := c.target(in.Param1, 0)
	if t == nil {
		return
	}
	r, ok := t.DetermineChunkRange(typ, start, end, c)
	if !ok {
		return
	}
	t.SetPredeterminedRange(r.DelStart, r.DelEnd, "", c)
}

func opCountChunks(c *Context, in bytecode.Instruction) {
	typ, ok := c.chunkType(in.Param2)
	if !ok {
		return
	}
	t := c.target(in.Param1, 0)
	if t == nil {
		return
	}
	s, ok := t.AsString(c)
	if !ok {
		return
	}
	n := int64(chunk.Count(s, typ, c.itemDelimiter))
	if in.IsBackOfStack() {
		c.replaceTop(func(v *Value) { v.InitInteger(n, InvalidateReferences, c) })
		return
	}
	c.PushInteger(n)
}
