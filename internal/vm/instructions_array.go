package vm

import (
	"leo/internal/bytecode"
)

func opPushItemDelimiter(c *Context, _ bytecode.Instruction) {
	c.PushString(string([]byte{c.itemDelimiter}))
}

func opSetItemDelimiter(c *Context, _ bytecode.Instruction) {
	v := c.operand(0)
	if v == nil {
		return
	}
	s, ok := v.AsString(c)
	if !ok {
		return
	}
	if len(s) != 1 {
		c.StopWithError(ErrBadOperand, "The item delimiter must be a single character, not %q.", s)
		return
	}
	c.itemDelimiter = s[0]
	c.Pop()
}

// opPushArrayItem pops a key and pushes a plain copy of the target's entry
// for it, or an empty string when there is none. With BackOfStack the
// array at the back of the stack is replaced by the entry.
func opPushArrayItem(c *Context, in bytecode.Instruction) {
	key, ok := c.popString()
	if !ok {
		return
	}
	t := c.target(in.Param1, 0)
	if t == nil {
		return
	}
	entry, ok := t.ValueForKey(key, c)
	if !ok {
		return
	}
	var tmp Value
	if entry == nil {
		tmp.InitStringConstant("", InvalidateReferences, c)
	} else if !tmp.InitSimpleCopy(entry, InvalidateReferences, c) {
		return
	}
	if in.IsBackOfStack() {
		c.replaceTop(func(v *Value) { v.moveFrom(&tmp) })
		return
	}
	if v := c.Push(); v != nil {
		v.moveFrom(&tmp)
	}
}

// opSetArrayItem pops a key and stores the value below it in the target
// under that key.
func opSetArrayItem(c *Context, in bytecode.Instruction) {
	key, ok := c.popString()
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
	if !t.SetValueForKey(key, src, c) {
		return
	}
	c.Pop()
}

func opDeleteArrayItem(c *Context, in bytecode.Instruction) {
	key, ok := c.popString()
	if !ok {
		return
	}
	t := c.target(in.Param1, 0)
	if t == nil {
		return
	}
	t.DeleteKey(key, c)
}

func opCountArrayItems(c *Context, in bytecode.Instruction) {
	t := c.target(in.Param1, 0)
	if t == nil {
		return
	}
	n, ok := t.KeyCount(c)
	if !ok {
		return
	}
	if in.IsBackOfStack() {
		c.replaceTop(func(v *Value) { v.InitInteger(int64(n), InvalidateReferences, c) })
		return
	}
	c.PushInteger(int64(n))
}
