package vm

import (
	"leo/internal/bytecode"
	"leo/internal/chunk"
)

// baseInstructions is indexed by opcode and must list every base opcode.
var baseInstructions = [bytecode.OpFirstHostOpcode]InstructionFunc{
	bytecode.OpInvalid:                       opInvalid,
	bytecode.OpExitToTop:                     opExitToTop,
	bytecode.OpNoOp:                          opNoOp,
	bytecode.OpPushStringFromTable:           opPushStringFromTable,
	bytecode.OpJumpRelative:                  opJumpRelative,
	bytecode.OpJumpRelativeIfTrue:            opJumpRelativeIfTrue,
	bytecode.OpJumpRelativeIfFalse:           opJumpRelativeIfFalse,
	bytecode.OpJumpRelativeIfGreaterThanZero: opJumpRelativeIfGreaterThanZero,
	bytecode.OpJumpRelativeIfLessThanZero:    opJumpRelativeIfLessThanZero,
	bytecode.OpPopValue:                      opPopValue,
	bytecode.OpPushReference:                 opPushReference,
	bytecode.OpPushChunkReference:            opPushChunkReference,
	bytecode.OpPushChunk:                     opPushChunk,
	bytecode.OpSetChunk:                      opSetChunk,
	bytecode.OpDeleteChunk:                   opDeleteChunk,
	bytecode.OpCountChunks:                   opCountChunks,
	bytecode.OpPushNumber:                    opPushNumber,
	bytecode.OpPushInteger:                   opPushInteger,
	bytecode.OpPushBoolean:                   opPushBoolean,
	bytecode.OpPushUnsetValue:                opPushUnsetValue,
	bytecode.OpPushCopy:                      opPushCopy,
	bytecode.OpPutValueIntoValue:             opPutValueIntoValue,
	bytecode.OpCallHandler:                   opCallHandler,
	bytecode.OpReturnFromHandler:             opReturnFromHandler,
	bytecode.OpPushParameter:                 opPushParameter,
	bytecode.OpPushParameterCount:            opPushParameterCount,
	bytecode.OpSetReturnValue:                opSetReturnValue,
	bytecode.OpParameterKeepRefs:             opParameterKeepRefs,
	bytecode.OpAdd:                           opAdd,
	bytecode.OpSubtract:                      opSubtract,
	bytecode.OpMultiply:                      opMultiply,
	bytecode.OpDivide:                        opDivide,
	bytecode.OpModulo:                        opModulo,
	bytecode.OpPower:                         opPower,
	bytecode.OpNegate:                        opNegate,
	bytecode.OpConcatenate:                   opConcatenate,
	bytecode.OpAnd:                           opAnd,
	bytecode.OpOr:                            opOr,
	bytecode.OpNot:                           opNot,
	bytecode.OpEqual:                         compareOp(func(c int) bool { return c == 0 }),
	bytecode.OpNotEqual:                      compareOp(func(c int) bool { return c != 0 }),
	bytecode.OpLessThan:                      compareOp(func(c int) bool { return c < 0 }),
	bytecode.OpGreaterThan:                   compareOp(func(c int) bool { return c > 0 }),
	bytecode.OpLessThanOrEqual:               compareOp(func(c int) bool { return c <= 0 }),
	bytecode.OpGreaterThanOrEqual:            compareOp(func(c int) bool { return c >= 0 }),
	bytecode.OpPushItemDelimiter:             opPushItemDelimiter,
	bytecode.OpSetItemDelimiter:              opSetItemDelimiter,
	bytecode.OpPushArrayItem:                 opPushArrayItem,
	bytecode.OpSetArrayItem:                  opSetArrayItem,
	bytecode.OpDeleteArrayItem:               opDeleteArrayItem,
	bytecode.OpCountArrayItems:               opCountArrayItems,
	bytecode.OpLineMarker:                    opLineMarker,
}

// operand returns the value n slots from the back of the stack, stopping
// the context on underflow.
func (c *Context) operand(n int) *Value {
	v := c.Back(n)
	if v == nil {
		c.StopWithError(ErrCallStack, "Stack underflow.")
		return nil
	}
	return v
}

// target resolves Param1 for instructions that operate on a slot. With
// BackOfStack it is the value depth slots from the back.
func (c *Context) target(param1 uint16, depth int) *Value {
	if param1 == bytecode.BackOfStack {
		return c.operand(depth)
	}
	return c.slot(param1)
}

func (c *Context) popInteger() (int64, bool) {
	v := c.operand(0)
	if v == nil {
		return 0, false
	}
	n, ok := v.AsInteger(c)
	if !ok {
		return 0, false
	}
	return n, c.Pop()
}

func (c *Context) popNumber() (float64, bool) {
	v := c.operand(0)
	if v == nil {
		return 0, false
	}
	n, ok := v.AsNumber(c)
	if !ok {
		return 0, false
	}
	return n, c.Pop()
}

func (c *Context) popBoolean() (bool, bool) {
	v := c.operand(0)
	if v == nil {
		return false, false
	}
	b, ok := v.AsBoolean(c)
	if !ok {
		return false, false
	}
	return b, c.Pop()
}

func (c *Context) popString() (string, bool) {
	v := c.operand(0)
	if v == nil {
		return "", false
	}
	s, ok := v.AsString(c)
	if !ok {
		return "", false
	}
	return s, c.Pop()
}

// popChunkRange pops the 1-based end and start of a chunk expression and
// returns them 0-based.
func (c *Context) popChunkRange() (start, end int, ok bool) {
	e, ok := c.popInteger()
	if !ok {
		return 0, 0, false
	}
	s, ok := c.popInteger()
	if !ok {
		return 0, 0, false
	}
	return int(s) - 1, int(e) - 1, true
}

func (c *Context) chunkType(param2 uint32) (chunk.Type, bool) {
	typ := chunk.Type(param2) //nolint:gosec // G115: validated below
	if param2 > uint32(chunk.Word) || typ == chunk.Invalid {
		c.StopWithError(ErrBadOperand, "Invalid chunk type %d.", param2)
		return chunk.Invalid, false
	}
	return typ, true
}

// replaceTop disposes the value at the back of the stack and constructs a
// new one in its slot.
func (c *Context) replaceTop(init func(v *Value)) {
	top := c.Back(0)
	top.CleanUp(InvalidateReferences, c)
	init(top)
}
