package bytecode

import (
	"fmt"

	"fortio.org/safecast"
)

// Opcode selects the instruction function that executes an Instruction.
// The base set below is always present and numbered in this order; hosts
// append their own opcodes after OpFirstHostOpcode.
type Opcode uint16

const (
	// Control
	OpInvalid  Opcode = iota // reserved; also the fallback for unknown opcodes
	OpExitToTop              // stop the context without an error
	OpNoOp                   // do nothing

	// Constants
	OpPushStringFromTable // push script string Param2 as a string constant

	// Branches (Param2 is a signed offset relative to the branch itself)
	OpJumpRelative
	OpJumpRelativeIfTrue
	OpJumpRelativeIfFalse
	OpJumpRelativeIfGreaterThanZero
	OpJumpRelativeIfLessThanZero

	// Stack and references
	OpPopValue
	OpPushReference      // Param1: slot; push a reference to it
	OpPushChunkReference // Param1: slot or BackOfStack, Param2: chunk type
	OpPushChunk          // Param1: slot or BackOfStack, Param2: chunk type
	OpSetChunk           // Param1: slot, Param2: chunk type
	OpDeleteChunk        // Param1: slot, Param2: chunk type
	OpCountChunks        // Param1: slot or BackOfStack, Param2: chunk type
	OpPushNumber         // Param2: float32 bits
	OpPushInteger        // Param2: int32
	OpPushBoolean        // Param2: 0 or 1
	OpPushUnsetValue
	OpPushCopy          // Param1: slot or BackOfStack
	OpPutValueIntoValue // Param1: destination slot or BackOfStack

	// Handlers
	OpCallHandler // Param1: call flags, Param2: handler id
	OpReturnFromHandler
	OpPushParameter // Param1: 1-based index or BackOfStack
	OpPushParameterCount
	OpSetReturnValue    // Param1: source slot or BackOfStack
	OpParameterKeepRefs // Param1: destination slot, Param2: 1-based index

	// Arithmetic
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpPower
	OpNegate

	// Strings and logic
	OpConcatenate // Param1: ConcatWithSpace flag
	OpAnd
	OpOr
	OpNot

	// Comparison
	OpEqual
	OpNotEqual
	OpLessThan
	OpGreaterThan
	OpLessThanOrEqual
	OpGreaterThanOrEqual

	// Item delimiter
	OpPushItemDelimiter
	OpSetItemDelimiter

	// Arrays (Param1: slot or BackOfStack)
	OpPushArrayItem
	OpSetArrayItem
	OpDeleteArrayItem
	OpCountArrayItems

	// Debugging
	OpLineMarker // Param2: source line

	// OpFirstHostOpcode is the first opcode available to hosts.
	OpFirstHostOpcode
)

var baseOpcodeNames = [...]string{
	OpInvalid:                       "Invalid",
	OpExitToTop:                     "ExitToTop",
	OpNoOp:                          "NoOp",
	OpPushStringFromTable:           "PushStringFromTable",
	OpJumpRelative:                  "JumpRelative",
	OpJumpRelativeIfTrue:            "JumpRelativeIfTrue",
	OpJumpRelativeIfFalse:           "JumpRelativeIfFalse",
	OpJumpRelativeIfGreaterThanZero: "JumpRelativeIfGreaterThanZero",
	OpJumpRelativeIfLessThanZero:    "JumpRelativeIfLessThanZero",
	OpPopValue:                      "PopValue",
	OpPushReference:                 "PushReference",
	OpPushChunkReference:            "PushChunkReference",
	OpPushChunk:                     "PushChunk",
	OpSetChunk:                      "SetChunk",
	OpDeleteChunk:                   "DeleteChunk",
	OpCountChunks:                   "CountChunks",
	OpPushNumber:                    "PushNumber",
	OpPushInteger:                   "PushInteger",
	OpPushBoolean:                   "PushBoolean",
	OpPushUnsetValue:                "PushUnsetValue",
	OpPushCopy:                      "PushCopy",
	OpPutValueIntoValue:             "PutValueIntoValue",
	OpCallHandler:                   "CallHandler",
	OpReturnFromHandler:             "ReturnFromHandler",
	OpPushParameter:                 "PushParameter",
	OpPushParameterCount:            "PushParameterCount",
	OpSetReturnValue:                "SetReturnValue",
	OpParameterKeepRefs:             "ParameterKeepRefs",
	OpAdd:                           "Add",
	OpSubtract:                      "Subtract",
	OpMultiply:                      "Multiply",
	OpDivide:                        "Divide",
	OpModulo:                        "Modulo",
	OpPower:                         "Power",
	OpNegate:                        "Negate",
	OpConcatenate:                   "Concatenate",
	OpAnd:                           "And",
	OpOr:                            "Or",
	OpNot:                           "Not",
	OpEqual:                         "Equal",
	OpNotEqual:                      "NotEqual",
	OpLessThan:                      "LessThan",
	OpGreaterThan:                   "GreaterThan",
	OpLessThanOrEqual:               "LessThanOrEqual",
	OpGreaterThanOrEqual:            "GreaterThanOrEqual",
	OpPushItemDelimiter:             "PushItemDelimiter",
	OpSetItemDelimiter:              "SetItemDelimiter",
	OpPushArrayItem:                 "PushArrayItem",
	OpSetArrayItem:                  "SetArrayItem",
	OpDeleteArrayItem:               "DeleteArrayItem",
	OpCountArrayItems:               "CountArrayItems",
	OpLineMarker:                    "LineMarker",
}

// BaseOpcodeName returns the name of a base opcode, or "" for host opcodes.
func BaseOpcodeName(op Opcode) string {
	if int(op) < len(baseOpcodeNames) {
		return baseOpcodeNames[op]
	}
	return ""
}

// String returns the base opcode name, or a numeric form for host opcodes.
func (op Opcode) String() string {
	if name := BaseOpcodeName(op); name != "" {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", uint16(op))
}

// IsJump reports whether Param2 of op is a relative branch offset.
func (op Opcode) IsJump() bool {
	switch op {
	case OpJumpRelative, OpJumpRelativeIfTrue, OpJumpRelativeIfFalse,
		OpJumpRelativeIfGreaterThanZero, OpJumpRelativeIfLessThanZero:
		return true
	default:
		return false
	}
}

// OpcodeNamer maps opcodes to display names.
type OpcodeNamer interface {
	OpcodeName(op Opcode) string
}

// OpcodeResolver maps display names back to opcodes.
type OpcodeResolver interface {
	LookupOpcode(name string) (Opcode, bool)
}

// BaseOpcodes names and resolves the base instruction set only.
type BaseOpcodes struct{}

// OpcodeName implements OpcodeNamer.
func (BaseOpcodes) OpcodeName(op Opcode) string { return op.String() }

// LookupOpcode implements OpcodeResolver.
func (BaseOpcodes) LookupOpcode(name string) (Opcode, bool) {
	for i, n := range baseOpcodeNames {
		if n == name {
			op, err := safecast.Conv[Opcode](i)
			return op, err == nil
		}
	}
	return OpInvalid, false
}
