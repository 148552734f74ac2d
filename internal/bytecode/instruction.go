// Package bytecode defines the instruction format of the Leo runtime and
// the immutable Script/Handler containers compiled code is delivered in.
package bytecode

import (
	"fmt"
	"math"
)

// BackOfStack is the Param1 sentinel meaning "operate on the value at the
// back of the operand stack" instead of a frame-relative slot.
const BackOfStack uint16 = 0x7FFF

// Call flags carried in Param1 of OpCallHandler.
const (
	// CallFunction looks the handler up among the script's functions
	// instead of its commands.
	CallFunction uint16 = 1 << 0
)

// ConcatWithSpace in Param1 of OpConcatenate inserts a space between the
// operands.
const ConcatWithSpace uint16 = 1

// Instruction is one fixed-width instruction.
type Instruction struct {
	Opcode Opcode
	Param1 uint16
	Param2 uint32
}

// SignedParam1 returns Param1 as a signed frame-relative offset.
func (i Instruction) SignedParam1() int16 {
	return int16(i.Param1) //nolint:gosec // G115: intentional bit-pattern reinterpretation of the immediate.
}

// IsBackOfStack reports whether Param1 holds the BackOfStack sentinel.
func (i Instruction) IsBackOfStack() bool {
	return i.Param1 == BackOfStack
}

// SignedParam2 returns Param2 as a signed immediate.
func (i Instruction) SignedParam2() int32 {
	return int32(i.Param2) //nolint:gosec // G115: intentional bit-pattern reinterpretation of the immediate.
}

// FloatParam2 returns Param2 as float32 bits.
func (i Instruction) FloatParam2() float32 {
	return math.Float32frombits(i.Param2)
}

// Make builds an instruction.
func Make(op Opcode, p1 uint16, p2 uint32) Instruction {
	return Instruction{Opcode: op, Param1: p1, Param2: p2}
}

// MakeSigned builds an instruction from signed immediates.
func MakeSigned(op Opcode, p1 int16, p2 int32) Instruction {
	return Instruction{
		Opcode: op,
		Param1: uint16(p1), //nolint:gosec // G115: intentional bit-pattern reinterpretation of the immediate.
		Param2: uint32(p2), //nolint:gosec // G115: intentional bit-pattern reinterpretation of the immediate.
	}
}

// MakeFloat builds an instruction carrying a float32 in Param2.
func MakeFloat(op Opcode, p1 uint16, f float32) Instruction {
	return Instruction{Opcode: op, Param1: p1, Param2: math.Float32bits(f)}
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s %d %d", i.Opcode, i.Param1, i.Param2)
}
