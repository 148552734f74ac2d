package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Disassemble renders a script as assembler source. Operands are printed
// in a form the assembler accepts, with the instruction index as a trailing
// comment.
func Disassemble(s *Script, ops OpcodeNamer, ids HandlerNamer) string {
	if ops == nil {
		ops = BaseOpcodes{}
	}
	var sb strings.Builder

	fmt.Fprintf(&sb, "; strings: %d, commands: %d, functions: %d\n",
		len(s.strings), len(s.commands), len(s.functions))
	if !s.owner.IsZero() {
		fmt.Fprintf(&sb, "; owner: %s\n", s.owner)
	}
	for i, str := range s.strings {
		display := str
		if len(display) > 40 {
			display = display[:37] + "..."
		}
		fmt.Fprintf(&sb, ";   [%3d] %q\n", i, display)
	}

	for _, h := range s.commands {
		sb.WriteString("\n")
		disassembleHandler(&sb, "command", h, s, ops, ids)
	}
	for _, h := range s.functions {
		sb.WriteString("\n")
		disassembleHandler(&sb, "function", h, s, ops, ids)
	}
	return sb.String()
}

func disassembleHandler(sb *strings.Builder, what string, h *Handler, s *Script, ops OpcodeNamer, ids HandlerNamer) {
	fmt.Fprintf(sb, "%s %s\n", what, h.Name)
	for pc, in := range h.Instructions {
		line := "    " + DisassembleInstruction(in, s, ops, ids)
		fmt.Fprintf(sb, "%-48s ; %04d", line, pc)
		if in.Opcode.IsJump() {
			fmt.Fprintf(sb, " -> %04d", pc+int(in.SignedParam2()))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("end\n")
}

// DisassembleInstruction renders one instruction. The script and handler
// namer may be nil, in which case table strings and handler names are
// printed numerically.
func DisassembleInstruction(in Instruction, s *Script, ops OpcodeNamer, ids HandlerNamer) string {
	if ops == nil {
		ops = BaseOpcodes{}
	}
	name := ops.OpcodeName(in.Opcode)
	return name + " " + param1String(in) + " " + param2String(in, s, ids)
}

func param1String(in Instruction) string {
	if in.IsBackOfStack() {
		return "bos"
	}
	return strconv.Itoa(int(in.SignedParam1()))
}

func param2String(in Instruction, s *Script, ids HandlerNamer) string {
	switch {
	case in.Opcode == OpPushStringFromTable && s != nil:
		if str, ok := s.String(in.Param2); ok {
			return strconv.Quote(str)
		}
	case in.Opcode == OpCallHandler && ids != nil:
		if name := ids.HandlerName(HandlerID(in.Param2)); name != "" {
			return "&" + name
		}
	case in.Opcode == OpPushNumber:
		return "#" + strconv.FormatFloat(float64(in.FloatParam2()), 'g', -1, 32)
	case in.Opcode == OpPushInteger || in.Opcode.IsJump():
		return strconv.Itoa(int(in.SignedParam2()))
	}
	return strconv.FormatUint(uint64(in.Param2), 10)
}
