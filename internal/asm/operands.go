package asm

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"leo/internal/bytecode"
	"leo/internal/chunk"
	"leo/internal/diag"
)

var operandConstants = map[string]uint32{
	"cmd":   0,
	"fn":    uint32(bytecode.CallFunction),
	"space": uint32(bytecode.ConcatWithSpace),
	"true":  1,
	"false": 0,
}

// normalize brings string literals to NFC.
func normalize(s string) string {
	return norm.NFC.String(s)
}

// operand evaluates operand n (1 or 2) of the instruction at pc. Label
// operands evaluate to zero and are patched later.
func (a *assembler) operand(tok token, n int, op bytecode.Opcode, pc int) (uint32, bool) {
	switch tok.kind {
	case tokInt:
		v, err := strconv.ParseInt(tok.text, 0, 64)
		if err != nil {
			a.errorf(diag.LexBadNumber, tok.span, "malformed integer %q", tok.text)
			return 0, false
		}
		if v < math.MinInt32 || v > math.MaxUint32 {
			a.errorf(diag.AsmOperandRange, tok.span, "operand %s does not fit 32 bits", tok.text)
			return 0, false
		}
		return uint32(v), true //nolint:gosec // G115: range checked above, negatives keep their bits

	case tokFloat:
		if n == 1 {
			a.errorf(diag.AsmBadOperand, tok.span, "a float is only valid as the second operand")
			return 0, false
		}
		f, err := strconv.ParseFloat(tok.text, 32)
		if err != nil {
			a.errorf(diag.LexBadNumber, tok.span, "malformed float %q", tok.text)
			return 0, false
		}
		return math.Float32bits(float32(f)), true

	case tokString:
		return a.builder.AddString(normalize(tok.text)), true

	case tokStringRef:
		ns, ok := a.named[tok.text]
		if !ok {
			a.errorf(diag.AsmUnknownString, tok.span, "unknown string %q", tok.text)
			return 0, false
		}
		return ns.index, true

	case tokHandlerRef:
		return uint32(a.opts.Handlers.HandlerID(tok.text)), true

	case tokLabelRef:
		if n != 2 || !op.IsJump() {
			a.errorf(diag.AsmLabelOnNonJumpTarget, tok.span, "label @%s is only valid as the offset of a branch", tok.text)
			return 0, false
		}
		a.cur.fixups = append(a.cur.fixups, labelFixup{pc: pc, name: tok.text, span: tok.span})
		return 0, true

	case tokIdent:
		return a.namedOperand(tok, n)

	case tokInvalid:
		return 0, false
	}
	a.errorf(diag.AsmUnexpectedToken, tok.span, "unexpected %s as operand", tok.kind)
	return 0, false
}

func (a *assembler) namedOperand(tok token, n int) (uint32, bool) {
	name := strings.ToLower(tok.text)
	if name == "bos" {
		if n != 1 {
			a.errorf(diag.AsmBadOperand, tok.span, "bos is only valid as the first operand")
			return 0, false
		}
		return uint32(bytecode.BackOfStack), true
	}
	if v, ok := operandConstants[name]; ok {
		return v, true
	}
	if typ, err := chunk.ParseType(name); err == nil {
		return uint32(typ), true
	}
	a.errorf(diag.AsmBadOperand, tok.span, "unknown operand %q", tok.text)
	return 0, false
}
