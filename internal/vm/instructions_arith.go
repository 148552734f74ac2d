package vm

import (
	"math"

	"leo/internal/bytecode"
)

// Overflow-checked int64 arithmetic. A false result means the integer
// path overflowed and the operation falls back to floating point.

func addInt64(a, b int64) (int64, bool) {
	r := a + b
	if (a > 0 && b > 0 && r < 0) || (a < 0 && b < 0 && r >= 0) {
		return 0, false
	}
	return r, true
}

func subInt64(a, b int64) (int64, bool) {
	r := a - b
	if (b > 0 && r > a) || (b < 0 && r < a) {
		return 0, false
	}
	return r, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

// binaryOperands returns the two values at the back of the stack, left
// operand first.
func (c *Context) binaryOperands() (*Value, *Value, bool) {
	b := c.operand(0)
	if b == nil {
		return nil, nil, false
	}
	a := c.operand(1)
	if a == nil {
		return nil, nil, false
	}
	return a, b, true
}

// integerOperands reports whether both operands are integral and returns
// them. It fails the context only on dead references.
func (c *Context) integerOperands(a, b *Value) (int64, int64, bool) {
	if !a.IsIntegral(c) || !b.IsIntegral(c) || c.err != nil {
		return 0, 0, false
	}
	x, ok := a.AsInteger(c)
	if !ok {
		return 0, 0, false
	}
	y, ok := b.AsInteger(c)
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

func (c *Context) numberOperands(a, b *Value) (float64, float64, bool) {
	x, ok := a.AsNumber(c)
	if !ok {
		return 0, 0, false
	}
	y, ok := b.AsNumber(c)
	if !ok {
		return 0, 0, false
	}
	return x, y, true
}

// arithmeticOp builds an instruction that keeps integers exact as long as
// intFn does not overflow and otherwise computes in floating point.
func arithmeticOp(intFn func(a, b int64) (int64, bool), floatFn func(a, b float64) float64) InstructionFunc {
	return func(c *Context, _ bytecode.Instruction) {
		a, b, ok := c.binaryOperands()
		if !ok {
			return
		}
		if x, y, ok := c.integerOperands(a, b); ok {
			if r, ok := intFn(x, y); ok {
				if c.PopN(2) {
					c.PushInteger(r)
				}
				return
			}
		}
		if c.err != nil {
			return
		}
		x, y, ok := c.numberOperands(a, b)
		if !ok {
			return
		}
		if c.PopN(2) {
			c.PushNumber(floatFn(x, y))
		}
	}
}

var (
	opAdd      = arithmeticOp(addInt64, func(a, b float64) float64 { return a + b })
	opSubtract = arithmeticOp(subInt64, func(a, b float64) float64 { return a - b })
	opMultiply = arithmeticOp(mulInt64, func(a, b float64) float64 { return a * b })
)

// opDivide always produces a number.
func opDivide(c *Context, _ bytecode.Instruction) {
	a, b, ok := c.binaryOperands()
	if !ok {
		return
	}
	x, y, ok := c.numberOperands(a, b)
	if !ok {
		return
	}
	if y == 0 {
		c.StopWithError(ErrDivisionByZero, "Can't divide by zero.")
		return
	}
	if c.PopN(2) {
		c.PushNumber(x / y)
	}
}

func opModulo(c *Context, _ bytecode.Instruction) {
	a, b, ok := c.binaryOperands()
	if !ok {
		return
	}
	if x, y, ok := c.integerOperands(a, b); ok {
		if y == 0 {
			c.StopWithError(ErrDivisionByZero, "Can't divide by zero.")
			return
		}
		if c.PopN(2) {
			c.PushInteger(x % y)
		}
		return
	}
	if c.err != nil {
		return
	}
	x, y, ok := c.numberOperands(a, b)
	if !ok {
		return
	}
	if y == 0 {
		c.StopWithError(ErrDivisionByZero, "Can't divide by zero.")
		return
	}
	if c.PopN(2) {
		c.PushNumber(math.Mod(x, y))
	}
}

func opPower(c *Context, _ bytecode.Instruction) {
	a, b, ok := c.binaryOperands()
	if !ok {
		return
	}
	x, y, ok := c.numberOperands(a, b)
	if !ok {
		return
	}
	if c.PopN(2) {
		c.PushNumber(math.Pow(x, y))
	}
}

func opNegate(c *Context, _ bytecode.Instruction) {
	v := c.operand(0)
	if v == nil {
		return
	}
	if v.IsIntegral(c) && c.err == nil {
		n, ok := v.AsInteger(c)
		if !ok {
			return
		}
		if n != math.MinInt64 {
			c.replaceTop(func(v *Value) { v.InitInteger(-n, InvalidateReferences, c) })
			return
		}
	}
	if c.err != nil {
		return
	}
	n, ok := v.AsNumber(c)
	if !ok {
		return
	}
	c.replaceTop(func(v *Value) { v.InitNumber(-n, InvalidateReferences, c) })
}

func opConcatenate(c *Context, in bytecode.Instruction) {
	a, b, ok := c.binaryOperands()
	if !ok {
		return
	}
	x, ok := a.AsString(c)
	if !ok {
		return
	}
	y, ok := b.AsString(c)
	if !ok {
		return
	}
	sep := ""
	if in.Param1&bytecode.ConcatWithSpace != 0 {
		sep = " "
	}
	if c.PopN(2) {
		c.PushString(x + sep + y)
	}
}

func logicOp(fn func(a, b bool) bool) InstructionFunc {
	return func(c *Context, _ bytecode.Instruction) {
		a, b, ok := c.binaryOperands()
		if !ok {
			return
		}
		x, ok := a.AsBoolean(c)
		if !ok {
			return
		}
		y, ok := b.AsBoolean(c)
		if !ok {
			return
		}
		if c.PopN(2) {
			c.PushBoolean(fn(x, y))
		}
	}
}

var (
	opAnd = logicOp(func(a, b bool) bool { return a && b })
	opOr  = logicOp(func(a, b bool) bool { return a || b })
)

func opNot(c *Context, _ bytecode.Instruction) {
	v := c.operand(0)
	if v == nil {
		return
	}
	b, ok := v.AsBoolean(c)
	if !ok {
		return
	}
	c.replaceTop(func(v *Value) { v.InitBoolean(!b, InvalidateReferences, c) })
}

// compareOp builds a comparison instruction from a predicate on the
// three-way comparison result.
func compareOp(pred func(int) bool) InstructionFunc {
	return func(c *Context, _ bytecode.Instruction) {
		a, b, ok := c.binaryOperands()
		if !ok {
			return
		}
		r, ok := compareValues(a, b, c)
		if !ok {
			return
		}
		if c.PopN(2) {
			c.PushBoolean(pred(r))
		}
	}
}
