// Package hostio registers output instructions with a vm.TableBuilder. It
// is the minimal host instruction set the leo CLI runs scripts with.
package hostio

import (
	"fmt"
	"io"
	"sync"

	"leo/internal/bytecode"
	"leo/internal/vm"
)

// Opcodes holds the opcodes Register assigned.
type Opcodes struct {
	Print          bytecode.Opcode
	PrintNoNewline bytecode.Opcode
}

// syncWriter serializes writes from contexts running in parallel.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) print(text, end string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, text+end)
	return err
}

// Register adds Print and PrintNoNewline to b. Both pop the value at the
// back of the stack and write its string form to out; Print adds a
// newline. Any Param1 other than bos prints that slot without popping.
func Register(b *vm.TableBuilder, out io.Writer) (Opcodes, error) {
	w := &syncWriter{w: out}
	var ops Opcodes
	var err error
	if ops.Print, err = b.Register("Print", printInstruction(w, "\n")); err != nil {
		return Opcodes{}, err
	}
	if ops.PrintNoNewline, err = b.Register("PrintNoNewline", printInstruction(w, "")); err != nil {
		return Opcodes{}, err
	}
	return ops, nil
}

// NewTable returns the base instruction set plus the hostio instructions.
func NewTable(out io.Writer) (*vm.InstructionTable, error) {
	b := vm.NewTableBuilder()
	if _, err := Register(b, out); err != nil {
		return nil, fmt.Errorf("hostio: %w", err)
	}
	return b.Build(), nil
}

func printInstruction(w *syncWriter, end string) vm.InstructionFunc {
	return func(c *vm.Context, in bytecode.Instruction) {
		v := c.Slot(in.Param1)
		if v == nil {
			if in.IsBackOfStack() {
				c.StopWithError(vm.ErrCallStack, "Stack underflow.")
			} else {
				c.StopWithError(vm.ErrBadOperand, "Invalid stack slot %d.", in.SignedParam1())
			}
			return
		}
		text, ok := v.AsString(c)
		if !ok {
			return
		}
		if err := w.print(text, end); err != nil {
			c.StopWithError(vm.ErrHost, "Can't write output: %v", err)
			return
		}
		if in.IsBackOfStack() {
			c.Pop()
		}
	}
}
