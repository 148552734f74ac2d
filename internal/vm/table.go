package vm

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"leo/internal/bytecode"
)

// InstructionFunc executes one instruction. It reports failure through
// c.StopWithError and never panics.
type InstructionFunc func(c *Context, in bytecode.Instruction)

type tableEntry struct {
	name string
	fn   InstructionFunc
}

// InstructionTable maps opcodes to instruction functions. A built table is
// immutable and may be shared by any number of contexts.
type InstructionTable struct {
	entries []tableEntry
	byName  map[string]bytecode.Opcode
}

// TableBuilder assembles an InstructionTable. It starts with the base
// instruction set; hosts register their own instructions after it.
type TableBuilder struct {
	entries []tableEntry
	byName  map[string]bytecode.Opcode
	built   bool
}

// NewTableBuilder returns a builder seeded with the base instruction set.
func NewTableBuilder() *TableBuilder {
	b := &TableBuilder{
		entries: make([]tableEntry, 0, int(bytecode.OpFirstHostOpcode)+16),
		byName:  make(map[string]bytecode.Opcode, int(bytecode.OpFirstHostOpcode)),
	}
	for op := bytecode.OpInvalid; op < bytecode.OpFirstHostOpcode; op++ {
		name := bytecode.BaseOpcodeName(op)
		b.entries = append(b.entries, tableEntry{name: name, fn: baseInstructions[op]})
		b.byName[name] = op
	}
	return b
}

// Register appends an instruction and returns its opcode. Opcodes are
// assigned sequentially in registration order.
func (b *TableBuilder) Register(name string, fn InstructionFunc) (bytecode.Opcode, error) {
	if b.built {
		return bytecode.OpInvalid, fmt.Errorf("register %q: table already built", name)
	}
	if name == "" || fn == nil {
		return bytecode.OpInvalid, fmt.Errorf("register %q: name and function are required", name)
	}
	if _, dup := b.byName[name]; dup {
		return bytecode.OpInvalid, fmt.Errorf("register %q: instruction already registered", name)
	}
	op, err := safecast.Conv[bytecode.Opcode](len(b.entries))
	if err != nil {
		return bytecode.OpInvalid, fmt.Errorf("register %q: %w", name, err)
	}
	b.entries = append(b.entries, tableEntry{name: name, fn: fn})
	b.byName[name] = op
	return op, nil
}

// Build freezes the builder into a table. The builder cannot be used
// afterwards.
func (b *TableBuilder) Build() *InstructionTable {
	b.built = true
	return &InstructionTable{entries: b.entries, byName: b.byName}
}

// DefaultTable returns the shared table holding only the base set.
var DefaultTable = sync.OnceValue(func() *InstructionTable {
	return NewTableBuilder().Build()
})

// Len returns the number of opcodes in the table.
func (t *InstructionTable) Len() int { return len(t.entries) }

// OpcodeName implements bytecode.OpcodeNamer.
func (t *InstructionTable) OpcodeName(op bytecode.Opcode) string {
	if int(op) < len(t.entries) {
		return t.entries[op].name
	}
	return op.String()
}

// LookupOpcode implements bytecode.OpcodeResolver.
func (t *InstructionTable) LookupOpcode(name string) (bytecode.Opcode, bool) {
	op, ok := t.byName[name]
	return op, ok
}

// lookup returns the function for op. Unknown opcodes get the Invalid
// instruction.
func (t *InstructionTable) lookup(op bytecode.Opcode) InstructionFunc {
	if int(op) < len(t.entries) {
		return t.entries[op].fn
	}
	return t.entries[bytecode.OpInvalid].fn
}
