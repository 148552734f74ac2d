package vm_test

import (
	"testing"

	"leo/internal/asm"
	"leo/internal/bytecode"
	"leo/internal/diag"
	"leo/internal/source"
	"leo/internal/vm"
)

// program is an assembled script together with the group and table it was
// assembled against.
type program struct {
	group  *vm.Group
	table  *vm.InstructionTable
	script *bytecode.Script
}

func load(t *testing.T, src string) program {
	t.Helper()
	return loadWithTable(t, vm.DefaultTable(), src)
}

func loadWithTable(t *testing.T, table *vm.InstructionTable, src string) program {
	t.Helper()
	group := vm.NewGroup(vm.GroupOptions{})
	fs := source.NewFileSet()
	script, bag := asm.AssembleSource(fs, "test.leoasm", []byte(src), asm.Options{
		Opcodes:  table,
		Handlers: group,
	})
	if script == nil {
		t.Fatalf("assembly failed:\n%s", diag.FormatShort(bag.Items(), fs))
	}
	return program{group: group, table: table, script: script}
}

func (p program) handler(t *testing.T, name string) *bytecode.Handler {
	t.Helper()
	h := p.script.HandlerNamed(name, false)
	if h == nil {
		t.Fatalf("no command %q", name)
	}
	return h
}

func (p program) newContext(opts vm.ContextOptions) *vm.Context {
	return vm.NewContext(p.group, p.table, opts)
}

// run executes command name in a fresh context and checks the stack
// discipline afterwards.
func (p program) run(t *testing.T, name string, opts vm.ContextOptions, args ...string) (*vm.Context, *vm.VMError) {
	t.Helper()
	c := p.newContext(opts)
	if len(args) > 0 && !c.PushArguments(args...) {
		t.Fatalf("pushing arguments failed: %v", c.Err())
	}
	err := c.Run(p.script, p.handler(t, name))
	if ierr := c.CheckInvariants(); ierr != nil {
		t.Fatalf("stack invariant violated: %v", ierr)
	}
	return c, err
}

// result runs command name and returns the string form of its return
// value.
func (p program) result(t *testing.T, name string, args ...string) string {
	t.Helper()
	c, err := p.run(t, name, vm.ContextOptions{}, args...)
	if err != nil {
		t.Fatalf("run %s: %v", name, err)
	}
	res := c.Result()
	if res == nil {
		t.Fatalf("run %s: no result", name)
	}
	s, ok := res.AsString(c)
	if !ok {
		t.Fatalf("run %s: result has no string form: %v", name, c.Err())
	}
	return s
}
