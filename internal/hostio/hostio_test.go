package hostio_test

import (
	"bytes"
	"errors"
	"testing"

	"leo/internal/asm"
	"leo/internal/bytecode"
	"leo/internal/diag"
	"leo/internal/hostio"
	"leo/internal/source"
	"leo/internal/vm"
)

func runWith(t *testing.T, table *vm.InstructionTable, src string) (*vm.Context, *vm.VMError) {
	t.Helper()
	group := vm.NewGroup(vm.GroupOptions{})
	fs := source.NewFileSet()
	script, bag := asm.AssembleSource(fs, "print.leoasm", []byte(src), asm.Options{Opcodes: table, Handlers: group})
	if script == nil {
		t.Fatalf("assembly failed:\n%s", diag.FormatShort(bag.Items(), fs))
	}
	c := vm.NewContext(group, table, vm.ContextOptions{})
	return c, c.Run(script, script.HandlerNamed("main", false))
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	table, err := hostio.NewTable(&out)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	c, verr := runWith(t, table, `
command main
    PushStringFromTable 0 "Hello"
    PrintNoNewline bos
    PushStringFromTable 0 ", World"
    Print bos
    PushInteger 0 42
    Print 0
    Print 0
    PopValue
end
`)
	if verr != nil {
		t.Fatalf("run: %v", verr)
	}
	if got := out.String(); got != "Hello, World\n42\n42\n" {
		t.Fatalf("output = %q", got)
	}
	if c.StackDepth() != 2 {
		t.Fatalf("stack depth = %d", c.StackDepth())
	}
}

func TestPrintErrors(t *testing.T) {
	table, err := hostio.NewTable(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	_, verr := runWith(t, table, "command main\n  Print 5\nend\n")
	if verr == nil || verr.Code != vm.ErrBadOperand || verr.Message != "Invalid stack slot 5." {
		t.Fatalf("error = %v", verr)
	}

	failing, err := hostio.NewTable(failingWriter{})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	_, verr = runWith(t, failing, "command main\n  PushInteger 0 1\n  Print bos\nend\n")
	if verr == nil || verr.Code != vm.ErrHost {
		t.Fatalf("error = %v", verr)
	}
}

func TestRegisterOpcodes(t *testing.T) {
	b := vm.NewTableBuilder()
	ops, err := hostio.Register(b, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if ops.Print != bytecode.OpFirstHostOpcode || ops.PrintNoNewline != ops.Print+1 {
		t.Fatalf("opcodes = %+v", ops)
	}
	if _, err := hostio.Register(b, &bytes.Buffer{}); err == nil {
		t.Fatalf("registering twice succeeded")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}
