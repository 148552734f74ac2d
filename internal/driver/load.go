package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"leo/internal/asm"
	"leo/internal/bytecode"
	"leo/internal/diag"
	"leo/internal/source"
	"leo/internal/vm"
)

// File extensions the driver understands.
const (
	ExtSource = ".leoasm"
	ExtImage  = ".leob"
)

// ErrAssembly is returned when a source file has errors. The diagnostics
// are in Program.Bag.
var ErrAssembly = errors.New("assembly failed")

// Program is a loaded script together with the group it belongs to.
type Program struct {
	Path   string
	Files  *source.FileSet
	File   *source.File // nil for images
	Group  *vm.Group
	Table  *vm.InstructionTable
	Script *bytecode.Script
	Bag    *diag.Bag
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Table resolves instruction names. Nil means vm.DefaultTable().
	Table *vm.InstructionTable
	// Group receives the script's handler names. Nil creates a new group.
	Group          *vm.Group
	MaxDiagnostics int
}

// Load reads path as assembler source or as a script image, depending on
// its extension. On ErrAssembly the returned program carries the
// diagnostics.
func Load(path string, opts LoadOptions) (*Program, error) {
	prog := newProgram(path, opts)

	switch strings.ToLower(filepath.Ext(path)) {
	case ExtImage:
		// #nosec G304 -- path is provided by the caller
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close() //nolint:errcheck
		owner := prog.Group.RegisterObject(prog)
		s, err := bytecode.DecodeImage(f, prog.Table, prog.Group, owner)
		if err != nil {
			prog.Group.ReleaseObject(owner)
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		prog.Script = s
		return prog, nil
	case ExtSource:
		id, err := prog.Files.Load(path)
		if err != nil {
			return nil, err
		}
		prog.File = prog.Files.Get(id)
		return prog, prog.assemble()
	default:
		return nil, fmt.Errorf("%s: unsupported file type (expected %s or %s)", path, ExtSource, ExtImage)
	}
}

// LoadSource assembles src as if it had been read from name.
func LoadSource(name string, src []byte, opts LoadOptions) (*Program, error) {
	prog := newProgram(name, opts)
	prog.File = prog.Files.Get(prog.Files.AddVirtual(name, src))
	return prog, prog.assemble()
}

func newProgram(path string, opts LoadOptions) *Program {
	if opts.Table == nil {
		opts.Table = vm.DefaultTable()
	}
	if opts.Group == nil {
		opts.Group = vm.NewGroup(vm.GroupOptions{})
	}
	return &Program{
		Path:  path,
		Files: source.NewFileSet(),
		Group: opts.Group,
		Table: opts.Table,
		Bag:   diag.NewBag(opts.MaxDiagnostics),
	}
}

func (p *Program) assemble() error {
	owner := p.Group.RegisterObject(p)
	p.Script = asm.Assemble(p.File, asm.Options{
		Opcodes:  p.Table,
		Handlers: p.Group,
		Owner:    owner,
	}, diag.BagReporter{Bag: p.Bag})
	p.Bag.Sort()
	if p.Script == nil {
		p.Group.ReleaseObject(owner)
		return fmt.Errorf("%s: %w", p.Path, ErrAssembly)
	}
	return nil
}

// Entry returns the command named name.
func (p *Program) Entry(name string) (*bytecode.Handler, error) {
	h := p.Script.HandlerNamed(name, false)
	if h == nil {
		return nil, fmt.Errorf("%s: no command %q", p.Path, name)
	}
	return h, nil
}

// WriteImage encodes the script as a .leob image.
func (p *Program) WriteImage(w io.Writer) error {
	return bytecode.EncodeImage(w, p.Script, p.Table, p.Group)
}

// Disassemble renders the script in assembler syntax.
func (p *Program) Disassemble() string {
	return bytecode.Disassemble(p.Script, p.Table, p.Group)
}

// Diagnostics formats the program's diagnostics one per line, followed by
// a count of any that did not fit in the bag.
func (p *Program) Diagnostics() string {
	out := diag.FormatShort(p.Bag.Items(), p.Files)
	if n := p.Bag.Dropped(); n > 0 {
		out += fmt.Sprintf("... %d more diagnostics omitted\n", n)
	}
	return out
}
