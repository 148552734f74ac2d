package bytecode

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"leo/internal/objtab"
)

// HandlerID is the interned identifier of a handler name. IDs are assigned
// by a context group and are only meaningful within it.
type HandlerID uint32

// InvalidHandlerID never names a handler.
const InvalidHandlerID HandlerID = 0

// HandlerInterner assigns handler IDs to names.
type HandlerInterner interface {
	HandlerID(name string) HandlerID
}

// HandlerNamer maps handler IDs back to names.
type HandlerNamer interface {
	HandlerName(id HandlerID) string
}

// Handler is a named, compiled instruction sequence.
type Handler struct {
	Name         string
	ID           HandlerID
	Instructions []Instruction
}

// Len returns the number of instructions.
func (h *Handler) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Instructions)
}

// Script is an immutable container of compiled handlers plus the string
// table their PushStringFromTable instructions index. Running code keeps
// the Script alive through its call frames, so a call can finish even after
// the object that owned the script is gone.
type Script struct {
	commands  []*Handler
	functions []*Handler
	strings   []string
	owner     objtab.Ref
}

// Command returns the command handler with the given id, or nil.
func (s *Script) Command(id HandlerID) *Handler {
	return findHandler(s.commands, id)
}

// Function returns the function handler with the given id, or nil.
func (s *Script) Function(id HandlerID) *Handler {
	return findHandler(s.functions, id)
}

// Lookup returns the handler for a call with the given flags.
func (s *Script) Lookup(id HandlerID, flags uint16) *Handler {
	if flags&CallFunction != 0 {
		return s.Function(id)
	}
	return s.Command(id)
}

// HandlerNamed finds a handler by case-insensitive name.
func (s *Script) HandlerNamed(name string, function bool) *Handler {
	list := s.commands
	if function {
		list = s.functions
	}
	for _, h := range list {
		if strings.EqualFold(h.Name, name) {
			return h
		}
	}
	return nil
}

// Commands returns the command handlers. The slice must not be modified.
func (s *Script) Commands() []*Handler { return s.commands }

// Functions returns the function handlers. The slice must not be modified.
func (s *Script) Functions() []*Handler { return s.functions }

// Strings returns the string table. The slice must not be modified.
func (s *Script) Strings() []string { return s.strings }

// String returns entry i of the string table.
func (s *Script) String(i uint32) (string, bool) {
	idx, err := safecast.Conv[int](i)
	if err != nil || idx >= len(s.strings) {
		return "", false
	}
	return s.strings[idx], true
}

// Owner returns the weak reference to the object that owns this script.
func (s *Script) Owner() objtab.Ref { return s.owner }

func findHandler(list []*Handler, id HandlerID) *Handler {
	for _, h := range list {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// ScriptBuilder assembles a Script. A builder must not be used after Build.
type ScriptBuilder struct {
	ids     HandlerInterner
	script  *Script
	strings map[string]uint32
}

// NewScriptBuilder creates a builder that interns handler names with ids.
func NewScriptBuilder(ids HandlerInterner) *ScriptBuilder {
	return &ScriptBuilder{
		ids:     ids,
		script:  &Script{},
		strings: make(map[string]uint32),
	}
}

// AddString adds s to the string table (once) and returns its index.
func (b *ScriptBuilder) AddString(s string) uint32 {
	if idx, ok := b.strings[s]; ok {
		return idx
	}
	idx, err := safecast.Conv[uint32](len(b.script.strings))
	if err != nil {
		panic(fmt.Errorf("string table overflow: %w", err))
	}
	b.script.strings = append(b.script.strings, s)
	b.strings[s] = idx
	return idx
}

// AddCommand adds a command handler.
func (b *ScriptBuilder) AddCommand(name string, code []Instruction) (*Handler, error) {
	return b.add(&b.script.commands, name, code, "command")
}

// AddFunction adds a function handler.
func (b *ScriptBuilder) AddFunction(name string, code []Instruction) (*Handler, error) {
	return b.add(&b.script.functions, name, code, "function")
}

func (b *ScriptBuilder) add(list *[]*Handler, name string, code []Instruction, what string) (*Handler, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%s name must not be empty", what)
	}
	id := b.ids.HandlerID(name)
	if findHandler(*list, id) != nil {
		return nil, fmt.Errorf("duplicate %s %q", what, name)
	}
	h := &Handler{
		Name:         name,
		ID:           id,
		Instructions: append([]Instruction(nil), code...),
	}
	*list = append(*list, h)
	return h, nil
}

// SetOwner records the weak reference to the script's owning object.
func (b *ScriptBuilder) SetOwner(ref objtab.Ref) {
	b.script.owner = ref
}

// Build publishes the script.
func (b *ScriptBuilder) Build() *Script {
	s := b.script
	b.script = nil
	return s
}
