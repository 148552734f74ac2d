package vm

import (
	"fmt"
	"strconv"
	"strings"

	"leo/internal/bytecode"
)

// Breakpoint stops the debugger before one instruction.
type Breakpoint struct {
	ID      int
	Handler string
	PC      int

	target *bytecode.Instruction
}

// Summary returns a string representation of the breakpoint.
func (bp *Breakpoint) Summary() string {
	if bp == nil {
		return "<nil>"
	}
	return fmt.Sprintf("#%d %s pc=%d", bp.ID, bp.Handler, bp.PC)
}

// Breakpoints manages a collection of breakpoints. Matching compares
// instruction addresses, so a breakpoint belongs to one loaded script.
type Breakpoints struct {
	nextID int
	list   []*Breakpoint
}

// NewBreakpoints creates a new Breakpoints collection.
func NewBreakpoints() *Breakpoints {
	return &Breakpoints{nextID: 1}
}

// Add sets a breakpoint on instruction pc of handler h.
func (bps *Breakpoints) Add(h *bytecode.Handler, pc int) (*Breakpoint, error) {
	if h == nil {
		return nil, fmt.Errorf("no such handler")
	}
	if pc < 0 || pc >= len(h.Instructions) {
		return nil, fmt.Errorf("pc %d is outside %s (0..%d)", pc, h.Name, len(h.Instructions)-1)
	}
	bp := &Breakpoint{
		ID:      bps.allocID(),
		Handler: h.Name,
		PC:      pc,
		target:  &h.Instructions[pc],
	}
	bps.list = append(bps.list, bp)
	return bp, nil
}

// Delete removes a breakpoint by ID.
func (bps *Breakpoints) Delete(id int) bool {
	if bps == nil || id <= 0 {
		return false
	}
	for i, bp := range bps.list {
		if bp != nil && bp.ID == id {
			copy(bps.list[i:], bps.list[i+1:])
			bps.list[len(bps.list)-1] = nil
			bps.list = bps.list[:len(bps.list)-1]
			return true
		}
	}
	return false
}

// List returns all breakpoints.
func (bps *Breakpoints) List() []*Breakpoint {
	if bps == nil || len(bps.list) == 0 {
		return nil
	}
	out := make([]*Breakpoint, 0, len(bps.list))
	out = append(out, bps.list...)
	return out
}

// Match returns the breakpoint set on instr, if any.
func (bps *Breakpoints) Match(instr *bytecode.Instruction) (*Breakpoint, bool) {
	if bps == nil || instr == nil {
		return nil, false
	}
	for _, bp := range bps.list {
		if bp != nil && bp.target == instr {
			return bp, true
		}
	}
	return nil, false
}

// ParseLocation parses a breakpoint location: "<handler> <pc>" or
// "<handler>:<pc>". A missing pc means the handler's first instruction.
func ParseLocation(args []string) (handler string, pc int, err error) {
	if len(args) == 1 {
		if name, num, found := strings.Cut(args[0], ":"); found {
			args = []string{name, num}
		}
	}
	switch len(args) {
	case 1:
		handler = args[0]
	case 2:
		handler = args[0]
		pc, err = strconv.Atoi(args[1])
		if err != nil || pc < 0 {
			return "", 0, fmt.Errorf("invalid pc %q", args[1])
		}
	default:
		return "", 0, fmt.Errorf("expected <handler> [pc]")
	}
	if handler == "" {
		return "", 0, fmt.Errorf("empty handler name")
	}
	return handler, pc, nil
}

func (bps *Breakpoints) allocID() int {
	if bps.nextID <= 0 {
		bps.nextID = 1
	}
	id := bps.nextID
	bps.nextID++
	return id
}
