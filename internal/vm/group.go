package vm

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"leo/internal/bytecode"
	"leo/internal/objtab"
)

// GroupOptions configures a Group.
type GroupOptions struct {
	// Synchronized makes the group's tables safe for contexts running on
	// different goroutines. A single Context is never safe for concurrent
	// use.
	Synchronized bool
}

// Group is shared by every Context whose values may refer to each other.
// It owns the weak-reference table and the handler name interning.
type Group struct {
	// Values holds the values weak references have been made to.
	Values *objtab.Table[*Value]
	// Objects holds host objects that own scripts.
	Objects *objtab.Table[any]

	mu           sync.RWMutex
	handlerIDs   map[string]bytecode.HandlerID
	handlerNames []string
}

// NewGroup creates an empty group.
func NewGroup(opts GroupOptions) *Group {
	return &Group{
		Values:       objtab.New[*Value](opts.Synchronized),
		Objects:      objtab.New[any](opts.Synchronized),
		handlerIDs:   make(map[string]bytecode.HandlerID),
		handlerNames: []string{""},
	}
}

// HandlerID interns a handler name. Names differing only in case share an
// ID. IDs are stable for the lifetime of the group.
func (g *Group) HandlerID(name string) bytecode.HandlerID {
	key := foldKey(name)

	g.mu.RLock()
	id, ok := g.handlerIDs[key]
	g.mu.RUnlock()
	if ok {
		return id
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if id, ok := g.handlerIDs[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(g.handlerNames))
	if err != nil {
		panic(fmt.Errorf("handler table overflow: %w", err))
	}
	id = bytecode.HandlerID(n)
	g.handlerIDs[key] = id
	g.handlerNames = append(g.handlerNames, name)
	return id
}

// HandlerName returns the name a handler ID was first interned with.
func (g *Group) HandlerName(id bytecode.HandlerID) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if int(id) >= len(g.handlerNames) {
		return ""
	}
	return g.handlerNames[id]
}

// RegisterObject stores a host object and returns a weak reference that
// scripts can record as their owner.
func (g *Group) RegisterObject(obj any) objtab.Ref {
	return g.Objects.Alloc(obj)
}

// ReleaseObject forgets a host object. Scripts it owned keep running but
// ScriptOwner no longer finds it.
func (g *Group) ReleaseObject(ref objtab.Ref) {
	if _, ok := g.Objects.Resolve(ref); ok {
		g.Objects.Release(ref.ID)
	}
}

// ScriptOwner resolves the owner recorded in a script.
func (g *Group) ScriptOwner(s *bytecode.Script) (any, bool) {
	if s == nil || s.Owner().IsZero() {
		return nil, false
	}
	return g.Objects.Resolve(s.Owner())
}

// refFor returns a weak reference to v, registering v on first use.
func (g *Group) refFor(v *Value) objtab.Ref {
	if v.refObjectID != objtab.Invalid {
		if ref, ok := g.Values.Current(v.refObjectID); ok {
			return ref
		}
	}
	ref := g.Values.Alloc(v)
	v.refObjectID = ref.ID
	return ref
}
