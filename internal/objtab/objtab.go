// Package objtab implements a growable table of weak "master pointer"
// slots. Each slot carries a generation counter (its seed); handing out
// (id, seed) pairs instead of pointers lets holders detect that the object
// they refer to is gone even after its slot has been recycled.
package objtab

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// ID identifies a slot. The zero ID is never allocated.
type ID uint32

// Invalid is the ID of "no slot".
const Invalid ID = 0

// Ref is a weak reference: a slot ID plus the seed observed when the
// reference was made.
type Ref struct {
	ID   ID
	Seed uint64
}

// IsZero reports whether r refers to nothing.
func (r Ref) IsZero() bool { return r.ID == Invalid }

func (r Ref) String() string {
	if r.IsZero() {
		return "ref(none)"
	}
	return fmt.Sprintf("ref(%d@%d)", r.ID, r.Seed)
}

type entry[T any] struct {
	value T
	seed  uint64
	used  bool
}

// Table maps IDs to values of type T. A Table created unsynchronized must
// only be used from one goroutine at a time.
type Table[T any] struct {
	mu      *sync.RWMutex
	entries []entry[T]
	free    []ID
	live    int
}

// New creates an empty table. When synchronized is true every operation is
// guarded by a read/write lock, so contexts on different goroutines can
// share the table.
func New[T any](synchronized bool) *Table[T] {
	t := &Table[T]{entries: make([]entry[T], 1, 64)}
	if synchronized {
		t.mu = &sync.RWMutex{}
	}
	return t
}

func (t *Table[T]) lock() {
	if t.mu != nil {
		t.mu.Lock()
	}
}

func (t *Table[T]) unlock() {
	if t.mu != nil {
		t.mu.Unlock()
	}
}

func (t *Table[T]) rlock() {
	if t.mu != nil {
		t.mu.RLock()
	}
}

func (t *Table[T]) runlock() {
	if t.mu != nil {
		t.mu.RUnlock()
	}
}

// Alloc stores v in a free slot (recycling released ones first) and
// returns a reference carrying the slot's current seed.
func (t *Table[T]) Alloc(v T) Ref {
	t.lock()
	defer t.unlock()

	var id ID
	if n := len(t.free); n > 0 {
		id = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		n, err := safecast.Conv[uint32](len(t.entries))
		if err != nil {
			panic(fmt.Errorf("object table overflow: %w", err))
		}
		t.entries = append(t.entries, entry[T]{})
		id = ID(n)
	}
	e := &t.entries[id]
	e.value = v
	e.used = true
	t.live++
	return Ref{ID: id, Seed: e.seed}
}

// Resolve returns the value a reference points to. It fails when the slot
// was released since the reference was made.
func (t *Table[T]) Resolve(ref Ref) (T, bool) {
	t.rlock()
	defer t.runlock()

	var zero T
	if ref.ID == Invalid || int(ref.ID) >= len(t.entries) {
		return zero, false
	}
	e := &t.entries[ref.ID]
	if !e.used || e.seed != ref.Seed {
		return zero, false
	}
	return e.value, true
}

// Seed returns the current seed of a slot.
func (t *Table[T]) Seed(id ID) uint64 {
	t.rlock()
	defer t.runlock()
	if int(id) >= len(t.entries) {
		return 0
	}
	return t.entries[id].seed
}

// Current returns a reference to id carrying its current seed, and whether
// the slot is in use.
func (t *Table[T]) Current(id ID) (Ref, bool) {
	t.rlock()
	defer t.runlock()
	if id == Invalid || int(id) >= len(t.entries) {
		return Ref{}, false
	}
	e := &t.entries[id]
	return Ref{ID: id, Seed: e.seed}, e.used
}

// Retarget replaces the value stored in a live slot without invalidating
// outstanding references.
func (t *Table[T]) Retarget(id ID, v T) bool {
	t.lock()
	defer t.unlock()
	if id == Invalid || int(id) >= len(t.entries) || !t.entries[id].used {
		return false
	}
	t.entries[id].value = v
	return true
}

// Release invalidates every outstanding reference to id and makes the slot
// available for reuse. Releasing a free slot is a no-op.
func (t *Table[T]) Release(id ID) {
	t.lock()
	defer t.unlock()
	if id == Invalid || int(id) >= len(t.entries) {
		return
	}
	e := &t.entries[id]
	if !e.used {
		return
	}
	var zero T
	e.value = zero
	e.used = false
	e.seed++
	t.live--
	t.free = append(t.free, id)
}

// Len returns the number of slots ever allocated.
func (t *Table[T]) Len() int {
	t.rlock()
	defer t.runlock()
	return len(t.entries) - 1
}

// Live returns the number of slots currently in use.
func (t *Table[T]) Live() int {
	t.rlock()
	defer t.runlock()
	return t.live
}
