package vm

import (
	"leo/internal/chunk"
	"leo/internal/objtab"
)

// reference is the payload of a KindReference value.
type reference struct {
	id    objtab.ID
	seed  uint64
	chunk chunk.Type // chunk.Invalid means the whole value
	start int        // 0-based, inclusive
	end   int
}

// Value is a tagged value living in place in a stack slot or an array
// node. Values must not be copied by assignment once they may have been
// referenced: weak references resolve to the slot's address.
type Value struct {
	kind        Kind
	number      float64
	integer     int64
	boolean     bool
	str         string
	ref         reference
	array       *ArrayEntry
	refObjectID objtab.ID
}

// Kind returns the value's tag.
func (v *Value) Kind() Kind { return v.kind }

// IsDead reports whether the value has been cleaned up.
func (v *Value) IsDead() bool { return v.kind == KindDead }

// reset retags v, dropping the payload. With InvalidateReferences an
// existing weak-reference registration is released first.
func (v *Value) reset(kind Kind, keep KeepRefs, ctx *Context) {
	id := v.refObjectID
	if keep == InvalidateReferences && id != objtab.Invalid {
		ctx.group.Values.Release(id)
		id = objtab.Invalid
	}
	*v = Value{kind: kind, refObjectID: id}
}

// InitNumber constructs a number in place.
func (v *Value) InitNumber(n float64, keep KeepRefs, ctx *Context) {
	v.reset(KindNumber, keep, ctx)
	v.number = n
}

// InitInteger constructs an integer in place.
func (v *Value) InitInteger(n int64, keep KeepRefs, ctx *Context) {
	v.reset(KindInteger, keep, ctx)
	v.integer = n
}

// InitString constructs an owned string in place.
func (v *Value) InitString(s string, keep KeepRefs, ctx *Context) {
	v.reset(KindString, keep, ctx)
	v.str = s
}

// InitStringConstant constructs a string that borrows s, typically an entry
// of a script's string table. The first mutation promotes it to KindString.
func (v *Value) InitStringConstant(s string, keep KeepRefs, ctx *Context) {
	v.reset(KindStringConstant, keep, ctx)
	v.str = s
}

// InitBoolean constructs a boolean in place.
func (v *Value) InitBoolean(b bool, keep KeepRefs, ctx *Context) {
	v.reset(KindBoolean, keep, ctx)
	v.boolean = b
}

// InitArray constructs an array that takes ownership of root.
func (v *Value) InitArray(root *ArrayEntry, keep KeepRefs, ctx *Context) {
	v.reset(KindArray, keep, ctx)
	v.array = root
}

// InitEmptyArray constructs an array with no entries.
func (v *Value) InitEmptyArray(keep KeepRefs, ctx *Context) {
	v.InitArray(nil, keep, ctx)
}

// InitVariantNumber constructs a number that may later change its kind.
func (v *Value) InitVariantNumber(n float64, keep KeepRefs, ctx *Context) {
	v.InitNumber(n, keep, ctx)
	v.kind = KindVariantNumber
}

// InitVariantInteger constructs an integer that may later change its kind.
func (v *Value) InitVariantInteger(n int64, keep KeepRefs, ctx *Context) {
	v.InitInteger(n, keep, ctx)
	v.kind = KindVariantInteger
}

// InitVariantString constructs a string that may later change its kind.
func (v *Value) InitVariantString(s string, keep KeepRefs, ctx *Context) {
	v.InitString(s, keep, ctx)
	v.kind = KindVariantString
}

// InitVariantBoolean constructs a boolean that may later change its kind.
func (v *Value) InitVariantBoolean(b bool, keep KeepRefs, ctx *Context) {
	v.InitBoolean(b, keep, ctx)
	v.kind = KindVariantBoolean
}

// InitVariantArray constructs an array that may later change its kind.
func (v *Value) InitVariantArray(root *ArrayEntry, keep KeepRefs, ctx *Context) {
	v.InitArray(root, keep, ctx)
	v.kind = KindVariantArray
}

// InitUnset constructs the value of a fresh variable: an empty variant
// string.
func (v *Value) InitUnset(keep KeepRefs, ctx *Context) {
	v.InitVariantString("", keep, ctx)
}

// InitReference constructs a weak reference to the whole of target.
func (v *Value) InitReference(target *Value, keep KeepRefs, ctx *Context) bool {
	return v.InitChunkReference(target, chunk.Invalid, 0, 0, keep, ctx)
}

// InitChunkReference constructs a weak reference to a chunk of target.
// Range indices are 0-based and inclusive. A chunk reference to another
// reference is stored as a byte range of the value the chain ends at, so
// later accesses do not depend on the intermediate reference.
func (v *Value) InitChunkReference(target *Value, typ chunk.Type, start, end int, keep KeepRefs, ctx *Context) bool {
	if target == v {
		ctx.StopWithError(ErrBadOperand, "Can't make a value refer to itself.")
		return false
	}
	if typ != chunk.Invalid && target.kind == KindReference {
		base, r, ok := target.resolveWindow(typ, start, end, ctx)
		if !ok {
			return false
		}
		target, typ, start, end = base, chunk.Byte, r.Start, r.End-1
	}
	ref := ctx.group.refFor(target)
	v.reset(KindReference, keep, ctx)
	v.ref = reference{id: ref.ID, seed: ref.Seed, chunk: typ, start: start, end: end}
	return true
}

// InitCopy constructs a deep copy of src that keeps src's kind. References
// are copied as references.
func (v *Value) InitCopy(src *Value, keep KeepRefs, ctx *Context) {
	switch src.kind {
	case KindNumber, KindVariantNumber:
		v.InitNumber(src.number, keep, ctx)
	case KindInteger, KindVariantInteger:
		v.InitInteger(src.integer, keep, ctx)
	case KindString, KindVariantString:
		v.InitString(src.str, keep, ctx)
	case KindStringConstant:
		v.InitStringConstant(src.str, keep, ctx)
	case KindBoolean, KindVariantBoolean:
		v.InitBoolean(src.boolean, keep, ctx)
	case KindArray, KindVariantArray:
		v.InitArray(ArrayCopy(src.array, ctx), keep, ctx)
	case KindReference:
		v.reset(KindReference, keep, ctx)
		v.ref = src.ref
	default:
		v.reset(KindDead, keep, ctx)
		return
	}
	if src.kind.IsVariant() {
		v.kind = src.kind
	}
}

// InitSimpleCopy constructs a plain copy of src: references are replaced by
// (a copy of) what they refer to and variants become their base kind.
func (v *Value) InitSimpleCopy(src *Value, keep KeepRefs, ctx *Context) bool {
	if src.kind != KindReference {
		v.InitCopy(src, keep, ctx)
		v.kind = v.kind.plain()
		return true
	}
	target, ok := src.follow(ctx)
	if !ok {
		return false
	}
	if src.ref.chunk == chunk.Invalid {
		return v.InitSimpleCopy(target, keep, ctx)
	}
	s, ok := src.AsString(ctx)
	if !ok {
		return false
	}
	v.InitString(s, keep, ctx)
	return true
}

// plain maps a variant kind to its non-variant form.
func (k Kind) plain() Kind {
	if k.IsVariant() {
		return k.Base()
	}
	return k
}

// CleanUp releases the value's payload and marks it dead. With
// InvalidateReferences every outstanding weak reference to it stops
// resolving; with KeepReferences they will resolve to whatever is next
// constructed in this slot.
func (v *Value) CleanUp(keep KeepRefs, ctx *Context) {
	if v.kind == KindArray || v.kind == KindVariantArray {
		ArrayCleanUp(v.array, ctx)
	}
	v.reset(KindDead, keep, ctx)
}

// retag re-initializes a variant after its payload was replaced by a plain
// Init* call.
func (v *Value) retag() {
	v.kind = variantOf(v.kind)
}
