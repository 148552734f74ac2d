package vm

import (
	"leo/internal/chunk"
	"leo/internal/objtab"
)

const maxReferenceChain = 64

// window is the part of a value a reference designates: a byte range of
// the string form of base, the non-reference value a chain ends at.
type window struct {
	base       *Value
	start, end int
	whole      bool
}

// follow resolves one hop of a reference.
func (v *Value) follow(ctx *Context) (*Value, bool) {
	t, ok := ctx.group.Values.Resolve(objtab.Ref{ID: v.ref.id, Seed: v.ref.seed})
	if !ok || t == nil || t.kind == KindDead {
		ctx.fail(ctx.eb.deadReference())
		return nil, false
	}
	return t, true
}

// window follows v to its base value and computes the designated range.
func (v *Value) window(ctx *Context) (window, bool) {
	return v.windowDepth(ctx, 0)
}

func (v *Value) windowDepth(ctx *Context, depth int) (window, bool) {
	if v.kind != KindReference {
		return window{base: v, whole: true}, true
	}
	if depth >= maxReferenceChain {
		ctx.StopWithError(ErrBadOperand, "Reference chain too long.")
		return window{}, false
	}
	t, ok := v.follow(ctx)
	if !ok {
		return window{}, false
	}
	w, ok := t.windowDepth(ctx, depth+1)
	if !ok || v.ref.chunk == chunk.Invalid {
		return w, ok
	}
	sub, ok := w.text(ctx)
	if !ok {
		return window{}, false
	}
	r := chunk.Ranges(sub, v.ref.chunk, v.ref.start, v.ref.end, ctx.itemDelimiter)
	return window{base: w.base, start: w.start + r.Start, end: w.start + r.End}, true
}

// text returns the designated part of the base value's string form.
func (w window) text(ctx *Context) (string, bool) {
	s, ok := w.base.AsString(ctx)
	if !ok {
		return "", false
	}
	if w.whole {
		return s, true
	}
	start, end := clampRange(w.start, w.end, len(s))
	return s[start:end], true
}

// resolveWindow ranges a chunk inside what v designates and returns the
// base value together with the range in base's string.
func (v *Value) resolveWindow(typ chunk.Type, start, end int, ctx *Context) (*Value, chunk.Range, bool) {
	w, ok := v.window(ctx)
	if !ok {
		return nil, chunk.Range{}, false
	}
	sub, ok := w.text(ctx)
	if !ok {
		return nil, chunk.Range{}, false
	}
	r := chunk.Ranges(sub, typ, start, end, ctx.itemDelimiter)
	if !w.whole {
		r = r.Shift(w.start)
	}
	return w.base, r, true
}

// textValue wraps a string in a temporary value for conversions.
func textValue(s string) Value {
	return Value{kind: KindString, str: s}
}

func clampRange(start, end, n int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return start, end
}
