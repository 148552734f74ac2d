package vm

import (
	"strconv"

	"leo/internal/chunk"
)

// setThroughReference writes text into what a chunk reference designates,
// or hands the whole-value case to set.
func (v *Value) setThroughReference(ctx *Context, text func() string, set func(*Value) bool) bool {
	w, ok := v.window(ctx)
	if !ok {
		return false
	}
	if w.whole {
		return set(w.base)
	}
	return w.base.SetPredeterminedRange(w.start, w.end, text(), ctx)
}

// SetNumber stores n. Strings take its string form; variants become
// numbers; booleans and arrays fail.
func (v *Value) SetNumber(n float64, ctx *Context) bool {
	switch v.kind {
	case KindNumber:
		v.number = n
	case KindInteger:
		i, ok := numberToInteger(n)
		if !ok {
			ctx.fail(ctx.eb.cantMake(formatNumber(n), "integer"))
			return false
		}
		v.integer = i
	case KindString, KindStringConstant:
		v.kind = KindString
		v.str = formatNumber(n)
	case KindVariantNumber, KindVariantInteger, KindVariantString, KindVariantBoolean, KindVariantArray:
		v.CleanUp(KeepReferences, ctx)
		v.InitVariantNumber(n, KeepReferences, ctx)
	case KindReference:
		return v.setThroughReference(ctx,
			func() string { return formatNumber(n) },
			func(t *Value) bool { return t.SetNumber(n, ctx) })
	default:
		ctx.fail(ctx.eb.typeMismatch(v.kind.TypeName(), "number"))
		return false
	}
	return true
}

// SetInteger stores n.
func (v *Value) SetInteger(n int64, ctx *Context) bool {
	switch v.kind {
	case KindInteger:
		v.integer = n
	case KindNumber:
		v.number = float64(n)
	case KindString, KindStringConstant:
		v.kind = KindString
		v.str = strconv.FormatInt(n, 10)
	case KindVariantNumber, KindVariantInteger, KindVariantString, KindVariantBoolean, KindVariantArray:
		v.CleanUp(KeepReferences, ctx)
		v.InitVariantInteger(n, KeepReferences, ctx)
	case KindReference:
		return v.setThroughReference(ctx,
			func() string { return strconv.FormatInt(n, 10) },
			func(t *Value) bool { return t.SetInteger(n, ctx) })
	default:
		ctx.fail(ctx.eb.typeMismatch(v.kind.TypeName(), "integer"))
		return false
	}
	return true
}

// SetString stores s. Typed values parse s into their own kind; a string
// constant is promoted to an owned string.
func (v *Value) SetString(s string, ctx *Context) bool {
	switch v.kind {
	case KindString, KindStringConstant:
		v.kind = KindString
		v.str = s
	case KindNumber:
		n, ok := parseNumber(s)
		if !ok {
			ctx.fail(ctx.eb.cantMake(s, "number"))
			return false
		}
		v.number = n
	case KindInteger:
		i, ok := parseInteger(s)
		if !ok {
			ctx.fail(ctx.eb.cantMake(s, "integer"))
			return false
		}
		v.integer = i
	case KindBoolean:
		b, ok := parseBoolean(s)
		if !ok {
			ctx.fail(ctx.eb.cantMake(s, "boolean"))
			return false
		}
		v.boolean = b
	case KindArray:
		root, ok := ArrayFromString(s, ctx)
		if !ok {
			ctx.fail(ctx.eb.typeMismatch("array", "string"))
			return false
		}
		ArrayCleanUp(v.array, ctx)
		v.array = root
	case KindVariantNumber, KindVariantInteger, KindVariantString, KindVariantBoolean, KindVariantArray:
		v.CleanUp(KeepReferences, ctx)
		v.InitVariantString(s, KeepReferences, ctx)
	case KindReference:
		return v.setThroughReference(ctx,
			func() string { return s },
			func(t *Value) bool { return t.SetString(s, ctx) })
	default:
		ctx.fail(ctx.eb.typeMismatch(v.kind.TypeName(), "string"))
		return false
	}
	return true
}

// SetBoolean stores b.
func (v *Value) SetBoolean(b bool, ctx *Context) bool {
	switch v.kind {
	case KindBoolean:
		v.boolean = b
	case KindString, KindStringConstant:
		v.kind = KindString
		v.str = formatBoolean(b)
	case KindVariantNumber, KindVariantInteger, KindVariantString, KindVariantBoolean, KindVariantArray:
		v.CleanUp(KeepReferences, ctx)
		v.InitVariantBoolean(b, KeepReferences, ctx)
	case KindReference:
		return v.setThroughReference(ctx,
			func() string { return formatBoolean(b) },
			func(t *Value) bool { return t.SetBoolean(b, ctx) })
	default:
		ctx.fail(ctx.eb.typeMismatch(v.kind.TypeName(), "boolean"))
		return false
	}
	return true
}

// SetArray stores a deep copy of root. Strings take the canonical string
// form of the array.
func (v *Value) SetArray(root *ArrayEntry, ctx *Context) bool {
	switch v.kind {
	case KindArray:
		cp := ArrayCopy(root, ctx)
		ArrayCleanUp(v.array, ctx)
		v.array = cp
	case KindString, KindStringConstant:
		s, ok := ArrayString(root, ctx)
		if !ok {
			return false
		}
		v.kind = KindString
		v.str = s
	case KindVariantNumber, KindVariantInteger, KindVariantString, KindVariantBoolean, KindVariantArray:
		cp := ArrayCopy(root, ctx)
		v.CleanUp(KeepReferences, ctx)
		v.InitVariantArray(cp, KeepReferences, ctx)
	case KindReference:
		return v.setThroughReference(ctx,
			func() string { s, _ := ArrayString(root, ctx); return s },
			func(t *Value) bool { return t.SetArray(root, ctx) })
	default:
		ctx.fail(ctx.eb.typeMismatch(v.kind.TypeName(), "array"))
		return false
	}
	return true
}

// PutInto stores the value of v into dest, converting it to whatever dest
// already holds. This is how arguments and return values are assigned.
func (v *Value) PutInto(dest *Value, ctx *Context) bool {
	switch v.kind {
	case KindNumber, KindVariantNumber:
		return dest.SetNumber(v.number, ctx)
	case KindInteger, KindVariantInteger:
		return dest.SetInteger(v.integer, ctx)
	case KindString, KindStringConstant, KindVariantString:
		return dest.SetString(v.str, ctx)
	case KindBoolean, KindVariantBoolean:
		return dest.SetBoolean(v.boolean, ctx)
	case KindArray, KindVariantArray:
		return dest.SetArray(v.array, ctx)
	case KindReference:
		w, ok := v.window(ctx)
		if !ok {
			return false
		}
		if w.whole {
			return w.base.PutInto(dest, ctx)
		}
		s, ok := w.text(ctx)
		if !ok {
			return false
		}
		return dest.SetString(s, ctx)
	default:
		ctx.fail(ctx.eb.typeMismatch("value", v.kind.TypeName()))
		return false
	}
}

// RangeAsString returns a chunk of the value's string form. Range indices
// are 0-based and inclusive.
func (v *Value) RangeAsString(typ chunk.Type, start, end int, ctx *Context) (string, bool) {
	s, ok := v.AsString(ctx)
	if !ok {
		return "", false
	}
	r := chunk.Ranges(s, typ, start, end, ctx.itemDelimiter)
	return s[r.Start:r.End], true
}

// SetRangeAsString replaces a chunk of the value's string form with text.
func (v *Value) SetRangeAsString(typ chunk.Type, start, end int, text string, ctx *Context) bool {
	r, ok := v.DetermineChunkRange(typ, start, end, ctx)
	if !ok {
		return false
	}
	return v.SetPredeterminedRange(r.Start, r.End, text, ctx)
}

// SetPredeterminedRange replaces bytes [start, end) of the value's string
// form with text. Out-of-range offsets are clamped.
func (v *Value) SetPredeterminedRange(start, end int, text string, ctx *Context) bool {
	if v.kind == KindReference {
		w, ok := v.window(ctx)
		if !ok {
			return false
		}
		if !w.whole {
			n := w.end - w.start
			start, end = clampRange(start, end, n)
			start += w.start
			end += w.start
		}
		return w.base.SetPredeterminedRange(start, end, text, ctx)
	}
	s, ok := v.AsString(ctx)
	if !ok {
		return false
	}
	start, end = clampRange(start, end, len(s))
	return v.SetString(s[:start]+text+s[end:], ctx)
}

// DetermineChunkRange locates a chunk in the value's string form. The
// offsets are relative to that string, so they can be handed back to
// SetPredeterminedRange on the same value.
func (v *Value) DetermineChunkRange(typ chunk.Type, start, end int, ctx *Context) (chunk.Range, bool) {
	s, ok := v.AsString(ctx)
	if !ok {
		return chunk.Range{}, false
	}
	return chunk.Ranges(s, typ, start, end, ctx.itemDelimiter), true
}
