package vm

// arrayView returns the array a value holds or can be read as. Strings are
// parsed into a temporary tree.
func (v *Value) arrayView(ctx *Context) (*ArrayEntry, bool) {
	switch v.kind {
	case KindArray, KindVariantArray:
		return v.array, true
	case KindString, KindStringConstant, KindVariantString:
		root, ok := ArrayFromString(v.str, ctx)
		if !ok {
			ctx.fail(ctx.eb.typeMismatch("array", "string"))
		}
		return root, ok
	case KindReference:
		w, ok := v.window(ctx)
		if !ok {
			return nil, false
		}
		if w.whole {
			return w.base.arrayView(ctx)
		}
		s, ok := w.text(ctx)
		if !ok {
			return nil, false
		}
		tmp := textValue(s)
		return tmp.arrayView(ctx)
	default:
		ctx.fail(ctx.eb.typeMismatch("array", v.kind.TypeName()))
		return nil, false
	}
}

// editAsArray applies edit to the array form of v and stores the result
// back in v's own kind.
func (v *Value) editAsArray(ctx *Context, edit func(root **ArrayEntry) bool) bool {
	switch v.kind {
	case KindArray, KindVariantArray:
		return edit(&v.array)
	case KindString, KindStringConstant:
		root, ok := v.arrayView(ctx)
		if !ok {
			return false
		}
		if !edit(&root) {
			ArrayCleanUp(root, ctx)
			return false
		}
		s, ok := ArrayString(root, ctx)
		ArrayCleanUp(root, ctx)
		if !ok {
			return false
		}
		v.kind = KindString
		v.str = s
		return true
	case KindVariantString, KindVariantNumber, KindVariantInteger, KindVariantBoolean:
		s, ok := v.AsString(ctx)
		if !ok {
			return false
		}
		root, ok := ArrayFromString(s, ctx)
		if !ok {
			ctx.fail(ctx.eb.typeMismatch("array", v.kind.TypeName()))
			return false
		}
		if !edit(&root) {
			ArrayCleanUp(root, ctx)
			return false
		}
		v.CleanUp(KeepReferences, ctx)
		v.InitVariantArray(root, KeepReferences, ctx)
		return true
	case KindReference:
		w, ok := v.window(ctx)
		if !ok {
			return false
		}
		if w.whole {
			return w.base.editAsArray(ctx, edit)
		}
		s, ok := w.text(ctx)
		if !ok {
			return false
		}
		tmp := textValue(s)
		if !tmp.editAsArray(ctx, edit) {
			return false
		}
		return w.base.SetPredeterminedRange(w.start, w.end, tmp.str, ctx)
	default:
		ctx.fail(ctx.eb.typeMismatch("array", v.kind.TypeName()))
		return false
	}
}

// ValueForKey looks up key. A missing key yields nil with ok true.
func (v *Value) ValueForKey(key string, ctx *Context) (*Value, bool) {
	root, ok := v.arrayView(ctx)
	if !ok {
		return nil, false
	}
	return ArrayLookup(root, key), true
}

// SetValueForKey stores a copy of src under key. Variants that are not yet
// arrays turn into one.
func (v *Value) SetValueForKey(key string, src *Value, ctx *Context) bool {
	return v.editAsArray(ctx, func(root **ArrayEntry) bool {
		return ArrayInsert(root, key, src, ctx)
	})
}

// DeleteKey removes key. Deleting a missing key is not an error.
func (v *Value) DeleteKey(key string, ctx *Context) bool {
	return v.editAsArray(ctx, func(root **ArrayEntry) bool {
		ArrayDelete(root, key, ctx)
		return true
	})
}

// KeyCount returns the number of keys.
func (v *Value) KeyCount(ctx *Context) (int, bool) {
	root, ok := v.arrayView(ctx)
	if !ok {
		return 0, false
	}
	return ArrayCount(root), true
}
