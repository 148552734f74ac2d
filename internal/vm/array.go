package vm

import (
	"strings"
)

// ArrayEntry is a node of an array: an unbalanced binary search tree keyed
// by case-insensitive strings. A nil *ArrayEntry is the empty array.
type ArrayEntry struct {
	key     string
	value   Value
	smaller *ArrayEntry
	larger  *ArrayEntry
}

// Key returns the entry's key as it was first inserted.
func (e *ArrayEntry) Key() string { return e.key }

// Value returns the entry's value in place.
func (e *ArrayEntry) Value() *Value { return &e.value }

// ArrayInsert stores a copy of src under key. An existing entry with an
// equal key is replaced in place, so references to it stay valid. The
// empty key is rejected since the serialized form could not carry it.
func ArrayInsert(root **ArrayEntry, key string, src *Value, ctx *Context) bool {
	if key == "" {
		if ctx != nil {
			ctx.StopWithError(ErrBadOperand, "Array keys can't be empty.")
		}
		return false
	}
	folded := foldKey(key)
	link := root
	for *link != nil {
		e := *link
		switch c := strings.Compare(folded, foldKey(e.key)); {
		case c > 0:
			link = &e.larger
		case c < 0:
			link = &e.smaller
		default:
			// Copy before cleaning up: src may live inside the old value.
			var tmp Value
			tmp.InitCopy(src, InvalidateReferences, ctx)
			e.value.CleanUp(KeepReferences, ctx)
			e.value.moveFrom(&tmp)
			return true
		}
	}
	e := &ArrayEntry{key: key}
	e.value.InitCopy(src, InvalidateReferences, ctx)
	*link = e
	return true
}

// moveFrom transfers the payload of an unreferenced temporary into v,
// keeping v's own reference registration.
func (v *Value) moveFrom(tmp *Value) {
	id := v.refObjectID
	*v = *tmp
	v.refObjectID = id
	*tmp = Value{}
}

// ArrayLookup returns the value stored under key, or nil.
func ArrayLookup(root *ArrayEntry, key string) *Value {
	folded := foldKey(key)
	for e := root; e != nil; {
		switch c := strings.Compare(folded, foldKey(e.key)); {
		case c > 0:
			e = e.larger
		case c < 0:
			e = e.smaller
		default:
			return &e.value
		}
	}
	return nil
}

// ArrayDelete removes key, cleaning up its value. The larger subtree takes
// the removed node's place and the smaller subtree is grafted below the
// leftmost node of the larger one. No rebalancing is done.
func ArrayDelete(root **ArrayEntry, key string, ctx *Context) bool {
	folded := foldKey(key)
	link := root
	for *link != nil {
		e := *link
		switch c := strings.Compare(folded, foldKey(e.key)); {
		case c > 0:
			link = &e.larger
		case c < 0:
			link = &e.smaller
		default:
			switch {
			case e.larger == nil:
				*link = e.smaller
			case e.smaller == nil:
				*link = e.larger
			default:
				leftmost := e.larger
				for leftmost.smaller != nil {
					leftmost = leftmost.smaller
				}
				leftmost.smaller = e.smaller
				*link = e.larger
			}
			e.value.CleanUp(InvalidateReferences, ctx)
			e.smaller, e.larger = nil, nil
			return true
		}
	}
	return false
}

// ArrayCount returns the number of entries.
func ArrayCount(root *ArrayEntry) int {
	if root == nil {
		return 0
	}
	return 1 + ArrayCount(root.smaller) + ArrayCount(root.larger)
}

// ArrayCopy returns a deep copy of the tree with the same shape.
func ArrayCopy(root *ArrayEntry, ctx *Context) *ArrayEntry {
	if root == nil {
		return nil
	}
	e := &ArrayEntry{
		key:     root.key,
		smaller: ArrayCopy(root.smaller, ctx),
		larger:  ArrayCopy(root.larger, ctx),
	}
	e.value.InitCopy(&root.value, InvalidateReferences, ctx)
	return e
}

// ArrayCleanUp cleans up every value in the tree. The tree must not be
// used afterwards.
func ArrayCleanUp(root *ArrayEntry, ctx *Context) {
	if root == nil {
		return
	}
	ArrayCleanUp(root.smaller, ctx)
	ArrayCleanUp(root.larger, ctx)
	root.value.CleanUp(InvalidateReferences, ctx)
	root.smaller, root.larger = nil, nil
}

// ArrayKeys returns the keys in tree order.
func ArrayKeys(root *ArrayEntry) []string {
	var keys []string
	arrayWalk(root, func(e *ArrayEntry) bool {
		keys = append(keys, e.key)
		return true
	})
	return keys
}

func arrayWalk(e *ArrayEntry, fn func(*ArrayEntry) bool) bool {
	if e == nil {
		return true
	}
	return arrayWalk(e.smaller, fn) && fn(e) && arrayWalk(e.larger, fn)
}

// Newlines inside serialized keys and values are written as ESC 'n'; a
// literal ESC is doubled so nested arrays survive another round. Keys also
// escape ':' as ESC ':' so the first bare colon ends the key.
const (
	escapedNewline = "\x1bn"
	escapedEscape  = "\x1b\x1b"
	escapedColon   = "\x1b:"
)

var (
	valueEscaper   = strings.NewReplacer("\x1b", escapedEscape, "\n", escapedNewline)
	keyEscaper     = strings.NewReplacer("\x1b", escapedEscape, "\n", escapedNewline, ":", escapedColon)
	arrayUnescaper = strings.NewReplacer(escapedEscape, "\x1b", escapedNewline, "\n", escapedColon, ":")
)

// keyEnd returns the index of the first colon not escaped by ESC, or -1.
func keyEnd(line string) int {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\x1b':
			i++
		case ':':
			return i
		}
	}
	return -1
}

// ArrayString serializes the tree as one "key:value\n" line per entry in
// tree order. Newlines inside keys and values and colons inside keys are
// escaped.
func ArrayString(root *ArrayEntry, ctx *Context) (string, bool) {
	var sb strings.Builder
	ok := arrayWalk(root, func(e *ArrayEntry) bool {
		s, ok := e.value.AsString(ctx)
		if !ok {
			return false
		}
		sb.WriteString(keyEscaper.Replace(e.key))
		sb.WriteByte(':')
		sb.WriteString(valueEscaper.Replace(s))
		sb.WriteByte('\n')
		return true
	})
	return sb.String(), ok
}

// ArrayFromString parses the format written by ArrayString. Values come
// back as strings. A line without a non-empty key before its colon makes
// the whole text invalid.
func ArrayFromString(text string, ctx *Context) (*ArrayEntry, bool) {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, true
	}
	var root *ArrayEntry
	for line := range strings.SplitSeq(text, "\n") {
		colon := keyEnd(line)
		if colon <= 0 {
			ArrayCleanUp(root, ctx)
			return nil, false
		}
		val := textValue(arrayUnescaper.Replace(line[colon+1:]))
		ArrayInsert(&root, arrayUnescaper.Replace(line[:colon]), &val, ctx)
	}
	return root, true
}
