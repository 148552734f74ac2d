// Package chunk locates bytes, characters, items, lines and words inside
// strings. It is the substring addressing model used by every string value
// of the runtime: callers supply a logical range and receive byte offsets.
package chunk

import (
	"fmt"
	"strings"
)

// Type selects the unit a chunk range counts in.
type Type uint8

const (
	// Invalid means "no chunk": the whole text is addressed.
	Invalid Type = iota
	// Byte addresses single bytes.
	Byte
	// Character addresses UTF-8 encoded code points.
	Character
	// Item addresses runs separated by the item delimiter.
	Item
	// Line addresses runs separated by '\n'.
	Line
	// Word addresses runs of non-whitespace.
	Word
)

// String returns the chunk type name used by tooling.
func (t Type) String() string {
	switch t {
	case Invalid:
		return "none"
	case Byte:
		return "byte"
	case Character:
		return "char"
	case Item:
		return "item"
	case Line:
		return "line"
	case Word:
		return "word"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// ParseType converts a chunk type name to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return Invalid, nil
	case "byte", "bytes":
		return Byte, nil
	case "char", "chars", "character", "characters":
		return Character, nil
	case "item", "items":
		return Item, nil
	case "line", "lines":
		return Line, nil
	case "word", "words":
		return Word, nil
	default:
		return Invalid, fmt.Errorf("unknown chunk type %q (expected byte|char|item|line|word)", s)
	}
}

// Range holds half-open byte offsets of a chunk. Start/End delimit the
// payload; DelStart/DelEnd delimit what has to be removed to delete the
// chunk, which may include one adjacent delimiter.
type Range struct {
	Start    int
	End      int
	DelStart int
	DelEnd   int
}

// Len returns the payload length in bytes.
func (r Range) Len() int { return r.End - r.Start }

// Shift moves every offset of r by n bytes.
func (r Range) Shift(n int) Range {
	return Range{Start: r.Start + n, End: r.End + n, DelStart: r.DelStart + n, DelEnd: r.DelEnd + n}
}

// Text is the set of byte sequences chunks can be located in.
type Text interface {
	~string | ~[]byte
}

// DefaultItemDelimiter is the item delimiter of a fresh context.
const DefaultItemDelimiter = ','

// Ranges locates chunks rangeStart through rangeEnd (0-based, inclusive) of
// the given type in text. Requests beyond the available chunks yield empty
// ranges positioned at the end of text; Ranges never fails.
func Ranges[S Text](text S, typ Type, rangeStart, rangeEnd int, delim byte) Range {
	n := len(text)
	if rangeStart < 0 {
		rangeStart = 0
	}
	switch typ {
	case Byte:
		return byteRanges(n, rangeStart, rangeEnd)
	case Character:
		if rangeEnd < rangeStart {
			rangeEnd = rangeStart
		}
		return characterRanges(text, rangeStart, rangeEnd)
	case Item:
		if rangeEnd < rangeStart {
			rangeEnd = rangeStart
		}
		return delimitedRanges(text, rangeStart, rangeEnd, delim)
	case Line:
		if rangeEnd < rangeStart {
			rangeEnd = rangeStart
		}
		return delimitedRanges(text, rangeStart, rangeEnd, '\n')
	case Word:
		if rangeEnd < rangeStart {
			rangeEnd = rangeStart
		}
		return wordRanges(text, rangeStart, rangeEnd)
	default:
		return Range{Start: 0, End: n, DelStart: 0, DelEnd: n}
	}
}

// byteRanges handles Byte chunks. rangeEnd < rangeStart denotes an empty
// range at rangeStart.
func byteRanges(n, rangeStart, rangeEnd int) Range {
	start := min(rangeStart, n)
	end := start
	if rangeEnd >= rangeStart {
		if rangeEnd >= n {
			end = n
		} else {
			end = rangeEnd + 1
		}
	}
	return Range{Start: start, End: end, DelStart: start, DelEnd: end}
}

// SequenceLength returns the length of the UTF-8 sequence introduced by
// lead. Continuation bytes and invalid leads count as one byte.
func SequenceLength(lead byte) int {
	switch {
	case lead < 0x80:
		return 1
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 1
	}
}

func characterRanges[S Text](text S, rangeStart, rangeEnd int) Range {
	n := len(text)
	offs, idx := 0, 0
	for idx < rangeStart && offs < n {
		offs += SequenceLength(text[offs])
		idx++
	}
	if offs >= n {
		return Range{Start: n, End: n, DelStart: n, DelEnd: n}
	}
	start := offs
	for idx <= rangeEnd && offs < n {
		offs += SequenceLength(text[offs])
		idx++
	}
	end := min(offs, n)
	return Range{Start: start, End: end, DelStart: start, DelEnd: end}
}

func indexByteFrom[S Text](text S, from int, c byte) int {
	for i := from; i < len(text); i++ {
		if text[i] == c {
			return i
		}
	}
	return -1
}

// delimitedRanges handles items and lines. Deleting the first chunk
// removes the delimiter after it; deleting any later chunk removes the
// delimiter before it.
func delimitedRanges[S Text](text S, rangeStart, rangeEnd int, delim byte) Range {
	n := len(text)
	start := 0
	for i := 0; i < rangeStart; i++ {
		idx := indexByteFrom(text, start, delim)
		if idx < 0 {
			return Range{Start: n, End: n, DelStart: n, DelEnd: n}
		}
		start = idx + 1
	}

	end := start
	for cur := rangeStart; ; cur++ {
		idx := indexByteFrom(text, end, delim)
		if idx < 0 {
			end = n
			break
		}
		if cur == rangeEnd {
			end = idx
			break
		}
		end = idx + 1
	}

	r := Range{Start: start, End: end, DelStart: start, DelEnd: end}
	if rangeStart == 0 {
		if end < n {
			r.DelEnd = end + 1
		}
	} else {
		r.DelStart = start - 1
	}
	return r
}

// IsWordSeparator reports whether b separates words.
func IsWordSeparator(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func wordRanges[S Text](text S, rangeStart, rangeEnd int) Range {
	n := len(text)
	i, idx := 0, 0
	prevEnd := -1
	for {
		for i < n && IsWordSeparator(text[i]) {
			i++
		}
		if i >= n {
			return Range{Start: n, End: n, DelStart: n, DelEnd: n}
		}
		if idx == rangeStart {
			break
		}
		for i < n && !IsWordSeparator(text[i]) {
			i++
		}
		prevEnd = i
		idx++
	}
	start := i

	end := i
	for {
		for i < n && !IsWordSeparator(text[i]) {
			i++
		}
		end = i
		if idx == rangeEnd {
			break
		}
		j := i
		for j < n && IsWordSeparator(text[j]) {
			j++
		}
		if j >= n {
			break
		}
		i = j
		idx++
	}

	r := Range{Start: start, End: end, DelStart: start, DelEnd: end}
	next := end
	for next < n && IsWordSeparator(text[next]) {
		next++
	}
	// Deleting swallows the separators after the range, or before it when
	// the range ends the text. A lone word takes its trailing run along.
	switch {
	case next < n, prevEnd < 0:
		r.DelEnd = next
	default:
		r.DelStart = prevEnd
	}
	return r
}

// Count returns the number of chunks of the given type in text. Empty text
// holds no items, lines or words; otherwise a trailing delimiter starts one
// more (empty) item, matching what Ranges addresses.
func Count[S Text](text S, typ Type, delim byte) int {
	n := len(text)
	switch typ {
	case Byte:
		return n
	case Character:
		count := 0
		for offs := 0; offs < n; offs += SequenceLength(text[offs]) {
			count++
		}
		return count
	case Item, Line:
		if n == 0 {
			return 0
		}
		if typ == Line {
			delim = '\n'
		}
		count := 1
		for i := 0; i < n; i++ {
			if text[i] == delim {
				count++
			}
		}
		return count
	case Word:
		count := 0
		inWord := false
		for i := 0; i < n; i++ {
			sep := IsWordSeparator(text[i])
			if !sep && !inWord {
				count++
			}
			inWord = !sep
		}
		return count
	default:
		if n == 0 {
			return 0
		}
		return 1
	}
}
