package chunk_test

import (
	"testing"

	"leo/internal/chunk"
)

func TestRanges(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		typ        chunk.Type
		start, end int
		want       chunk.Range
	}{
		{"middle item", "this,that,more", chunk.Item, 1, 1, chunk.Range{Start: 5, End: 9, DelStart: 4, DelEnd: 9}},
		{"first item swallows trailing delimiter", "this,that,more", chunk.Item, 0, 0, chunk.Range{Start: 0, End: 4, DelStart: 0, DelEnd: 5}},
		{"last item swallows preceding delimiter", "this,that,more", chunk.Item, 2, 2, chunk.Range{Start: 10, End: 14, DelStart: 9, DelEnd: 14}},
		{"item beyond count", "this,that,more", chunk.Item, 5, 5, chunk.Range{Start: 14, End: 14, DelStart: 14, DelEnd: 14}},
		{"item range", "this,that,more", chunk.Item, 0, 1, chunk.Range{Start: 0, End: 9, DelStart: 0, DelEnd: 10}},
		{"item range past end", "this,that,more", chunk.Item, 1, 7, chunk.Range{Start: 5, End: 14, DelStart: 4, DelEnd: 14}},
		{"empty first item", ",,", chunk.Item, 0, 0, chunk.Range{Start: 0, End: 0, DelStart: 0, DelEnd: 1}},
		{"empty trailing item", "a,", chunk.Item, 1, 1, chunk.Range{Start: 2, End: 2, DelStart: 1, DelEnd: 2}},
		{"single item", "alone", chunk.Item, 0, 0, chunk.Range{Start: 0, End: 5, DelStart: 0, DelEnd: 5}},
		{"line", "a\nb\nc", chunk.Line, 1, 1, chunk.Range{Start: 2, End: 3, DelStart: 1, DelEnd: 3}},
		{"first word", " this  that  more ", chunk.Word, 0, 0, chunk.Range{Start: 1, End: 5, DelStart: 1, DelEnd: 7}},
		{"middle word", " this  that  more ", chunk.Word, 1, 1, chunk.Range{Start: 7, End: 11, DelStart: 7, DelEnd: 13}},
		{"last word", " this  that  more ", chunk.Word, 2, 2, chunk.Range{Start: 13, End: 17, DelStart: 11, DelEnd: 17}},
		{"word beyond count", " this  that  more ", chunk.Word, 3, 3, chunk.Range{Start: 18, End: 18, DelStart: 18, DelEnd: 18}},
		{"only word", "abc ", chunk.Word, 0, 0, chunk.Range{Start: 0, End: 3, DelStart: 0, DelEnd: 4}},
		{"only word indented", "  abc\t\n", chunk.Word, 0, 0, chunk.Range{Start: 2, End: 5, DelStart: 2, DelEnd: 7}},
		{"character", "héllo", chunk.Character, 1, 1, chunk.Range{Start: 1, End: 3, DelStart: 1, DelEnd: 3}},
		{"character range", "héllo", chunk.Character, 2, 3, chunk.Range{Start: 3, End: 5, DelStart: 3, DelEnd: 5}},
		{"character beyond count", "héllo", chunk.Character, 10, 12, chunk.Range{Start: 6, End: 6, DelStart: 6, DelEnd: 6}},
		{"bytes", "hello", chunk.Byte, 1, 3, chunk.Range{Start: 1, End: 4, DelStart: 1, DelEnd: 4}},
		{"empty byte range", "hello", chunk.Byte, 4, 3, chunk.Range{Start: 4, End: 4, DelStart: 4, DelEnd: 4}},
		{"bytes beyond end", "hello", chunk.Byte, 7, 9, chunk.Range{Start: 5, End: 5, DelStart: 5, DelEnd: 5}},
		{"no chunk", "hello", chunk.Invalid, 0, 0, chunk.Range{Start: 0, End: 5, DelStart: 0, DelEnd: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunk.Ranges(tt.text, tt.typ, tt.start, tt.end, ',')
			if got != tt.want {
				t.Fatalf("Ranges(%q, %s, %d, %d) = %+v, want %+v", tt.text, tt.typ, tt.start, tt.end, got, tt.want)
			}
			gotBytes := chunk.Ranges([]byte(tt.text), tt.typ, tt.start, tt.end, ',')
			if gotBytes != got {
				t.Fatalf("[]byte variant disagrees: %+v vs %+v", gotBytes, got)
			}
		})
	}
}

func TestItemEditing(t *testing.T) {
	s := "this,that,more"

	r := chunk.Ranges(s, chunk.Item, 0, 0, ',')
	if got := s[:r.Start] + "THIS" + s[r.End:]; got != "THIS,that,more" {
		t.Fatalf("put into item 0: got %q", got)
	}

	r = chunk.Ranges(s, chunk.Item, 1, 1, ',')
	if got := s[:r.DelStart] + s[r.DelEnd:]; got != "this,more" {
		t.Fatalf("delete item 1: got %q", got)
	}

	r = chunk.Ranges(s, chunk.Item, 0, 0, ',')
	if got := s[:r.DelStart] + s[r.DelEnd:]; got != "that,more" {
		t.Fatalf("delete item 0: got %q", got)
	}
}

func TestRangesRoundTrip(t *testing.T) {
	inputs := []string{
		"this,that,more",
		",,",
		"a,,b,",
		"one\ntwo\n\nthree",
		" this  that  more ",
		"héllo wörld \U0001F600",
		"",
	}
	types := []chunk.Type{chunk.Character, chunk.Item, chunk.Line, chunk.Word}
	for _, s := range inputs {
		for _, typ := range types {
			count := chunk.Count(s, typ, ',')
			for i := 0; i <= count; i++ {
				r := chunk.Ranges(s, typ, i, i, ',')
				if r.Start > r.End || r.DelStart > r.Start || r.DelEnd < r.End || r.DelEnd > len(s) {
					t.Fatalf("%s %d of %q: inconsistent range %+v", typ, i, s, r)
				}
				payload := s[r.Start:r.End]
				if got := s[:r.Start] + payload + s[r.End:]; got != s {
					t.Fatalf("%s %d of %q: payload round trip gave %q", typ, i, s, got)
				}
				removed := s[r.DelStart:r.DelEnd]
				deleted := s[:r.DelStart] + s[r.DelEnd:]
				if got := deleted[:r.DelStart] + removed + deleted[r.DelStart:]; got != s {
					t.Fatalf("%s %d of %q: delete round trip gave %q", typ, i, s, got)
				}
			}
		}
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		text string
		typ  chunk.Type
		want int
	}{
		{" this  that  more ", chunk.Word, 3},
		{"", chunk.Word, 0},
		{"this,that,more", chunk.Item, 3},
		{"a,", chunk.Item, 2},
		{"", chunk.Item, 0},
		{"a\nb", chunk.Line, 2},
		{"héllo", chunk.Character, 5},
		{"héllo", chunk.Byte, 6},
	}
	for _, tt := range tests {
		if got := chunk.Count(tt.text, tt.typ, ','); got != tt.want {
			t.Errorf("Count(%q, %s) = %d, want %d", tt.text, tt.typ, got, tt.want)
		}
	}
}

func TestParseType(t *testing.T) {
	for _, name := range []string{"byte", "char", "item", "line", "word"} {
		typ, err := chunk.ParseType(name)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", name, err)
		}
		if typ.String() != name {
			t.Fatalf("ParseType(%q).String() = %q", name, typ.String())
		}
	}
	if _, err := chunk.ParseType("paragraph"); err == nil {
		t.Fatalf("expected error for unknown chunk type")
	}
}
