package vm

import (
	"slices"
	"testing"
)

func buildArray(t *testing.T, c *Context, pairs ...string) *ArrayEntry {
	t.Helper()
	var root *ArrayEntry
	for i := 0; i+1 < len(pairs); i += 2 {
		v := textValue(pairs[i+1])
		if !ArrayInsert(&root, pairs[i], &v, c) {
			t.Fatalf("insert %q failed", pairs[i])
		}
	}
	return root
}

func TestArrayKeysIgnoreCase(t *testing.T) {
	c := newTestContext()
	root := buildArray(t, c, "Key", "one", "KEY", "two", "other", "x")
	if n := ArrayCount(root); n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
	v := ArrayLookup(root, "key")
	if v == nil {
		t.Fatalf("lookup missed")
	}
	if s, _ := v.AsString(c); s != "two" {
		t.Fatalf("value = %q", s)
	}
	if got := ArrayKeys(root); !slices.Equal(got, []string{"Key", "other"}) {
		t.Fatalf("keys = %q", got)
	}
}

func TestArrayDelete(t *testing.T) {
	c := newTestContext()
	root := buildArray(t, c, "b", "1", "a", "2", "c", "3", "d", "4")

	if !ArrayDelete(&root, "B", c) {
		t.Fatalf("delete of root failed")
	}
	if ArrayDelete(&root, "missing", c) {
		t.Fatalf("deleted a missing key")
	}
	if got := ArrayKeys(root); !slices.Equal(got, []string{"a", "c", "d"}) {
		t.Fatalf("keys = %q", got)
	}
	if root.key != "c" || root.smaller == nil || root.smaller.key != "a" {
		t.Fatalf("larger subtree did not take the removed node's place")
	}
}

func TestArrayReplaceKeepsReferences(t *testing.T) {
	c := newTestContext()
	root := buildArray(t, c, "k", "old")
	var r Value
	r.InitReference(ArrayLookup(root, "k"), InvalidateReferences, c)

	v := textValue("new")
	ArrayInsert(&root, "K", &v, c)
	if s, ok := r.AsString(c); !ok || s != "new" {
		t.Fatalf("reference reads %q: %v", s, c.Err())
	}

	ArrayDelete(&root, "k", c)
	if _, ok := r.AsString(c); ok {
		t.Fatalf("reference to a deleted entry still resolves")
	}
}

func TestArrayCopyIsDeep(t *testing.T) {
	c := newTestContext()
	root := buildArray(t, c, "a", "1")
	cp := ArrayCopy(root, c)
	ArrayLookup(cp, "a").SetString("changed", c)
	if s, _ := ArrayLookup(root, "a").AsString(c); s != "1" {
		t.Fatalf("original changed to %q", s)
	}
}

func TestArrayRoundTrip(t *testing.T) {
	c := newTestContext()
	tests := []struct {
		name  string
		pairs []string
	}{
		{"empty", nil},
		{"single", []string{"a", "1"}},
		{"newlines", []string{"line\nkey", "first\nsecond", "plain", "v"}},
		{"escape byte", []string{"esc", "a\x1bb", "esc-n", "\x1bn"}},
		{"nested array text", []string{"inner", "x:1\ny:2\n"}},
		{"colon in value", []string{"url", "http://example"}},
		{"colon in key", []string{"k:colon", "v", "a:b:c", "x:y"}},
		{"escape before colon in key", []string{"esc\x1b:", "1", "\x1b", ":"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := buildArray(t, c, tt.pairs...)
			text, ok := ArrayString(root, c)
			if !ok {
				t.Fatalf("serialize failed")
			}
			back, ok := ArrayFromString(text, c)
			if !ok {
				t.Fatalf("parse of %q failed", text)
			}
			if ArrayCount(back) != ArrayCount(root) {
				t.Fatalf("count %d != %d for %q", ArrayCount(back), ArrayCount(root), text)
			}
			for i := 0; i+1 < len(tt.pairs); i += 2 {
				v := ArrayLookup(back, tt.pairs[i])
				if v == nil {
					t.Fatalf("key %q lost in %q", tt.pairs[i], text)
				}
				if s, _ := v.AsString(c); s != tt.pairs[i+1] {
					t.Fatalf("key %q: %q != %q", tt.pairs[i], s, tt.pairs[i+1])
				}
			}
		})
	}
}

func TestArrayRejectsEmptyKey(t *testing.T) {
	c := newTestContext()
	var root *ArrayEntry
	v := textValue("x")
	if ArrayInsert(&root, "", &v, c) || root != nil {
		t.Fatalf("empty key inserted")
	}
	if err := c.Err(); err == nil || err.Code != ErrBadOperand {
		t.Fatalf("err = %v", err)
	}

	c = newTestContext()
	var s Value
	s.InitString("", InvalidateReferences, c)
	if s.SetValueForKey("", &v, c) {
		t.Fatalf("SetValueForKey accepted the empty key")
	}
	c = newTestContext()
	if n, ok := s.KeyCount(c); !ok || n != 0 {
		t.Fatalf("string array unreadable after a rejected write: %d, %v", n, c.Err())
	}
}

func TestArrayFromStringRejectsMalformed(t *testing.T) {
	c := newTestContext()
	for _, text := range []string{"no colon", ":missing key\n", "a:1\nbroken\n", "only\x1b:escaped\n"} {
		if root, ok := ArrayFromString(text, c); ok || root != nil {
			t.Fatalf("%q parsed as an array", text)
		}
	}
}
