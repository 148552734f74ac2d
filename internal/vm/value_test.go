package vm

import (
	"strings"
	"testing"

	"leo/internal/chunk"
)

func newTestContext() *Context {
	return NewContext(NewGroup(GroupOptions{}), nil, ContextOptions{})
}

func TestConversions(t *testing.T) {
	tests := []struct {
		name    string
		init    func(v *Value, c *Context)
		read    func(v *Value, c *Context) (string, bool)
		want    string
		wantErr string
	}{
		{
			name: "string to number",
			init: func(v *Value, c *Context) { v.InitString("3.5", InvalidateReferences, c) },
			read: readNumber,
			want: "3.5",
		},
		{
			name: "leading whitespace is accepted",
			init: func(v *Value, c *Context) { v.InitStringConstant("  42", InvalidateReferences, c) },
			read: readNumber,
			want: "42",
		},
		{
			name:    "trailing garbage",
			init:    func(v *Value, c *Context) { v.InitString("12abc", InvalidateReferences, c) },
			read:    readNumber,
			wantErr: `Can't make "12abc" into a number.`,
		},
		{
			name:    "empty string is not a number",
			init:    func(v *Value, c *Context) { v.InitString("", InvalidateReferences, c) },
			read:    readNumber,
			wantErr: `Can't make "" into a number.`,
		},
		{
			name: "boolean from any case",
			init: func(v *Value, c *Context) { v.InitString("TRUE", InvalidateReferences, c) },
			read: readBoolean,
			want: "true",
		},
		{
			name:    "boolean rejects other words",
			init:    func(v *Value, c *Context) { v.InitString("yes", InvalidateReferences, c) },
			read:    readBoolean,
			wantErr: `Can't make "yes" into a boolean.`,
		},
		{
			name: "integral number to integer",
			init: func(v *Value, c *Context) { v.InitNumber(2, InvalidateReferences, c) },
			read: readInteger,
			want: "2",
		},
		{
			name:    "fractional number to integer",
			init:    func(v *Value, c *Context) { v.InitNumber(2.5, InvalidateReferences, c) },
			read:    readInteger,
			wantErr: `Can't make "2.5" into an integer.`,
		},
		{
			name:    "boolean to number",
			init:    func(v *Value, c *Context) { v.InitBoolean(true, InvalidateReferences, c) },
			read:    readNumber,
			wantErr: "Expected number, found boolean.",
		},
		{
			name: "number to string",
			init: func(v *Value, c *Context) { v.InitNumber(1e20, InvalidateReferences, c) },
			read: func(v *Value, c *Context) (string, bool) { return v.AsString(c) },
			want: "1e+20",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContext()
			var v Value
			tt.init(&v, c)
			got, ok := tt.read(&v, c)
			if tt.wantErr != "" {
				if ok || c.Err() == nil {
					t.Fatalf("expected error %q, got %q", tt.wantErr, got)
				}
				if c.Err().Message != tt.wantErr || c.Err().Code != ErrTypeMismatch {
					t.Fatalf("error = %v, want %q", c.Err(), tt.wantErr)
				}
				return
			}
			if !ok || got != tt.want {
				t.Fatalf("got %q (ok=%v), want %q; err=%v", got, ok, tt.want, c.Err())
			}
		})
	}
}

func readNumber(v *Value, c *Context) (string, bool) {
	n, ok := v.AsNumber(c)
	return formatNumber(n), ok
}

func readInteger(v *Value, c *Context) (string, bool) {
	n, ok := v.AsInteger(c)
	return formatNumber(float64(n)), ok
}

func readBoolean(v *Value, c *Context) (string, bool) {
	b, ok := v.AsBoolean(c)
	return formatBoolean(b), ok
}

func TestStringConstantPromotion(t *testing.T) {
	c := newTestContext()
	var v Value
	v.InitStringConstant("this,that,more", InvalidateReferences, c)
	if !v.SetRangeAsString(chunk.Item, 0, 0, "THIS", c) {
		t.Fatalf("set item failed: %v", c.Err())
	}
	if v.Kind() != KindString {
		t.Fatalf("kind = %s, want string", v.Kind())
	}
	if got, _ := v.AsString(c); got != "THIS,that,more" {
		t.Fatalf("got %q", got)
	}
}

func TestDeleteItem(t *testing.T) {
	c := newTestContext()
	var v Value
	v.InitString("this,that,more", InvalidateReferences, c)
	r, ok := v.DetermineChunkRange(chunk.Item, 1, 1, c)
	if !ok {
		t.Fatalf("range failed")
	}
	v.SetPredeterminedRange(r.DelStart, r.DelEnd, "", c)
	if got, _ := v.AsString(c); got != "this,more" {
		t.Fatalf("got %q", got)
	}
}

func TestChunkReinsertRestoresText(t *testing.T) {
	texts := []string{
		"this,that,more",
		",,",
		" this  that  more ",
		"one\ntwo\n\nfour",
		"héllo wörld",
	}
	types := []chunk.Type{chunk.Character, chunk.Item, chunk.Line, chunk.Word}
	c := newTestContext()
	for _, s := range texts {
		for _, typ := range types {
			n := chunk.Count(s, typ, ',')
			for i := range n {
				var v Value
				v.InitString(s, InvalidateReferences, c)
				payload, _ := v.RangeAsString(typ, i, i, c)
				r, _ := v.DetermineChunkRange(typ, i, i, c)
				v.SetPredeterminedRange(r.Start, r.End, "", c)
				v.SetPredeterminedRange(r.Start, r.Start, payload, c)
				if got, _ := v.AsString(c); got != s {
					t.Fatalf("%s %d of %q: reinsert gave %q", typ, i, s, got)
				}
			}
		}
	}
	if c.Err() != nil {
		t.Fatalf("unexpected error: %v", c.Err())
	}
}

func TestReferenceWritesThroughAndDies(t *testing.T) {
	c := newTestContext()
	var v, r Value
	v.InitString("Test string", InvalidateReferences, c)
	if !r.InitChunkReference(&v, chunk.Character, 0, 3, InvalidateReferences, c) {
		t.Fatalf("reference failed: %v", c.Err())
	}
	if got, _ := r.AsString(c); got != "Test" {
		t.Fatalf("reference reads %q", got)
	}
	if !r.SetString("Even when set indirectly", c) {
		t.Fatalf("write through reference failed: %v", c.Err())
	}
	if got, _ := v.AsString(c); got != "Even when set indirectly string" {
		t.Fatalf("original holds %q", got)
	}

	v.CleanUp(InvalidateReferences, c)
	if _, ok := r.AsString(c); ok {
		t.Fatalf("dead reference still readable")
	}
	if c.Err() == nil || c.Err().Code != ErrDeadReference {
		t.Fatalf("error = %v", c.Err())
	}
	if c.Err().Message != "The referenced value doesn't exist anymore." {
		t.Fatalf("message = %q", c.Err().Message)
	}
	if c.Running() {
		t.Fatalf("context still running")
	}
}

func TestReferenceSurvivesKeepReferences(t *testing.T) {
	c := newTestContext()
	var v, r Value
	v.InitInteger(1, InvalidateReferences, c)
	r.InitReference(&v, InvalidateReferences, c)
	v.CleanUp(KeepReferences, c)
	v.InitString("again", KeepReferences, c)
	if got, ok := r.AsString(c); !ok || got != "again" {
		t.Fatalf("reference reads %q (ok=%v): %v", got, ok, c.Err())
	}
}

func TestVariantPolymorphism(t *testing.T) {
	c := newTestContext()
	var v, r Value
	v.InitUnset(InvalidateReferences, c)
	r.InitReference(&v, InvalidateReferences, c)

	if !v.SetNumber(3.25, c) {
		t.Fatalf("set number: %v", c.Err())
	}
	if v.Kind() != KindVariantNumber {
		t.Fatalf("kind = %s", v.Kind())
	}
	if n, _ := r.AsNumber(c); n != 3.25 {
		t.Fatalf("reference sees %v", n)
	}

	if !v.SetString("hello", c) {
		t.Fatalf("set string: %v", c.Err())
	}
	if s, _ := r.AsString(c); s != "hello" {
		t.Fatalf("reference sees %q", s)
	}

	if !v.SetBoolean(true, c) {
		t.Fatalf("set boolean: %v", c.Err())
	}
	if b, _ := r.AsBoolean(c); !b || v.Kind() != KindVariantBoolean {
		t.Fatalf("reference sees %v, kind %s", b, v.Kind())
	}

	if !r.SetInteger(7, c) {
		t.Fatalf("set through reference: %v", c.Err())
	}
	if v.Kind() != KindVariantInteger {
		t.Fatalf("kind after write through reference = %s", v.Kind())
	}

	var item Value
	item.InitString("x", InvalidateReferences, c)
	v.InitUnset(KeepReferences, c)
	if !v.SetValueForKey("k", &item, c) {
		t.Fatalf("set key: %v", c.Err())
	}
	if v.Kind() != KindVariantArray {
		t.Fatalf("kind = %s, want variant-array", v.Kind())
	}
	if n, _ := r.KeyCount(c); n != 1 {
		t.Fatalf("reference sees %d keys", n)
	}
	if c.Err() != nil {
		t.Fatalf("unexpected error: %v", c.Err())
	}
}

func TestTypedWriteMismatch(t *testing.T) {
	c := newTestContext()
	var v Value
	v.InitBoolean(true, InvalidateReferences, c)
	if v.SetNumber(1, c) {
		t.Fatalf("boolean accepted a number")
	}
	if got := c.Err().Message; got != "Expected boolean, found number." {
		t.Fatalf("message = %q", got)
	}
}

func TestPutIntoKeepsDestinationKind(t *testing.T) {
	c := newTestContext()
	var src, dst Value
	src.InitString("12", InvalidateReferences, c)
	dst.InitInteger(0, InvalidateReferences, c)
	if !src.PutInto(&dst, c) {
		t.Fatalf("put into: %v", c.Err())
	}
	if dst.Kind() != KindInteger || dst.integer != 12 {
		t.Fatalf("dst = %s %d", dst.Kind(), dst.integer)
	}

	src.InitString("abc", InvalidateReferences, c)
	if src.PutInto(&dst, c) {
		t.Fatalf("integer accepted %q", "abc")
	}
}

func TestSimpleCopyCollapses(t *testing.T) {
	c := newTestContext()
	var v, r, cp Value
	v.InitVariantInteger(5, InvalidateReferences, c)
	r.InitReference(&v, InvalidateReferences, c)

	cp.InitSimpleCopy(&r, InvalidateReferences, c)
	if cp.Kind() != KindInteger || cp.integer != 5 {
		t.Fatalf("copy = %s %d", cp.Kind(), cp.integer)
	}

	var deep Value
	deep.InitCopy(&v, InvalidateReferences, c)
	if deep.Kind() != KindVariantInteger {
		t.Fatalf("deep copy kind = %s", deep.Kind())
	}
}

func TestChunkReferenceOfReference(t *testing.T) {
	c := newTestContext()
	var v, outer, inner Value
	v.InitString("one two three", InvalidateReferences, c)
	outer.InitChunkReference(&v, chunk.Word, 1, 2, InvalidateReferences, c)
	inner.InitChunkReference(&outer, chunk.Word, 1, 1, InvalidateReferences, c)

	if got, _ := inner.AsString(c); got != "three" {
		t.Fatalf("inner reads %q", got)
	}
	if inner.ref.chunk != chunk.Byte {
		t.Fatalf("inner chunk = %s, want byte", inner.ref.chunk)
	}
	outer.CleanUp(InvalidateReferences, c)
	if got, ok := inner.AsString(c); !ok || got != "three" {
		t.Fatalf("inner depends on outer: %q %v", got, c.Err())
	}
}

func TestSelfReference(t *testing.T) {
	c := newTestContext()
	var v Value
	v.InitUnset(InvalidateReferences, c)
	if v.InitReference(&v, KeepReferences, c) {
		t.Fatalf("value referred to itself")
	}
	if c.Err() == nil || c.Err().Code != ErrBadOperand {
		t.Fatalf("error = %v", c.Err())
	}
}

func TestArrayAsString(t *testing.T) {
	c := newTestContext()
	var v, item Value
	v.InitEmptyArray(InvalidateReferences, c)
	item.InitString("2", InvalidateReferences, c)
	v.SetValueForKey("b", &item, c)
	item.InitInteger(1, InvalidateReferences, c)
	v.SetValueForKey("a", &item, c)

	if got, _ := v.AsString(c); got != "a:1\nb:2\n" {
		t.Fatalf("array text = %q", got)
	}

	var s Value
	s.InitString("x:1\n", InvalidateReferences, c)
	if !s.SetValueForKey("y", &item, c) {
		t.Fatalf("set key on string: %v", c.Err())
	}
	if got, _ := s.AsString(c); got != "x:1\ny:1\n" || s.Kind() != KindString {
		t.Fatalf("string array = %q (%s)", got, s.Kind())
	}

	var bad Value
	bad.InitString("no colon here", InvalidateReferences, c)
	if _, ok := bad.KeyCount(c); ok {
		t.Fatalf("malformed text read as an array")
	}
	if !strings.Contains(c.Err().Message, "Expected array") {
		t.Fatalf("message = %q", c.Err().Message)
	}
}
