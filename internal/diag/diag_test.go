package diag

import (
	"strings"
	"testing"

	"leo/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	b := NewBag(2)
	b.Add(NewError(AsmUnknownOpcode, source.Span{Start: 9, End: 10}, "b"))
	b.Add(New(SevWarning, AsmInfo, source.Span{Start: 1, End: 2}, "a"))
	if b.Add(NewError(AsmStrayEnd, source.Span{}, "dropped")) {
		t.Fatalf("bag accepted a diagnostic beyond its limit")
	}
	if b.Len() != 2 || b.Dropped() != 1 {
		t.Fatalf("len = %d, dropped = %d", b.Len(), b.Dropped())
	}
	if !b.HasErrors() {
		t.Fatalf("HasErrors = false")
	}
	b.Sort()
	if got := b.Items()[0].Message; got != "a" {
		t.Fatalf("first after sort = %q, want a", got)
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{SevInfo, "info"},
		{SevWarning, "warning"},
		{SevError, "error"},
		{Severity(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Fatalf("Severity(%d).String() = %q, want %q", tt.sev, got, tt.want)
		}
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("x.leoasm", []byte("command main\n  Bogus 1\nend\n"))

	bag := NewBag(10)
	ReportError(BagReporter{Bag: bag}, AsmUnknownOpcode, source.Span{File: id, Start: 15, End: 20}, "unknown instruction \"Bogus\"").
		WithNote(source.Span{File: id, Start: 0, End: 7}, "in handler main").
		Emit()

	out := FormatShort(bag.Items(), fs)
	want := "x.leoasm:2:3: error ASM2002: unknown instruction \"Bogus\"\n" +
		"x.leoasm:1:1: note ASM2002: in handler main\n"
	if out != want {
		t.Fatalf("FormatShort:\n%s\nwant:\n%s", out, want)
	}
	if !strings.Contains(AsmUnknownOpcode.String(), "Unknown instruction") {
		t.Fatalf("code title missing: %s", AsmUnknownOpcode)
	}
}
