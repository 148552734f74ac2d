package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeRun, true},
		{LevelPhase, ScopeHandler, false},
		{LevelDetail, ScopeHandler, true},
		{LevelDetail, ScopeInstr, false},
		{LevelDebug, ScopeInstr, true},
	}
	for _, c := range cases {
		if got := c.level.ShouldEmit(c.scope); got != c.want {
			t.Fatalf("%s.ShouldEmit(%s) = %v, want %v", c.level, c.scope, got, c.want)
		}
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if l, err := ParseLevel("Detail"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(Detail) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("ParseLevel accepted an unknown level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(both) = %v, %v", m, err)
	}
}

func TestStreamTracerFiltersByScope(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	span := Begin(tr, ScopeRun, "run", 0)
	Point(tr, ScopeHandler, "call:main", "", span.ID())
	span.End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ run") || !strings.Contains(out, "← run (ok)") {
		t.Fatalf("missing span events:\n%s", out)
	}
	if strings.Contains(out, "call:main") {
		t.Fatalf("handler-scope point emitted at phase level:\n%s", out)
	}
}

func TestRingTracerKeepsLastEvents(t *testing.T) {
	tr := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(tr, ScopeInstr, name, "", 0)
	}
	got := tr.Snapshot()
	if len(got) != 2 || got[0].Name != "b" || got[1].Name != "c" {
		t.Fatalf("Snapshot = %+v", got)
	}

	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Fatalf("Dump wrote %d lines", lines)
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context should yield Nop")
	}
	tr := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatalf("tracer lost in context")
	}
}

func TestTextFormatSortsExtra(t *testing.T) {
	ev := &Event{Kind: KindPoint, Scope: ScopeDriver, Name: "x", Extra: map[string]string{"b": "2", "a": "1"}}
	if got := string(FormatEvent(ev, FormatText)); !strings.Contains(got, "{a=1, b=2}") {
		t.Fatalf("FormatEvent = %q", got)
	}
}

func TestErrorLevelRecordsOnlyErrors(t *testing.T) {
	tr := NewRingTracer(8, LevelError)
	span := Begin(tr, ScopeRun, "run main", 0)
	Point(tr, ScopeHandler, "call", "main", span.ID())
	Error(tr, ScopeRun, "error LEO1007: Can't divide by zero.", span.ID())
	span.End("")

	got := tr.Snapshot()
	if len(got) != 1 || got[0].Kind != KindError || span.ID() != 0 {
		t.Fatalf("Snapshot = %+v", got)
	}
	Error(Nop, ScopeRun, "ignored", 0)
	Error(nil, ScopeRun, "ignored", 0)
}

func TestRingModeWritesOnClose(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeRing, Output: &buf, RingSize: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, name := range []string{"a", "b", "c"} {
		Begin(tr, ScopeDriver, name, 0).End("")
	}
	if buf.Len() != 0 {
		t.Fatalf("ring wrote before Close:\n%s", buf.String())
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "\n") != 2 || !strings.Contains(out, "← c") || strings.Contains(out, "→ b") {
		t.Fatalf("ring dump:\n%s", out)
	}
}

func TestBothModeStreamsAndKeeps(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Mode: ModeBoth, Output: &buf, Format: FormatNDJSON})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Point(tr, ScopeHandler, "call", "main", 0)
	if !strings.Contains(buf.String(), `"name":"call"`) {
		t.Fatalf("stream output = %q", buf.String())
	}
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("tracer is %T", tr)
	}
	ring, ok := multi.children[1].(*RingTracer)
	if !ok || ring.Len() != 1 {
		t.Fatalf("ring child = %#v", multi.children[1])
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil || tr != Nop {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	if _, err := New(Config{Level: LevelPhase}); err == nil {
		t.Fatalf("New accepted a missing mode")
	}
}

func TestSpanPropagation(t *testing.T) {
	tr := NewRingTracer(4, LevelPhase)
	root := Begin(tr, ScopeDriver, "leo run", 0)
	ctx := WithSpan(context.Background(), root)
	if CurrentSpan(ctx).SpanID != root.ID() {
		t.Fatalf("CurrentSpan = %d, want %d", CurrentSpan(ctx).SpanID, root.ID())
	}
	child := Begin(tr, ScopeRun, "run main", CurrentSpan(ctx).SpanID)
	child.End("")
	if got := tr.Snapshot(); got[1].ParentID != root.ID() {
		t.Fatalf("child parent = %d", got[1].ParentID)
	}

	filtered := Begin(tr, ScopeHandler, "call", 0)
	if WithSpan(ctx, filtered) != ctx {
		t.Fatalf("an unrecorded span changed the context")
	}
}

func TestHeartbeatStop(t *testing.T) {
	tr := NewRingTracer(16, LevelPhase)
	h := StartHeartbeat(tr, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for tr.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	got := tr.Snapshot()
	if len(got) == 0 || got[0].Kind != KindHeartbeat || got[0].Extra["goroutines"] == "" {
		t.Fatalf("heartbeats = %+v", got)
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("heartbeat started on Nop")
	}
	var none *Heartbeat
	none.Stop()
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "text": FormatText, "JSON": FormatNDJSON} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("ParseFormat accepted xml")
	}
}
