package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"leo/internal/trace"
	"leo/internal/vm"
)

const addSource = `
command main
    PushInteger 0 2
    PushInteger 0 3
    Add
    SetReturnValue bos
end
`

func TestDebuggerSession(t *testing.T) {
	p := load(t, addSource)
	c := p.newContext(vm.ContextOptions{})
	input := strings.Join([]string{
		"step",
		"print bos",
		"# comments are skipped",
		"break main 3",
		"breaks",
		"bogus",
		"continue",
		"bt",
		"c",
	}, "\n")
	var out bytes.Buffer
	d := vm.NewDebugger(c, strings.NewReader(input), &out, false)

	res, err := d.Run(p.script, p.handler(t, "main"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Quit || res.Steps != 4 {
		t.Fatalf("result = %+v", res)
	}
	if s, _ := c.Result().AsString(c); s != "5" {
		t.Fatalf("result value = %q", s)
	}

	got := out.String()
	for _, want := range []string{
		"at main pc=0 PushInteger 0 2\n",
		"at main pc=1 PushInteger 0 3\n",
		"integer 2\n",
		"breakpoint #1 main pc=3\n",
		"breakpoints:\n  #1 main pc=3\n",
		"error: unknown command\n",
		"stopped: breakpoint #1\nat main pc=3 SetReturnValue bos 0\n",
		"  #0 main pc=3\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output is missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "at main pc=2") {
		t.Fatalf("continue stopped without a breakpoint:\n%s", got)
	}
}

func TestDebuggerQuit(t *testing.T) {
	p := load(t, addSource)
	c := p.newContext(vm.ContextOptions{})
	d := vm.NewDebugger(c, strings.NewReader("s\nq\n"), nil, false)

	res, err := d.Run(p.script, p.handler(t, "main"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Quit || res.Steps != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestDebuggerStopsOnError(t *testing.T) {
	p := load(t, `
command main
    PushUnsetValue
    PushInteger 0 0
    CallHandler cmd &inner
end

command inner
    PushInteger 0 1
    PushInteger 0 0
    Divide
end
`)
	c := p.newContext(vm.ContextOptions{})
	var out bytes.Buffer
	d := vm.NewDebugger(c, strings.NewReader("c\nbt\nstack\nc\n"), &out, false)

	_, err := d.Run(p.script, p.handler(t, "main"))
	if err == nil || err.Code != vm.ErrDivisionByZero {
		t.Fatalf("error = %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"stopped: error LEO1007: Can't divide by zero.\n",
		"at inner pc=2 Divide 0 0\n",
		"  #0 inner pc=2\n  #1 main  pc=2\n",
		"stack: sp=6 bp=4\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output is missing %q:\n%s", want, got)
		}
	}
}

func TestDebuggerRunsFreeWhenInputEnds(t *testing.T) {
	p := load(t, addSource)
	c := p.newContext(vm.ContextOptions{})
	d := vm.NewDebugger(c, strings.NewReader(""), nil, true)
	res, err := d.Run(p.script, p.handler(t, "main"))
	if err != nil || res.Steps != 4 {
		t.Fatalf("steps %d, error %v", res.Steps, err)
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		args    []string
		handler string
		pc      int
		ok      bool
	}{
		{[]string{"main"}, "main", 0, true},
		{[]string{"main", "4"}, "main", 4, true},
		{[]string{"main:7"}, "main", 7, true},
		{[]string{"main", "-1"}, "", 0, false},
		{[]string{":3"}, "", 0, false},
		{nil, "", 0, false},
	}
	for _, tt := range tests {
		h, pc, err := vm.ParseLocation(tt.args)
		if (err == nil) != tt.ok || h != tt.handler || pc != tt.pc {
			t.Fatalf("ParseLocation(%q) = %q, %d, %v", tt.args, h, pc, err)
		}
	}
}

func TestTracerOutput(t *testing.T) {
	p := load(t, `
command main
    PushInteger 0 7
    SetReturnValue bos
end
`)
	var buf bytes.Buffer
	c := p.newContext(vm.ContextOptions{Tracer: vm.NewTracer(&buf)})
	if err := c.Run(p.script, p.handler(t, "main")); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "[depth=1] main pc=0 PushInteger 0 7 | sp=2 bp=2 top=integer 0\n" +
		"[depth=1] main pc=1 SetReturnValue bos 0 | sp=3 bp=2 top=integer 7\n"
	if buf.String() != want {
		t.Fatalf("trace:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestTraceEvents(t *testing.T) {
	p := load(t, `
command main
    PushUnsetValue
    PushInteger 0 0
    CallHandler cmd &inner
    PopValue
    PopValue
end

command inner
    NoOp
end
`)
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	c := p.newContext(vm.ContextOptions{Events: ring})
	if err := c.Run(p.script, p.handler(t, "main")); err != nil {
		t.Fatalf("run: %v", err)
	}

	events := ring.Snapshot()
	var names []string
	for _, ev := range events {
		names = append(names, ev.Kind.String()+":"+ev.Name)
	}
	want := []string{"begin:run main", "point:call", "point:return", "end:run main"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", names, want)
	}
	end := events[len(events)-1]
	if end.Extra["steps"] != "6" {
		t.Fatalf("steps = %q", end.Extra["steps"])
	}
	if events[1].ParentID != events[0].SpanID || events[1].Detail != "inner" {
		t.Fatalf("call event = %+v", events[1])
	}
}
