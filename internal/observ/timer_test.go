package observ

import (
	"strings"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	at := time.Unix(0, 0)
	return func() time.Time {
		at = at.Add(step)
		return at
	}
}

func TestTimerPhases(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(1500 * time.Microsecond)

	endLoad := tm.Start("load")
	if got := endLoad("2 handlers"); got != 1500*time.Microsecond {
		t.Fatalf("load elapsed = %v", got)
	}
	if got := endLoad("again"); got != 1500*time.Microsecond {
		t.Fatalf("second end changed the phase: %v", got)
	}
	endRun := tm.Start("run")
	endRun("")

	phases := tm.Phases()
	if len(phases) != 2 || phases[0].Note != "2 handlers" || phases[1].Name != "run" {
		t.Fatalf("phases = %+v", phases)
	}
	if tm.Total() != 3*time.Millisecond {
		t.Fatalf("total = %v", tm.Total())
	}

	s := tm.Summary()
	for _, want := range []string{"timings:\n", "load", "1.50 ms  // 2 handlers", "total           3.00 ms"} {
		if !strings.Contains(s, want) {
			t.Fatalf("summary is missing %q:\n%s", want, s)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	var tm *Timer
	if tm.Phases() != nil || tm.Total() != 0 {
		t.Fatalf("nil timer reports phases")
	}
	if got := NewTimer().Summary(); got != "timings:\n  total           0.00 ms\n" {
		t.Fatalf("summary = %q", got)
	}
}

func TestMillis(t *testing.T) {
	if got := Millis(2500 * time.Microsecond); got != 2.5 {
		t.Fatalf("Millis = %v", got)
	}
}
