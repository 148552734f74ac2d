// Package observ measures the phases of loading and running one file.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one finished or running step.
type Phase struct {
	Name    string
	Elapsed time.Duration
	Note    string
}

// Timer records the phases of one file. Parallel runs keep one timer each;
// a Timer is not safe for concurrent use.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// Start opens phase name. The returned func closes it with note and
// returns the phase's elapsed time; calls after the first only return it.
func (t *Timer) Start(name string) func(note string) time.Duration {
	i := len(t.phases)
	t.phases = append(t.phases, Phase{Name: name})
	began := t.now()
	closed := false
	return func(note string) time.Duration {
		p := &t.phases[i]
		if !closed {
			closed = true
			p.Elapsed, p.Note = t.now().Sub(began), note
		}
		return p.Elapsed
	}
}

// Phases returns a copy of the recorded phases in start order.
func (t *Timer) Phases() []Phase {
	if t == nil {
		return nil
	}
	return append([]Phase(nil), t.phases...)
}

// Total sums every phase.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	for _, p := range t.Phases() {
		total += p.Elapsed
	}
	return total
}

// Summary renders one line per phase and a total, in milliseconds.
func (t *Timer) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	row := func(name string, d time.Duration, note string) {
		fmt.Fprintf(&sb, "  %-12s %7.2f ms", name, Millis(d))
		if note != "" {
			sb.WriteString("  // " + note)
		}
		sb.WriteByte('\n')
	}
	for _, p := range t.Phases() {
		row(p.Name, p.Elapsed, p.Note)
	}
	row("total", t.Total(), "")
	return sb.String()
}

// Millis converts d to fractional milliseconds.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
