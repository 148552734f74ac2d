package ui

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"leo/internal/driver"
)

func TestApplyEvents(t *testing.T) {
	m := NewProgressModel("leo run", []string{"a.leoasm", "b.leoasm"}, nil).(*progressModel)

	m.apply(driver.Event{File: "a.leoasm", Stage: driver.StageLoad, Status: driver.StatusWorking})
	m.apply(driver.Event{File: "b.leoasm", Stage: driver.StageRun, Status: driver.StatusError,
		Err: errors.New("error LEO1007: Can't divide by zero.\nat main pc=2"), Elapsed: 3 * time.Millisecond})
	m.apply(driver.Event{File: "missing.leoasm", Stage: driver.StageRun, Status: driver.StatusDone})

	if got := m.files[0].label(); got != "loading" {
		t.Fatalf("a label = %q", got)
	}
	if got := m.files[1].label(); got != "error" {
		t.Fatalf("b label = %q", got)
	}
	if got := m.percent(); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("percent = %v", got)
	}
	if finished, failed := m.counts(); finished != 1 || failed != 1 {
		t.Fatalf("counts = %d, %d", finished, failed)
	}

	view := m.View()
	for _, want := range []string{"leo run 1/2, 1 failed", "a.leoasm", "Can't divide by zero.", "3ms"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view is missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "pc=2") {
		t.Fatalf("view shows more than the first error line:\n%s", view)
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		f    fileState
		want string
	}{
		{fileState{status: driver.StatusQueued}, "queued"},
		{fileState{stage: driver.StageRun, status: driver.StatusWorking}, "running"},
		{fileState{stage: driver.StageLoad, status: driver.StatusDone}, "done"},
	}
	for _, tt := range tests {
		if got := tt.f.label(); got != tt.want {
			t.Fatalf("label(%+v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
	if got := truncate("a/very/long/path.leoasm", 10); !strings.HasSuffix(got, "...") || len(got) > 10 {
		t.Fatalf("long path truncated to %q", got)
	}
}
