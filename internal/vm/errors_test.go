package vm

import (
	"math"
	"testing"

	"leo/internal/source"
)

func TestSourceLine(t *testing.T) {
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("x.leoasm", []byte("command main\n    Divide\nend\n")))

	tests := []struct {
		file *source.File
		line int
		want string
	}{
		{f, 2, "Divide"},
		{f, 0, ""},
		{f, -1, ""},
		{f, 99, ""},
		{f, math.MaxInt, ""},
		{nil, 2, ""},
	}
	for _, tt := range tests {
		if got := sourceLine(tt.file, tt.line); got != tt.want {
			t.Fatalf("sourceLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
