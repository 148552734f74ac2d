package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"leo/internal/diag"
	"leo/internal/source"
)

// CheckDiagnosticSpans runs a minimal set of span invariants on a bag:
// 1) every primary span lies inside its file's content; a zero span is
// allowed for diagnostics without a position
// 2) spans are not inverted
// 3) every note span obeys the same rules
func CheckDiagnosticSpans(bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || fs == nil {
		return fmt.Errorf("nil bag or file set")
	}
	for i, d := range bag.Items() {
		if err := checkSpan(fs, d.Primary); err != nil {
			return fmt.Errorf("diagnostic %d (%s): %w", i, d.Code.ID(), err)
		}
		for j, n := range d.Notes {
			if err := checkSpan(fs, n.Span); err != nil {
				return fmt.Errorf("diagnostic %d (%s) note %d: %w", i, d.Code.ID(), j, err)
			}
		}
	}
	return nil
}

func checkSpan(fs *source.FileSet, sp source.Span) error {
	if sp.End < sp.Start {
		return fmt.Errorf("inverted span %v", sp)
	}
	f := fs.Get(sp.File)
	if f == nil {
		if sp == (source.Span{}) {
			return nil
		}
		return fmt.Errorf("span %v points to unknown file %d", sp, sp.File)
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End > lenContent {
		return fmt.Errorf("span end beyond content: %d > %d", sp.End, lenContent)
	}
	return nil
}
