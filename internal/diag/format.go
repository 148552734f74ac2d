package diag

import (
	"fmt"
	"strings"

	"leo/internal/source"
)

// FormatShort renders diagnostics one per line as
// "path:line:col: severity CODE: message", followed by their notes. The
// bag order is kept.
func FormatShort(diags []Diagnostic, fs *source.FileSet) string {
	var b strings.Builder
	for _, d := range diags {
		writeEntry(&b, fs, d.Primary, d.Severity.String(), d.Code, d.Message)
		for _, n := range d.Notes {
			writeEntry(&b, fs, n.Span, "note", d.Code, n.Msg)
		}
	}
	return b.String()
}

func writeEntry(b *strings.Builder, fs *source.FileSet, span source.Span, label string, code Code, msg string) {
	path := "<unknown>"
	var pos source.LineCol
	if fs != nil {
		if f := fs.Get(span.File); f != nil {
			path = f.Path
			pos = f.Position(span.Start)
		}
	}
	fmt.Fprintf(b, "%s:%d:%d: %s %s: %s\n", path, pos.Line, pos.Col, label, code.ID(), sanitizeMessage(msg))
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
