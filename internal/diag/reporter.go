package diag

import "leo/internal/source"

// Reporter receives diagnostics as they are found.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder collects notes for one diagnostic until Emit.
type ReportBuilder struct {
	to      Reporter
	d       Diagnostic
	emitted bool
}

// ReportError starts an error diagnostic for r.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{to: r, d: NewError(code, primary, msg)}
}

// WithNote attaches a secondary location.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	b.d = b.d.WithNote(sp, msg)
	return b
}

// Emit reports the diagnostic. Later calls do nothing.
func (b *ReportBuilder) Emit() {
	if b.emitted || b.to == nil {
		return
	}
	b.emitted = true
	b.to.Report(b.d)
}

// BagReporter adds reported diagnostics to Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}
