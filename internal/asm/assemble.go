package asm

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"leo/internal/bytecode"
	"leo/internal/diag"
	"leo/internal/objtab"
	"leo/internal/source"
)

// Options configures Assemble.
type Options struct {
	// Opcodes resolves instruction names. Nil means the base set only.
	Opcodes bytecode.OpcodeResolver
	// Handlers interns handler names. It must be the group the script
	// will run in.
	Handlers bytecode.HandlerInterner
	// Owner is recorded as the script's owning object.
	Owner objtab.Ref
	// MaxDiagnostics bounds the bag AssembleSource creates. Zero means no
	// limit.
	MaxDiagnostics int
}

// Assemble parses file and builds a script. Diagnostics go to rep; the
// result is nil when any error was reported.
func Assemble(file *source.File, opts Options, rep diag.Reporter) *bytecode.Script {
	if opts.Opcodes == nil {
		opts.Opcodes = bytecode.BaseOpcodes{}
	}
	counter := &errorCounter{inner: rep}
	a := &assembler{
		lx:         newLexer(file, counter),
		rep:        counter,
		opts:       opts,
		builder:    bytecode.NewScriptBuilder(opts.Handlers),
		named:      make(map[string]namedString),
		labelOwner: make(map[string]string),
	}
	a.parse()
	a.finish()
	if counter.errors > 0 {
		return nil
	}
	if !opts.Owner.IsZero() {
		a.builder.SetOwner(opts.Owner)
	}
	return a.builder.Build()
}

// AssembleSource adds src to fs as a virtual file and assembles it.
func AssembleSource(fs *source.FileSet, name string, src []byte, opts Options) (*bytecode.Script, *diag.Bag) {
	id := fs.AddVirtual(name, src)
	bag := diag.NewBag(opts.MaxDiagnostics)
	s := Assemble(fs.Get(id), opts, diag.BagReporter{Bag: bag})
	bag.Sort()
	return s, bag
}

// errorCounter forwards diagnostics and counts errors. A full bag still
// fails the assembly.
type errorCounter struct {
	inner  diag.Reporter
	errors int
}

func (r *errorCounter) Report(d diag.Diagnostic) {
	if d.Severity >= diag.SevError {
		r.errors++
	}
	if r.inner != nil {
		r.inner.Report(d)
	}
}

type namedString struct {
	index uint32
	span  source.Span
}

type labelFixup struct {
	pc   int
	name string
	span source.Span
}

// handlerDraft is a handler being assembled. Label operands are patched
// once the whole file has been read.
type handlerDraft struct {
	name       string
	function   bool
	span       source.Span
	code       []bytecode.Instruction
	labels     map[string]int
	labelSpans map[string]source.Span
	fixups     []labelFixup
}

func (h *handlerDraft) kind() string {
	if h.function {
		return "function"
	}
	return "command"
}

type assembler struct {
	lx      *lexer
	rep     *errorCounter
	opts    Options
	builder *bytecode.ScriptBuilder

	named      map[string]namedString
	cur        *handlerDraft
	done       []*handlerDraft
	labelOwner map[string]string
}

func (a *assembler) parse() {
	for {
		tok := a.lx.next()
		switch tok.kind {
		case tokEOF:
			return
		case tokNewline:
			continue
		case tokIdent:
			if a.lx.peek().kind == tokColon {
				a.lx.next()
				a.defineLabel(tok)
				continue
			}
			a.statement(tok)
		case tokInvalid:
			a.skipLine()
		default:
			a.errorf(diag.AsmUnexpectedToken, tok.span, "unexpected %s at start of statement", tok.kind)
			a.skipLine()
		}
	}
}

func (a *assembler) statement(tok token) {
	switch strings.ToLower(tok.text) {
	case "string":
		a.stringDecl(tok)
	case "command":
		a.beginHandler(tok, false)
	case "function":
		a.beginHandler(tok, true)
	case "end":
		a.endHandler(tok)
	default:
		a.instruction(tok)
	}
}

func (a *assembler) stringDecl(kw token) {
	name := a.lx.next()
	if name.kind != tokIdent {
		a.errorf(diag.AsmUnexpectedToken, name.span, "expected a string name, found %s", name.kind)
		a.skipRest(name)
		return
	}
	value := a.lx.next()
	if value.kind != tokString {
		a.errorf(diag.AsmUnexpectedToken, value.span, "expected a string literal, found %s", value.kind)
		a.skipRest(value)
		return
	}
	if prev, dup := a.named[name.text]; dup {
		diag.ReportError(a.rep, diag.AsmDuplicateString, name.span, fmt.Sprintf("string %q is already declared", name.text)).
			WithNote(prev.span, "previous declaration").
			Emit()
	} else {
		a.named[name.text] = namedString{index: a.builder.AddString(normalize(value.text)), span: kw.span.Cover(value.span)}
	}
	a.expectLineEnd()
}

func (a *assembler) beginHandler(kw token, function bool) {
	name := a.lx.next()
	if name.kind != tokIdent {
		a.errorf(diag.AsmExpectHandlerName, name.span, "expected a handler name after %q, found %s", kw.text, name.kind)
		a.skipRest(name)
		return
	}
	if a.cur != nil {
		diag.ReportError(a.rep, diag.AsmNestedHandler, kw.span.Cover(name.span),
			fmt.Sprintf("%s %s starts inside %s %s", kw.text, name.text, a.cur.kind(), a.cur.name)).
			WithNote(a.cur.span, "handler opened here").
			Emit()
		a.expectLineEnd()
		return
	}
	for _, h := range a.done {
		if h.function == function && strings.EqualFold(h.name, name.text) {
			diag.ReportError(a.rep, diag.AsmDuplicateHandler, name.span, fmt.Sprintf("%s %s is already defined", kw.text, name.text)).
				WithNote(h.span, "previous definition").
				Emit()
			break
		}
	}
	a.cur = &handlerDraft{
		name:       name.text,
		function:   function,
		span:       kw.span.Cover(name.span),
		labels:     make(map[string]int),
		labelSpans: make(map[string]source.Span),
	}
	a.expectLineEnd()
}

func (a *assembler) endHandler(kw token) {
	if a.cur == nil {
		a.errorf(diag.AsmStrayEnd, kw.span, "'end' without an open handler")
		a.skipLine()
		return
	}
	if tok := a.lx.peek(); tok.kind == tokIdent {
		a.lx.next()
		if !strings.EqualFold(tok.text, a.cur.name) {
			a.errorf(diag.AsmUnexpectedToken, tok.span, "'end %s' closes %s %s", tok.text, a.cur.kind(), a.cur.name)
		}
	}
	a.done = append(a.done, a.cur)
	a.cur = nil
	a.expectLineEnd()
}

func (a *assembler) defineLabel(name token) {
	if a.cur == nil {
		a.errorf(diag.AsmOutsideHandler, name.span, "label %q outside of a handler", name.text)
		return
	}
	if prev, dup := a.cur.labelSpans[name.text]; dup {
		diag.ReportError(a.rep, diag.AsmDuplicateLabel, name.span, fmt.Sprintf("label %q is already defined", name.text)).
			WithNote(prev, "previous definition").
			Emit()
		return
	}
	a.cur.labels[name.text] = len(a.cur.code)
	a.cur.labelSpans[name.text] = name.span
	if _, seen := a.labelOwner[name.text]; !seen {
		a.labelOwner[name.text] = a.cur.name
	}
}

func (a *assembler) instruction(name token) {
	if a.cur == nil {
		a.errorf(diag.AsmOutsideHandler, name.span, "instruction %s outside of a handler", name.text)
		a.skipLine()
		return
	}
	op, ok := a.opts.Opcodes.LookupOpcode(name.text)
	if !ok {
		a.errorf(diag.AsmUnknownOpcode, name.span, "unknown instruction %q", name.text)
		a.skipLine()
		return
	}

	in := bytecode.Instruction{Opcode: op}
	pc := len(a.cur.code)
	fixups := len(a.cur.fixups)
	valid := true
	for n := 1; ; n++ {
		tok := a.lx.next()
		if tok.kind == tokNewline || tok.kind == tokEOF {
			break
		}
		if n > 2 {
			a.errorf(diag.AsmTooManyOperands, tok.span, "%s takes at most two operands", name.text)
			a.skipLine()
			valid = false
			break
		}
		v, ok := a.operand(tok, n, op, pc)
		if !ok {
			valid = false
			continue
		}
		if n == 1 {
			p1, err := param1(v)
			if err != nil {
				a.errorf(diag.AsmOperandRange, tok.span, "operand %s does not fit 16 bits", tok.text)
				valid = false
				continue
			}
			in.Param1 = p1
		} else {
			in.Param2 = v
		}
	}
	if !valid {
		a.cur.fixups = a.cur.fixups[:fixups]
		return
	}
	a.cur.code = append(a.cur.code, in)
}

// param1 narrows a signed or unsigned value to the 16 bit first operand.
func param1(v uint32) (uint16, error) {
	if signed := int32(v); signed < 0 { //nolint:gosec // G115: two's complement view of the operand
		s, err := safecast.Conv[int16](signed)
		return uint16(s), err //nolint:gosec // G115: bit pattern of a signed slot offset
	}
	return safecast.Conv[uint16](v)
}

func (a *assembler) finish() {
	if a.cur != nil {
		a.errorf(diag.AsmUnclosedHandler, a.cur.span, "%s %s is missing 'end'", a.cur.kind(), a.cur.name)
		a.done = append(a.done, a.cur)
		a.cur = nil
	}
	for _, h := range a.done {
		a.resolveLabels(h)
	}
	if a.rep.errors > 0 {
		return
	}
	for _, h := range a.done {
		var err error
		if h.function {
			_, err = a.builder.AddFunction(h.name, h.code)
		} else {
			_, err = a.builder.AddCommand(h.name, h.code)
		}
		if err != nil {
			a.errorf(diag.AsmDuplicateHandler, h.span, "%v", err)
		}
	}
}

func (a *assembler) resolveLabels(h *handlerDraft) {
	for _, fx := range h.fixups {
		target, ok := h.labels[fx.name]
		if !ok {
			if owner, elsewhere := a.labelOwner[fx.name]; elsewhere {
				a.errorf(diag.AsmJumpOutOfHandler, fx.span, "label %q belongs to handler %s", fx.name, owner)
			} else {
				a.errorf(diag.AsmUnknownLabel, fx.span, "unknown label %q", fx.name)
			}
			continue
		}
		offset, err := safecast.Conv[int32](target - fx.pc)
		if err != nil {
			a.errorf(diag.AsmOperandRange, fx.span, "branch to %q is too far", fx.name)
			continue
		}
		h.code[fx.pc].Param2 = uint32(offset) //nolint:gosec // G115: signed branch offset stored as bits
	}
}

// expectLineEnd consumes the end of a statement, reporting anything left
// over.
func (a *assembler) expectLineEnd() {
	tok := a.lx.next()
	if tok.kind == tokNewline || tok.kind == tokEOF {
		return
	}
	a.errorf(diag.AsmUnexpectedToken, tok.span, "unexpected %s after statement", tok.kind)
	a.skipLine()
}

// skipRest skips the rest of the line unless tok already ended it.
func (a *assembler) skipRest(tok token) {
	if tok.kind == tokNewline || tok.kind == tokEOF {
		return
	}
	a.skipLine()
}

func (a *assembler) skipLine() {
	for {
		tok := a.lx.next()
		if tok.kind == tokNewline || tok.kind == tokEOF {
			return
		}
	}
}

func (a *assembler) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(a.rep, code, sp, fmt.Sprintf(format, args...)).Emit()
}
