package vm

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"leo/internal/source"
)

// ErrorCode identifies the class of a runtime error.
type ErrorCode int

// Stable error codes - do not change values.
const (
	ErrTypeMismatch       ErrorCode = 1001 // LEO1001: Expected X, found Y / Can't make X into Y
	ErrDeadReference      ErrorCode = 1002 // LEO1002: referenced value no longer exists
	ErrCallStack          ErrorCode = 1003 // LEO1003: call stack underflow, unknown handler
	ErrStackOverflow      ErrorCode = 1004 // LEO1004: operand stack or call depth exhausted
	ErrInvalidInstruction ErrorCode = 1005 // LEO1005: unknown opcode
	ErrBadOperand         ErrorCode = 1006 // LEO1006: bad slot, string index or delimiter
	ErrDivisionByZero     ErrorCode = 1007 // LEO1007: division or modulo by zero
	ErrBudgetExhausted    ErrorCode = 1008 // LEO1008: instruction budget exhausted
	ErrHost               ErrorCode = 1900 // LEO1900: raised by a host instruction
)

// String returns the code as "LEO1001".
func (c ErrorCode) String() string {
	return fmt.Sprintf("LEO%d", c)
}

// BacktraceFrame is one handler activation in an error backtrace.
type BacktraceFrame struct {
	Handler string
	PC      int
	Line    int // last LineMarker seen in the frame, 0 if none
}

// VMError is the error a context stopped with.
type VMError struct {
	Code      ErrorCode
	Message   string
	Handler   string
	PC        int
	Line      int
	Backtrace []BacktraceFrame // innermost first
}

// Error implements the error interface.
func (e *VMError) Error() string {
	return fmt.Sprintf("error %s: %s", e.Code, e.Message)
}

// FormatWithFile renders the error with positions resolved against the
// assembler source the script came from. file may be nil.
func (e *VMError) FormatWithFile(file *source.File) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "error %s: %s\n", e.Code, e.Message)
	fmt.Fprintf(&sb, "at %s\n", formatPosition(e.Handler, e.PC, e.Line, file))
	if line := sourceLine(file, e.Line); line != "" {
		fmt.Fprintf(&sb, "    %s\n", line)
	}

	if len(e.Backtrace) > 0 {
		sb.WriteString("backtrace:\n")
		for i, frame := range e.Backtrace {
			fmt.Fprintf(&sb, "  %d: %s\n", i, formatPosition(frame.Handler, frame.PC, frame.Line, file))
		}
	}

	return sb.String()
}

func formatPosition(handler string, pc, line int, file *source.File) string {
	if handler == "" {
		handler = "<no handler>"
	}
	pos := fmt.Sprintf("%s pc=%d", handler, pc)
	if line > 0 {
		if file != nil {
			return fmt.Sprintf("%s (%s:%d)", pos, file.Path, line)
		}
		return fmt.Sprintf("%s (line %d)", pos, line)
	}
	return pos
}

func sourceLine(file *source.File, line int) string {
	if file == nil {
		return ""
	}
	n, err := safecast.Conv[uint32](line)
	if err != nil || n == 0 {
		return ""
	}
	return strings.TrimSpace(file.GetLine(n))
}

// errorBuilder helps construct VMError values from the current context.
type errorBuilder struct {
	ctx *Context
}

func (eb *errorBuilder) makeError(code ErrorCode, msg string) *VMError {
	c := eb.ctx
	e := &VMError{
		Code:    code,
		Message: msg,
		PC:      c.pc,
		Line:    c.line,
	}
	if c.handler != nil {
		e.Handler = c.handler.Name
	}

	// Innermost first: the running handler, then each caller.
	e.Backtrace = make([]BacktraceFrame, 0, len(c.frames))
	if c.handler != nil {
		e.Backtrace = append(e.Backtrace, BacktraceFrame{Handler: c.handler.Name, PC: c.pc, Line: c.line})
	}
	for i := len(c.frames) - 1; i >= 0; i-- {
		f := &c.frames[i]
		if f.ReturnHandler == nil {
			continue
		}
		e.Backtrace = append(e.Backtrace, BacktraceFrame{
			Handler: f.ReturnHandler.Name,
			PC:      f.ReturnPC - 1,
			Line:    f.ReturnLine,
		})
	}
	return e
}

func (eb *errorBuilder) typeMismatch(expected, found string) *VMError {
	return eb.makeError(ErrTypeMismatch, fmt.Sprintf("Expected %s, found %s.", expected, found))
}

func (eb *errorBuilder) cantMake(text, target string) *VMError {
	return eb.makeError(ErrTypeMismatch, fmt.Sprintf("Can't make %q into %s %s.", text, article(target), target))
}

func (eb *errorBuilder) deadReference() *VMError {
	return eb.makeError(ErrDeadReference, "The referenced value doesn't exist anymore.")
}

func article(word string) string {
	if word != "" && strings.ContainsRune("aeiouAEIOU", rune(word[0])) {
		return "an"
	}
	return "a"
}
