package asm

import (
	"fmt"
	"strconv"

	"leo/internal/diag"
	"leo/internal/source"
)

type lexer struct {
	file   *source.File
	cursor cursor
	rep    diag.Reporter
	look   *token
}

func newLexer(file *source.File, rep diag.Reporter) *lexer {
	return &lexer{file: file, cursor: newCursor(file), rep: rep}
}

// next returns the next token. Comments and blank space are skipped; line
// ends are tokens. After the end of the file it keeps returning tokEOF.
func (lx *lexer) next() token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	lx.skipBlank()

	start := lx.cursor.mark()
	if lx.cursor.eof() {
		return token{kind: tokEOF, span: lx.cursor.spanFrom(start)}
	}

	ch := lx.cursor.peek()
	switch {
	case ch == '\n':
		lx.cursor.bump()
		return token{kind: tokNewline, span: lx.cursor.spanFrom(start)}
	case ch == ':':
		lx.cursor.bump()
		return token{kind: tokColon, span: lx.cursor.spanFrom(start), text: ":"}
	case ch == '"':
		return lx.scanString()
	case ch == '#':
		return lx.scanFloat()
	case ch == '@' || ch == '&' || ch == '$':
		return lx.scanSigil()
	case isDigit(ch) || (ch == '-' || ch == '+') && isDigit(lx.cursor.peek2()):
		return lx.scanInt()
	case isIdentStart(ch):
		lx.scanIdentBytes()
		sp := lx.cursor.spanFrom(start)
		return token{kind: tokIdent, span: sp, text: lx.cursor.text(sp)}
	}

	lx.cursor.bump()
	sp := lx.cursor.spanFrom(start)
	lx.errorf(diag.LexUnknownChar, sp, "unexpected character %q", ch)
	return token{kind: tokInvalid, span: sp, text: lx.cursor.text(sp)}
}

func (lx *lexer) peek() token {
	t := lx.next()
	lx.look = &t
	return t
}

func (lx *lexer) skipBlank() {
	for !lx.cursor.eof() {
		switch lx.cursor.peek() {
		case ' ', '\t', '\r':
			lx.cursor.bump()
		case ';':
			for !lx.cursor.eof() && lx.cursor.peek() != '\n' {
				lx.cursor.bump()
			}
		default:
			return
		}
	}
}

func (lx *lexer) scanIdentBytes() {
	for !lx.cursor.eof() && isIdentContinue(lx.cursor.peek()) {
		lx.cursor.bump()
	}
}

func (lx *lexer) scanSigil() token {
	start := lx.cursor.mark()
	kind := tokLabelRef
	switch lx.cursor.bump() {
	case '&':
		kind = tokHandlerRef
	case '$':
		kind = tokStringRef
	}
	nameStart := lx.cursor.mark()
	lx.scanIdentBytes()
	name := lx.cursor.text(lx.cursor.spanFrom(nameStart))
	sp := lx.cursor.spanFrom(start)
	if name == "" {
		lx.errorf(diag.AsmExpectHandlerName, sp, "expected a name after %q", lx.cursor.text(sp))
		return token{kind: tokInvalid, span: sp}
	}
	return token{kind: kind, span: sp, text: name}
}

func (lx *lexer) scanInt() token {
	start := lx.cursor.mark()
	if lx.cursor.peek() == '-' || lx.cursor.peek() == '+' {
		lx.cursor.bump()
	}
	for !lx.cursor.eof() && isNumberByte(lx.cursor.peek()) {
		lx.cursor.bump()
	}
	sp := lx.cursor.spanFrom(start)
	return token{kind: tokInt, span: sp, text: lx.cursor.text(sp)}
}

func (lx *lexer) scanFloat() token {
	start := lx.cursor.mark()
	lx.cursor.bump() // '#'
	bodyStart := lx.cursor.mark()
	for !lx.cursor.eof() && !isDelimiter(lx.cursor.peek()) {
		lx.cursor.bump()
	}
	sp := lx.cursor.spanFrom(start)
	body := lx.cursor.text(lx.cursor.spanFrom(bodyStart))
	if body == "" {
		lx.errorf(diag.LexBadNumber, sp, "expected a number after '#'")
		return token{kind: tokInvalid, span: sp}
	}
	return token{kind: tokFloat, span: sp, text: body}
}

// scanString reads a Go-style double-quoted literal.
func (lx *lexer) scanString() token {
	start := lx.cursor.mark()
	lx.cursor.bump() // opening '"'
	for !lx.cursor.eof() {
		b := lx.cursor.peek()
		switch b {
		case '"':
			lx.cursor.bump()
			sp := lx.cursor.spanFrom(start)
			value, err := strconv.Unquote(lx.cursor.text(sp))
			if err != nil {
				lx.errorf(diag.LexBadEscape, sp, "invalid escape in string literal")
				return token{kind: tokInvalid, span: sp}
			}
			return token{kind: tokString, span: sp, text: value}
		case '\\':
			lx.cursor.bump()
			if lx.cursor.peek() == '\n' {
				continue
			}
			lx.cursor.bump()
			continue
		case '\n':
			sp := lx.cursor.spanFrom(start)
			lx.errorf(diag.LexUnterminatedString, sp, "newline in string literal")
			return token{kind: tokInvalid, span: sp}
		}
		lx.cursor.bump()
	}
	sp := lx.cursor.spanFrom(start)
	lx.errorf(diag.LexUnterminatedString, sp, "unterminated string literal")
	return token{kind: tokInvalid, span: sp}
}

func (lx *lexer) errorf(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(lx.rep, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= 0x80
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '.'
}

// isNumberByte accepts what strconv.ParseInt with base 0 may need.
func isNumberByte(b byte) bool {
	return isDigit(b) || b == '_' || b == 'x' || b == 'X' || b == 'o' || b == 'O' ||
		b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F'
}

func isDelimiter(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == ';'
}
