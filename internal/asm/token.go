package asm

import "leo/internal/source"

type tokenKind uint8

const (
	tokInvalid tokenKind = iota
	tokEOF
	tokNewline
	tokIdent
	tokInt
	tokFloat      // #1.5
	tokString     // "text"
	tokColon      // label definition
	tokLabelRef   // @name
	tokHandlerRef // &name
	tokStringRef  // $name
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of file"
	case tokNewline:
		return "end of line"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "integer"
	case tokFloat:
		return "float"
	case tokString:
		return "string"
	case tokColon:
		return "':'"
	case tokLabelRef:
		return "label reference"
	case tokHandlerRef:
		return "handler reference"
	case tokStringRef:
		return "string reference"
	default:
		return "invalid token"
	}
}

type token struct {
	kind tokenKind
	span source.Span
	// text is the raw source text. For sigil tokens it excludes the sigil;
	// for strings it is the unquoted value.
	text string
}
