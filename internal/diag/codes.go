package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexBadEscape          Code = 1004

	// Assembler syntax and resolution
	AsmInfo                 Code = 2000
	AsmUnexpectedToken      Code = 2001
	AsmUnknownOpcode        Code = 2002
	AsmTooManyOperands      Code = 2003
	AsmBadOperand           Code = 2004
	AsmOperandRange         Code = 2005
	AsmUnknownLabel         Code = 2006
	AsmDuplicateLabel       Code = 2007
	AsmUnclosedHandler      Code = 2008
	AsmStrayEnd             Code = 2009
	AsmDuplicateHandler     Code = 2010
	AsmOutsideHandler       Code = 2011
	AsmNestedHandler        Code = 2012
	AsmUnknownString        Code = 2013
	AsmDuplicateString      Code = 2014
	AsmJumpOutOfHandler     Code = 2015
	AsmExpectHandlerName    Code = 2016
	AsmLabelOnNonJumpTarget Code = 2017

	// I/O
	IOLoadFileError Code = 4001
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	LexInfo:                 "Lexical information",
	LexUnknownChar:          "Unknown character",
	LexUnterminatedString:   "Unterminated string literal",
	LexBadNumber:            "Malformed number",
	LexBadEscape:            "Invalid escape in string literal",
	AsmInfo:                 "Assembler information",
	AsmUnexpectedToken:      "Unexpected token",
	AsmUnknownOpcode:        "Unknown instruction",
	AsmTooManyOperands:      "Too many operands",
	AsmBadOperand:           "Operand not allowed here",
	AsmOperandRange:         "Operand out of range",
	AsmUnknownLabel:         "Unknown label",
	AsmDuplicateLabel:       "Duplicate label",
	AsmUnclosedHandler:      "Handler is missing 'end'",
	AsmStrayEnd:             "'end' without a handler",
	AsmDuplicateHandler:     "Duplicate handler",
	AsmOutsideHandler:       "Instruction outside of a handler",
	AsmNestedHandler:        "Handler declared inside another handler",
	AsmUnknownString:        "Unknown string name",
	AsmDuplicateString:      "Duplicate string name",
	AsmJumpOutOfHandler:     "Label belongs to another handler",
	AsmExpectHandlerName:    "Expected a handler name",
	AsmLabelOnNonJumpTarget: "Label operand on an instruction that does not jump",
	IOLoadFileError:         "I/O load file error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("ASM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
