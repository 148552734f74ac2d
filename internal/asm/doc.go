// Package asm assembles Leo bytecode from its textual form.
//
// A source file is a sequence of lines. Each line holds at most one
// statement and may start with a label definition:
//
//	string greeting "Hello"      ; named string table entry
//	command main                 ; or: function name
//	loop:
//	    PushParameter 1 0
//	    JumpRelativeIfTrue 0 @loop
//	    PushStringFromTable 0 $greeting
//	    CallHandler fn &helper
//	end
//
// Instructions take up to two operands: an integer, bos, a quoted string
// (interned into the string table), #float, @label (a branch offset
// relative to the instruction), &handler (an interned handler ID), $name
// (a named string) or one of the constants cmd, fn, space, true, false,
// byte, char, item, line and word. Missing operands are zero. Comments
// start with ';'. String literals use Go syntax and are
// normalized to NFC.
//
// The output of bytecode.Disassemble assembles back into an equivalent
// script.
package asm
