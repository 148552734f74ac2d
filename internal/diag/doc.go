// Package diag defines the diagnostics produced while assembling Leo
// source.
//
// A Diagnostic has a severity, a stable numeric Code (rendered as LEX1001,
// ASM2002, ...), a message, a primary source.Span and optional notes.
// Producers emit through a Reporter, usually a BagReporter that stores
// into a Bag; FormatShort renders a bag for the command line.
package diag
