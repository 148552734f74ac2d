package asm

import (
	"fmt"

	"fortio.org/safecast"

	"leo/internal/source"
)

// cursor is a byte position in a source file.
type cursor struct {
	file  *source.File
	off   uint32
	limit uint32
}

func newCursor(f *source.File) cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return cursor{file: f, limit: limit}
}

func (c *cursor) eof() bool {
	return c.off >= c.limit
}

// peek returns the current byte, or 0 at the end.
func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.file.Content[c.off]
}

// peek2 returns the byte after the current one, or 0.
func (c *cursor) peek2() byte {
	if c.off+1 >= c.limit {
		return 0
	}
	return c.file.Content[c.off+1]
}

func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.file.Content[c.off]
	c.off++
	return b
}

func (c *cursor) eat(b byte) bool {
	if !c.eof() && c.file.Content[c.off] == b {
		c.off++
		return true
	}
	return false
}

type mark uint32

func (c *cursor) mark() mark {
	return mark(c.off)
}

func (c *cursor) spanFrom(m mark) source.Span {
	return source.Span{File: c.file.ID, Start: uint32(m), End: c.off}
}

func (c *cursor) text(sp source.Span) string {
	return string(c.file.Content[sp.Start:sp.End])
}
