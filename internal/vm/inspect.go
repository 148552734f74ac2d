package vm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"leo/internal/chunk"
	"leo/internal/objtab"
)

const previewWidth = 32

// Describe renders a value for traces and the debugger. Unlike the
// accessors it never stops the context: dead references are shown as such.
func (c *Context) Describe(v *Value) string {
	return c.describe(v, 0)
}

func (c *Context) describe(v *Value, depth int) string {
	var body string
	switch v.kind {
	case KindDead:
		return "<dead>"
	case KindNumber, KindVariantNumber:
		body = "number " + formatNumber(v.number)
	case KindInteger, KindVariantInteger:
		body = "integer " + strconv.FormatInt(v.integer, 10)
	case KindString, KindVariantString:
		body = "string " + quotePreview(v.str)
	case KindStringConstant:
		body = "constant " + quotePreview(v.str)
	case KindBoolean, KindVariantBoolean:
		body = "boolean " + formatBoolean(v.boolean)
	case KindArray, KindVariantArray:
		body = fmt.Sprintf("array(len=%d)", ArrayCount(v.array))
	case KindReference:
		body = c.describeReference(v, depth)
	default:
		return "<invalid>"
	}
	if v.kind.IsVariant() {
		return "variant " + body
	}
	return body
}

func (c *Context) describeReference(v *Value, depth int) string {
	var sb strings.Builder
	sb.WriteString("reference")
	if v.ref.chunk != chunk.Invalid {
		fmt.Fprintf(&sb, " %s %d..%d of", v.ref.chunk, v.ref.start+1, v.ref.end+1)
	}
	t, ok := c.group.Values.Resolve(objtab.Ref{ID: v.ref.id, Seed: v.ref.seed})
	switch {
	case !ok || t == nil || t.kind == KindDead:
		sb.WriteString(" <dead>")
	case depth >= maxReferenceChain:
		sb.WriteString(" ...")
	default:
		sb.WriteString(" -> ")
		sb.WriteString(c.describe(t, depth+1))
	}
	return sb.String()
}

func quotePreview(s string) string {
	q := strconv.Quote(s)
	if runewidth.StringWidth(q) <= previewWidth {
		return q
	}
	return runewidth.Truncate(q, previewWidth, "...")
}
