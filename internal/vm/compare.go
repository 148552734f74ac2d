package vm

import (
	"cmp"
	"strings"

	"golang.org/x/text/cases"
)

// foldKey returns the case-folded form used to order array keys and to
// compare strings.
func foldKey(s string) string {
	if isLowerASCII(s) {
		return s
	}
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(s)
}

func isLowerASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x80 || ('A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

// compareStrings orders two strings ignoring case.
func compareStrings(a, b string) int {
	return strings.Compare(foldKey(a), foldKey(b))
}

// compareValues orders two values numerically when both convert to
// numbers and as case-insensitive strings otherwise.
func compareValues(a, b *Value, ctx *Context) (int, bool) {
	an := a.CanConvertToNumber(ctx)
	if ctx.err != nil {
		return 0, false
	}
	bn := b.CanConvertToNumber(ctx)
	if ctx.err != nil {
		return 0, false
	}
	if an && bn {
		if a.IsIntegral(ctx) && b.IsIntegral(ctx) {
			x, ok := a.AsInteger(ctx)
			if !ok {
				return 0, false
			}
			y, ok := b.AsInteger(ctx)
			if !ok {
				return 0, false
			}
			return cmp.Compare(x, y), true
		}
		x, ok := a.AsNumber(ctx)
		if !ok {
			return 0, false
		}
		y, ok := b.AsNumber(ctx)
		if !ok {
			return 0, false
		}
		return cmp.Compare(x, y), true
	}
	x, ok := a.AsString(ctx)
	if !ok {
		return 0, false
	}
	y, ok := b.AsString(ctx)
	if !ok {
		return 0, false
	}
	return compareStrings(x, y), true
}
