package vm

import (
	"math"
	"strconv"
	"strings"
)

// formatNumber renders a number the way the language prints it: integral
// values of moderate size without a fraction, everything else in the
// shortest form that round-trips.
func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func formatBoolean(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// parseNumber accepts a string whose whole content (after leading
// whitespace) is a number.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseInteger(s string) (int64, bool) {
	trimmed := strings.TrimLeft(s, " \t\r\n")
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i, true
	}
	n, ok := parseNumber(s)
	if !ok {
		return 0, false
	}
	return numberToInteger(n)
}

func parseBoolean(s string) (bool, bool) {
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	default:
		return false, false
	}
}

// numberToInteger converts exactly integral numbers in int64 range.
func numberToInteger(n float64) (int64, bool) {
	if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}

// AsNumber returns the value as a float. On failure the context is stopped
// with an error and ok is false.
func (v *Value) AsNumber(ctx *Context) (float64, bool) {
	switch v.kind {
	case KindNumber, KindVariantNumber:
		return v.number, true
	case KindInteger, KindVariantInteger:
		return float64(v.integer), true
	case KindString, KindStringConstant, KindVariantString:
		n, ok := parseNumber(v.str)
		if !ok {
			ctx.fail(ctx.eb.cantMake(v.str, "number"))
		}
		return n, ok
	case KindReference:
		w, ok := v.window(ctx)
		if !ok {
			return 0, false
		}
		if w.whole {
			return w.base.AsNumber(ctx)
		}
		s, ok := w.text(ctx)
		if !ok {
			return 0, false
		}
		tmp := textValue(s)
		return tmp.AsNumber(ctx)
	default:
		ctx.fail(ctx.eb.typeMismatch("number", v.kind.TypeName()))
		return 0, false
	}
}

// AsInteger returns the value as an integer. Numbers must be integral.
func (v *Value) AsInteger(ctx *Context) (int64, bool) {
	switch v.kind {
	case KindInteger, KindVariantInteger:
		return v.integer, true
	case KindNumber, KindVariantNumber:
		i, ok := numberToInteger(v.number)
		if !ok {
			ctx.fail(ctx.eb.cantMake(formatNumber(v.number), "integer"))
		}
		return i, ok
	case KindString, KindStringConstant, KindVariantString:
		i, ok := parseInteger(v.str)
		if !ok {
			ctx.fail(ctx.eb.cantMake(v.str, "integer"))
		}
		return i, ok
	case KindReference:
		w, ok := v.window(ctx)
		if !ok {
			return 0, false
		}
		if w.whole {
			return w.base.AsInteger(ctx)
		}
		s, ok := w.text(ctx)
		if !ok {
			return 0, false
		}
		tmp := textValue(s)
		return tmp.AsInteger(ctx)
	default:
		ctx.fail(ctx.eb.typeMismatch("integer", v.kind.TypeName()))
		return 0, false
	}
}

// AsString returns the string form of the value. Every kind has one;
// arrays render in their canonical serialized form.
func (v *Value) AsString(ctx *Context) (string, bool) {
	switch v.kind {
	case KindString, KindStringConstant, KindVariantString:
		return v.str, true
	case KindNumber, KindVariantNumber:
		return formatNumber(v.number), true
	case KindInteger, KindVariantInteger:
		return strconv.FormatInt(v.integer, 10), true
	case KindBoolean, KindVariantBoolean:
		return formatBoolean(v.boolean), true
	case KindArray, KindVariantArray:
		return ArrayString(v.array, ctx)
	case KindReference:
		w, ok := v.window(ctx)
		if !ok {
			return "", false
		}
		return w.text(ctx)
	default:
		ctx.fail(ctx.eb.typeMismatch("string", v.kind.TypeName()))
		return "", false
	}
}

// AsBoolean returns the value as a boolean. Strings must be "true" or
// "false" in any letter case.
func (v *Value) AsBoolean(ctx *Context) (bool, bool) {
	switch v.kind {
	case KindBoolean, KindVariantBoolean:
		return v.boolean, true
	case KindString, KindStringConstant, KindVariantString:
		b, ok := parseBoolean(v.str)
		if !ok {
			ctx.fail(ctx.eb.cantMake(v.str, "boolean"))
		}
		return b, ok
	case KindReference:
		w, ok := v.window(ctx)
		if !ok {
			return false, false
		}
		if w.whole {
			return w.base.AsBoolean(ctx)
		}
		s, ok := w.text(ctx)
		if !ok {
			return false, false
		}
		tmp := textValue(s)
		return tmp.AsBoolean(ctx)
	default:
		ctx.fail(ctx.eb.typeMismatch("boolean", v.kind.TypeName()))
		return false, false
	}
}

// CanConvertToNumber reports whether AsNumber would succeed. It only fails
// the context for dead references.
func (v *Value) CanConvertToNumber(ctx *Context) bool {
	switch v.kind {
	case KindNumber, KindVariantNumber, KindInteger, KindVariantInteger:
		return true
	case KindString, KindStringConstant, KindVariantString:
		_, ok := parseNumber(v.str)
		return ok
	case KindReference:
		w, ok := v.window(ctx)
		if !ok {
			return false
		}
		if w.whole {
			return w.base.CanConvertToNumber(ctx)
		}
		s, ok := w.text(ctx)
		if !ok {
			return false
		}
		_, ok = parseNumber(s)
		return ok
	default:
		return false
	}
}

// IsIntegral reports whether the value is a number without a fraction
// that fits an int64.
func (v *Value) IsIntegral(ctx *Context) bool {
	switch v.kind {
	case KindInteger, KindVariantInteger:
		return true
	case KindNumber, KindVariantNumber:
		_, ok := numberToInteger(v.number)
		return ok
	case KindString, KindStringConstant, KindVariantString:
		_, ok := parseInteger(v.str)
		return ok
	case KindReference:
		w, ok := v.window(ctx)
		if !ok {
			return false
		}
		if w.whole {
			return w.base.IsIntegral(ctx)
		}
		s, ok := w.text(ctx)
		if !ok {
			return false
		}
		_, ok = parseInteger(s)
		return ok
	default:
		return false
	}
}
