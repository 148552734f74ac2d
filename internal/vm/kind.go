package vm

// Kind is the tag of a Value. The set is closed.
type Kind uint8

const (
	KindDead Kind = iota // cleaned up, or never initialized
	KindNumber
	KindInteger
	KindString
	KindStringConstant
	KindBoolean
	KindReference
	KindArray
	KindVariantNumber
	KindVariantInteger
	KindVariantString
	KindVariantBoolean
	KindVariantArray
)

// IsVariant reports whether values of this kind re-tag themselves on
// assignment instead of raising a type error.
func (k Kind) IsVariant() bool {
	return k >= KindVariantNumber && k <= KindVariantArray
}

// Base returns the plain kind a variant kind reads like. Non-variant kinds
// are returned unchanged, except that a string constant reads like a string.
func (k Kind) Base() Kind {
	switch k {
	case KindVariantNumber:
		return KindNumber
	case KindVariantInteger:
		return KindInteger
	case KindVariantString, KindStringConstant:
		return KindString
	case KindVariantBoolean:
		return KindBoolean
	case KindVariantArray:
		return KindArray
	default:
		return k
	}
}

// variantOf returns the variant form of a plain kind.
func variantOf(k Kind) Kind {
	switch k.Base() {
	case KindNumber:
		return KindVariantNumber
	case KindInteger:
		return KindVariantInteger
	case KindString:
		return KindVariantString
	case KindBoolean:
		return KindVariantBoolean
	case KindArray:
		return KindVariantArray
	default:
		return k
	}
}

// TypeName is the user-visible type name used in error messages.
func (k Kind) TypeName() string {
	switch k.Base() {
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindReference:
		return "reference"
	case KindArray:
		return "array"
	default:
		return "nothing"
	}
}

var kindNames = [...]string{
	KindDead:           "dead",
	KindNumber:         "number",
	KindInteger:        "integer",
	KindString:         "string",
	KindStringConstant: "string-constant",
	KindBoolean:        "boolean",
	KindReference:      "reference",
	KindArray:          "array",
	KindVariantNumber:  "variant-number",
	KindVariantInteger: "variant-integer",
	KindVariantString:  "variant-string",
	KindVariantBoolean: "variant-boolean",
	KindVariantArray:   "variant-array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// KeepRefs tells a mutating operation whether weak references to the value
// must stay valid (the slot is only changing content) or be invalidated
// (the slot's identity is gone).
type KeepRefs bool

const (
	KeepReferences       KeepRefs = true
	InvalidateReferences KeepRefs = false
)
