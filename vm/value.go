package vm

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind identifies which variant a Value holds.
type ValueKind uint8

const (
	KindNil ValueKind = iota
	KindNumber
	KindBoolean
)

func (k ValueKind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// Value is an immediate scalar: nil, a 64-bit float, or a boolean.
//
// Values are fixed-size and copied by value; they live on the operand stack
// and in a chunk's constant pool. The zero Value is nil.
//
// Every operator switches over the full set of kinds. Adding a kind means
// visiting each switch in this file.
type Value struct {
	kind ValueKind
	num  float64
	b    bool
}

// Pre-defined values
var (
	Nil   = Value{kind: KindNil}
	True  = Value{kind: KindBoolean, b: true}
	False = Value{kind: KindBoolean, b: false}
)

// Number returns a numeric Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Boolean returns a boolean Value.
func Boolean(b bool) Value {
	if b {
		return True
	}
	return False
}

// Kind returns the variant held by v.
func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNil() bool     { return v.kind == KindNil }
func (v Value) IsNumber() bool  { return v.kind == KindNumber }
func (v Value) IsBoolean() bool { return v.kind == KindBoolean }

// AsNumber returns the numeric payload. It is 0 for non-numbers.
func (v Value) AsNumber() float64 { return v.num }

// AsBoolean returns the boolean payload. It is false for non-booleans.
func (v Value) AsBoolean() bool { return v.b }

// String returns the display form used by the return opcode and the
// disassembler.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindNumber:
		return formatNumber(v.num)
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("<invalid value kind %d>", uint8(v.kind))
	}
}

// GoString makes %#v output readable in test failures.
func (v Value) GoString() string {
	switch v.kind {
	case KindNumber:
		return "Number(" + formatNumber(v.num) + ")"
	case KindBoolean:
		return "Boolean(" + strconv.FormatBool(v.b) + ")"
	default:
		return "Nil"
	}
}

func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case math.IsNaN(n):
		return "NaN"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// Negate returns -v. Only numbers can be negated.
func (v Value) Negate() (Value, bool) {
	switch v.kind {
	case KindNumber:
		return Number(-v.num), true
	case KindNil, KindBoolean:
		return Nil, false
	}
	return Nil, false
}

// Not returns the logical negation of v. Only booleans can be negated.
func (v Value) Not() (Value, bool) {
	switch v.kind {
	case KindBoolean:
		return Boolean(!v.b), true
	case KindNil, KindNumber:
		return Nil, false
	}
	return Nil, false
}

// Add returns v + w. Defined only when both operands are numbers.
func (v Value) Add(w Value) (Value, bool) {
	return v.arith(w, func(a, b float64) float64 { return a + b })
}

// Sub returns v - w.
func (v Value) Sub(w Value) (Value, bool) {
	return v.arith(w, func(a, b float64) float64 { return a - b })
}

// Mul returns v * w.
func (v Value) Mul(w Value) (Value, bool) {
	return v.arith(w, func(a, b float64) float64 { return a * b })
}

// Div returns v / w. A zero divisor follows IEEE 754 (inf or NaN).
func (v Value) Div(w Value) (Value, bool) {
	return v.arith(w, func(a, b float64) float64 { return a / b })
}

func (v Value) arith(w Value, op func(a, b float64) float64) (Value, bool) {
	if v.kind != w.kind {
		return Nil, false
	}
	switch v.kind {
	case KindNumber:
		return Number(op(v.num, w.num)), true
	case KindNil, KindBoolean:
		return Nil, false
	}
	return Nil, false
}

// Equal reports structural equality. Values of different kinds are never
// equal; NaN is not equal to itself.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindNumber:
		return v.num == w.num
	case KindBoolean:
		return v.b == w.b
	}
	return false
}

// Compare orders v against w, returning -1, 0 or +1. The second result is
// false when the pair is unordered: different kinds, or a NaN operand.
// false orders before true; nil equals nil.
func (v Value) Compare(w Value) (int, bool) {
	if v.kind != w.kind {
		return 0, false
	}
	switch v.kind {
	case KindNil:
		return 0, true
	case KindNumber:
		switch {
		case v.num < w.num:
			return -1, true
		case v.num > w.num:
			return 1, true
		case v.num == w.num:
			return 0, true
		}
		return 0, false
	case KindBoolean:
		switch {
		case v.b == w.b:
			return 0, true
		case !v.b:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}
