// Package arith implements binary/unary operators over mixed numeric,
// string, boolean, and null values, plus the coercion functions the
// interpreter and introspection layers use to narrow and compare dynamic
// values. It is configured by a strict/lenient Mode and a big-decimal
// MathContext.
package arith

import "math/big"

// Mode selects how the arithmetic layer reacts to operands it cannot
// coerce: Strict raises a jexlerr.Error, Lenient substitutes a neutral
// value (0, false, "", or an empty container).
type Mode int

const (
	Strict Mode = iota
	Lenient
)

// MathContext configures big-decimal precision and rounding, the closest
// stdlib analog to a fixed-precision decimal math context: big.Float
// carries a precision (in bits) and a rounding mode.
type MathContext struct {
	Precision uint
	Rounding  big.RoundingMode
}

// DefaultMathContext mirrors a typical 64-significant-bit big-decimal
// context with round-to-nearest-even, a reasonable embedding default.
var DefaultMathContext = MathContext{Precision: 64, Rounding: big.ToNearestEven}

// Arithmetic is the pluggable operator/coercion object the interpreter
// delegates to for every binary/unary operator and value coercion.
type Arithmetic struct {
	Mode    Mode
	MathCtx MathContext
}

// New creates an Arithmetic configured with mode and ctx.
func New(mode Mode, ctx MathContext) *Arithmetic {
	return &Arithmetic{Mode: mode, MathCtx: ctx}
}

// lenient reports whether a is configured for lenient-mode coercion.
func (a *Arithmetic) lenient() bool { return a.Mode == Lenient }
