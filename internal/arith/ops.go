package arith

import (
	"math"
	"math/big"

	"github.com/cwbudde/go-jexl/internal/jexlerr"
	"github.com/cwbudde/go-jexl/internal/types"
)

// numericClass classifies an operand for the arithmetic dispatch ladder.
// Strings that "look like a float" count as floating for rule 2.
type numericClass int

const (
	classNull numericClass = iota
	classFloating
	classBigDecimal
	classBigInt
	classOther
)

func classify(v types.Value) numericClass {
	switch t := v.(type) {
	case nil, types.NullValue:
		return classNull
	case types.FloatValue:
		return classFloating
	case types.StringValue:
		if looksLikeFloat(string(t)) {
			return classFloating
		}
		return classOther
	case types.BigDecimalValue:
		return classBigDecimal
	case types.BigIntValue:
		return classBigInt
	default:
		return classOther
	}
}

// Add implements the `+` dispatch, including the string-concatenation
// fallback when numeric coercion fails.
func (a *Arithmetic) Add(l, r types.Value) (types.Value, error) {
	// A string operand that does not parse as a number selects concatenation
	// in both modes; lenient coercion alone would turn it into 0.
	strict := &Arithmetic{Mode: Strict, MathCtx: a.MathCtx}
	for _, operand := range []types.Value{l, r} {
		if s, ok := operand.(types.StringValue); ok {
			if _, err := strict.ToDouble(s); err != nil {
				return types.StringValue(a.ToStringVal(l).String() + a.ToStringVal(r).String()), nil
			}
		}
	}
	v, err := a.arith(l, r, '+')
	if err != nil {
		if e, ok := err.(*jexlerr.Error); ok && e.Kind == jexlerr.NumericOperand {
			return types.StringValue(a.ToStringVal(l).String() + a.ToStringVal(r).String()), nil
		}
		return nil, err
	}
	return v, nil
}

func (a *Arithmetic) Sub(l, r types.Value) (types.Value, error) { return a.arith(l, r, '-') }
func (a *Arithmetic) Mul(l, r types.Value) (types.Value, error) { return a.arith(l, r, '*') }
func (a *Arithmetic) Div(l, r types.Value) (types.Value, error) { return a.arith(l, r, '/') }
func (a *Arithmetic) Mod(l, r types.Value) (types.Value, error) { return a.arith(l, r, '%') }

// arith implements the dispatch ladder shared by + - * / %.
func (a *Arithmetic) arith(l, r types.Value, op byte) (types.Value, error) {
	// Rule 1: both null.
	if types.IsNull(l) && types.IsNull(r) {
		if a.lenient() {
			return types.IntValue(0), nil
		}
		return nil, a.operandError(jexlerr.NullOperand, "both operands are null")
	}

	cl, cr := classify(l), classify(r)

	// Rule 2: either side floating (or float-looking string).
	if cl == classFloating || cr == classFloating {
		lf, err := a.ToDouble(l)
		if err != nil {
			return nil, err
		}
		rf, err := a.ToDouble(r)
		if err != nil {
			return nil, err
		}
		return a.floatOp(lf, rf, op)
	}

	// Rule 3: both big-integer.
	if cl == classBigInt && cr == classBigInt {
		li, _ := a.ToBigInteger(l)
		ri, _ := a.ToBigInteger(r)
		return a.bigIntOp(li, ri, op)
	}

	// Rule 4: either big-decimal.
	if cl == classBigDecimal || cr == classBigDecimal {
		lb, err := a.ToBigDecimal(l)
		if err != nil {
			return nil, err
		}
		rb, err := a.ToBigDecimal(r)
		if err != nil {
			return nil, err
		}
		return a.bigDecimalOp(lb, rb, op)
	}

	// Rule 5: big-integer arithmetic, narrowed to int/long when possible.
	li, err := a.ToBigInteger(l)
	if err != nil {
		return nil, err
	}
	ri, err := a.ToBigInteger(r)
	if err != nil {
		return nil, err
	}
	result, err := a.bigIntOp(li, ri, op)
	if err != nil {
		return nil, err
	}
	bi, ok := result.(types.BigIntValue)
	if !ok {
		// Lenient zero-divisor case: bigIntOp already returned the
		// double-path zero value, not a narrowable big integer.
		return result, nil
	}
	if li.IsInt64() && ri.IsInt64() {
		lv, rv := li.Int64(), ri.Int64()
		if fitsInt(lv) && fitsInt(rv) && bi.V.IsInt64() {
			return types.IntValue(bi.V.Int64()), nil
		}
		if bi.V.IsInt64() {
			return types.LongValue(bi.V.Int64()), nil
		}
	}
	return bi, nil
}

func (a *Arithmetic) floatOp(l, r float64, op byte) (types.Value, error) {
	switch op {
	case '+':
		return types.FloatValue(l + r), nil
	case '-':
		return types.FloatValue(l - r), nil
	case '*':
		return types.FloatValue(l * r), nil
	case '/':
		if r == 0 {
			if a.lenient() {
				return types.FloatValue(0), nil
			}
			return nil, a.operandError(jexlerr.Arithmetic, "division by zero")
		}
		return types.FloatValue(l / r), nil
	case '%':
		if r == 0 {
			if a.lenient() {
				return types.FloatValue(0), nil
			}
			return nil, a.operandError(jexlerr.Arithmetic, "division by zero")
		}
		return types.FloatValue(math.Mod(l, r)), nil
	}
	return nil, a.operandError(jexlerr.Internal, "unknown operator %c", op)
}

func (a *Arithmetic) bigIntOp(l, r *big.Int, op byte) (types.Value, error) {
	out := new(big.Int)
	switch op {
	case '+':
		out.Add(l, r)
	case '-':
		out.Sub(l, r)
	case '*':
		out.Mul(l, r)
	case '/':
		if r.Sign() == 0 {
			if a.lenient() {
				return types.FloatValue(0), nil
			}
			return nil, a.operandError(jexlerr.Arithmetic, "division by zero")
		}
		out.Quo(l, r)
	case '%':
		if r.Sign() == 0 {
			if a.lenient() {
				return types.FloatValue(0), nil
			}
			return nil, a.operandError(jexlerr.Arithmetic, "division by zero")
		}
		out.Rem(l, r)
	default:
		return nil, a.operandError(jexlerr.Internal, "unknown operator %c", op)
	}
	return types.NewBigInt(out), nil
}

func (a *Arithmetic) bigDecimalOp(l, r *big.Float, op byte) (types.Value, error) {
	out := new(big.Float).SetPrec(a.MathCtx.Precision)
	switch op {
	case '+':
		out.Add(l, r)
	case '-':
		out.Sub(l, r)
	case '*':
		out.Mul(l, r)
	case '/':
		if r.Sign() == 0 {
			if a.lenient() {
				return types.NewBigDecimal(new(big.Float).SetPrec(a.MathCtx.Precision)), nil
			}
			return nil, a.operandError(jexlerr.Arithmetic, "division by zero")
		}
		out.Quo(l, r)
	case '%':
		if r.Sign() == 0 {
			if a.lenient() {
				return types.NewBigDecimal(new(big.Float).SetPrec(a.MathCtx.Precision)), nil
			}
			return nil, a.operandError(jexlerr.Arithmetic, "division by zero")
		}
		q := new(big.Float).SetPrec(a.MathCtx.Precision).Quo(l, r)
		qi, _ := q.Int(nil)
		prod := new(big.Float).SetPrec(a.MathCtx.Precision).Mul(new(big.Float).SetInt(qi), r)
		out.Sub(l, prod)
	default:
		return nil, a.operandError(jexlerr.Internal, "unknown operator %c", op)
	}
	return types.NewBigDecimal(out), nil
}

// Negate implements unary minus.
func (a *Arithmetic) Negate(v types.Value) (types.Value, error) {
	switch t := v.(type) {
	case types.IntValue:
		return -t, nil
	case types.LongValue:
		return -t, nil
	case types.FloatValue:
		return -t, nil
	case types.BigIntValue:
		return types.NewBigInt(new(big.Int).Neg(t.V)), nil
	case types.BigDecimalValue:
		return types.NewBigDecimal(new(big.Float).Neg(t.V)), nil
	default:
		n, err := a.ToLong(v)
		if err != nil {
			return nil, err
		}
		return types.IntValue(-n), nil
	}
}

// BitAnd, BitOr, BitXor operate on the long coercion of both operands.
func (a *Arithmetic) BitAnd(l, r types.Value) (types.Value, error) { return a.bitOp(l, r, '&') }
func (a *Arithmetic) BitOr(l, r types.Value) (types.Value, error)  { return a.bitOp(l, r, '|') }
func (a *Arithmetic) BitXor(l, r types.Value) (types.Value, error) { return a.bitOp(l, r, '^') }

func (a *Arithmetic) bitOp(l, r types.Value, op byte) (types.Value, error) {
	li, err := a.ToLong(l)
	if err != nil {
		return nil, err
	}
	ri, err := a.ToLong(r)
	if err != nil {
		return nil, err
	}
	switch op {
	case '&':
		return types.LongValue(li & ri), nil
	case '|':
		return types.LongValue(li | ri), nil
	case '^':
		return types.LongValue(li ^ ri), nil
	}
	return nil, a.operandError(jexlerr.Internal, "unknown bit operator %c", op)
}

// BitCompl implements bitwise complement (`~x`).
func (a *Arithmetic) BitCompl(v types.Value) (types.Value, error) {
	n, err := a.ToLong(v)
	if err != nil {
		return nil, err
	}
	return types.LongValue(^n), nil
}
