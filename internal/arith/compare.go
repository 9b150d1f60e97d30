package arith

import (
	"math/big"

	"github.com/cwbudde/go-jexl/internal/jexlerr"
	"github.com/cwbudde/go-jexl/internal/types"
)

// Equals implements the equality ladder.
func (a *Arithmetic) Equals(l, r types.Value) (bool, error) {
	ln, rn := types.IsNull(l), types.IsNull(r)
	switch {
	case ln && rn:
		return true, nil
	case ln || rn:
		return false, nil
	}

	if sameClass(l, r) {
		return valueEquals(l, r), nil
	}

	switch {
	case types.IsBigDecimal(l) || types.IsBigDecimal(r):
		lb, err := a.ToBigDecimal(l)
		if err != nil {
			return false, err
		}
		rb, err := a.ToBigDecimal(r)
		if err != nil {
			return false, err
		}
		return lb.Cmp(rb) == 0, nil
	case types.IsFloating(l) || types.IsFloating(r):
		lf, err := a.ToDouble(l)
		if err != nil {
			return false, err
		}
		rf, err := a.ToDouble(r)
		if err != nil {
			return false, err
		}
		return lf == rf, nil
	case types.IsNumeric(l) || types.IsNumeric(r):
		li, err := a.ToLong(l)
		if err != nil {
			return false, err
		}
		ri, err := a.ToLong(r)
		if err != nil {
			return false, err
		}
		return li == ri, nil
	case isBool(l) || isBool(r):
		lb, err := a.ToBoolean(l)
		if err != nil {
			return false, err
		}
		rb, err := a.ToBoolean(r)
		if err != nil {
			return false, err
		}
		return lb == rb, nil
	default:
		return a.ToStringVal(l).String() == a.ToStringVal(r).String(), nil
	}
}

// NotEquals is the logical inverse of Equals.
func (a *Arithmetic) NotEquals(l, r types.Value) (bool, error) {
	eq, err := a.Equals(l, r)
	if err != nil {
		return false, err
	}
	return !eq, nil
}

func isBool(v types.Value) bool {
	_, ok := v.(types.BoolValue)
	return ok
}

func sameClass(l, r types.Value) bool { return l.Class() == r.Class() }

func valueEquals(l, r types.Value) bool {
	switch lv := l.(type) {
	case types.BigIntValue:
		return lv.V.Cmp(r.(types.BigIntValue).V) == 0
	case types.BigDecimalValue:
		return lv.V.Cmp(r.(types.BigDecimalValue).V) == 0
	default:
		return l.String() == r.String() || l == r
	}
}

// Compare returns -1, 0, or 1 following the same ladder Equals uses,
// raising InvalidComparison when the two sides are not of a comparable,
// compatible kind.
func (a *Arithmetic) Compare(l, r types.Value) (int, error) {
	switch {
	case types.IsBigDecimal(l) || types.IsBigDecimal(r):
		lb, err := a.ToBigDecimal(l)
		if err != nil {
			return 0, err
		}
		rb, err := a.ToBigDecimal(r)
		if err != nil {
			return 0, err
		}
		return lb.Cmp(rb), nil
	case types.IsBigInt(l) || types.IsBigInt(r):
		li, err := a.ToBigInteger(l)
		if err != nil {
			return 0, err
		}
		ri, err := a.ToBigInteger(r)
		if err != nil {
			return 0, err
		}
		return li.Cmp(ri), nil
	case types.IsFloating(l) || types.IsFloating(r):
		lf, err := a.ToDouble(l)
		if err != nil {
			return 0, err
		}
		rf, err := a.ToDouble(r)
		if err != nil {
			return 0, err
		}
		return cmpFloat(lf, rf), nil
	case types.IsNumeric(l) && types.IsNumeric(r):
		li, err := a.ToLong(l)
		if err != nil {
			return 0, err
		}
		ri, err := a.ToLong(r)
		if err != nil {
			return 0, err
		}
		return cmpInt(li, ri), nil
	case types.IsString(l) && types.IsString(r):
		ls, rs := string(l.(types.StringValue)), string(r.(types.StringValue))
		switch {
		case ls < rs:
			return -1, nil
		case ls > rs:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, a.operandError(jexlerr.InvalidComparison, "cannot compare %s with %s", l.Class(), r.Class())
	}
}

func cmpFloat(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func cmpInt(l, r int64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

// LessThan, LessEqual, GreaterThan, GreaterEqual are Compare-based
// conveniences for the interpreter's Lt/Le/Gt/Ge operators.
func (a *Arithmetic) LessThan(l, r types.Value) (bool, error) {
	c, err := a.Compare(l, r)
	return c < 0, err
}

func (a *Arithmetic) LessEqual(l, r types.Value) (bool, error) {
	c, err := a.Compare(l, r)
	return c <= 0, err
}

func (a *Arithmetic) GreaterThan(l, r types.Value) (bool, error) {
	c, err := a.Compare(l, r)
	return c > 0, err
}

func (a *Arithmetic) GreaterEqual(l, r types.Value) (bool, error) {
	c, err := a.Compare(l, r)
	return c >= 0, err
}

// bigIntFitsInt64 is a small helper retained for symmetry with the
// narrowing logic in narrow.go.
func bigIntFitsInt64(v *big.Int) bool { return v.IsInt64() }
