package arith

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cwbudde/go-jexl/internal/jexlerr"
	"github.com/cwbudde/go-jexl/internal/types"
)

// looksLikeFloat reports whether s should be parsed as a floating literal:
// it contains '.', 'e', or 'E'.
func looksLikeFloat(s string) bool {
	return strings.ContainsAny(s, ".eE")
}

func (a *Arithmetic) operandError(kind jexlerr.Kind, format string, args ...any) error {
	return jexlerr.New(kind, nil, format, args...)
}

// ToBoolean coerces v to bool. Strict mode raises NumericOperand when v is
// not a recognized boolean-ish value (a string must be exactly "true" or
// "false", case-insensitively); lenient mode defaults to false.
func (a *Arithmetic) ToBoolean(v types.Value) (bool, error) {
	switch t := v.(type) {
	case nil:
		return false, a.nullOperand()
	case types.NullValue:
		return false, a.nullOperand()
	case types.BoolValue:
		return bool(t), nil
	case types.IntValue:
		return t != 0, nil
	case types.LongValue:
		return t != 0, nil
	case types.FloatValue:
		return t != 0, nil
	case types.StringValue:
		switch strings.ToLower(string(t)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		if a.lenient() {
			return false, nil
		}
		return false, a.operandError(jexlerr.NumericOperand, "cannot coerce %q to boolean", string(t))
	default:
		if a.lenient() {
			return false, nil
		}
		return false, a.operandError(jexlerr.NumericOperand, "cannot coerce %s to boolean", v.Class())
	}
}

func (a *Arithmetic) nullOperand() error {
	if a.lenient() {
		return nil
	}
	return a.operandError(jexlerr.NullOperand, "null operand")
}

// ToLong coerces v to an int64 ("long"). Lenient mode returns 0 for
// operands it cannot coerce; strict mode raises NumericOperand.
func (a *Arithmetic) ToLong(v types.Value) (int64, error) {
	switch t := v.(type) {
	case nil, types.NullValue:
		if err := a.nullOperand(); err != nil {
			return 0, err
		}
		return 0, nil
	case types.BoolValue:
		if t {
			return 1, nil
		}
		return 0, nil
	case types.IntValue:
		return int64(t), nil
	case types.LongValue:
		return int64(t), nil
	case types.CharValue:
		return int64(t), nil
	case types.FloatValue:
		return int64(t), nil
	case types.BigIntValue:
		if t.V.IsInt64() {
			return t.V.Int64(), nil
		}
		return t.V.Int64(), nil
	case types.BigDecimalValue:
		i, _ := t.V.Int64()
		return i, nil
	case types.StringValue:
		n, err := strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
		if err != nil {
			if a.lenient() {
				return 0, nil
			}
			return 0, a.operandError(jexlerr.NumericOperand, "cannot coerce %q to long", string(t))
		}
		return n, nil
	default:
		if a.lenient() {
			return 0, nil
		}
		return 0, a.operandError(jexlerr.NumericOperand, "cannot coerce %s to long", v.Class())
	}
}

// ToInteger coerces v to an int by way of ToLong.
func (a *Arithmetic) ToInteger(v types.Value) (int, error) {
	n, err := a.ToLong(v)
	return int(n), err
}

// ToDouble coerces v to float64.
func (a *Arithmetic) ToDouble(v types.Value) (float64, error) {
	switch t := v.(type) {
	case nil, types.NullValue:
		if err := a.nullOperand(); err != nil {
			return 0, err
		}
		return 0, nil
	case types.BoolValue:
		if t {
			return 1, nil
		}
		return 0, nil
	case types.IntValue:
		return float64(t), nil
	case types.LongValue:
		return float64(t), nil
	case types.CharValue:
		return float64(t), nil
	case types.FloatValue:
		return float64(t), nil
	case types.BigIntValue:
		f := new(big.Float).SetInt(t.V)
		out, _ := f.Float64()
		return out, nil
	case types.BigDecimalValue:
		out, _ := t.V.Float64()
		return out, nil
	case types.StringValue:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
		if err != nil {
			if a.lenient() {
				return 0, nil
			}
			return 0, a.operandError(jexlerr.NumericOperand, "cannot coerce %q to double", string(t))
		}
		return f, nil
	default:
		if a.lenient() {
			return 0, nil
		}
		return 0, a.operandError(jexlerr.NumericOperand, "cannot coerce %s to double", v.Class())
	}
}

// ToBigInteger coerces v to *big.Int.
func (a *Arithmetic) ToBigInteger(v types.Value) (*big.Int, error) {
	switch t := v.(type) {
	case nil, types.NullValue:
		if err := a.nullOperand(); err != nil {
			return nil, err
		}
		return big.NewInt(0), nil
	case types.BigIntValue:
		return new(big.Int).Set(t.V), nil
	case types.BigDecimalValue:
		i, _ := t.V.Int(nil)
		return i, nil
	case types.StringValue:
		i, ok := new(big.Int).SetString(strings.TrimSpace(string(t)), 10)
		if !ok {
			if a.lenient() {
				return big.NewInt(0), nil
			}
			return nil, a.operandError(jexlerr.NumericOperand, "cannot coerce %q to biginteger", string(t))
		}
		return i, nil
	default:
		n, err := a.ToLong(v)
		if err != nil {
			return nil, err
		}
		return big.NewInt(n), nil
	}
}

// ToBigDecimal coerces v to a *big.Float under a's MathContext.
func (a *Arithmetic) ToBigDecimal(v types.Value) (*big.Float, error) {
	switch t := v.(type) {
	case nil, types.NullValue:
		if err := a.nullOperand(); err != nil {
			return nil, err
		}
		return new(big.Float).SetPrec(a.MathCtx.Precision), nil
	case types.BigDecimalValue:
		return new(big.Float).Copy(t.V), nil
	case types.BigIntValue:
		return new(big.Float).SetPrec(a.MathCtx.Precision).SetInt(t.V), nil
	case types.StringValue:
		f, _, err := big.ParseFloat(strings.TrimSpace(string(t)), 10, a.MathCtx.Precision, a.MathCtx.Rounding)
		if err != nil {
			if a.lenient() {
				return new(big.Float).SetPrec(a.MathCtx.Precision), nil
			}
			return nil, a.operandError(jexlerr.NumericOperand, "cannot coerce %q to bigdecimal", string(t))
		}
		return f, nil
	default:
		d, err := a.ToDouble(v)
		if err != nil {
			return nil, err
		}
		return new(big.Float).SetPrec(a.MathCtx.Precision).SetFloat64(d), nil
	}
}

// ToStringVal coerces v to its StringValue form. Null becomes "" in
// lenient mode; strict mode still renders "null" (string conversion never
// fails, it only differs in how null is spelled, matching a typical
// dynamic-language convention).
func (a *Arithmetic) ToStringVal(v types.Value) types.StringValue {
	if types.IsNull(v) {
		if a.lenient() {
			return ""
		}
		return "null"
	}
	return types.StringValue(v.String())
}

// fitsInt reports whether n fits in a 32-bit signed int.
func fitsInt(n int64) bool { return n >= math.MinInt32 && n <= math.MaxInt32 }
