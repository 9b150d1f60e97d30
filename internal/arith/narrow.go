package arith

import (
	"regexp"

	"github.com/cwbudde/go-jexl/internal/jexlerr"
	"github.com/cwbudde/go-jexl/internal/types"
)

// Match implements the regex half of the `=~` operator: the right side is
// compiled (or reused, if already a *regexp.Regexp wrapped in an
// ObjectValue) and matched against the left side's string form. The
// container-membership half of `=~` is the interpreter's job (it needs to
// iterate a set/map/sequence), see internal/interp.
func (a *Arithmetic) Match(l, r types.Value) (bool, error) {
	pattern, err := a.patternOf(r)
	if err != nil {
		return false, err
	}
	return pattern.MatchString(l.String()), nil
}

func (a *Arithmetic) patternOf(r types.Value) (*regexp.Regexp, error) {
	if obj, ok := r.(types.ObjectValue); ok {
		if re, ok := obj.Host.(*regexp.Regexp); ok {
			return re, nil
		}
	}
	re, err := regexp.Compile(r.String())
	if err != nil {
		return nil, jexlerr.New(jexlerr.NumericOperand, nil, "invalid regex %q: %v", r.String(), err)
	}
	return re, nil
}

// narrowestInt returns the smallest Value (among IntValue/LongValue) that
// can represent n without loss, following the byte→short→int→long
// narrowing rule. This engine's Value model doesn't distinguish byte/short
// from int at the type level (see types.IntValue's doc comment), so
// narrowing here chooses between IntValue and LongValue.
func narrowestInt(n int64) types.Value {
	if fitsInt(n) {
		return types.IntValue(n)
	}
	return types.LongValue(n)
}

// NarrowArguments narrows each numeric argument to its smallest equivalent
// representation, reporting whether anything changed — used by
// introspection for overload-resolution retries.
func (a *Arithmetic) NarrowArguments(args []types.Value) ([]types.Value, bool) {
	changed := false
	out := make([]types.Value, len(args))
	for i, arg := range args {
		narrowed, did := a.narrowOne(arg)
		out[i] = narrowed
		changed = changed || did
	}
	return out, changed
}

func (a *Arithmetic) narrowOne(v types.Value) (types.Value, bool) {
	switch t := v.(type) {
	case types.LongValue:
		if fitsInt(int64(t)) {
			return types.IntValue(t), true
		}
		return v, false
	case types.BigIntValue:
		if t.V.IsInt64() {
			return narrowestInt(t.V.Int64()), true
		}
		return v, false
	case types.BigDecimalValue:
		f, _ := t.V.Float64()
		return types.FloatValue(f), true
	default:
		return v, false
	}
}

// NarrowArray implements array-literal narrowing: find the most specific
// common class of elems; if every element is numeric, narrow to that
// common numeric class, otherwise leave the array's ElemType blank
// (mixed).
func (a *Arithmetic) NarrowArray(elems []types.Value) types.ArrayValue {
	if len(elems) == 0 {
		return types.ArrayValue{}
	}
	common := elems[0].Class()
	allNumeric := true
	for _, e := range elems {
		if e.Class() != common {
			common = ""
		}
		if !types.IsNumeric(e) {
			allNumeric = false
		}
	}
	if common == "" && allNumeric {
		common = a.commonNumericClass(elems)
	}
	return types.ArrayValue{Elements: elems, ElemType: common}
}

func (a *Arithmetic) commonNumericClass(elems []types.Value) string {
	widest := 0 // 0=int/long,1=bigint,2=double,3=bigdecimal
	for _, e := range elems {
		switch e.(type) {
		case types.BigDecimalValue:
			widest = max(widest, 3)
		case types.FloatValue:
			widest = max(widest, 2)
		case types.BigIntValue:
			widest = max(widest, 1)
		}
	}
	switch widest {
	case 3:
		return "bigdecimal"
	case 2:
		return "double"
	case 1:
		return "biginteger"
	default:
		return "long"
	}
}
