package arith

import (
	"testing"

	"github.com/cwbudde/go-jexl/internal/types"
)

func lenientArith() *Arithmetic { return New(Lenient, DefaultMathContext) }
func strictArith() *Arithmetic  { return New(Strict, DefaultMathContext) }

func TestAddIntegers(t *testing.T) {
	a := lenientArith()
	v, err := a.Add(types.IntValue(3), types.IntValue(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != types.IntValue(6) {
		t.Fatalf("got %v, want IntValue(6)", v)
	}
}

func TestMulWithFloatLikeString(t *testing.T) {
	a := lenientArith()
	v, err := a.Mul(types.IntValue(3), types.StringValue("3.0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fv, ok := v.(types.FloatValue)
	if !ok || fv != 9.0 {
		t.Fatalf("got %v, want FloatValue(9.0)", v)
	}
}

func TestDivisionByZero(t *testing.T) {
	lv, err := lenientArith().Div(types.IntValue(6), types.IntValue(0))
	if err != nil {
		t.Fatalf("lenient division by zero should not error: %v", err)
	}
	if fv, ok := lv.(types.FloatValue); !ok || fv != 0.0 {
		t.Fatalf("got %v, want FloatValue(0.0)", lv)
	}

	_, err = strictArith().Div(types.IntValue(6), types.IntValue(0))
	if err == nil {
		t.Fatalf("strict division by zero should error")
	}
}

func TestLogicalAndBoolean(t *testing.T) {
	a := lenientArith()
	b, err := a.ToBoolean(types.BoolValue(true))
	if err != nil || !b {
		t.Fatalf("expected true, got %v err %v", b, err)
	}
}

func TestBitOrWithNull(t *testing.T) {
	a := lenientArith()
	v, err := a.BitOr(types.IntValue(1), types.Null)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lv, ok := v.(types.LongValue); !ok || lv != 1 {
		t.Fatalf("got %v, want LongValue(1)", v)
	}
}

func TestEqualityNullRules(t *testing.T) {
	a := lenientArith()
	eq, _ := a.Equals(types.Null, types.Null)
	if !eq {
		t.Fatalf("null == null should be true")
	}
	eq, _ = a.Equals(types.Null, types.IntValue(0))
	if eq {
		t.Fatalf("null == 0 should be false")
	}
}

func TestDivideMultiplyRoundTrip(t *testing.T) {
	a := lenientArith()
	div, err := a.Div(types.FloatValue(7), types.FloatValue(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := a.Mul(div, types.FloatValue(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bf := float64(back.(types.FloatValue))
	if bf < 6.999999 || bf > 7.000001 {
		t.Fatalf("round-trip drifted: got %v", bf)
	}
}

func TestShortCircuitToStringConcat(t *testing.T) {
	a := lenientArith()
	v, err := a.Add(types.StringValue("x="), types.IntValue(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "x=5" {
		t.Fatalf("got %q, want %q", v.String(), "x=5")
	}
}

func TestInvalidComparisonRaises(t *testing.T) {
	a := lenientArith()
	_, err := a.Compare(types.StringValue("a"), types.NewMap())
	if err == nil {
		t.Fatalf("expected InvalidComparison error")
	}
}

func TestNarrowArrayCommonNumeric(t *testing.T) {
	a := lenientArith()
	arr := a.NarrowArray([]types.Value{types.IntValue(1), types.FloatValue(2.5)})
	if arr.ElemType != "double" {
		t.Fatalf("got %q, want double", arr.ElemType)
	}
}

func TestNarrowArguments(t *testing.T) {
	a := lenientArith()
	out, changed := a.NarrowArguments([]types.Value{types.LongValue(5)})
	if !changed {
		t.Fatalf("expected narrowing to report a change")
	}
	if _, ok := out[0].(types.IntValue); !ok {
		t.Fatalf("got %T, want IntValue", out[0])
	}
}

func TestMatchRegex(t *testing.T) {
	a := lenientArith()
	ok, err := a.Match(types.StringValue("hello world"), types.StringValue("^hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}
}
