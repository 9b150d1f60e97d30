package jexl

import (
	"testing"

	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/types"
)

func TestExpressionEvaluateArithmetic(t *testing.T) {
	e := New()
	x, err := e.NewExpression("1 + 2 * 3")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err := x.Evaluate(jexlctx.Empty)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.(types.IntValue) != 7 {
		t.Fatalf("got %v, want 7", v)
	}
}

func TestExpressionWithContextVariable(t *testing.T) {
	e := New()
	x, err := e.NewExpression("a + b")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{
		"a": types.IntValue(10),
		"b": types.IntValue(5),
	})
	v, err := x.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.(types.IntValue) != 15 {
		t.Fatalf("got %v, want 15", v)
	}
}

func TestScriptExecuteReturnsLastStatement(t *testing.T) {
	e := New()
	s, err := e.NewScript("a = 1; a = a + 1; a")
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	v, err := s.Execute(jexlctx.NewMapContext())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v.(types.IntValue) != 2 {
		t.Fatalf("got %v, want 2", v)
	}
}

func TestScriptEvaluateUsesFirstStatement(t *testing.T) {
	e := New()
	s, err := e.NewScript("1 + 1; 99")
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	v, err := s.Evaluate(jexlctx.Empty)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.(types.IntValue) != 2 {
		t.Fatalf("got %v, want the first statement's value 2", v)
	}
}

func TestCallableCachesResult(t *testing.T) {
	e := New()
	calls := 0
	e.RegisterFunction("tick", func(args []types.Value) (types.Value, error) {
		calls++
		return types.IntValue(calls), nil
	})
	x, err := e.NewExpression("tick()")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	c := x.Callable(jexlctx.Empty)
	v1, err := c.Invoke()
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	v2, err := c.Invoke()
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if v1 != v2 {
		t.Fatalf("expected cached result, got %v then %v", v1, v2)
	}
	if calls != 1 {
		t.Fatalf("expected tick() invoked once, got %d", calls)
	}
}

func TestRegisterFunctionFallback(t *testing.T) {
	e := New()
	e.RegisterFunction("double", func(args []types.Value) (types.Value, error) {
		n, err := e.ToLong(args[0])
		if err != nil {
			return nil, err
		}
		return types.IntValue(n * 2), nil
	})
	x, err := e.NewExpression("double(21)")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err := x.Evaluate(jexlctx.Empty)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.(types.IntValue) != 42 {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestShortCircuitAndOr(t *testing.T) {
	e := New()
	tripped := false
	e.RegisterFunction("trip", func(args []types.Value) (types.Value, error) {
		tripped = true
		return types.BoolValue(true), nil
	})

	x, err := e.NewExpression("true && false")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err := x.Evaluate(jexlctx.Empty)
	if err != nil || v.(types.BoolValue) != false {
		t.Fatalf("got %v err %v, want false", v, err)
	}

	x, err = e.NewExpression("false && trip()")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	if _, err := x.Evaluate(jexlctx.Empty); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	x, err = e.NewExpression("true || trip()")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	if _, err := x.Evaluate(jexlctx.Empty); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if tripped {
		t.Fatalf("short-circuit must not evaluate the right side")
	}
}

func TestDivisionByZeroModes(t *testing.T) {
	lenient := New()
	x, err := lenient.NewExpression("6 / 0")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err := x.Evaluate(jexlctx.Empty)
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if fv, ok := v.(types.FloatValue); !ok || fv != 0 {
		t.Fatalf("got %T %v, want FloatValue(0)", v, v)
	}

	strict := New(WithLenient(false))
	x, err = strict.NewExpression("6 / 0")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	if _, err := x.Evaluate(jexlctx.Empty); err == nil {
		t.Fatalf("strict division by zero should error")
	}
}

func TestBitOrWithNullLenient(t *testing.T) {
	e := New()
	x, err := e.NewExpression("1 | null")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err := x.Evaluate(jexlctx.Empty)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if lv, ok := v.(types.LongValue); !ok || lv != 1 {
		t.Fatalf("got %T %v, want LongValue(1)", v, v)
	}
}

type foo struct {
	array []string
}

func (f *foo) GetArray() []string { return f.array }

func TestHostObjectArrayAccessBothSpellings(t *testing.T) {
	e := New()
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{
		"foo": types.ObjectValue{Host: &foo{array: []string{"One", "Two", "Three"}}},
	})
	for _, src := range []string{"foo.array[1]", "foo.array.1"} {
		x, err := e.NewExpression(src)
		if err != nil {
			t.Fatalf("NewExpression(%q): %v", src, err)
		}
		v, err := x.Evaluate(ctx)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", src, err)
		}
		if v.String() != "Two" {
			t.Fatalf("%q: got %q, want \"Two\"", src, v.String())
		}
	}
}

func TestDottedAssignmentThroughMaps(t *testing.T) {
	e := New()
	b := types.NewMap()
	a := types.NewMap()
	a.Set("b", b)
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{"a": a})

	s, err := e.NewScript("a.b.c = 42; a.b.c")
	if err != nil {
		t.Fatalf("NewScript: %v", err)
	}
	v, err := s.Execute(ctx)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v.(types.IntValue) != 42 {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestAntStyleDottedVariable(t *testing.T) {
	e := New()
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{
		"hello.world": types.StringValue("Hello World!"),
	})
	x, err := e.NewExpression("hello.world")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err := x.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.String() != "Hello World!" {
		t.Fatalf("got %q", v.String())
	}
}

func TestSilentModeReturnsNullFromExpression(t *testing.T) {
	e := New(WithLenient(false), WithSilent(true))
	x, err := e.NewExpression("nosuch.thing.at.all + 1")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err := x.Evaluate(jexlctx.NewMapContext())
	if err != nil {
		t.Fatalf("silent mode should not propagate: %v", err)
	}
	if !types.IsNull(v) {
		t.Fatalf("got %v, want null", v)
	}
}

func TestTernaryEscapesStrictMode(t *testing.T) {
	e := New(WithLenient(false))
	x, err := e.NewExpression(`missing ?: "fallback"`)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err := x.Evaluate(jexlctx.NewMapContext())
	if err != nil {
		t.Fatalf("strict mode should not leak out of a ternary condition: %v", err)
	}
	if v.(types.StringValue) != "fallback" {
		t.Fatalf("got %v", v)
	}

	x, err = e.NewExpression(`missing ? "yes" : "no"`)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err = x.Evaluate(jexlctx.NewMapContext())
	if err != nil {
		t.Fatalf("strict mode should not leak out of a ternary condition: %v", err)
	}
	if v.(types.StringValue) != "no" {
		t.Fatalf("got %v", v)
	}
}

func TestRegistrationsSurviveSetSilent(t *testing.T) {
	e := New()
	e.RegisterFunction("answer", func(args []types.Value) (types.Value, error) {
		return types.IntValue(42), nil
	})
	e.SetSilent(true)
	x, err := e.NewExpression("answer()")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err := x.Evaluate(jexlctx.Empty)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.(types.IntValue) != 42 {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestMatchOperatorRegexAndMembership(t *testing.T) {
	e := New()
	x, err := e.NewExpression(`"abcdef" =~ "abc.*"`)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err := x.Evaluate(jexlctx.Empty)
	if err != nil || v.(types.BoolValue) != true {
		t.Fatalf("regex match: got %v err %v", v, err)
	}

	x, err = e.NewExpression(`2 =~ [1, 2, 3]`)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err = x.Evaluate(jexlctx.Empty)
	if err != nil || v.(types.BoolValue) != true {
		t.Fatalf("membership: got %v err %v", v, err)
	}

	x, err = e.NewExpression(`4 !~ [1, 2, 3]`)
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	v, err = x.Evaluate(jexlctx.Empty)
	if err != nil || v.(types.BoolValue) != true {
		t.Fatalf("negated membership: got %v err %v", v, err)
	}
}

type point struct {
	X, Y int
}

func TestGetSetProperty(t *testing.T) {
	e := New()
	p := &point{X: 1, Y: 2}
	v, err := e.GetProperty(p, "X")
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if v.(int64) != 1 {
		t.Fatalf("got %v, want 1", v)
	}
	if err := e.SetProperty(p, "X", 9); err != nil {
		t.Fatalf("SetProperty: %v", err)
	}
	if p.X != 9 {
		t.Fatalf("SetProperty did not mutate: %+v", p)
	}
}

func TestVariablesWalksDottedPaths(t *testing.T) {
	e := New()
	x, err := e.NewExpression("foo.bar + foo.baz[0] + other")
	if err != nil {
		t.Fatalf("NewExpression: %v", err)
	}
	got := x.Variables()
	want := map[string]bool{"foo.bar": true, "foo.baz.0": true, "other": true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want keys %v", got, want)
	}
	for _, g := range got {
		if !want[g] {
			t.Fatalf("unexpected variable path %q in %v", g, got)
		}
	}
}
