package parser

import (
	"testing"

	"github.com/cwbudde/go-jexl/internal/arith"
	"github.com/cwbudde/go-jexl/internal/interp"
	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/types"
)

func run(t *testing.T, src string, ctxVars map[string]types.Value, params []string, args ...types.Value) types.Value {
	t.Helper()
	script, sc, err := Parse(src, params...)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	i := interp.New(interp.Options{Arith: arith.New(arith.Lenient, arith.DefaultMathContext)})
	var ctx jexlctx.Context = jexlctx.NewMapContext()
	if ctxVars != nil {
		ctx = jexlctx.NewMapContextFrom(ctxVars)
	}
	v, err := i.Execute(script, sc, ctx, args...)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return v
}

func TestParseArithmeticPrecedence(t *testing.T) {
	v := run(t, "1 + 2 * 3", nil, nil)
	if v.(types.IntValue) != 7 {
		t.Fatalf("got %v", v)
	}
}

func TestParseMulWithFloatLikeString(t *testing.T) {
	v := run(t, `3 * '3.0'`, nil, nil)
	if fv, ok := v.(types.FloatValue); !ok || fv != 9.0 {
		t.Fatalf("got %T %v, want FloatValue(9)", v, v)
	}
}

func TestParseWhileLoop(t *testing.T) {
	v := run(t, "while (x < 10) x = x + 1;", map[string]types.Value{"x": types.IntValue(1)}, nil)
	if v.(types.IntValue) != 10 {
		t.Fatalf("got %v", v)
	}
}

func TestParseTernaryAndElvis(t *testing.T) {
	v := run(t, `true ? "yes" : "no"`, nil, nil)
	if v.(types.StringValue) != "yes" {
		t.Fatalf("got %v", v)
	}
	v = run(t, `nothing ?: "fallback"`, nil, nil)
	if v.(types.StringValue) != "fallback" {
		t.Fatalf("got %v", v)
	}
}

func TestParseArrayLiteralAndIndex(t *testing.T) {
	v := run(t, `[1, 2, 3][1]`, nil, nil)
	if v.(types.IntValue) != 2 {
		t.Fatalf("got %v", v)
	}
}

func TestParseSizeAndEmpty(t *testing.T) {
	v := run(t, `size([ 'foo' ])`, nil, nil)
	if v.(types.IntValue) != 1 {
		t.Fatalf("got %v", v)
	}
	v = run(t, `empty([ 'foo' ])`, nil, nil)
	if v.(types.BoolValue) != false {
		t.Fatalf("got %v", v)
	}
}

func TestParseFunctionParameters(t *testing.T) {
	script, sc, err := Parse("a + b", "a", "b")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if sc.ParamCount() != 2 {
		t.Fatalf("expected 2 params, got %d", sc.ParamCount())
	}
	i := interp.New(interp.Options{Arith: arith.New(arith.Lenient, arith.DefaultMathContext)})
	v, err := i.Execute(script, sc, jexlctx.NewMapContext(), types.IntValue(4), types.IntValue(5))
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.(types.IntValue) != 9 {
		t.Fatalf("got %v", v)
	}
}

func TestParseExpressionFormRejectsControlFlow(t *testing.T) {
	if _, _, err := ParseExpression("while (true) 1;"); err == nil {
		t.Fatalf("expected a control-flow statement to be rejected by ParseExpression")
	}
}

func TestParseVarDeclaration(t *testing.T) {
	script, sc, err := Parse("var total = 0; total = total + 5; total")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	i := interp.New(interp.Options{Arith: arith.New(arith.Lenient, arith.DefaultMathContext)})
	v, err := i.Execute(script, sc, jexlctx.NewMapContext())
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if v.(types.IntValue) != 5 {
		t.Fatalf("got %v", v)
	}
}

func TestParseDotPropertyOnMap(t *testing.T) {
	m := types.NewMap()
	m.Set("name", types.StringValue("Jones"))
	v := run(t, "m.name", map[string]types.Value{"m": m}, nil)
	if v.(types.StringValue) != "Jones" {
		t.Fatalf("got %v", v)
	}
}
