package interp

import (
	"testing"

	"github.com/cwbudde/go-jexl/internal/arith"
	"github.com/cwbudde/go-jexl/internal/ast"
	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/scope"
	"github.com/cwbudde/go-jexl/internal/types"
)

func newInterp() *Interpreter {
	return New(Options{Arith: arith.New(arith.Lenient, arith.DefaultMathContext)})
}

func TestEvalArithmeticExpression(t *testing.T) {
	// 1 + 2 * 3
	expr := &ast.BinaryExpr{
		Op:   "+",
		Left: &ast.IntLit{Value: 1},
		Right: &ast.BinaryExpr{
			Op:    "*",
			Left:  &ast.IntLit{Value: 2},
			Right: &ast.IntLit{Value: 3},
		},
	}
	i := newInterp()
	sc := scope.New(nil)
	frame := scope.NewFrame(sc)
	v, err := i.Eval(expr, frame, jexlctx.NewMapContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(types.IntValue) != 7 {
		t.Fatalf("got %v, want 7", v)
	}
}

func TestWhileLoopAccumulates(t *testing.T) {
	// while (x<10) x=x+1
	sc := scope.New(nil)
	xReg := sc.DeclareVariable("x")
	frame := scope.NewFrame(sc)
	frame.Set(xReg, types.IntValue(0))

	loop := &ast.While{
		Cond: &ast.BinaryExpr{
			Op:    "<",
			Left:  &ast.Identifier{Name: "x", Register: xReg},
			Right: &ast.IntLit{Value: 10},
		},
		Body: &ast.ExprStatement{
			Expr: &ast.Assign{
				Target: &ast.Identifier{Name: "x", Register: xReg},
				Value: &ast.BinaryExpr{
					Op:    "+",
					Left:  &ast.Identifier{Name: "x", Register: xReg},
					Right: &ast.IntLit{Value: 1},
				},
			},
		},
	}
	i := newInterp()
	_, err := i.execStatement(loop, frame, jexlctx.NewMapContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Get(xReg).(types.IntValue) != 10 {
		t.Fatalf("got %v, want 10", frame.Get(xReg))
	}
}

func TestForeachOverArraySumsElements(t *testing.T) {
	sc := scope.New(nil)
	itemReg := sc.DeclareVariable("item")
	sumReg := sc.DeclareVariable("sum")
	frame := scope.NewFrame(sc)
	frame.Set(sumReg, types.IntValue(0))

	loop := &ast.Foreach{
		Var: &ast.Var{Name: "item", Register: itemReg},
		Iterable: &ast.ArrayLit{Elements: []ast.Expression{
			&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}, &ast.IntLit{Value: 3},
		}},
		Body: &ast.ExprStatement{
			Expr: &ast.Assign{
				Target: &ast.Identifier{Name: "sum", Register: sumReg},
				Value: &ast.BinaryExpr{
					Op:    "+",
					Left:  &ast.Identifier{Name: "sum", Register: sumReg},
					Right: &ast.Identifier{Name: "item", Register: itemReg},
				},
			},
		},
	}

	i := newInterp()
	_, err := i.execStatement(loop, frame, jexlctx.NewMapContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Get(sumReg).(types.IntValue) != 6 {
		t.Fatalf("got %v, want 6", frame.Get(sumReg))
	}
}

func TestForeachOverMapYieldsEntries(t *testing.T) {
	m := types.NewMap()
	m.Set("a", types.IntValue(1))
	m.Set("b", types.IntValue(2))

	sc := scope.New(nil)
	entryReg := sc.DeclareVariable("e")
	frame := scope.NewFrame(sc)

	var seen []types.Value
	loop := &ast.Foreach{
		Var:      &ast.Var{Name: "e", Register: entryReg},
		Iterable: &ast.Identifier{Name: "m", Register: -1},
		Body:     &ast.ExprStatement{Expr: &ast.Identifier{Name: "e", Register: entryReg}},
	}

	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{"m": m})
	i := newInterp()
	_, err := i.execStatement(loop, frame, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := frame.Get(entryReg)
	entry, ok := last.(types.MapEntry)
	if !ok {
		t.Fatalf("got %T, want types.MapEntry", last)
	}
	seen = append(seen, entry)
	if len(seen) != 1 {
		t.Fatalf("expected a MapEntry to have been bound")
	}
}

func TestArrayAccessDotAndBracketEquivalence(t *testing.T) {
	arr := types.ArrayValue{Elements: []types.Value{types.IntValue(10), types.IntValue(20)}}
	i := newInterp()
	sc := scope.New(nil)
	frame := scope.NewFrame(sc)

	bracket := &ast.ArrayAccess{
		Target:  &ast.Identifier{Name: "arr", Register: -1},
		Indices: []ast.Expression{&ast.IntLit{Value: 1}},
	}
	arrCtx := jexlctx.NewMapContextFrom(map[string]types.Value{"arr": arr})
	v1, err := i.Eval(bracket, frame, arrCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dotted := &ast.Reference{Parts: []ast.Expression{
		&ast.Identifier{Name: "arr", Register: -1},
		&ast.Identifier{Name: "1"},
	}}
	v2, err := i.Eval(dotted, frame, arrCtx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v1.(types.IntValue) != v2.(types.IntValue) {
		t.Fatalf("foo.array[1] and foo.array.1 should agree: %v vs %v", v1, v2)
	}
}

func TestTernaryBothForms(t *testing.T) {
	i := newInterp()
	sc := scope.New(nil)
	frame := scope.NewFrame(sc)
	ctx := jexlctx.NewMapContext()

	full := &ast.Ternary{
		Cond: &ast.BoolLit{Value: true},
		When: &ast.StringLit{Value: "yes"},
		Else: &ast.StringLit{Value: "no"},
	}
	v, err := i.Eval(full, frame, ctx)
	if err != nil || v.(types.StringValue) != "yes" {
		t.Fatalf("got %v err %v", v, err)
	}

	elvis := &ast.Ternary{
		Cond: &ast.IntLit{Value: 0},
		Else: &ast.StringLit{Value: "default"},
	}
	v, err = i.Eval(elvis, frame, ctx)
	if err != nil || v.(types.StringValue) != "default" {
		t.Fatalf("got %v err %v", v, err)
	}
}

func TestSizeAndEmptyFunctions(t *testing.T) {
	i := newInterp()
	sc := scope.New(nil)
	frame := scope.NewFrame(sc)
	ctx := jexlctx.NewMapContext()

	arr := &ast.ArrayLit{Elements: []ast.Expression{
		&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2},
	}}
	size, err := i.Eval(&ast.SizeFunction{Arg: arr}, frame, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size.(types.IntValue) != 2 {
		t.Fatalf("got %v, want 2", size)
	}

	empty, err := i.Eval(&ast.EmptyFunction{Arg: &ast.ArrayLit{}}, frame, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.(types.BoolValue) != true {
		t.Fatalf("got %v, want true", empty)
	}
}

func TestReturnUnwindsBlock(t *testing.T) {
	i := newInterp()
	sc := scope.New(nil)
	script := &ast.Script{Statements: []ast.Statement{
		&ast.Return{Expr: &ast.IntLit{Value: 42}},
		&ast.ExprStatement{Expr: &ast.IntLit{Value: 99}},
	}}
	v, err := i.Execute(script, sc, jexlctx.NewMapContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.(types.IntValue) != 42 {
		t.Fatalf("got %v, want 42 (return should short-circuit)", v)
	}
}

func TestCancelStopsWhileLoop(t *testing.T) {
	i := newInterp()
	sc := scope.New(nil)
	loop := &ast.While{Cond: &ast.BoolLit{Value: true}, Body: &ast.ExprStatement{Expr: &ast.IntLit{Value: 1}}}
	i.Cancel()
	_, err := i.execStatement(loop, scope.NewFrame(sc), jexlctx.NewMapContext())
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestSilentModeSwallowsError(t *testing.T) {
	i := New(Options{Arith: arith.New(arith.Strict, arith.DefaultMathContext), Silent: true})
	sc := scope.New(nil)
	script := &ast.Script{Statements: []ast.Statement{
		&ast.ExprStatement{Expr: &ast.Identifier{Name: "undefined", Register: -1}},
	}}
	v, err := i.Execute(script, sc, jexlctx.NewMapContext())
	if err != nil {
		t.Fatalf("silent mode should not propagate: %v", err)
	}
	if v != types.Null {
		t.Fatalf("got %v, want null", v)
	}
}
