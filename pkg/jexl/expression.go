package jexl

import (
	"github.com/cwbudde/go-jexl/internal/ast"
	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/scope"
	"github.com/cwbudde/go-jexl/internal/types"
)

// Expression binds a single parsed expression (statement/reference
// forms only, not a full multi-statement script) to the Engine and
// source it came from.
type Expression struct {
	engine *Engine
	src    string
	expr   ast.Expression
	scope  *scope.Scope
}

// NewExpression parses src as a single expression with the given lexical
// parameter names. Unlike NewScript, it parses on every call and does not
// use the Engine's source→AST cache.
func (e *Engine) NewExpression(src string, params ...string) (*Expression, error) {
	expr, sc, err := e.parseExpr(src, params)
	if err != nil {
		return nil, err
	}
	return &Expression{engine: e, src: src, expr: expr, scope: sc}, nil
}

// Source returns the original source text.
func (x *Expression) Source() string { return x.src }

// Parameters returns the declared positional parameter names.
func (x *Expression) Parameters() []string {
	names := x.scope.Names()
	return names[:x.scope.ParamCount()]
}

// LocalVariables returns the declared non-parameter local names.
func (x *Expression) LocalVariables() []string {
	names := x.scope.Names()
	return names[x.scope.ParamCount():]
}

// Variables returns the distinct dotted variable paths this expression
// references.
func (x *Expression) Variables() []string { return variablesOf(x.expr) }

// Evaluate evaluates the expression against ctx with no positional
// arguments bound.
func (x *Expression) Evaluate(ctx jexlctx.Context) (types.Value, error) {
	return x.EvaluateArgs(ctx)
}

// EvaluateArgs evaluates the expression against ctx, binding args to the
// expression's declared parameters.
func (x *Expression) EvaluateArgs(ctx jexlctx.Context, args ...types.Value) (types.Value, error) {
	frame := scope.NewFrame(x.scope, args...)
	v, err := x.engine.interp.Evaluate(x.expr, frame, ctx)
	if err != nil {
		return nil, x.engine.decorate(err, x.expr)
	}
	return v, nil
}

// Callable returns a deferred, single-shot binding of this expression to
// ctx and args.
func (x *Expression) Callable(ctx jexlctx.Context, args ...types.Value) *Callable {
	return &Callable{invoke: func() (types.Value, error) { return x.EvaluateArgs(ctx, args...) }}
}
