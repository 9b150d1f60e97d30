package jexl

import (
	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/parser"
	"github.com/cwbudde/go-jexl/internal/scope"
	"github.com/cwbudde/go-jexl/internal/types"
	"github.com/cwbudde/go-jexl/internal/unified"
)

// UnifiedExpression is a parsed unified expression: literal text mixed
// with immediate `${…}` and deferred `#{…}` JEXL sub-expressions, bound
// to the Engine that parses and evaluates its fragments.
type UnifiedExpression struct {
	engine *Engine
	expr   *unified.Expr
	src    string
}

// ParseUnified parses text as a unified expression.
func (e *Engine) ParseUnified(text string) (*UnifiedExpression, error) {
	expr, err := unified.Parse(text)
	if err != nil {
		return nil, err
	}
	return &UnifiedExpression{engine: e, expr: expr, src: text}, nil
}

// Source returns the original source text.
func (u *UnifiedExpression) Source() string { return u.src }

// AsString renders the expression back to its unified spelling; for a
// prepared expression this reflects the resolved immediate fragments.
func (u *UnifiedExpression) AsString() string { return u.expr.String() }

// IsImmediate reports whether the whole expression resolves in the first
// (prepare) phase.
func (u *UnifiedExpression) IsImmediate() bool { return u.expr.IsImmediate() }

// IsDeferred reports whether the expression retains work past the
// prepare phase.
func (u *UnifiedExpression) IsDeferred() bool { return u.expr.IsDeferred() }

// Variables returns the distinct dotted variable paths referenced by any
// sub-expression, in first-seen order.
func (u *UnifiedExpression) Variables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, src := range u.expr.SubSources() {
		expr, _, err := u.engine.parseExpr(src, nil)
		if err != nil {
			continue
		}
		for _, v := range variablesOf(expr) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Prepare runs the first evaluation phase against ctx: immediate
// sub-expressions become constants, deferred ones are retained, and a
// nested expression becomes an immediate of its computed sub-source. The
// receiver is unchanged; an immediate-only expression prepares to an
// equivalent expression and is idempotent under further Prepare calls.
func (u *UnifiedExpression) Prepare(ctx jexlctx.Context) (*UnifiedExpression, error) {
	prepared, err := u.expr.Prepare(u.evalFunc(ctx))
	if err != nil {
		return nil, err
	}
	if prepared == u.expr {
		return u, nil
	}
	return &UnifiedExpression{engine: u.engine, expr: prepared, src: u.src}, nil
}

// Evaluate runs the second evaluation phase against ctx; a composite
// concatenates the string forms of its fragments' values.
func (u *UnifiedExpression) Evaluate(ctx jexlctx.Context) (types.Value, error) {
	return u.expr.Evaluate(u.evalFunc(ctx))
}

// evalFunc parses a fragment as a single expression and evaluates it
// against ctx with an empty frame: unified sub-expressions are
// independent fragments resolved purely against the Context.
func (u *UnifiedExpression) evalFunc(ctx jexlctx.Context) unified.EvalFunc {
	return func(source string) (types.Value, error) {
		expr, sc, err := parser.ParseExpression(source)
		if err != nil {
			return nil, err
		}
		frame := scope.NewFrame(sc)
		return u.engine.interp.Eval(expr, frame, ctx)
	}
}
