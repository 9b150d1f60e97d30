package jexl

import (
	"github.com/cwbudde/go-jexl/internal/ast"
	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/scope"
	"github.com/cwbudde/go-jexl/internal/types"
)

// Script binds a parsed multi-statement script to the Engine and source
// it came from.
type Script struct {
	engine *Engine
	src    string
	script *ast.Script
	scope  *scope.Scope
}

// NewScript parses src as a full script with the given lexical parameter
// names, compiling through the Engine's cache.
func (e *Engine) NewScript(src string, params ...string) (*Script, error) {
	script, sc, err := e.parse(src, params)
	if err != nil {
		return nil, err
	}
	return &Script{engine: e, src: src, script: script, scope: sc}, nil
}

// Source returns the original source text.
func (s *Script) Source() string { return s.src }

// Parameters returns the declared positional parameter names.
func (s *Script) Parameters() []string {
	names := s.scope.Names()
	return names[:s.scope.ParamCount()]
}

// LocalVariables returns the declared non-parameter local names.
func (s *Script) LocalVariables() []string {
	names := s.scope.Names()
	return names[s.scope.ParamCount():]
}

// Variables returns the distinct dotted variable paths this script
// references.
func (s *Script) Variables() []string { return variablesOf(s.script) }

// Execute runs every top-level statement against ctx, binding args to the
// script's declared parameters, and returns the value of the last
// statement evaluated (or of an explicit `return`).
func (s *Script) Execute(ctx jexlctx.Context, args ...types.Value) (types.Value, error) {
	v, err := s.engine.interp.Execute(s.script, s.scope, ctx, args...)
	if err != nil {
		return nil, s.engine.decorate(err, s.script)
	}
	return v, nil
}

// Evaluate returns the value of the script's first top-level statement
// only, the single-expression evaluation semantics used where a Script is
// substituted for an Expression.
func (s *Script) Evaluate(ctx jexlctx.Context) (types.Value, error) {
	if len(s.script.Statements) == 0 {
		return types.Null, nil
	}
	first := &ast.Script{Base: s.script.Base, Statements: s.script.Statements[:1]}
	return s.engine.interp.Execute(first, s.scope, ctx)
}

// Callable returns a deferred, single-shot binding of this script to ctx
// and args.
func (s *Script) Callable(ctx jexlctx.Context, args ...types.Value) *Callable {
	return &Callable{invoke: func() (types.Value, error) { return s.Execute(ctx, args...) }}
}
