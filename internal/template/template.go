// Package template implements the line-oriented template layer: a source
// in which each line beginning (after leading whitespace) with a
// directive prefix (default "$$") is compiled as script code, and every
// other line is verbatim text that may itself embed unified expressions
// (internal/unified). Compilation synthesizes a single script out of the
// many template lines, then runs it through internal/interp the same
// way any other script is evaluated.
package template

import (
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/go-jexl/internal/ast"
	"github.com/cwbudde/go-jexl/internal/interp"
	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/parser"
	"github.com/cwbudde/go-jexl/internal/scope"
	"github.com/cwbudde/go-jexl/internal/types"
	"github.com/cwbudde/go-jexl/internal/unified"
)

// DefaultPrefix is the line-directive prefix createTemplate(source,
// parms...) uses when none is given.
const DefaultPrefix = "$$"

// Registry resolves a named template for the `include(name, args...)`
// builtin.
type Registry interface {
	Lookup(name string) (*Template, bool)
}

// Template is a compiled template: a synthesized script where verbatim
// text lines became `jexl:print(i)` calls indexing the unified
// expressions extracted from the source, and directive-prefixed lines
// became script statements.
type Template struct {
	interp   *interp.Interpreter
	registry Registry
	prefix   string
	source   string
	script   *ast.Script
	scope    *scope.Scope
	exprs    []*unified.Expr
}

// New compiles source with the default "$$" prefix.
func New(i *interp.Interpreter, registry Registry, source string, params ...string) (*Template, error) {
	return NewWithPrefix(i, registry, DefaultPrefix, source, params...)
}

// NewWithPrefix compiles source using prefix as the line-directive marker.
func NewWithPrefix(i *interp.Interpreter, registry Registry, prefix, source string, params ...string) (*Template, error) {
	code, exprs, err := compile(prefix, source)
	if err != nil {
		return nil, err
	}
	script, sc, err := parser.Parse(code, params...)
	if err != nil {
		return nil, err
	}
	return &Template{
		interp:   i,
		registry: registry,
		prefix:   prefix,
		source:   source,
		script:   script,
		scope:    sc,
		exprs:    exprs,
	}, nil
}

// Source returns the original, uncompiled template text.
func (t *Template) Source() string { return t.source }

// AsString returns the original template text.
func (t *Template) AsString() string { return t.source }

// Prepare runs the prepare phase of two-phase unified evaluation over
// every embedded unified expression against ctx, returning a new
// Template whose immediate fragments are resolved to constants; the
// receiver is left unmodified.
func (t *Template) Prepare(ctx jexlctx.Context) (*Template, error) {
	eval := t.evalFunc(ctx)
	prepared := make([]*unified.Expr, len(t.exprs))
	for i, e := range t.exprs {
		p, err := e.Prepare(eval)
		if err != nil {
			return nil, fmt.Errorf("template: prepare fragment %d: %w", i, err)
		}
		prepared[i] = p
	}
	clone := *t
	clone.exprs = prepared
	return &clone, nil
}

// Evaluate runs the compiled script against ctx, binding args to the
// template's declared parameters, and writes every printed fragment to w.
func (t *Template) Evaluate(ctx jexlctx.Context, w io.Writer, args ...types.Value) error {
	ns := &jexlNamespace{t: t, w: w}
	wrapped := &wrappingContext{inner: ctx, w: w, ns: ns}
	// ns evaluates unified fragments (e.g. one embedding jexl:include)
	// against the wrapped context, so nested $jexl/jexl: access resolves
	// the same way it does in the compiled script itself.
	ns.ctx = wrapped
	_, err := t.interp.Execute(t.script, t.scope, wrapped, args...)
	return err
}

// evalFunc binds an unified.EvalFunc that parses a fragment as a single
// expression and evaluates it against ctx with an empty (parameterless)
// frame: unified sub-expressions embedded in template text are
// independent JEXL fragments resolved purely against the Context, not
// against the enclosing template script's own local registers.
func (t *Template) evalFunc(ctx jexlctx.Context) unified.EvalFunc {
	return func(source string) (types.Value, error) {
		expr, _, err := parser.ParseExpression(source)
		if err != nil {
			return nil, err
		}
		frame := scope.NewFrame(scope.New(nil))
		return t.interp.Eval(expr, frame, ctx)
	}
}

// compile splits source into lines, routing directive-prefixed lines to
// the synthesized script body verbatim and every other line through
// unified.Parse, replacing it with a jexl:print(i) call that indexes the
// returned fragment slice.
func compile(prefix, source string) (string, []*unified.Expr, error) {
	var code strings.Builder
	var exprs []*unified.Expr
	for _, line := range splitLines(source) {
		trimmed := strings.TrimLeft(stripNewline(line), " \t")
		if strings.HasPrefix(trimmed, prefix) {
			code.WriteString(strings.TrimPrefix(trimmed, prefix))
			code.WriteString("\n")
			continue
		}
		expr, err := unified.Parse(line)
		if err != nil {
			return "", nil, fmt.Errorf("template: %w", err)
		}
		idx := len(exprs)
		exprs = append(exprs, expr)
		fmt.Fprintf(&code, "jexl:print(%d);\n", idx)
	}
	return code.String(), exprs, nil
}

// splitLines splits source into lines that each retain their own trailing
// "\n" (except possibly the last), so verbatim text reproduces the
// source's original line breaks when printed.
func splitLines(source string) []string {
	if source == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			out = append(out, source[start:i+1])
			start = i + 1
		}
	}
	if start < len(source) {
		out = append(out, source[start:])
	}
	return out
}

func stripNewline(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// wrappingContext layers the `$jexl` writer variable and the `jexl`
// namespace (print/include) over a host Context: `$jexl` resolves to
// the writer, and `jexl` provides print(i) and include(template, args...).
type wrappingContext struct {
	inner jexlctx.Context
	w     io.Writer
	ns    *jexlNamespace
}

func (c *wrappingContext) Get(name string) (types.Value, bool) {
	if name == "$jexl" {
		return types.ObjectValue{Host: c.w}, true
	}
	return c.inner.Get(name)
}

func (c *wrappingContext) Set(name string, v types.Value) error {
	if name == "$jexl" {
		return &jexlctx.WriteError{Name: name}
	}
	return c.inner.Set(name, v)
}

func (c *wrappingContext) Has(name string) bool {
	if name == "$jexl" {
		return true
	}
	return c.inner.Has(name)
}

func (c *wrappingContext) ResolveNamespace(prefix string) (any, bool) {
	if prefix == "jexl" {
		return c.ns, true
	}
	if nr, ok := c.inner.(jexlctx.NamespaceResolver); ok {
		return nr.ResolveNamespace(prefix)
	}
	return nil, false
}
