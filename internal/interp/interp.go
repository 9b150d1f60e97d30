// Package interp implements the tree-walking evaluator over internal/ast
// trees: a single post-order Eval dispatch that delegates arithmetic to
// internal/arith, host access to internal/introspect, and lexical storage
// to internal/scope, with internal/jexlctx supplying dynamic host
// variables.
package interp

import (
	"log"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/go-jexl/internal/arith"
	"github.com/cwbudde/go-jexl/internal/ast"
	"github.com/cwbudde/go-jexl/internal/introspect"
	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/jexlerr"
	"github.com/cwbudde/go-jexl/internal/scope"
	"github.com/cwbudde/go-jexl/internal/types"
)

// Options configures an Interpreter.
type Options struct {
	Arith  *arith.Arithmetic
	Uber   *introspect.Uberspect
	Silent bool // Silent: a raised error is logged and evaluation of the
	// enclosing expression yields null, instead of propagating. Distinct
	// from arith.Mode: arithmetic's Strict/Lenient governs coercion,
	// Silent governs whether the interpreter itself swallows errors.
	Logger *log.Logger
	// Functions is the engine-level namespace registry: keyed by
	// namespace prefix for a `prefix:name(...)` call, or by bare name
	// for an unqualified `name(...)` call that the Context did not
	// resolve. Values are either a Functor or any host object/class
	// resolved through Introspection's method lookup.
	Functions map[string]any
}

// Interpreter walks an AST against a Context and an optional Frame of
// lexical registers.
type Interpreter struct {
	arith     *arith.Arithmetic
	uber      *introspect.Uberspect
	silent    bool
	logger    *log.Logger
	cancelled atomic.Bool

	functionsMu sync.RWMutex
	functions   map[string]any
}

// New creates an Interpreter from opts, filling unset fields with sensible
// defaults (lenient arithmetic, a fresh Uberspect, non-silent).
func New(opts Options) *Interpreter {
	i := &Interpreter{
		arith:     opts.Arith,
		uber:      opts.Uber,
		silent:    opts.Silent,
		logger:    opts.Logger,
		functions: make(map[string]any, len(opts.Functions)),
	}
	if i.arith == nil {
		i.arith = arith.New(arith.Lenient, arith.DefaultMathContext)
	}
	if i.uber == nil {
		i.uber = introspect.New()
	}
	if i.logger == nil {
		i.logger = log.Default()
	}
	for k, v := range opts.Functions {
		i.functions[k] = v
	}
	return i
}

// RegisterFunction binds name to fn in the engine-level namespace registry,
// so an unqualified `name(...)` call that the Context does not resolve
// falls through to it.
func (i *Interpreter) RegisterFunction(name string, fn Functor) {
	i.functionsMu.Lock()
	defer i.functionsMu.Unlock()
	i.functions[name] = fn
}

// RegisterNamespace binds prefix to ns (an object, or anything
// Introspection can resolve methods against) so a `prefix:name(...)` call
// whose Context has no NamespaceResolver (or does not recognize prefix)
// falls through to it.
func (i *Interpreter) RegisterNamespace(prefix string, ns any) {
	i.functionsMu.Lock()
	defer i.functionsMu.Unlock()
	i.functions[prefix] = ns
}

func (i *Interpreter) lookupFunction(key string) (any, bool) {
	i.functionsMu.RLock()
	defer i.functionsMu.RUnlock()
	v, ok := i.functions[key]
	return v, ok
}

// Cancel requests cooperative cancellation: every loop iteration and call
// site checks it and unwinds with a Cancel-kind jexlerr.Error, so a long
// running script stays interruptible.
func (i *Interpreter) Cancel() { i.cancelled.Store(true) }

func (i *Interpreter) checkCancelled(n ast.Node) error {
	if i.cancelled.Load() {
		return jexlerr.New(jexlerr.Cancel, n, "evaluation cancelled")
	}
	return nil
}

// returnSignal carries a Return statement's value up through Eval's error
// channel; Execute unwraps it at the script boundary.
type returnSignal struct{ value types.Value }

func (returnSignal) Error() string { return "return" }

// Execute runs script to completion against ctx with a fresh Frame sized
// to the script's declared scope, returning the value of the last
// statement evaluated (or the value of an explicit `return`).
func (i *Interpreter) Execute(s *ast.Script, sc *scope.Scope, ctx jexlctx.Context, args ...types.Value) (types.Value, error) {
	frame := scope.NewFrame(sc, args...)
	return i.execStatements(s.Statements, frame, ctx)
}

// Evaluate is the top-level entry for single-expression evaluation: it
// applies the Silent policy the same way Execute does for scripts, so a
// silenced failure yields null instead of an error.
func (i *Interpreter) Evaluate(expr ast.Expression, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	v, err := i.Eval(expr, frame, ctx)
	if err != nil {
		if err = i.maybeSilence(err); err != nil {
			return nil, err
		}
		return types.Null, nil
	}
	return v, nil
}

func (i *Interpreter) execStatements(stmts []ast.Statement, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	var last types.Value = types.Null
	for _, st := range stmts {
		v, err := i.execStatement(st, frame, ctx)
		if err != nil {
			if rs, ok := err.(returnSignal); ok {
				return rs.value, nil
			}
			if err = i.maybeSilence(err); err != nil {
				return nil, err
			}
			// Silenced: the failure was logged, the evaluation yields null.
			return types.Null, nil
		}
		if v != nil {
			last = v
		}
	}
	return last, nil
}

// maybeSilence implements the Silent option: a non-control-flow runtime
// error is logged and replaced by a nil error (the caller then sees
// types.Null). Control-flow signals and parse-time errors always
// propagate; silent mode governs runtime evaluation failures only.
func (i *Interpreter) maybeSilence(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(returnSignal); ok {
		return err
	}
	if je, ok := err.(*jexlerr.Error); ok {
		if jexlerr.IsControlFlow(je) || je.Kind == jexlerr.Parsing || je.Kind == jexlerr.Tokenization {
			return err
		}
	}
	if i.silent {
		i.logger.Printf("jexl: %v", err)
		return nil
	}
	return err
}

func (i *Interpreter) execStatement(st ast.Statement, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	if err := i.checkCancelled(st); err != nil {
		return nil, err
	}
	switch n := st.(type) {
	case *ast.ExprStatement:
		return i.Eval(n.Expr, frame, ctx)
	case *ast.Block:
		return i.execStatements(n.Statements, frame, ctx)
	case *ast.If:
		cond, err := i.Eval(n.Cond, frame, ctx)
		if err != nil {
			return nil, err
		}
		b, err := i.arith.ToBoolean(cond)
		if err != nil {
			return nil, err
		}
		if b {
			return i.execStatement(n.Then, frame, ctx)
		}
		if n.Else != nil {
			return i.execStatement(n.Else, frame, ctx)
		}
		return types.Null, nil
	case *ast.While:
		var last types.Value = types.Null
		for {
			if err := i.checkCancelled(n); err != nil {
				return nil, err
			}
			cond, err := i.Eval(n.Cond, frame, ctx)
			if err != nil {
				return nil, err
			}
			b, err := i.arith.ToBoolean(cond)
			if err != nil {
				return nil, err
			}
			if !b {
				return last, nil
			}
			last, err = i.execStatement(n.Body, frame, ctx)
			if err != nil {
				return nil, err
			}
		}
	case *ast.Foreach:
		return i.execForeach(n, frame, ctx)
	case *ast.Return:
		if n.Expr == nil {
			return nil, returnSignal{value: types.Null}
		}
		v, err := i.Eval(n.Expr, frame, ctx)
		if err != nil {
			return nil, err
		}
		return nil, returnSignal{value: v}
	default:
		if expr, ok := st.(ast.Expression); ok {
			return i.Eval(expr, frame, ctx)
		}
		return nil, jexlerr.New(jexlerr.Internal, st, "unhandled statement kind %T", st)
	}
}

func (i *Interpreter) execForeach(n *ast.Foreach, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	iterable, err := i.Eval(n.Iterable, frame, ctx)
	if err != nil {
		return nil, err
	}
	if types.IsNull(iterable) {
		return types.Null, nil
	}
	it, ok := introspect.GetIterator(iterable)
	if !ok {
		return nil, jexlerr.New(jexlerr.Property, n, "value of class %s is not iterable", iterable.Class())
	}
	defer it.Close()

	var last types.Value = types.Null
	for {
		if err := i.checkCancelled(n); err != nil {
			return nil, err
		}
		v, more := it.Next()
		if !more {
			break
		}
		if err := i.bindLoopVar(n.Var, v, frame, ctx); err != nil {
			return nil, err
		}
		last, err = i.execStatement(n.Body, frame, ctx)
		if err != nil {
			return nil, err
		}
	}
	return last, nil
}

func (i *Interpreter) bindLoopVar(target ast.Expression, v types.Value, frame *scope.Frame, ctx jexlctx.Context) error {
	switch t := target.(type) {
	case *ast.Var:
		if t.Register >= 0 {
			frame.Set(t.Register, v)
			return nil
		}
		return ctx.Set(t.Name, v)
	case *ast.Identifier:
		if t.Register >= 0 {
			frame.Set(t.Register, v)
			return nil
		}
		return ctx.Set(t.Name, v)
	default:
		return jexlerr.New(jexlerr.Internal, target, "invalid foreach loop variable")
	}
}

// Eval evaluates expr against frame and ctx, returning its Value.
func (i *Interpreter) Eval(expr ast.Expression, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	if err := i.checkCancelled(expr); err != nil {
		return nil, err
	}
	switch n := expr.(type) {
	case *ast.NullLit:
		return types.Null, nil
	case *ast.BoolLit:
		return types.BoolValue(n.Value), nil
	case *ast.IntLit:
		return types.IntValue(n.Value), nil
	case *ast.FloatLit:
		return types.FloatValue(n.Value), nil
	case *ast.StringLit:
		return types.StringValue(n.Value), nil
	case *ast.ArrayLit:
		return i.evalArrayLit(n, frame, ctx)
	case *ast.MapLit:
		return i.evalMapLit(n, frame, ctx)
	case *ast.Identifier:
		return i.evalIdentifier(n, frame, ctx)
	case *ast.Var:
		if n.Register >= 0 {
			return frame.Get(n.Register), nil
		}
		return i.lookupContext(n.Name, n, ctx)
	case *ast.Reference:
		return i.evalReference(n, frame, ctx)
	case *ast.ReferenceExpression:
		return i.Eval(n.Inner, frame, ctx)
	case *ast.ArrayAccess:
		return i.evalArrayAccess(n, frame, ctx)
	case *ast.BinaryExpr:
		return i.evalBinary(n, frame, ctx)
	case *ast.UnaryExpr:
		return i.evalUnary(n, frame, ctx)
	case *ast.Assign:
		return i.evalAssign(n, frame, ctx)
	case *ast.Ternary:
		return i.evalTernary(n, frame, ctx)
	case *ast.MethodCall:
		return i.evalMethodCall(n, nil, frame, ctx)
	case *ast.FunctionCall:
		return i.evalFunctionCall(n, frame, ctx)
	case *ast.ConstructorCall:
		return i.evalConstructorCall(n, frame, ctx)
	case *ast.SizeFunction:
		return i.evalSize(n.Arg, n, frame, ctx)
	case *ast.SizeMethod:
		return i.evalSize(n.Target, n, frame, ctx)
	case *ast.EmptyFunction:
		v, err := i.Eval(n.Arg, frame, ctx)
		if err != nil {
			return nil, err
		}
		return types.BoolValue(types.IsEmpty(v)), nil
	default:
		return nil, jexlerr.New(jexlerr.Internal, expr, "unhandled expression kind %T", expr)
	}
}

func (i *Interpreter) evalSize(arg ast.Expression, site ast.Node, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	v, err := i.Eval(arg, frame, ctx)
	if err != nil {
		return nil, err
	}
	if n, ok := types.Len(v); ok {
		return types.IntValue(n), nil
	}
	if obj, ok := v.(types.ObjectValue); ok {
		exec, err := i.uber.GetMethod(obj.Host, "size", nil)
		if err == nil {
			return exec.Invoke(obj.Host, nil)
		}
	}
	return nil, jexlerr.New(jexlerr.Property, site, "value of class %s has no size", v.Class())
}

func (i *Interpreter) evalArrayLit(n *ast.ArrayLit, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	if cached := n.Cache.Load(); cached != nil {
		if av, ok := cached.(types.ArrayValue); ok {
			// The spec caches the narrowed *shape*, but element values may
			// depend on the current frame/context, so elements are always
			// re-evaluated; only the narrowing decision is memoized.
			elems, err := i.evalElements(n.Elements, frame, ctx)
			if err != nil {
				return nil, err
			}
			av.Elements = elems
			return av, nil
		}
	}
	elems, err := i.evalElements(n.Elements, frame, ctx)
	if err != nil {
		return nil, err
	}
	av := i.arith.NarrowArray(elems)
	n.Cache.Store(av)
	return av, nil
}

func (i *Interpreter) evalElements(exprs []ast.Expression, frame *scope.Frame, ctx jexlctx.Context) ([]types.Value, error) {
	out := make([]types.Value, len(exprs))
	for idx, e := range exprs {
		v, err := i.Eval(e, frame, ctx)
		if err != nil {
			return nil, err
		}
		out[idx] = v
	}
	return out, nil
}

func (i *Interpreter) evalMapLit(n *ast.MapLit, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	m := types.NewMap()
	for _, e := range n.Entries {
		k, err := i.Eval(e.Key, frame, ctx)
		if err != nil {
			return nil, err
		}
		v, err := i.Eval(e.Value, frame, ctx)
		if err != nil {
			return nil, err
		}
		m.Set(k.String(), v)
	}
	return m, nil
}

func (i *Interpreter) evalIdentifier(n *ast.Identifier, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	if n.Register >= 0 {
		return frame.Get(n.Register), nil
	}
	return i.lookupContext(n.Name, n, ctx)
}

func (i *Interpreter) lookupContext(name string, site ast.Node, ctx jexlctx.Context) (types.Value, error) {
	if ctx == nil {
		ctx = jexlctx.Empty
	}
	if na, ok := ctx.(jexlctx.NullableAware); ok {
		if !na.IsDefined(name) {
			if i.arith.Mode == arith.Strict {
				return nil, jexlerr.New(jexlerr.Variable, site, "undefined variable %s", name)
			}
			return types.Null, nil
		}
	}
	v, ok := ctx.Get(name)
	if !ok {
		if i.arith.Mode == arith.Strict {
			return nil, jexlerr.New(jexlerr.Variable, site, "undefined variable %s", name)
		}
		return types.Null, nil
	}
	return v, nil
}

// evalReference walks a dot-path chain left to right, resolving each step
// against the current value: a MethodCall step invokes on the current
// receiver, any other step is a property get. The ant-style fallback
// retries a failed multi-part property walk by joining every part of the
// chain with '.' and treating the result as a single dotted
// context-variable name, the convention JEXL-shaped languages use for dotted
// Ant/Commons-Configuration style keys.
func (i *Interpreter) evalReference(n *ast.Reference, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	if len(n.Parts) == 0 {
		return types.Null, nil
	}
	if ctx == nil {
		ctx = jexlctx.Empty
	}
	cur, err := i.evalReferenceHead(n.Parts[0], frame, ctx)
	if err != nil {
		// A strict-mode Variable error on the head of a multi-part chain
		// is not final: the whole dotted path may still be a context key.
		je, ok := err.(*jexlerr.Error)
		if !ok || je.Kind != jexlerr.Variable || len(n.Parts) < 2 {
			return nil, err
		}
		if full, ok := i.antStyleName(n.Parts); ok {
			if v, ok := ctx.Get(full); ok {
				return v, nil
			}
		}
		return nil, err
	}
	for idx, part := range n.Parts[1:] {
		if types.IsNull(cur) {
			// A non-terminal step produced null. Before failing (strict)
			// or giving up (lenient), try the ant-style dotted name.
			if full, ok := i.antStyleName(n.Parts); ok {
				if v, ok := ctx.Get(full); ok {
					return v, nil
				}
			}
			if i.arith.Mode == arith.Strict {
				return nil, jexlerr.New(jexlerr.Property, part, "%s is null in reference %s", n.Parts[idx].String(), n.String())
			}
			return types.Null, nil
		}
		cur, err = i.evalPropertyStep(cur, part, frame, ctx)
		if err != nil {
			// A failed lookup may still name an ant-style dotted key.
			if je, ok := err.(*jexlerr.Error); ok && (je.Kind == jexlerr.Property || je.Kind == jexlerr.Variable) {
				if full, ok := i.antStyleName(n.Parts); ok {
					if v, ok := ctx.Get(full); ok {
						return v, nil
					}
				}
			}
			return nil, err
		}
	}
	if types.IsNull(cur) {
		if full, ok := i.antStyleName(n.Parts); ok {
			if v, ok := ctx.Get(full); ok {
				return v, nil
			}
		}
	}
	return cur, nil
}

func (i *Interpreter) evalReferenceHead(part ast.Expression, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	switch n := part.(type) {
	case *ast.Identifier:
		return i.evalIdentifier(n, frame, ctx)
	default:
		return i.Eval(part, frame, ctx)
	}
}

func (i *Interpreter) antStyleName(parts []ast.Expression) (string, bool) {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		id, ok := p.(*ast.Identifier)
		if !ok {
			return "", false
		}
		names = append(names, id.Name)
	}
	return strings.Join(names, "."), true
}

// evalPropertyStep resolves one step of a dot chain against the carried
// value. Literals appearing as steps are property keys: `foo.1` indexes,
// `foo.'bar'` reads a named property.
func (i *Interpreter) evalPropertyStep(cur types.Value, part ast.Expression, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	switch n := part.(type) {
	case *ast.Identifier:
		return i.getProperty(cur, n.Name, part)
	case *ast.MethodCall:
		return i.evalMethodCall(n, cur, frame, ctx)
	case *ast.IntLit:
		return i.index(cur, types.IntValue(n.Value), part)
	case *ast.StringLit:
		return i.getProperty(cur, n.Value, part)
	default:
		return nil, jexlerr.New(jexlerr.Internal, part, "invalid reference step %T", part)
	}
}

func (i *Interpreter) getProperty(target types.Value, name string, site ast.Node) (types.Value, error) {
	switch t := target.(type) {
	case *types.MapValue:
		if v, ok := t.Get(name); ok {
			return v, nil
		}
		if i.arith.Mode == arith.Strict {
			return nil, jexlerr.New(jexlerr.Property, site, "no entry %q in map", name)
		}
		return types.Null, nil
	case types.ObjectValue:
		exec, err := i.uber.GetPropertyGet(t.Host, name)
		if err != nil {
			if i.arith.Mode == arith.Strict {
				return nil, jexlerr.New(jexlerr.Property, site, "no readable property %q on %T", name, t.Host)
			}
			return types.Null, nil
		}
		return exec.Invoke(t.Host, nil)
	case types.ArrayValue:
		if idx, ok := parseIntIndex(name); ok && idx >= 0 && idx < len(t.Elements) {
			return t.Elements[idx], nil
		}
		return types.Null, nil
	case *types.ListValue:
		if idx, ok := parseIntIndex(name); ok && idx >= 0 && idx < len(t.Elements) {
			return t.Elements[idx], nil
		}
		return types.Null, nil
	default:
		return types.Null, nil
	}
}

func (i *Interpreter) setProperty(target types.Value, name string, value types.Value, site ast.Node) error {
	switch t := target.(type) {
	case *types.MapValue:
		t.Set(name, value)
		return nil
	case types.ObjectValue:
		exec, err := i.uber.GetPropertySet(t.Host, name)
		if err != nil {
			if i.arith.Mode == arith.Strict {
				return jexlerr.New(jexlerr.Property, site, "no writable property %q on %T", name, t.Host)
			}
			return nil
		}
		_, err = exec.Invoke(t.Host, []types.Value{value})
		return err
	default:
		if i.arith.Mode == arith.Strict {
			return jexlerr.New(jexlerr.Property, site, "value of class %s has no settable properties", target.Class())
		}
		return nil
	}
}

func parseIntIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (i *Interpreter) evalArrayAccess(n *ast.ArrayAccess, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	cur, err := i.Eval(n.Target, frame, ctx)
	if err != nil {
		return nil, err
	}
	for _, idxExpr := range n.Indices {
		idxVal, err := i.Eval(idxExpr, frame, ctx)
		if err != nil {
			return nil, err
		}
		cur, err = i.index(cur, idxVal, n)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func (i *Interpreter) index(target, key types.Value, site ast.Node) (types.Value, error) {
	if types.IsNull(target) {
		return types.Null, nil
	}
	switch t := target.(type) {
	case types.ArrayValue:
		idx, err := i.arith.ToInteger(key)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(t.Elements) {
			return types.Null, nil
		}
		return t.Elements[idx], nil
	case *types.ListValue:
		idx, err := i.arith.ToInteger(key)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(t.Elements) {
			return types.Null, nil
		}
		return t.Elements[idx], nil
	case *types.MapValue:
		v, ok := t.Get(key.String())
		if !ok {
			return types.Null, nil
		}
		return v, nil
	case types.StringValue:
		return i.getProperty(target, key.String(), site)
	case types.ObjectValue:
		return i.getProperty(target, key.String(), site)
	default:
		return types.Null, nil
	}
}

func (i *Interpreter) evalBinary(n *ast.BinaryExpr, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	switch n.Op {
	case "&&", "and":
		return i.evalAnd(n, frame, ctx)
	case "||", "or":
		return i.evalOr(n, frame, ctx)
	}

	l, err := i.Eval(n.Left, frame, ctx)
	if err != nil {
		return nil, err
	}
	r, err := i.Eval(n.Right, frame, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case "+":
		return i.arith.Add(l, r)
	case "-":
		return i.arith.Sub(l, r)
	case "*":
		return i.arith.Mul(l, r)
	case "/":
		return i.arith.Div(l, r)
	case "%":
		return i.arith.Mod(l, r)
	case "&":
		return i.arith.BitAnd(l, r)
	case "|":
		return i.arith.BitOr(l, r)
	case "^":
		return i.arith.BitXor(l, r)
	case "==", "eq":
		eq, err := i.arith.Equals(l, r)
		return types.BoolValue(eq), err
	case "!=", "ne":
		ne, err := i.arith.NotEquals(l, r)
		return types.BoolValue(ne), err
	case "<", "lt":
		b, err := i.arith.LessThan(l, r)
		return types.BoolValue(b), err
	case "<=", "le":
		b, err := i.arith.LessEqual(l, r)
		return types.BoolValue(b), err
	case ">", "gt":
		b, err := i.arith.GreaterThan(l, r)
		return types.BoolValue(b), err
	case ">=", "ge":
		b, err := i.arith.GreaterEqual(l, r)
		return types.BoolValue(b), err
	case "=~":
		b, err := i.matchOrContains(l, r)
		return types.BoolValue(b), err
	case "!~":
		b, err := i.matchOrContains(l, r)
		return types.BoolValue(!b), err
	default:
		return nil, jexlerr.New(jexlerr.Internal, n, "unknown binary operator %q", n.Op)
	}
}

// matchOrContains implements the dual reading of `=~`: when the right
// side is a container, it is a membership test ("x in container", keys
// for a map); a string or compiled regex on the right is a regex match;
// any other host object is probed for a contains method, then iterated,
// then compared for plain equality.
func (i *Interpreter) matchOrContains(l, r types.Value) (bool, error) {
	switch t := r.(type) {
	case *types.SetValue:
		return t.Contains(l), nil
	case *types.MapValue:
		_, ok := t.Get(l.String())
		return ok, nil
	case types.ArrayValue:
		return containsIn(t.Elements, l, i.arith), nil
	case *types.ListValue:
		return containsIn(t.Elements, l, i.arith), nil
	case types.StringValue:
		return i.arith.Match(l, r)
	case types.ObjectValue:
		if _, ok := t.Host.(*regexp.Regexp); ok {
			return i.arith.Match(l, r)
		}
		args := []types.Value{l}
		exec, err := i.uber.GetMethod(t.Host, "contains", args)
		if err != nil {
			if narrowed, changed := i.arith.NarrowArguments(args); changed {
				exec, err = i.uber.GetMethod(t.Host, "contains", narrowed)
				args = narrowed
			}
		}
		if err == nil {
			v, err := exec.Invoke(t.Host, args)
			if err != nil {
				return false, err
			}
			return i.arith.ToBoolean(v)
		}
		if it, ok := introspect.GetIterator(r); ok {
			defer it.Close()
			for {
				v, more := it.Next()
				if !more {
					return false, nil
				}
				if eq, _ := i.arith.Equals(v, l); eq {
					return true, nil
				}
			}
		}
		return i.arith.Equals(l, r)
	default:
		return i.arith.Equals(l, r)
	}
}

func containsIn(elems []types.Value, v types.Value, a *arith.Arithmetic) bool {
	for _, e := range elems {
		if eq, _ := a.Equals(e, v); eq {
			return true
		}
	}
	return false
}

func (i *Interpreter) evalAnd(n *ast.BinaryExpr, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	l, err := i.Eval(n.Left, frame, ctx)
	if err != nil {
		return nil, err
	}
	lb, err := i.arith.ToBoolean(l)
	if err != nil {
		return nil, err
	}
	if !lb {
		return types.BoolValue(false), nil
	}
	r, err := i.Eval(n.Right, frame, ctx)
	if err != nil {
		return nil, err
	}
	rb, err := i.arith.ToBoolean(r)
	return types.BoolValue(rb), err
}

func (i *Interpreter) evalOr(n *ast.BinaryExpr, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	l, err := i.Eval(n.Left, frame, ctx)
	if err != nil {
		return nil, err
	}
	lb, err := i.arith.ToBoolean(l)
	if err != nil {
		return nil, err
	}
	if lb {
		return types.BoolValue(true), nil
	}
	r, err := i.Eval(n.Right, frame, ctx)
	if err != nil {
		return nil, err
	}
	rb, err := i.arith.ToBoolean(r)
	return types.BoolValue(rb), err
}

func (i *Interpreter) evalUnary(n *ast.UnaryExpr, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	v, err := i.Eval(n.Operand, frame, ctx)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "-":
		return i.arith.Negate(v)
	case "!", "not":
		b, err := i.arith.ToBoolean(v)
		return types.BoolValue(!b), err
	case "~":
		return i.arith.BitCompl(v)
	default:
		return nil, jexlerr.New(jexlerr.Internal, n, "unknown unary operator %q", n.Op)
	}
}

func (i *Interpreter) evalTernary(n *ast.Ternary, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	// Both ternary forms escape strict mode for the condition: a variable
	// or property lookup that would raise instead yields null, so
	// `possiblyUndefined ? a : b` and `possiblyUndefined ?: default` stay
	// usable as existence tests under a strict engine.
	cond, err := i.Eval(n.Cond, frame, ctx)
	if err != nil {
		if je, ok := err.(*jexlerr.Error); ok && (je.Kind == jexlerr.Variable || je.Kind == jexlerr.Property) {
			cond = types.Null
		} else {
			return nil, err
		}
	}
	// A null condition is falsy in either form, even under strict
	// arithmetic: coercing it would raise NullOperand and defeat the
	// escape above.
	var b bool
	if !types.IsNull(cond) {
		b, err = i.arith.ToBoolean(cond)
		if err != nil {
			return nil, err
		}
	}
	if n.When == nil {
		// Elvis form: `cond ?: else` returns cond itself when truthy.
		if b {
			return cond, nil
		}
		return i.Eval(n.Else, frame, ctx)
	}
	if b {
		return i.Eval(n.When, frame, ctx)
	}
	return i.Eval(n.Else, frame, ctx)
}

func (i *Interpreter) evalAssign(n *ast.Assign, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	value, err := i.Eval(n.Value, frame, ctx)
	if err != nil {
		return nil, err
	}
	if err := i.assignTo(n.Target, value, frame, ctx); err != nil {
		return nil, err
	}
	return value, nil
}

func (i *Interpreter) assignTo(target ast.Expression, value types.Value, frame *scope.Frame, ctx jexlctx.Context) error {
	switch t := target.(type) {
	case *ast.Identifier:
		if t.Register >= 0 {
			frame.Set(t.Register, value)
			return nil
		}
		return ctx.Set(t.Name, value)
	case *ast.Var:
		if t.Register >= 0 {
			frame.Set(t.Register, value)
			return nil
		}
		return ctx.Set(t.Name, value)
	case *ast.Reference:
		return i.assignReference(t, value, frame, ctx)
	case *ast.ArrayAccess:
		return i.assignArrayAccess(t, value, frame, ctx)
	default:
		return jexlerr.New(jexlerr.Internal, target, "invalid assignment target %T", target)
	}
}

func (i *Interpreter) assignReference(t *ast.Reference, value types.Value, frame *scope.Frame, ctx jexlctx.Context) error {
	if len(t.Parts) == 0 {
		return jexlerr.New(jexlerr.Internal, t, "empty reference")
	}
	if len(t.Parts) == 1 {
		return i.assignTo(t.Parts[0], value, frame, ctx)
	}
	cur, err := i.evalReferenceHead(t.Parts[0], frame, ctx)
	if err != nil {
		return err
	}
	if types.IsNull(cur) {
		if full, ok := i.antStyleName(t.Parts); ok {
			return ctx.Set(full, value)
		}
		return jexlerr.New(jexlerr.Property, t, "cannot assign through a null reference")
	}
	for idx := 1; idx < len(t.Parts)-1; idx++ {
		id, ok := t.Parts[idx].(*ast.Identifier)
		if !ok {
			return jexlerr.New(jexlerr.Internal, t, "invalid reference step")
		}
		cur, err = i.getProperty(cur, id.Name, t.Parts[idx])
		if err != nil {
			return err
		}
	}
	last := t.Parts[len(t.Parts)-1]
	id, ok := last.(*ast.Identifier)
	if !ok {
		return jexlerr.New(jexlerr.Internal, t, "invalid assignment target in reference chain")
	}
	return i.setProperty(cur, id.Name, value, last)
}

func (i *Interpreter) assignArrayAccess(t *ast.ArrayAccess, value types.Value, frame *scope.Frame, ctx jexlctx.Context) error {
	cur, err := i.Eval(t.Target, frame, ctx)
	if err != nil {
		return err
	}
	for idx := 0; idx < len(t.Indices)-1; idx++ {
		key, err := i.Eval(t.Indices[idx], frame, ctx)
		if err != nil {
			return err
		}
		cur, err = i.index(cur, key, t)
		if err != nil {
			return err
		}
	}
	lastKey, err := i.Eval(t.Indices[len(t.Indices)-1], frame, ctx)
	if err != nil {
		return err
	}
	switch c := cur.(type) {
	case *types.MapValue:
		c.Set(lastKey.String(), value)
		return nil
	case types.ArrayValue:
		idx, err := i.arith.ToInteger(lastKey)
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(c.Elements) {
			c.Elements[idx] = value
		}
		return nil
	case *types.ListValue:
		idx, err := i.arith.ToInteger(lastKey)
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(c.Elements) {
			c.Elements[idx] = value
		}
		return nil
	case types.ObjectValue:
		return i.setProperty(cur, lastKey.String(), value, t)
	default:
		return jexlerr.New(jexlerr.Property, t, "value of class %s does not support indexed assignment", cur.Class())
	}
}
