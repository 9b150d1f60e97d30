// Package jexl is the embeddable façade: it binds an AST (produced by
// internal/parser, or by any other producer) and source text to an
// Engine, and exposes Evaluate/Execute/Callable/variables() plus
// host-introspection convenience calls.
package jexl

import (
	"log"
	"strings"
	"sync"

	"github.com/cwbudde/go-jexl/internal/arith"
	"github.com/cwbudde/go-jexl/internal/ast"
	"github.com/cwbudde/go-jexl/internal/interp"
	"github.com/cwbudde/go-jexl/internal/introspect"
	"github.com/cwbudde/go-jexl/internal/jexlerr"
	"github.com/cwbudde/go-jexl/internal/parser"
	"github.com/cwbudde/go-jexl/internal/scope"
	"github.com/cwbudde/go-jexl/internal/types"
)

// Engine binds arithmetic mode, introspection, the source→AST cache, and
// the interpreter options together. A zero-value Engine is not usable;
// construct one with New.
type Engine struct {
	arith  *arith.Arithmetic
	uber   *introspect.Uberspect
	silent bool
	debug  bool
	logger *log.Logger
	interp *interp.Interpreter

	// cacheMu guards the source-text→AST cache with a single exclusive
	// lock; parsing happens while the lock is held because the parser is
	// stateful.
	cacheMu   sync.Mutex
	cacheSize int
	cache     map[string]*compiledEntry

	// functions mirrors the interpreter's namespace registry so a
	// rebuilt interpreter (after SetSilent) keeps every registration.
	functions map[string]any

	templateRegistry *templateRegistry
}

type compiledEntry struct {
	script *ast.Script
	scope  *scope.Scope
}

// New creates an Engine with opts applied over sensible defaults: lenient
// arithmetic, non-silent, non-debug, a 512-entry parse cache.
func New(opts ...Option) *Engine {
	e := &Engine{
		arith:     arith.New(arith.Lenient, arith.DefaultMathContext),
		uber:      introspect.New(),
		logger:    log.Default(),
		cacheSize: 512,
		cache:     make(map[string]*compiledEntry),
		functions: make(map[string]any),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rebuildInterp()
	return e
}

func (e *Engine) rebuildInterp() {
	e.interp = interp.New(interp.Options{
		Arith:     e.arith,
		Uber:      e.uber,
		Silent:    e.silent,
		Logger:    e.logger,
		Functions: e.functions,
	})
}

// SetLenient toggles strict/lenient arithmetic mode. Not safe to call
// concurrently with an in-flight evaluation.
func (e *Engine) SetLenient(lenient bool) {
	if lenient {
		e.arith.Mode = arith.Lenient
	} else {
		e.arith.Mode = arith.Strict
	}
}

// Lenient reports the current arithmetic mode.
func (e *Engine) Lenient() bool { return e.arith.Mode == arith.Lenient }

// SetSilent toggles whether runtime errors are logged and swallowed
// (returning null) rather than propagated.
func (e *Engine) SetSilent(silent bool) {
	e.silent = silent
	e.rebuildInterp()
}

// Silent reports the current silent-mode setting.
func (e *Engine) Silent() bool { return e.silent }

// SetDebug toggles inclusion of source location/rebuilt-text info in
// raised errors.
func (e *Engine) SetDebug(debug bool) { e.debug = debug }

// Debug reports the current debug setting.
func (e *Engine) Debug() bool { return e.debug }

// SetMathContext configures the big-decimal precision/rounding used by
// BigDecimal arithmetic.
func (e *Engine) SetMathContext(ctx arith.MathContext) { e.arith.MathCtx = ctx }

// SetCache bounds the source→AST cache; a non-positive size disables
// caching entirely.
func (e *Engine) SetCache(size int) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.cacheSize = size
	if size <= 0 {
		e.cache = make(map[string]*compiledEntry)
	}
}

// Cancel requests cooperative cancellation of any evaluation currently in
// progress against this Engine's Interpreter.
func (e *Engine) Cancel() { e.interp.Cancel() }

// RegisterFunction binds name to fn in the engine-level function/namespace
// registry: an unqualified call the Context does not resolve falls
// through to it.
func (e *Engine) RegisterFunction(name string, fn interp.Functor) {
	e.functions[name] = fn
	e.interp.RegisterFunction(name, fn)
}

// RegisterNamespace binds prefix to ns (an object whose methods
// Introspection can resolve) for `prefix:name(...)` calls whose Context
// has no NamespaceResolver recognizing prefix.
func (e *Engine) RegisterNamespace(prefix string, ns any) {
	e.functions[prefix] = ns
	e.interp.RegisterNamespace(prefix, ns)
}

// RegisterConstructor binds name to a Go constructor function for
// ConstructorCall resolution: there is no Class.forName equivalent, so
// constructors are registered directly by name.
func (e *Engine) RegisterConstructor(name string, fn any) {
	e.uber.RegisterConstructor(name, fn)
}

// parse compiles src (with the given lexical parameter names) through the
// bounded cache, invoking the reference parser on a miss.
func (e *Engine) parse(src string, params []string) (*ast.Script, *scope.Scope, error) {
	key := cacheKey(src, params)
	e.cacheMu.Lock()
	if e.cacheSize > 0 {
		if hit, ok := e.cache[key]; ok {
			e.cacheMu.Unlock()
			return hit.script, hit.scope, nil
		}
	}
	// The reference parser is stateful per call, so parsing happens while
	// the cache lock is held.
	script, sc, err := parser.Parse(src, params...)
	if err != nil {
		e.cacheMu.Unlock()
		return nil, nil, err
	}
	if e.cacheSize > 0 {
		if len(e.cache) >= e.cacheSize {
			for k := range e.cache {
				delete(e.cache, k)
				break
			}
		}
		e.cache[key] = &compiledEntry{script: script, scope: sc}
	}
	e.cacheMu.Unlock()
	return script, sc, nil
}

func (e *Engine) parseExpr(src string, params []string) (ast.Expression, *scope.Scope, error) {
	return parser.ParseExpression(src, params...)
}

func cacheKey(src string, params []string) string {
	if len(params) == 0 {
		return src
	}
	return src + "\x00" + strings.Join(params, ",")
}

// decorate attaches a rebuilt-source diagnostic view to a jexlerr.Error
// when debug mode is on: the root AST is re-stringified and the offending
// node's rendering is located within it to produce [start,end) offsets.
func (e *Engine) decorate(err error, root ast.Node) error {
	if err == nil || !e.debug {
		return err
	}
	je, ok := err.(*jexlerr.Error)
	if !ok || je.Node == nil || je.Debug != nil {
		return err
	}
	rebuilt := root.String()
	frag := je.Node.String()
	if idx := strings.Index(rebuilt, frag); idx >= 0 {
		return je.WithDebug(rebuilt, idx, idx+len(frag))
	}
	return je.WithDebug(frag, 0, len(frag))
}

// GetProperty reads a dotted path off an arbitrary host value through
// Introspection.
func (e *Engine) GetProperty(obj any, path string) (any, error) {
	cur := obj
	for _, part := range strings.Split(path, ".") {
		exec, err := e.uber.GetPropertyGet(cur, part)
		if err != nil {
			return nil, err
		}
		v, err := exec.Invoke(cur, nil)
		if err != nil {
			return nil, err
		}
		cur = introspect.FromValue(v)
	}
	return cur, nil
}

// SetProperty writes value at a dotted path off obj through Introspection.
func (e *Engine) SetProperty(obj any, path string, value any) error {
	parts := strings.Split(path, ".")
	cur := obj
	for _, part := range parts[:len(parts)-1] {
		exec, err := e.uber.GetPropertyGet(cur, part)
		if err != nil {
			return err
		}
		v, err := exec.Invoke(cur, nil)
		if err != nil {
			return err
		}
		cur = introspect.FromValue(v)
	}
	exec, err := e.uber.GetPropertySet(cur, parts[len(parts)-1])
	if err != nil {
		return err
	}
	_, err = exec.Invoke(cur, []types.Value{toValue(value)})
	return err
}

// InvokeMethod calls name on obj with args through Introspection,
// narrowing and retrying once on an overload-resolution miss.
func (e *Engine) InvokeMethod(obj any, name string, args ...any) (any, error) {
	vals := toValues(args)
	exec, err := e.uber.GetMethod(obj, name, vals)
	if err != nil {
		narrowed, changed := e.arith.NarrowArguments(vals)
		if changed {
			exec, err = e.uber.GetMethod(obj, name, narrowed)
			vals = narrowed
		}
	}
	if err != nil {
		return nil, err
	}
	v, err := exec.Invoke(obj, vals)
	if err != nil {
		return nil, err
	}
	return introspect.FromValue(v), nil
}

// NewInstance invokes a registered constructor by class name with args.
func (e *Engine) NewInstance(class string, args ...any) (any, error) {
	vals := toValues(args)
	exec, err := e.uber.GetConstructor(class, vals)
	if err != nil {
		return nil, err
	}
	v, err := exec.Invoke(nil, vals)
	if err != nil {
		return nil, err
	}
	return introspect.FromValue(v), nil
}

func toValues(args []any) []types.Value {
	out := make([]types.Value, len(args))
	for i, a := range args {
		out[i] = toValue(a)
	}
	return out
}

func toValue(v any) types.Value {
	switch t := v.(type) {
	case types.Value:
		return t
	case nil:
		return types.Null
	case bool:
		return types.BoolValue(t)
	case int:
		return types.IntValue(int64(t))
	case int64:
		return types.IntValue(t)
	case float64:
		return types.FloatValue(t)
	case string:
		return types.StringValue(t)
	default:
		return types.ObjectValue{Host: v}
	}
}

// ToInteger, ToDouble, ToBoolean, and ToString expose the engine's
// coercion rules for host code that wants to reuse them outside of
// evaluation.
func (e *Engine) ToInteger(v types.Value) (int, error)      { return e.arith.ToInteger(v) }
func (e *Engine) ToLong(v types.Value) (int64, error)       { return e.arith.ToLong(v) }
func (e *Engine) ToDouble(v types.Value) (float64, error)   { return e.arith.ToDouble(v) }
func (e *Engine) ToBoolean(v types.Value) (bool, error)     { return e.arith.ToBoolean(v) }
func (e *Engine) ToString(v types.Value) types.StringValue  { return e.arith.ToStringVal(v) }
