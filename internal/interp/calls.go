package interp

import (
	"github.com/cwbudde/go-jexl/internal/arith"
	"github.com/cwbudde/go-jexl/internal/ast"
	"github.com/cwbudde/go-jexl/internal/introspect"
	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/jexlerr"
	"github.com/cwbudde/go-jexl/internal/scope"
	"github.com/cwbudde/go-jexl/internal/types"
)

// Functor is a host-registered function callable by name from an
// unqualified FunctionCall or via a registered namespace prefix.
type Functor func(args []types.Value) (types.Value, error)

// receiver resolves the call's target when a reference chain supplied an
// in-progress value (e.g. `foo.bar()` inside a Reference); nil means "no
// receiver yet", so a bare `bar()` falls through to context/namespace
// resolution.
func (i *Interpreter) evalMethodCall(n *ast.MethodCall, receiver types.Value, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	target := receiver
	if n.Target != nil {
		v, err := i.Eval(n.Target, frame, ctx)
		if err != nil {
			return nil, err
		}
		target = v
	}
	if target == nil {
		return nil, jexlerr.New(jexlerr.Method, n, "method %s has no receiver", n.Name)
	}
	if types.IsNull(target) {
		return types.Null, nil
	}

	args, err := i.evalElements(n.Args, frame, ctx)
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case *types.SetValue:
		return i.callSetMethod(t, n.Name, args, n)
	case *types.MapValue:
		if v, ok := i.callMapMethod(t, n.Name, args); ok {
			return v, nil
		}
	}

	obj, ok := target.(types.ObjectValue)
	if !ok {
		return nil, jexlerr.New(jexlerr.Method, n, "value of class %s has no method %s", target.Class(), n.Name)
	}

	if cached := n.Cache.Load(); cached != nil {
		if exec, ok := cached.(introspect.Executor); ok {
			v, ok, err := exec.TryInvoke(obj.Host, args)
			if ok {
				return v, err
			}
			n.Cache.Clear()
		}
	}

	exec, err := i.uber.GetMethod(obj.Host, n.Name, args)
	if err != nil {
		narrowed, changed := i.arith.NarrowArguments(args)
		if changed {
			exec, err = i.uber.GetMethod(obj.Host, n.Name, narrowed)
			args = narrowed
		}
	}
	if err != nil {
		// Last resort: the name may be a property whose value is callable
		// (a host Functor or a previously resolved Executor).
		if pexec, perr := i.uber.GetPropertyGet(obj.Host, n.Name); perr == nil {
			if pv, verr := pexec.Invoke(obj.Host, nil); verr == nil {
				if fobj, ok := pv.(types.ObjectValue); ok {
					switch f := fobj.Host.(type) {
					case Functor:
						return f(args)
					case introspect.Executor:
						return f.Invoke(obj.Host, args)
					}
				}
			}
		}
		if i.arith.Mode == arith.Strict {
			return nil, jexlerr.New(jexlerr.Method, n, "no method %s(%d args) on %T", n.Name, len(args), obj.Host)
		}
		return types.Null, nil
	}
	n.Cache.Store(exec)
	return exec.Invoke(obj.Host, args)
}

func (i *Interpreter) callSetMethod(s *types.SetValue, name string, args []types.Value, site ast.Node) (types.Value, error) {
	switch name {
	case "contains":
		if len(args) != 1 {
			return nil, jexlerr.New(jexlerr.Method, site, "contains expects 1 argument")
		}
		return types.BoolValue(s.Contains(args[0])), nil
	case "size":
		return types.IntValue(s.Len()), nil
	case "add":
		if len(args) != 1 {
			return nil, jexlerr.New(jexlerr.Method, site, "add expects 1 argument")
		}
		return types.BoolValue(s.Add(args[0])), nil
	default:
		return nil, jexlerr.New(jexlerr.Method, site, "set has no method %s", name)
	}
}

func (i *Interpreter) callMapMethod(m *types.MapValue, name string, args []types.Value) (types.Value, bool) {
	switch name {
	case "size":
		return types.IntValue(m.Len()), true
	case "get":
		if len(args) == 1 {
			if v, ok := m.Get(args[0].String()); ok {
				return v, true
			}
			return types.Null, true
		}
	case "put":
		if len(args) == 2 {
			m.Set(args[0].String(), args[1])
			return types.Null, true
		}
	case "containsKey":
		if len(args) == 1 {
			_, ok := m.Get(args[0].String())
			return types.BoolValue(ok), true
		}
	case "keySet":
		if len(args) == 0 {
			set := types.NewSet()
			for _, k := range m.Keys() {
				set.Add(types.StringValue(k))
			}
			return set, true
		}
	}
	return nil, false
}

// evalFunctionCall resolves an unqualified or namespaced function call.
// Resolution order: for `prefix:name(...)`, the Context's
// NamespaceResolver, then the engine-level namespace registry; for a
// bare `name(...)`, a Context variable holding a Functor, then the
// engine-level registry keyed by the bare name.
func (i *Interpreter) evalFunctionCall(n *ast.FunctionCall, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	args, err := i.evalElements(n.Args, frame, ctx)
	if err != nil {
		return nil, err
	}

	if n.Namespace != "" {
		if nr, ok := ctx.(jexlctx.NamespaceResolver); ok {
			if ns, ok := nr.ResolveNamespace(n.Namespace); ok {
				return i.callNamespaceMember(ns, n, args)
			}
		}
		if ns, ok := i.lookupFunction(n.Namespace); ok {
			return i.callNamespaceMember(ns, n, args)
		}
		return nil, jexlerr.New(jexlerr.Method, n, "unknown namespace %s", n.Namespace)
	}

	if v, ok := ctx.Get(n.Name); ok {
		if obj, ok := v.(types.ObjectValue); ok {
			if fn, ok := obj.Host.(Functor); ok {
				return fn(args)
			}
		}
	}
	if fn, ok := i.lookupFunction(n.Name); ok {
		return i.callNamespaceMember(fn, n, args)
	}
	return nil, jexlerr.New(jexlerr.Method, n, "unknown function %s", n.Name)
}

// callNamespaceMember invokes name against a resolved namespace value: a
// Functor is called directly; anything else is resolved as a method
// through Introspection, narrowing arguments once and retrying on a miss.
func (i *Interpreter) callNamespaceMember(ns any, n *ast.FunctionCall, args []types.Value) (types.Value, error) {
	if fn, ok := ns.(Functor); ok {
		return fn(args)
	}
	exec, err := i.uber.GetMethod(ns, n.Name, args)
	if err != nil {
		narrowed, changed := i.arith.NarrowArguments(args)
		if changed {
			exec, err = i.uber.GetMethod(ns, n.Name, narrowed)
			args = narrowed
		}
	}
	if err != nil {
		return nil, jexlerr.New(jexlerr.Method, n, "namespace has no function %s", n.Name)
	}
	return exec.Invoke(ns, args)
}

func (i *Interpreter) evalConstructorCall(n *ast.ConstructorCall, frame *scope.Frame, ctx jexlctx.Context) (types.Value, error) {
	className, ok := n.Class.(*ast.Identifier)
	if !ok {
		return nil, jexlerr.New(jexlerr.Internal, n, "invalid constructor target")
	}
	args, err := i.evalElements(n.Args, frame, ctx)
	if err != nil {
		return nil, err
	}

	if cached := n.Cache.Load(); cached != nil {
		if exec, ok := cached.(introspect.Executor); ok {
			v, ok, err := exec.TryInvoke(nil, args)
			if ok {
				return v, err
			}
			n.Cache.Clear()
		}
	}

	exec, err := i.uber.GetConstructor(className.Name, args)
	if err != nil {
		narrowed, changed := i.arith.NarrowArguments(args)
		if changed {
			exec, err = i.uber.GetConstructor(className.Name, narrowed)
			args = narrowed
		}
	}
	if err != nil {
		return nil, jexlerr.New(jexlerr.Method, n, "no constructor registered for %s", className.Name)
	}
	n.Cache.Store(exec)
	return exec.Invoke(nil, args)
}
