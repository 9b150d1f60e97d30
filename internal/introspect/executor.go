package introspect

import (
	"reflect"

	"github.com/cwbudde/go-jexl/internal/types"
)

// Executor is a resolved property-get, property-set, method, or
// constructor, reusable across evaluations of the same AST node as long as
// the target's shape (runtime type) has not changed.
type Executor interface {
	// Invoke performs the resolved operation against target with args.
	Invoke(target any, args []types.Value) (types.Value, error)
	// TryInvoke attempts the fast path. ok is false ("TRY_FAILED") when
	// target's runtime type no longer matches what this Executor was
	// resolved against; the caller must re-resolve in that case.
	TryInvoke(target any, args []types.Value) (result types.Value, ok bool, err error)
	// Cacheable reports whether the interpreter may memoize this Executor
	// on its originating AST node.
	Cacheable() bool
}

// targetType captures the runtime type an Executor was resolved against,
// shared by every concrete executor below so TryInvoke can cheaply detect
// a shape change.
type targetType struct {
	typ reflect.Type
}

func (t targetType) matches(target any) bool {
	if target == nil {
		return t.typ == nil
	}
	return reflect.TypeOf(target) == t.typ
}

func newTargetType(target any) targetType {
	if target == nil {
		return targetType{}
	}
	return targetType{typ: reflect.TypeOf(target)}
}

// fieldExecutor reads/writes an exported struct field by name.
type fieldExecutor struct {
	targetType
	name  string
	isSet bool
}

func (e *fieldExecutor) Cacheable() bool { return true }

func (e *fieldExecutor) Invoke(target any, args []types.Value) (types.Value, error) {
	rv := reflect.ValueOf(target)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	fv := rv.FieldByName(e.name)
	if e.isSet {
		converted, err := ToGo(args[0], fv.Type())
		if err != nil {
			return nil, err
		}
		fv.Set(converted)
		return types.Null, nil
	}
	return FromGo(fv), nil
}

func (e *fieldExecutor) TryInvoke(target any, args []types.Value) (types.Value, bool, error) {
	if !e.matches(target) {
		return nil, false, nil
	}
	v, err := e.Invoke(target, args)
	return v, true, err
}

// methodExecutor invokes the method called name on the target, looked up
// with reflect's MethodByName.
type methodExecutor struct {
	targetType
	name string
}

func (e *methodExecutor) Cacheable() bool { return true }

func (e *methodExecutor) resolve(target any) (reflect.Value, bool) {
	rv := reflect.ValueOf(target)
	m := rv.MethodByName(e.name)
	return m, m.IsValid()
}

func (e *methodExecutor) Invoke(target any, args []types.Value) (types.Value, error) {
	m, ok := e.resolve(target)
	if !ok {
		return nil, &NotFoundError{Kind: "method", Name: e.name}
	}
	return callReflect(m, args)
}

func (e *methodExecutor) TryInvoke(target any, args []types.Value) (types.Value, bool, error) {
	if !e.matches(target) {
		return nil, false, nil
	}
	v, err := e.Invoke(target, args)
	return v, true, err
}

func callReflect(m reflect.Value, args []types.Value) (types.Value, error) {
	mt := m.Type()
	in := make([]reflect.Value, 0, len(args))
	for i, a := range args {
		if i >= mt.NumIn() && !mt.IsVariadic() {
			break
		}
		var want reflect.Type
		if mt.IsVariadic() && i >= mt.NumIn()-1 {
			want = mt.In(mt.NumIn() - 1).Elem()
		} else {
			want = mt.In(i)
		}
		cv, err := ToGo(a, want)
		if err != nil {
			return nil, err
		}
		in = append(in, cv)
	}
	out := m.Call(in)
	return resultsToValue(out)
}

func resultsToValue(out []reflect.Value) (types.Value, error) {
	if len(out) == 0 {
		return types.Null, nil
	}
	// Last result is treated as an error channel if it implements `error`
	// and is non-nil, mirroring Go's (value, error) convention.
	last := out[len(out)-1]
	if last.Type().Implements(errorType) {
		if !last.IsNil() {
			return nil, last.Interface().(error)
		}
		if len(out) == 1 {
			return types.Null, nil
		}
		return FromGo(out[0]), nil
	}
	return FromGo(out[0]), nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// NotFoundError indicates a property/method/constructor Uberspect could
// not resolve.
type NotFoundError struct {
	Kind string // "property", "method", "constructor"
	Name string
}

func (e *NotFoundError) Error() string { return e.Kind + " not found: " + e.Name }

// duckExecutor calls a duck-typed Get(key)/Set(key,value) method taking a
// raw `any` selector, the last-resort resolution step.
type duckExecutor struct {
	targetType
	isSet bool
}

func (e *duckExecutor) Cacheable() bool { return true }

func (e *duckExecutor) Invoke(target any, args []types.Value) (types.Value, error) {
	rv := reflect.ValueOf(target)
	name := "Get"
	if e.isSet {
		name = "Set"
	}
	m := rv.MethodByName(name)
	if !m.IsValid() {
		return nil, &NotFoundError{Kind: "method", Name: name}
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(FromValue(a))
	}
	out := m.Call(in)
	return resultsToValue(out)
}

func (e *duckExecutor) TryInvoke(target any, args []types.Value) (types.Value, bool, error) {
	if !e.matches(target) {
		return nil, false, nil
	}
	v, err := e.Invoke(target, args)
	return v, true, err
}

// indexExecutor reads/writes a slice/array element by integer index.
type indexExecutor struct {
	targetType
	isSet bool
}

func (e *indexExecutor) Cacheable() bool { return true }

func (e *indexExecutor) Invoke(target any, args []types.Value) (types.Value, error) {
	rv := reflect.ValueOf(target)
	idx, err := toInt64(args[0])
	if err != nil {
		return nil, err
	}
	if idx < 0 || int(idx) >= rv.Len() {
		return types.Null, nil
	}
	elem := rv.Index(int(idx))
	if e.isSet {
		converted, err := ToGo(args[1], elem.Type())
		if err != nil {
			return nil, err
		}
		elem.Set(converted)
		return types.Null, nil
	}
	return FromGo(elem), nil
}

func (e *indexExecutor) TryInvoke(target any, args []types.Value) (types.Value, bool, error) {
	if !e.matches(target) {
		return nil, false, nil
	}
	v, err := e.Invoke(target, args)
	return v, true, err
}

// constructorExecutor calls a registered constructor function
// `func(args...) (any, error)` or `func(args...) any`.
type constructorExecutor struct {
	fn reflect.Value
}

func (e *constructorExecutor) Cacheable() bool { return true }

func (e *constructorExecutor) Invoke(_ any, args []types.Value) (types.Value, error) {
	return callReflect(e.fn, args)
}

func (e *constructorExecutor) TryInvoke(target any, args []types.Value) (types.Value, bool, error) {
	v, err := e.Invoke(target, args)
	return v, true, err
}
