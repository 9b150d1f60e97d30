package introspect

import (
	"reflect"
	"sync"
	"unicode"

	"github.com/cwbudde/go-jexl/internal/types"
)

// Uberspect resolves property get/set, method, and constructor Executors
// against arbitrary host values, caching resolutions per (runtime type,
// member name) so repeated calls against the same object shape avoid
// re-walking reflect.Type.
type Uberspect struct {
	mu    sync.RWMutex
	cache map[cacheKey]Executor

	constructors   map[string]reflect.Value
	constructorsMu sync.RWMutex
}

type cacheKey struct {
	typ   reflect.Type
	name  string
	isSet bool
	arity int
}

// New creates an empty Uberspect.
func New() *Uberspect {
	return &Uberspect{
		cache:        make(map[cacheKey]Executor),
		constructors: make(map[string]reflect.Value),
	}
}

// RegisterConstructor binds name to a Go constructor function, used by
// ConstructorCall resolution when the callee names a registered type
// rather than a host class reachable via reflect (Go has no
// Class.forName equivalent, so constructors are named explicitly).
func (u *Uberspect) RegisterConstructor(name string, fn any) {
	u.constructorsMu.Lock()
	defer u.constructorsMu.Unlock()
	u.constructors[name] = reflect.ValueOf(fn)
}

// GetConstructor resolves a registered constructor by name.
func (u *Uberspect) GetConstructor(name string, args []types.Value) (Executor, error) {
	u.constructorsMu.RLock()
	fn, ok := u.constructors[name]
	u.constructorsMu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Kind: "constructor", Name: name}
	}
	return &constructorExecutor{fn: fn}, nil
}

// GetPropertyGet resolves a read access of target.name (or target[name]),
// trying, in order: an exported struct field, a getter method (Get<Name> or
// a bare <Name> method), an "Is<Name>" boolean accessor, a slice/array
// index (when name parses as an integer), and finally a duck-typed
// Get(key) method. A Go map host is not looked up by key here.
func (u *Uberspect) GetPropertyGet(target any, name string) (Executor, error) {
	if target == nil {
		return nil, &NotFoundError{Kind: "property", Name: name}
	}
	if _, ok := target.(*JSONObject); ok {
		return &jsonGetExecutor{name: name}, nil
	}
	key := cacheKey{typ: reflect.TypeOf(target), name: name, isSet: false}
	if e, ok := u.lookup(key); ok {
		return e, nil
	}

	rv := reflect.ValueOf(target)
	rt := rv.Type()
	deref := rt
	for deref.Kind() == reflect.Ptr {
		deref = deref.Elem()
	}

	title := titleCase(name)

	if deref.Kind() == reflect.Struct {
		if _, ok := deref.FieldByName(title); ok {
			e := &fieldExecutor{targetType: newTargetType(target), name: title}
			u.store(key, e)
			return e, nil
		}
	}
	for _, candidate := range []string{"Get" + title, title} {
		if m := rv.MethodByName(candidate); m.IsValid() && m.Type().NumIn() == 0 {
			e := &methodExecutor{targetType: newTargetType(target), name: candidate}
			u.store(key, e)
			return e, nil
		}
	}
	if m := rv.MethodByName("Is" + title); m.IsValid() && m.Type().NumIn() == 0 {
		e := &methodExecutor{targetType: newTargetType(target), name: "Is" + title}
		u.store(key, e)
		return e, nil
	}
	if deref.Kind() == reflect.Slice || deref.Kind() == reflect.Array {
		if _, ok := parseIndex(name); ok {
			e := &indexExecutor{targetType: newTargetType(target)}
			u.store(key, e)
			return e, nil
		}
	}
	if m := rv.MethodByName("Get"); m.IsValid() && m.Type().NumIn() == 1 {
		e := &duckExecutor{targetType: newTargetType(target)}
		u.store(key, e)
		return e, nil
	}
	return nil, &NotFoundError{Kind: "property", Name: name}
}

// GetPropertySet mirrors GetPropertyGet for writes: an exported field, a
// Set<Name> method, an index-set, or a duck-typed Set(key, value) method.
func (u *Uberspect) GetPropertySet(target any, name string) (Executor, error) {
	if target == nil {
		return nil, &NotFoundError{Kind: "property", Name: name}
	}
	if _, ok := target.(*JSONObject); ok {
		return &jsonSetExecutor{name: name}, nil
	}
	key := cacheKey{typ: reflect.TypeOf(target), name: name, isSet: true}
	if e, ok := u.lookup(key); ok {
		return e, nil
	}

	rv := reflect.ValueOf(target)
	deref := rv.Type()
	for deref.Kind() == reflect.Ptr {
		deref = deref.Elem()
	}
	title := titleCase(name)

	if deref.Kind() == reflect.Struct {
		if _, ok := deref.FieldByName(title); ok {
			e := &fieldExecutor{targetType: newTargetType(target), name: title, isSet: true}
			u.store(key, e)
			return e, nil
		}
	}
	if m := rv.MethodByName("Set" + title); m.IsValid() && m.Type().NumIn() == 1 {
		e := &methodExecutor{targetType: newTargetType(target), name: "Set" + title}
		u.store(key, e)
		return e, nil
	}
	if deref.Kind() == reflect.Slice || deref.Kind() == reflect.Array {
		if _, ok := parseIndex(name); ok {
			e := &indexExecutor{targetType: newTargetType(target), isSet: true}
			u.store(key, e)
			return e, nil
		}
	}
	if m := rv.MethodByName("Set"); m.IsValid() && m.Type().NumIn() == 2 {
		e := &duckExecutor{targetType: newTargetType(target), isSet: true}
		u.store(key, e)
		return e, nil
	}
	return nil, &NotFoundError{Kind: "property", Name: name}
}

// GetMethod resolves a named method call with arity-matching arguments.
// The caller is expected to retry via arith.NarrowArguments on failure,
// the narrow-and-retry step used for numeric overload resolution.
func (u *Uberspect) GetMethod(target any, name string, args []types.Value) (Executor, error) {
	if target == nil {
		return nil, &NotFoundError{Kind: "method", Name: name}
	}
	if _, ok := target.(*JSONObject); ok && name == "size" && len(args) == 0 {
		return jsonSizeExecutor{}, nil
	}
	key := cacheKey{typ: reflect.TypeOf(target), name: name, arity: len(args)}
	if e, ok := u.lookup(key); ok {
		return e, nil
	}
	rv := reflect.ValueOf(target)
	title := titleCase(name)
	for _, candidate := range []string{title, name} {
		if m := rv.MethodByName(candidate); m.IsValid() {
			mt := m.Type()
			if mt.NumIn() == len(args) || (mt.IsVariadic() && len(args) >= mt.NumIn()-1) {
				e := &methodExecutor{targetType: newTargetType(target), name: candidate}
				u.store(key, e)
				return e, nil
			}
		}
	}
	return nil, &NotFoundError{Kind: "method", Name: name}
}

func (u *Uberspect) lookup(key cacheKey) (Executor, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	e, ok := u.cache[key]
	return e, ok
}

func (u *Uberspect) store(key cacheKey, e Executor) {
	if !e.Cacheable() {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cache[key] = e
}

// Invalidate drops every cached Executor for typ, used when a structural
// rebuild (e.g. a registered namespace reloading a type) makes earlier
// resolutions stale.
func (u *Uberspect) Invalidate(typ reflect.Type) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for k := range u.cache {
		if k.typ == typ {
			delete(u.cache, k)
		}
	}
}

func titleCase(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func parseIndex(name string) (int, bool) {
	if name == "" {
		return 0, false
	}
	n := 0
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
