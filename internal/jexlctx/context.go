// Package jexlctx defines the abstract named-variable storage the host
// supplies to an evaluation, plus the optional namespace and
// nullable-aware extension interfaces and the built-in MapContext/
// EmptyContext implementations.
package jexlctx

import "github.com/cwbudde/go-jexl/internal/types"

// Context is the host-supplied mapping of names to values.
type Context interface {
	Get(name string) (types.Value, bool)
	Set(name string, value types.Value) error
	Has(name string) bool
}

// NamespaceResolver is an optional Context capability supplying function
// namespaces for FunctionCall nodes with a namespace prefix.
type NamespaceResolver interface {
	ResolveNamespace(prefix string) (any, bool)
}

// NullableAware is an optional Context capability letting the interpreter
// distinguish "defined to null" from "undefined" — strict-mode variable
// lookups use IsDefined to decide whether an undefined read is an error, rather
// than treating a null value as undefined.
type NullableAware interface {
	Context
	IsDefined(name string) bool
}

// emptyContext is an immutable context with no variables, used for
// contextless evaluation. Writes are rejected.
type emptyContext struct{}

// Empty is the shared, immutable empty Context.
var Empty Context = emptyContext{}

func (emptyContext) Get(string) (types.Value, bool) { return types.Null, false }
func (emptyContext) Has(string) bool                 { return false }
func (emptyContext) Set(name string, _ types.Value) error {
	return &WriteError{Name: name}
}

// WriteError is raised when a caller writes to a Context that rejects
// mutation (the EmptyContext, or a host-supplied read-only context).
type WriteError struct{ Name string }

func (e *WriteError) Error() string { return "context does not support writes: " + e.Name }

// MapContext is the engine's default, in-memory Context implementation: a
// simple name->value map the host pre-populates or mutates through Set.
type MapContext struct {
	vars       map[string]types.Value
	namespaces map[string]any
}

// NewMapContext creates an empty MapContext.
func NewMapContext() *MapContext {
	return &MapContext{vars: make(map[string]types.Value)}
}

// NewMapContextFrom creates a MapContext pre-populated from vars. The map
// is copied; later mutation of the caller's map does not affect the
// context.
func NewMapContextFrom(vars map[string]types.Value) *MapContext {
	c := NewMapContext()
	for k, v := range vars {
		c.vars[k] = v
	}
	return c
}

func (c *MapContext) Get(name string) (types.Value, bool) {
	v, ok := c.vars[name]
	return v, ok
}

func (c *MapContext) Set(name string, value types.Value) error {
	c.vars[name] = value
	return nil
}

func (c *MapContext) Has(name string) bool {
	_, ok := c.vars[name]
	return ok
}

// IsDefined implements NullableAware: a MapContext distinguishes "absent"
// from "present and null" via ordinary map lookup.
func (c *MapContext) IsDefined(name string) bool {
	_, ok := c.vars[name]
	return ok
}

// RegisterNamespace binds prefix to a namespace object or class value for
// Function call resolution.
func (c *MapContext) RegisterNamespace(prefix string, ns any) {
	if c.namespaces == nil {
		c.namespaces = make(map[string]any)
	}
	c.namespaces[prefix] = ns
}

// ResolveNamespace implements NamespaceResolver.
func (c *MapContext) ResolveNamespace(prefix string) (any, bool) {
	ns, ok := c.namespaces[prefix]
	return ns, ok
}
