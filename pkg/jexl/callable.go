package jexl

import "github.com/cwbudde/go-jexl/internal/types"

// Callable is a deferred, single-shot evaluation built by
// Expression.Callable/Script.Callable: the first Invoke runs the bound
// evaluation and caches the result; later calls replay it without
// re-evaluating.
type Callable struct {
	invoke func() (types.Value, error)
	done   bool
	result types.Value
	err    error
}

// Invoke runs the bound evaluation on first call and returns its cached
// result on every subsequent call.
func (c *Callable) Invoke() (types.Value, error) {
	if !c.done {
		c.result, c.err = c.invoke()
		c.done = true
	}
	return c.result, c.err
}

// NewCallable builds a Callable directly from fn, letting host code wrap
// arbitrary work (e.g. invoking a registered namespace function) in the
// same deferred, memoized calling convention.
func NewCallable(fn func() (types.Value, error)) *Callable {
	return &Callable{invoke: fn}
}
