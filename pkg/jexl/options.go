package jexl

import (
	"log"

	"github.com/cwbudde/go-jexl/internal/arith"
	"github.com/cwbudde/go-jexl/internal/introspect"
)

// Option configures an Engine at construction time. WithLenient,
// WithSilent, WithDebug, WithCacheSize and WithMathContext also have a
// corresponding Set method for reconfiguring an already-built Engine;
// WithLogger, WithUberspect and WithArithmetic do not. Changes take effect
// between evaluations, not during one.
type Option func(*Engine)

// WithLenient sets the initial arithmetic mode. Defaults to lenient.
func WithLenient(lenient bool) Option {
	return func(e *Engine) {
		if lenient {
			e.arith.Mode = arith.Lenient
		} else {
			e.arith.Mode = arith.Strict
		}
	}
}

// WithSilent sets whether runtime errors are swallowed (returning null)
// rather than propagated.
func WithSilent(silent bool) Option {
	return func(e *Engine) { e.silent = silent }
}

// WithDebug sets whether raised errors carry source location/rebuilt-text
// debug info.
func WithDebug(debug bool) Option {
	return func(e *Engine) { e.debug = debug }
}

// WithCacheSize bounds the source→AST cache; non-positive disables it.
func WithCacheSize(size int) Option {
	return func(e *Engine) { e.cacheSize = size }
}

// WithMathContext configures big-decimal precision/rounding.
func WithMathContext(ctx arith.MathContext) Option {
	return func(e *Engine) { e.arith.MathCtx = ctx }
}

// WithLogger replaces the logger errors and silenced failures are written
// to. Defaults to log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithUberspect replaces the introspector used for host-object access.
// Defaults to a fresh introspect.New().
func WithUberspect(uber *introspect.Uberspect) Option {
	return func(e *Engine) { e.uber = uber }
}

// WithArithmetic replaces the whole arithmetic object, overriding any
// WithLenient/WithMathContext options applied before it in the option
// list.
func WithArithmetic(a *arith.Arithmetic) Option {
	return func(e *Engine) { e.arith = a }
}
