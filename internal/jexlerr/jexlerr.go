// Package jexlerr defines the structured error kinds raised by the
// arithmetic, introspection, scope, and interpreter layers, and the
// source-text rebuild used to render a diagnostic view of the offending
// sub-expression. Each error carries an AST node rather than a fixed
// lexer.Position, since any node in this engine can report its own Pos().
package jexlerr

import (
	"fmt"

	"github.com/cwbudde/go-jexl/internal/lexer"
)

// Kind classifies an Error.
type Kind int

const (
	Tokenization Kind = iota
	Parsing
	Variable
	Property
	Method
	NumericOperand
	NullOperand
	Arithmetic
	InvalidComparison
	Return   // control-flow signal, not a user-facing error
	Cancel   // control-flow signal, not a user-facing error
	Internal // anything not covered by the above
)

func (k Kind) String() string {
	switch k {
	case Tokenization:
		return "Tokenization"
	case Parsing:
		return "Parsing"
	case Variable:
		return "Variable"
	case Property:
		return "Property"
	case Method:
		return "Method"
	case NumericOperand:
		return "NumericOperand"
	case NullOperand:
		return "NullOperand"
	case Arithmetic:
		return "Arithmetic"
	case InvalidComparison:
		return "InvalidComparison"
	case Return:
		return "Return"
	case Cancel:
		return "Cancel"
	default:
		return "Internal"
	}
}

// Node is the minimal surface jexlerr needs from an AST node: a position
// and a source rendering. internal/ast.Node satisfies it.
type Node interface {
	Pos() lexer.Position
	String() string
}

// Error is the single error type every engine-raised failure uses.
type Error struct {
	Kind    Kind
	Message string
	Node    Node // offending node, nil for errors with no single site
	// Debug, when set by the engine's debug option, holds a rebuilt
	// source-text view of Node with Start/End rune offsets into it.
	Debug *DebugInfo
}

// DebugInfo is the rebuilt-source diagnostic view attached to an Error
// when debug mode is enabled.
type DebugInfo struct {
	Source string
	Start  int
	End    int
}

func (e *Error) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("%s: %s at %d:%d", e.Kind, e.Message, e.Node.Pos().Line, e.Node.Pos().Column)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs an Error of the given kind at node.
func New(kind Kind, node Node, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Node: node}
}

// IsControlFlow reports whether err is a Return or Cancel signal rather
// than a user-facing diagnostic.
func IsControlFlow(err error) bool {
	e, ok := err.(*Error)
	return ok && (e.Kind == Return || e.Kind == Cancel)
}

// WithDebug attaches a rebuilt-source view to e and returns e for chaining.
func (e *Error) WithDebug(source string, start, end int) *Error {
	e.Debug = &DebugInfo{Source: source, Start: start, End: end}
	return e
}
