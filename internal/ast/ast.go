// Package ast defines the abstract-syntax-tree node types the evaluator
// walks. The lexer/parser package is the only producer of these nodes in
// this module, but the engine accepts a tree built by any producer: the
// only contract is this package.
package ast

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cwbudde/go-jexl/internal/lexer"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() lexer.Position
	String() string
}

// Expression is a node that produces a value when evaluated.
type Expression interface {
	Node
	expressionNode()
}

// Statement is a node that performs an action, evaluated for its side
// effect (and, for the last statement of a block/script, its value).
type Statement interface {
	Node
	statementNode()
}

// Base carries the position and source image shared by every node.
// It is embedded, never used standalone.
type Base struct {
	Position lexer.Position
	Image    string
}

func (b Base) Pos() lexer.Position { return b.Position }

// ExecutorCache is the per-node memoized-executor slot described by the
// data model's "cached value slot is monotonic per successful execution"
// invariant. It is safe to publish/read concurrently: a torn or lost write
// merely costs a re-resolution (see the interpreter's cache-invalidation
// policy), so an atomic.Pointer is sufficient without a lock.
type ExecutorCache struct {
	slot atomic.Pointer[any]
}

// Load returns the cached value, or nil if nothing has been published yet.
func (c *ExecutorCache) Load() any {
	p := c.slot.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Store publishes v as the new cached value.
func (c *ExecutorCache) Store(v any) {
	c.slot.Store(&v)
}

// Clear drops any cached value, forcing the next evaluation to re-resolve.
func (c *ExecutorCache) Clear() {
	c.slot.Store(nil)
}

// ---- Literals ----

type NullLit struct {
	Base
}

func (n *NullLit) expressionNode() {}
func (n *NullLit) String() string  { return "null" }

type BoolLit struct {
	Base
	Value bool
}

func (b *BoolLit) expressionNode() {}
func (b *BoolLit) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// IntLit is an integer literal. Value is parsed as int64; there is no
// separate big-integer literal node.
type IntLit struct {
	Base
	Value int64
}

func (n *IntLit) expressionNode() {}
func (n *IntLit) String() string  { return n.Image }

// FloatLit is a floating-point literal.
type FloatLit struct {
	Base
	Value float64
}

func (n *FloatLit) expressionNode() {}
func (n *FloatLit) String() string  { return n.Image }

// StringLit is a string literal.
type StringLit struct {
	Base
	Value string
}

func (n *StringLit) expressionNode() {}
func (n *StringLit) String() string  { return fmt.Sprintf("%q", n.Value) }

// ArrayLit is an array literal; Cache holds the type-narrowed array Value
// computed the first time it is evaluated. Literal narrowing is cached on
// the node after first evaluation and is idempotent.
type ArrayLit struct {
	Base
	Elements []Expression
	Cache    ExecutorCache
}

func (a *ArrayLit) expressionNode() {}
func (a *ArrayLit) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MapEntry is a single key/value pair inside a MapLit.
type MapEntry struct {
	Base
	Key   Expression
	Value Expression
}

func (m *MapEntry) expressionNode() {}
func (m *MapEntry) String() string  { return m.Key.String() + ": " + m.Value.String() }

// MapLit is a map literal.
type MapLit struct {
	Base
	Entries []*MapEntry
}

func (m *MapLit) expressionNode() {}
func (m *MapLit) String() string {
	parts := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ---- Identifiers & references ----

// Identifier is a bare name. Register is >= 0 when the parser's lexical
// scope bound this name to a parameter or local; it is -1 when resolution
// must fall through to the Context at evaluation time.
type Identifier struct {
	Base
	Name     string
	Register int
}

func (i *Identifier) expressionNode() {}
func (i *Identifier) String() string  { return i.Name }

// Var is an identifier in declaration position (e.g. the loop variable of
// a Foreach, or the left side of a local declaration).
type Var struct {
	Base
	Name     string
	Register int
}

func (v *Var) expressionNode() {}
func (v *Var) String() string  { return v.Name }

// Reference is a dot-path: a base expression followed by one or more
// identifier/property steps, e.g. `foo.bar.baz`.
type Reference struct {
	Base
	Parts []Expression
}

func (r *Reference) expressionNode() {}
func (r *Reference) String() string {
	parts := make([]string, len(r.Parts))
	for i, p := range r.Parts {
		parts[i] = p.String()
	}
	return strings.Join(parts, ".")
}

// ReferenceExpression wraps a parenthesised base of a reference chain,
// e.g. the `(a + b)` in `(a + b).toString()`.
type ReferenceExpression struct {
	Base
	Inner Expression
}

func (r *ReferenceExpression) expressionNode() {}
func (r *ReferenceExpression) String() string  { return "(" + r.Inner.String() + ")" }

// ArrayAccess is `base[index][index2]...`.
type ArrayAccess struct {
	Base
	Target  Expression
	Indices []Expression
}

func (a *ArrayAccess) expressionNode() {}
func (a *ArrayAccess) String() string {
	var sb strings.Builder
	sb.WriteString(a.Target.String())
	for _, idx := range a.Indices {
		sb.WriteString("[")
		sb.WriteString(idx.String())
		sb.WriteString("]")
	}
	return sb.String()
}

// ---- Operators ----

// BinaryExpr covers Add, Sub, Mul, Div, Mod, BitAnd, BitOr, BitXor, And, Or,
// Eq, Ne, Lt, Le, Gt, Ge, InOrMatch (=~), NotInOrMatch (!~): the Op field
// carries the concrete operator token.
type BinaryExpr struct {
	Base
	Op    string
	Left  Expression
	Right Expression
}

func (b *BinaryExpr) expressionNode() {}
func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

// UnaryExpr covers UnaryMinus, Not, BitCompl.
type UnaryExpr struct {
	Base
	Op      string
	Operand Expression
}

func (u *UnaryExpr) expressionNode() {}
func (u *UnaryExpr) String() string  { return "(" + u.Op + u.Operand.String() + ")" }

// ---- Statements ----

// Script is the root node: an ordered list of top-level statements.
type Script struct {
	Base
	Statements []Statement
}

func (s *Script) statementNode() {}
func (s *Script) String() string {
	parts := make([]string, len(s.Statements))
	for i, st := range s.Statements {
		parts[i] = st.String()
	}
	return strings.Join(parts, "\n")
}

// Block is `{ stmt; stmt; ... }` (or the parser's statement-list form).
type Block struct {
	Base
	Statements []Statement
}

func (b *Block) statementNode() {}
func (b *Block) String() string {
	parts := make([]string, len(b.Statements))
	for i, st := range b.Statements {
		parts[i] = st.String()
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// ExprStatement wraps an Expression used as a Statement (most JEXL script
// lines are of this form).
type ExprStatement struct {
	Base
	Expr Expression
}

func (e *ExprStatement) statementNode() {}
func (e *ExprStatement) String() string { return e.Expr.String() }

// If is `if (cond) then else?`.
type If struct {
	Base
	Cond Expression
	Then Statement
	Else Statement // nil if there is no else branch
}

func (i *If) statementNode() {}
func (i *If) String() string {
	s := "if (" + i.Cond.String() + ") " + i.Then.String()
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

// While is `while (cond) body`.
type While struct {
	Base
	Cond Expression
	Body Statement
}

func (w *While) statementNode() {}
func (w *While) String() string { return "while (" + w.Cond.String() + ") " + w.Body.String() }

// Foreach is `for (var in iterable) body`.
type Foreach struct {
	Base
	Var      Expression // Identifier or Var; the loop variable reference
	Iterable Expression
	Body     Statement
}

func (f *Foreach) statementNode() {}
func (f *Foreach) String() string {
	return "for (" + f.Var.String() + " in " + f.Iterable.String() + ") " + f.Body.String()
}

// Return unwinds evaluation with the value of Expr.
type Return struct {
	Base
	Expr Expression // nil for a bare `return;`
}

func (r *Return) statementNode() {}
func (r *Return) String() string {
	if r.Expr == nil {
		return "return"
	}
	return "return " + r.Expr.String()
}

// Assign is a mutation: Target is a register Identifier, a Reference, or an
// ArrayAccess chain; Value is the right-hand side.
type Assign struct {
	Base
	Target Expression
	Value  Expression
}

func (a *Assign) expressionNode() {}
func (a *Assign) String() string  { return a.Target.String() + " = " + a.Value.String() }

// Ternary covers both `c ? a : b` (When != nil) and `c ?: b` (When == nil,
// the Elvis form).
type Ternary struct {
	Base
	Cond Expression
	When Expression // nil for the `c ?: b` form
	Else Expression
}

func (t *Ternary) expressionNode() {}
func (t *Ternary) String() string {
	if t.When == nil {
		return "(" + t.Cond.String() + " ?: " + t.Else.String() + ")"
	}
	return "(" + t.Cond.String() + " ? " + t.When.String() + " : " + t.Else.String() + ")"
}

// ---- Calls ----

// MethodCall is `target.name(args...)`. Target is nil when the method call
// appears inside an in-progress Reference chain (the receiver is then the
// chain's current value).
type MethodCall struct {
	Base
	Target Expression
	Name   string
	Args   []Expression
	Cache  ExecutorCache
}

func (m *MethodCall) expressionNode() {}
func (m *MethodCall) String() string {
	parts := make([]string, len(m.Args))
	for i, a := range m.Args {
		parts[i] = a.String()
	}
	prefix := ""
	if m.Target != nil {
		prefix = m.Target.String() + "."
	}
	return prefix + m.Name + "(" + strings.Join(parts, ", ") + ")"
}

// FunctionCall is `prefix:name(args...)`; Namespace is "" for an
// unqualified function.
type FunctionCall struct {
	Base
	Namespace string
	Name      string
	Args      []Expression
	Cache     ExecutorCache
}

func (f *FunctionCall) expressionNode() {}
func (f *FunctionCall) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	name := f.Name
	if f.Namespace != "" {
		name = f.Namespace + ":" + f.Name
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

// ConstructorCall is `new ClassName(args...)`.
type ConstructorCall struct {
	Base
	Class Expression
	Args  []Expression
	Cache ExecutorCache
}

func (c *ConstructorCall) expressionNode() {}
func (c *ConstructorCall) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return "new " + c.Class.String() + "(" + strings.Join(parts, ", ") + ")"
}

// SizeFunction is `size(expr)`.
type SizeFunction struct {
	Base
	Arg Expression
}

func (s *SizeFunction) expressionNode() {}
func (s *SizeFunction) String() string  { return "size(" + s.Arg.String() + ")" }

// SizeMethod is `expr.size()`, the pseudo-method spelling of SizeFunction.
type SizeMethod struct {
	Base
	Target Expression
}

func (s *SizeMethod) expressionNode() {}
func (s *SizeMethod) String() string  { return s.Target.String() + ".size()" }

// EmptyFunction is `empty(expr)`.
type EmptyFunction struct {
	Base
	Arg Expression
}

func (e *EmptyFunction) expressionNode() {}
func (e *EmptyFunction) String() string  { return "empty(" + e.Arg.String() + ")" }
