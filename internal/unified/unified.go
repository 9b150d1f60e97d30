// Package unified implements the unified expression layer: a source
// string mixing literal text with immediate (`${…}`) and deferred
// (`#{…}`) JEXL sub-expressions, including the nested `#{ … ${…} … }`
// form. Fragments are scanned with a hand-rolled state machine reading
// rune-by-rune, tracking nested delimiters and string-literal skipping.
//
// This package never imports internal/parser: it receives JEXL source
// fragments as plain strings and calls back into an Eval function the
// caller supplies, so parsing and evaluating sub-expressions stays the
// caller's responsibility — the unified layer composes expressions, it
// does not parse them.
package unified

import (
	"strings"

	"github.com/cwbudde/go-jexl/internal/types"
)

// Kind classifies a parsed unified fragment.
type Kind int

const (
	ConstantKind Kind = iota
	ImmediateKind
	DeferredKind
	NestedKind
	CompositeKind
)

// EvalFunc parses and evaluates a JEXL source fragment, returning its
// Value. Callers bind this to a particular Context/Frame.
type EvalFunc func(source string) (types.Value, error)

// Expr is a parsed unified expression: a single fragment, or (when Kind is
// CompositeKind) an ordered sequence of fragments concatenated by value.
type Expr struct {
	Kind     Kind
	Text     string // raw text (Constant), or JEXL source (Immediate/Deferred/Nested)
	Value    types.Value // set on a Constant produced by Prepare, to preserve the original typed value
	Fragments []*Expr    // populated only when Kind == CompositeKind
	source   string      // the full original source text, kept on the outermost Expr
}

// Source returns the original source text this Expr was parsed from.
func (e *Expr) Source() string { return e.source }

// IsImmediate reports whether e resolves entirely in the first (prepare)
// phase: true for Constant and Immediate fragments, and for a Composite
// whose fragments are all immediate.
func (e *Expr) IsImmediate() bool {
	switch e.Kind {
	case ConstantKind, ImmediateKind:
		return true
	case CompositeKind:
		for _, f := range e.Fragments {
			if !f.IsImmediate() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsDeferred reports whether e retains work past the prepare phase: true
// for Deferred and Nested fragments, and for a Composite containing any.
func (e *Expr) IsDeferred() bool {
	switch e.Kind {
	case DeferredKind, NestedKind:
		return true
	case CompositeKind:
		for _, f := range e.Fragments {
			if f.IsDeferred() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// SubSources returns the JEXL source text of every Immediate/Deferred/
// Nested fragment e contains, for a caller (the façade's variables())
// that wants to parse and walk each one.
func (e *Expr) SubSources() []string {
	switch e.Kind {
	case ImmediateKind, DeferredKind, NestedKind:
		return []string{e.Text}
	case CompositeKind:
		var out []string
		for _, f := range e.Fragments {
			out = append(out, f.SubSources()...)
		}
		return out
	default:
		return nil
	}
}

// String renders e back to its unified-expression spelling.
func (e *Expr) String() string {
	switch e.Kind {
	case ConstantKind:
		return escapeConstant(e.Text)
	case ImmediateKind:
		return "${" + e.Text + "}"
	case DeferredKind:
		return "#{" + e.Text + "}"
	case NestedKind:
		return "#{" + e.Text + "}"
	case CompositeKind:
		var sb strings.Builder
		for _, f := range e.Fragments {
			sb.WriteString(f.String())
		}
		return sb.String()
	default:
		return ""
	}
}

func escapeConstant(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `$`, `\$`, `#`, `\#`)
	return r.Replace(s)
}

// Prepare runs the first evaluation phase: immediate sub-expressions are
// replaced by constant values, deferred ones are retained unchanged, and a
// nested expression becomes an immediate of its computed sub-JEXL source.
// Immediate-only expressions are idempotent under Prepare; calling Prepare
// again on the result re-evaluates nothing further for those fragments
// since they are already ConstantKind.
func (e *Expr) Prepare(eval EvalFunc) (*Expr, error) {
	switch e.Kind {
	case ConstantKind:
		return e, nil
	case ImmediateKind:
		v, err := eval(e.Text)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ConstantKind, Value: v, Text: v.String()}, nil
	case DeferredKind:
		return e, nil
	case NestedKind:
		newSource, err := e.resolveNestedSource(eval)
		if err != nil {
			return nil, err
		}
		return &Expr{Kind: ImmediateKind, Text: newSource}, nil
	case CompositeKind:
		out := make([]*Expr, len(e.Fragments))
		for i, f := range e.Fragments {
			p, err := f.Prepare(eval)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return &Expr{Kind: CompositeKind, Fragments: out, source: e.source}, nil
	default:
		return e, nil
	}
}

// resolveNestedSource computes the JEXL source the deferred phase of a
// nested `#{ … ${…} … }` expression will parse and evaluate. The body is
// itself a JEXL expression in which each inner `${…}` stands for its
// evaluated value: every immediate is substituted as a quoted string
// literal, the substituted source is evaluated, and the string form of
// that result is the new JEXL source. E.g. `#{${hi}+'.world'}` with hi
// bound to "hello" substitutes to `'hello'+'.world'`, evaluates to
// "hello.world", and the deferred phase then evaluates `hello.world`.
// Per the engine's decision on nested-expression errors: a parse failure
// here is never swallowed by silent mode — it always propagates, because
// a malformed nested template is a programming error in the template
// itself, not a runtime data issue.
func (e *Expr) resolveNestedSource(eval EvalFunc) (string, error) {
	inner, err := Parse(e.Text)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := writeSubstituted(inner, eval, &sb); err != nil {
		return "", err
	}
	v, err := eval(sb.String())
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func writeSubstituted(e *Expr, eval EvalFunc, sb *strings.Builder) error {
	switch e.Kind {
	case ConstantKind:
		sb.WriteString(e.Text)
		return nil
	case ImmediateKind:
		v, err := eval(e.Text)
		if err != nil {
			return err
		}
		sb.WriteString(quoteLiteral(v.String()))
		return nil
	case CompositeKind:
		for _, f := range e.Fragments {
			if err := writeSubstituted(f, eval, sb); err != nil {
				return err
			}
		}
		return nil
	default:
		// A deferred fragment nested inside a nested expression is
		// written back in unified spelling; the deferred phase's second
		// Parse will pick it up again.
		sb.WriteString(e.String())
		return nil
	}
}

// quoteLiteral renders s as a single-quoted JEXL string literal.
func quoteLiteral(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		if r == '\'' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('\'')
	return sb.String()
}

// Evaluate runs the second evaluation phase: a Composite concatenates the
// string form of each fragment's value; any other kind is evaluated (and,
// for Nested, prepared first) directly.
func (e *Expr) Evaluate(eval EvalFunc) (types.Value, error) {
	switch e.Kind {
	case ConstantKind:
		if e.Value != nil {
			return e.Value, nil
		}
		return types.StringValue(e.Text), nil
	case ImmediateKind, DeferredKind:
		return eval(e.Text)
	case NestedKind:
		prepared, err := e.Prepare(eval)
		if err != nil {
			return nil, err
		}
		return prepared.Evaluate(eval)
	case CompositeKind:
		var sb strings.Builder
		for _, f := range e.Fragments {
			v, err := f.Evaluate(eval)
			if err != nil {
				return nil, err
			}
			sb.WriteString(v.String())
		}
		return types.StringValue(sb.String()), nil
	default:
		return types.Null, nil
	}
}
