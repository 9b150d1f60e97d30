package template

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cwbudde/go-jexl/internal/arith"
	"github.com/cwbudde/go-jexl/internal/interp"
	"github.com/cwbudde/go-jexl/internal/introspect"
	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/types"
	"github.com/gkampitakis/go-snaps/snaps"
)

func newTestInterp() *interp.Interpreter {
	return interp.New(interp.Options{
		Arith: arith.New(arith.Lenient, arith.DefaultMathContext),
		Uber:  introspect.New(),
	})
}

type memoryRegistry map[string]*Template

func (r memoryRegistry) Lookup(name string) (*Template, bool) {
	tpl, ok := r[name]
	return tpl, ok
}

func renderSnapshot(t *testing.T, name, source string, ctx jexlctx.Context, args ...types.Value) {
	t.Helper()
	i := newTestInterp()
	tpl, err := New(i, nil, source)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var sb strings.Builder
	if err := tpl.Evaluate(ctx, &sb, args...); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	snaps.MatchSnapshot(t, fmt.Sprintf("%s_output", name), sb.String())
}

func TestTemplateVerbatimText(t *testing.T) {
	renderSnapshot(t, "verbatim", "hello world\n", jexlctx.Empty)
}

func TestTemplateImmediateExpression(t *testing.T) {
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{"name": types.StringValue("Ada")})
	renderSnapshot(t, "immediate", "hello ${name}\n", ctx)
}

func TestTemplateDirectiveLine(t *testing.T) {
	source := "$$ if (flag) {\ntrue branch\n$$ } else {\nfalse branch\n$$ }\n"
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{"flag": types.BoolValue(true)})
	renderSnapshot(t, "directive_true", source, ctx)
}

func TestTemplateInclude(t *testing.T) {
	i := newTestInterp()
	inner, err := New(i, nil, "inner says ${msg}\n")
	if err != nil {
		t.Fatalf("New(inner): %v", err)
	}
	registry := memoryRegistry{"inner": inner}
	outer, err := New(i, registry, "outer: ${jexl:include(\"inner\", msg)}\n")
	if err != nil {
		t.Fatalf("New(outer): %v", err)
	}
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{"msg": types.StringValue("hi")})
	var sb strings.Builder
	if err := outer.Evaluate(ctx, &sb); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	snaps.MatchSnapshot(t, "include_output", sb.String())
}

func TestTemplatePrefixConfigurable(t *testing.T) {
	i := newTestInterp()
	tpl, err := NewWithPrefix(i, nil, "%", "%x = 1\nvalue: ${x}\n")
	if err != nil {
		t.Fatalf("NewWithPrefix: %v", err)
	}
	var sb strings.Builder
	if err := tpl.Evaluate(jexlctx.NewMapContext(), &sb); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	snaps.MatchSnapshot(t, "custom_prefix_output", sb.String())
}
