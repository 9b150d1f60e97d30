package jexl

import (
	"testing"

	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/types"
)

func TestUnifiedImmediateComposite(t *testing.T) {
	e := New()
	u, err := e.ParseUnified("Dear ${p} ${name};")
	if err != nil {
		t.Fatalf("ParseUnified: %v", err)
	}
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{
		"p":    types.StringValue("Mr"),
		"name": types.StringValue("Doe"),
	})
	v, err := u.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.String() != "Dear Mr Doe;" {
		t.Fatalf("got %q", v.String())
	}
}

func TestUnifiedNestedResolvesThroughContext(t *testing.T) {
	e := New()
	u, err := e.ParseUnified("#{${hi}+'.world'}")
	if err != nil {
		t.Fatalf("ParseUnified: %v", err)
	}
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{
		"hi":          types.StringValue("hello"),
		"hello.world": types.StringValue("Hello World!"),
	})
	v, err := u.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.String() != "Hello World!" {
		t.Fatalf("got %q", v.String())
	}
}

func TestUnifiedPrepareThenEvaluateMatchesDirectEvaluate(t *testing.T) {
	e := New()
	u, err := e.ParseUnified("x is ${x}, later #{x}")
	if err != nil {
		t.Fatalf("ParseUnified: %v", err)
	}
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{"x": types.IntValue(7)})

	direct, err := u.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	prepared, err := u.Prepare(ctx)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if prepared.IsImmediate() {
		t.Fatalf("a deferred fragment must survive prepare")
	}
	viaPrepare, err := prepared.Evaluate(ctx)
	if err != nil {
		t.Fatalf("Evaluate(prepared): %v", err)
	}
	if direct.String() != viaPrepare.String() {
		t.Fatalf("prepare changed the result: %q vs %q", direct.String(), viaPrepare.String())
	}
}

func TestUnifiedPrepareIdempotentOnImmediateOnly(t *testing.T) {
	e := New()
	u, err := e.ParseUnified("plain text, no expressions")
	if err != nil {
		t.Fatalf("ParseUnified: %v", err)
	}
	prepared, err := u.Prepare(jexlctx.Empty)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if prepared != u {
		t.Fatalf("a constant-only expression should prepare to itself")
	}
}

func TestUnifiedVariables(t *testing.T) {
	e := New()
	u, err := e.ParseUnified("${user.name} owes #{user.balance}")
	if err != nil {
		t.Fatalf("ParseUnified: %v", err)
	}
	got := u.Variables()
	want := map[string]bool{"user.name": true, "user.balance": true}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for _, g := range got {
		if !want[g] {
			t.Fatalf("unexpected path %q in %v", g, got)
		}
	}
}
