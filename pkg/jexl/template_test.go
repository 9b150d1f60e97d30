package jexl

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/types"
)

func TestEngineTemplateIncludeRoundTrip(t *testing.T) {
	e := New()
	inner, err := e.CreateTemplate("hello ${name}\n")
	if err != nil {
		t.Fatalf("CreateTemplate(inner): %v", err)
	}
	e.RegisterTemplate("greeting", inner)

	outer, err := e.CreateTemplate("${jexl:include(\"greeting\", name)}!\n")
	if err != nil {
		t.Fatalf("CreateTemplate(outer): %v", err)
	}
	ctx := jexlctx.NewMapContextFrom(map[string]types.Value{"name": types.StringValue("Ada")})
	var sb strings.Builder
	if err := outer.Evaluate(ctx, &sb); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := "hello Ada\n!\n"
	if sb.String() != want {
		t.Fatalf("got %q, want %q", sb.String(), want)
	}
}
