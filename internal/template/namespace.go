package template

import (
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/types"
)

// jexlNamespace is the host object bound to the `jexl` namespace prefix
// inside a compiled template: `jexl:print(i)` and `jexl:include(name,
// args...)`. Its exported methods are resolved the same way any other
// namespace member is, through internal/introspect.
type jexlNamespace struct {
	t   *Template
	ctx jexlctx.Context
	w   io.Writer
}

// Print evaluates the i'th unified expression extracted from the
// template's source (preparing it first if it is still deferred) and
// writes its value to the template's writer.
func (n *jexlNamespace) Print(i int64) error {
	if i < 0 || int(i) >= len(n.t.exprs) {
		return fmt.Errorf("template: print index %d out of range", i)
	}
	expr := n.t.exprs[i]
	eval := n.t.evalFunc(n.ctx)
	if expr.IsDeferred() {
		prepared, err := expr.Prepare(eval)
		if err != nil {
			return err
		}
		expr = prepared
	}
	v, err := expr.Evaluate(eval)
	if err != nil {
		return err
	}
	_, err = io.WriteString(n.w, v.String())
	return err
}

// Include renders the named registered template with args bound to its
// parameters and returns the rendered text.
func (n *jexlNamespace) Include(name string, args ...any) (string, error) {
	if n.t.registry == nil {
		return "", fmt.Errorf("template: no registry configured, cannot include %q", name)
	}
	sub, ok := n.t.registry.Lookup(name)
	if !ok {
		return "", fmt.Errorf("template: unknown template %q", name)
	}
	vals := make([]types.Value, len(args))
	for i, a := range args {
		vals[i] = toValue(a)
	}
	var sb strings.Builder
	if err := sub.Evaluate(n.ctx, &sb, vals...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func toValue(v any) types.Value {
	switch t := v.(type) {
	case types.Value:
		return t
	case nil:
		return types.Null
	case bool:
		return types.BoolValue(t)
	case int64:
		return types.IntValue(t)
	case int:
		return types.IntValue(int64(t))
	case float64:
		return types.FloatValue(t)
	case string:
		return types.StringValue(t)
	default:
		return types.ObjectValue{Host: v}
	}
}
