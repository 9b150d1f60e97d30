package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-jexl/internal/introspect"
	"github.com/cwbudde/go-jexl/internal/jexlctx"
	"github.com/cwbudde/go-jexl/internal/types"
	"github.com/tidwall/gjson"
)

// anyContext returns the default, empty, writable context used when no
// --context flag is given.
func anyContext() jexlctx.Context { return jexlctx.NewMapContext() }

// loadContext reads a JSON document from path and binds each top-level
// field as a context variable: scalars convert directly, and objects/
// arrays become JSON host values navigable with dotted property access
// (internal/introspect's JSONObject).
func loadContext(path string) (jexlctx.Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context %s: %w", path, err)
	}
	doc := string(data)
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("context %s: invalid JSON", path)
	}
	ctx := jexlctx.NewMapContext()
	gjson.Parse(doc).ForEach(func(key, value gjson.Result) bool {
		ctx.Set(key.String(), jsonValue(value))
		return true
	})
	return ctx, nil
}

func jsonValue(res gjson.Result) types.Value {
	switch res.Type {
	case gjson.Null:
		return types.Null
	case gjson.False:
		return types.BoolValue(false)
	case gjson.True:
		return types.BoolValue(true)
	case gjson.String:
		return types.StringValue(res.String())
	case gjson.Number:
		for _, c := range res.Raw {
			if c == '.' || c == 'e' || c == 'E' {
				return types.FloatValue(res.Float())
			}
		}
		return types.IntValue(res.Int())
	default:
		if res.IsArray() || res.IsObject() {
			return types.ObjectValue{Host: introspect.NewJSON(res.Raw)}
		}
		return types.StringValue(res.String())
	}
}
