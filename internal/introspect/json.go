// JSON host-object adapter: a very common embedding scenario for a
// config/rule-evaluation language is a host value that is itself a JSON
// document rather than a Go struct. Reference/Assign need a concrete way
// to walk and mutate that shape, so a *JSONObject wraps a raw JSON
// document and is resolved by GetPropertyGet/GetPropertySet/GetMethod
// ahead of the general reflect-based paths.
package introspect

import (
	"github.com/cwbudde/go-jexl/internal/types"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSONObject wraps a raw JSON document as a host value. Property get/set
// and size() route through gjson/sjson instead of reflect.
type JSONObject struct {
	Doc string
}

// NewJSON wraps doc (expected to be a valid JSON document) as a JSONObject.
func NewJSON(doc string) *JSONObject { return &JSONObject{Doc: doc} }

// Get reads path from the document via gjson.
func (j *JSONObject) Get(path string) (types.Value, bool) {
	res := gjson.Get(j.Doc, path)
	if !res.Exists() {
		return nil, false
	}
	return fromGJSON(res), true
}

// Set writes value at path into the document via sjson, mutating Doc in
// place (sjson itself is immutable/functional; JSONObject gives it a
// reference-like host-value shape so `Assign` can mutate through it the
// way it mutates a MapValue).
func (j *JSONObject) Set(path string, value types.Value) error {
	out, err := sjson.Set(j.Doc, path, toJSONNative(value))
	if err != nil {
		return err
	}
	j.Doc = out
	return nil
}

// Size returns the element/field count at the document root, the
// host-size() fallback evalSize() uses for array/object JSON documents.
func (j *JSONObject) Size() int {
	root := gjson.Parse(j.Doc)
	if root.IsArray() || root.IsObject() {
		n := 0
		root.ForEach(func(_, _ gjson.Result) bool {
			n++
			return true
		})
		return n
	}
	return 0
}

func fromGJSON(res gjson.Result) types.Value {
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
		raw := res.Raw
		for _, c := range raw {
			if c == '.' || c == 'e' || c == 'E' {
				return types.FloatValue(res.Float())
			}
		}
		return types.IntValue(res.Int())
	default: // gjson.JSON: nested object or array
		if res.IsArray() || res.IsObject() {
			return types.ObjectValue{Host: &JSONObject{Doc: res.Raw}}
		}
		return types.StringValue(res.String())
	}
}

func toJSONNative(v types.Value) any {
	switch t := v.(type) {
	case types.NullValue:
		return nil
	case types.BoolValue:
		return bool(t)
	case types.IntValue:
		return int64(t)
	case types.LongValue:
		return int64(t)
	case types.FloatValue:
		return float64(t)
	case types.StringValue:
		return string(t)
	case types.ArrayValue:
		out := make([]any, len(t.Elements))
		for i, e := range t.Elements {
			out[i] = toJSONNative(e)
		}
		return out
	case *types.ListValue:
		out := make([]any, len(t.Elements))
		for i, e := range t.Elements {
			out[i] = toJSONNative(e)
		}
		return out
	case *types.MapValue:
		m := make(map[string]any, t.Len())
		for _, k := range t.Keys() {
			vv, _ := t.Get(k)
			m[k] = toJSONNative(vv)
		}
		return m
	case types.ObjectValue:
		if jo, ok := t.Host.(*JSONObject); ok {
			return gjson.Parse(jo.Doc).Value()
		}
		return t.String()
	default:
		if v == nil {
			return nil
		}
		return v.String()
	}
}

// jsonGetExecutor resolves a named property read against a *JSONObject.
type jsonGetExecutor struct{ name string }

func (e *jsonGetExecutor) Cacheable() bool { return true }

func (e *jsonGetExecutor) Invoke(target any, _ []types.Value) (types.Value, error) {
	jo, ok := target.(*JSONObject)
	if !ok {
		return nil, &NotFoundError{Kind: "property", Name: e.name}
	}
	v, ok := jo.Get(e.name)
	if !ok {
		return types.Null, nil
	}
	return v, nil
}

func (e *jsonGetExecutor) TryInvoke(target any, args []types.Value) (types.Value, bool, error) {
	if _, ok := target.(*JSONObject); !ok {
		return nil, false, nil
	}
	v, err := e.Invoke(target, args)
	return v, true, err
}

// jsonSetExecutor resolves a named property write against a *JSONObject.
type jsonSetExecutor struct{ name string }

func (e *jsonSetExecutor) Cacheable() bool { return true }

func (e *jsonSetExecutor) Invoke(target any, args []types.Value) (types.Value, error) {
	jo, ok := target.(*JSONObject)
	if !ok {
		return nil, &NotFoundError{Kind: "property", Name: e.name}
	}
	if err := jo.Set(e.name, args[0]); err != nil {
		return nil, err
	}
	return types.Null, nil
}

func (e *jsonSetExecutor) TryInvoke(target any, args []types.Value) (types.Value, bool, error) {
	if _, ok := target.(*JSONObject); !ok {
		return nil, false, nil
	}
	v, err := e.Invoke(target, args)
	return v, true, err
}

// jsonSizeExecutor resolves `.size()` against a *JSONObject.
type jsonSizeExecutor struct{}

func (jsonSizeExecutor) Cacheable() bool { return true }

func (jsonSizeExecutor) Invoke(target any, _ []types.Value) (types.Value, error) {
	jo, ok := target.(*JSONObject)
	if !ok {
		return nil, &NotFoundError{Kind: "method", Name: "size"}
	}
	return types.IntValue(jo.Size()), nil
}

func (e jsonSizeExecutor) TryInvoke(target any, args []types.Value) (types.Value, bool, error) {
	if _, ok := target.(*JSONObject); !ok {
		return nil, false, nil
	}
	v, err := e.Invoke(target, args)
	return v, true, err
}
