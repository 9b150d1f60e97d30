package introspect

import (
	"reflect"

	"github.com/cwbudde/go-jexl/internal/types"
	"github.com/tidwall/gjson"
)

// Iterator yields successive values for a Foreach statement. Close releases
// any resources the iterator holds; the interpreter calls it unconditionally
// when the loop exits, including via break or an error unwind.
type Iterator interface {
	Next() (types.Value, bool)
	Close() error
}

// sliceIterator walks an in-memory slice of already-converted Values.
type sliceIterator struct {
	values []types.Value
	pos    int
}

func (it *sliceIterator) Next() (types.Value, bool) {
	if it.pos >= len(it.values) {
		return types.Null, false
	}
	v := it.values[it.pos]
	it.pos++
	return v, true
}

func (it *sliceIterator) Close() error { return nil }

// duckIterator drives a host value through its own iterator()/next() pair
// (or Go's io-style HasNext()/Next()), the last-resort iteration path for
// values the introspector cannot classify directly.
type duckIterator struct {
	target  reflect.Value
	hasNext reflect.Value
	nextFn  reflect.Value
	closer  ioCloser
}

type ioCloser interface{ Close() error }

func (it *duckIterator) Next() (types.Value, bool) {
	if it.hasNext.IsValid() {
		out := it.hasNext.Call(nil)
		if len(out) == 0 || !out[0].Bool() {
			return types.Null, false
		}
	}
	out := it.nextFn.Call(nil)
	if len(out) == 0 {
		return types.Null, false
	}
	if len(out) >= 2 && out[1].Kind() == reflect.Bool && !out[1].Bool() {
		return types.Null, false
	}
	return FromGo(out[0]), true
}

func (it *duckIterator) Close() error {
	if it.closer != nil {
		return it.closer.Close()
	}
	return nil
}

// GetIterator resolves an Iterator over v, covering (in order): strings
// (by rune), arrays/lists (by element), maps (by MapEntry), sets (by
// member), reflect-visible slices/arrays/maps from host objects, and
// finally a duck-typed HasNext()/Next() (or Next()(value, bool)) pair.
// Returns ok=false if v is not iterable.
func GetIterator(v types.Value) (Iterator, bool) {
	switch t := v.(type) {
	case types.NullValue:
		return nil, false
	case types.StringValue:
		runes := []rune(string(t))
		values := make([]types.Value, len(runes))
		for i, r := range runes {
			values[i] = types.CharValue(r)
		}
		return &sliceIterator{values: values}, true
	case types.ArrayValue:
		return &sliceIterator{values: t.Elements}, true
	case *types.ListValue:
		return &sliceIterator{values: t.Elements}, true
	case *types.MapValue:
		entries := t.Entries()
		values := make([]types.Value, len(entries))
		for i, e := range entries {
			values[i] = e
		}
		return &sliceIterator{values: values}, true
	case *types.SetValue:
		return &sliceIterator{values: t.Values()}, true
	case types.ObjectValue:
		if jo, ok := t.Host.(*JSONObject); ok {
			return jsonIterator(jo)
		}
		return hostIterator(t.Host)
	default:
		return nil, false
	}
}

// jsonIterator walks a JSON array element-wise or a JSON object entry-wise
// (as MapEntry values) via gjson.ForEach.
func jsonIterator(jo *JSONObject) (Iterator, bool) {
	root := gjson.Parse(jo.Doc)
	if !root.IsArray() && !root.IsObject() {
		return nil, false
	}
	var values []types.Value
	root.ForEach(func(key, value gjson.Result) bool {
		if root.IsArray() {
			values = append(values, fromGJSON(value))
		} else {
			values = append(values, types.MapEntry{Key: fromGJSON(key), Value: fromGJSON(value)})
		}
		return true
	})
	return &sliceIterator{values: values}, true
}

func hostIterator(host any) (Iterator, bool) {
	rv := reflect.ValueOf(host)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		values := make([]types.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			values[i] = FromGo(rv.Index(i))
		}
		return &sliceIterator{values: values}, true
	case reflect.Map:
		values := make([]types.Value, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			values = append(values, types.MapEntry{
				Key:   FromGo(iter.Key()),
				Value: FromGo(iter.Value()),
			})
		}
		return &sliceIterator{values: values}, true
	}

	iterMethod := rv.MethodByName("Iterator")
	if iterMethod.IsValid() && iterMethod.Type().NumIn() == 0 && iterMethod.Type().NumOut() == 1 {
		inner := iterMethod.Call(nil)[0]
		return duckFromHandle(inner)
	}
	return duckFromHandle(rv)
}

func duckFromHandle(rv reflect.Value) (Iterator, bool) {
	hasNext := rv.MethodByName("HasNext")
	next := rv.MethodByName("Next")
	if !next.IsValid() {
		return nil, false
	}
	closer, _ := rv.Interface().(ioCloser)
	return &duckIterator{target: rv, hasNext: hasNext, nextFn: next, closer: closer}, true
}
