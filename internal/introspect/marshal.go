// Package introspect resolves property get/set, methods, constructors, and
// iterators on arbitrary host values ("Uberspect"). Host values are plain
// Go `any`; resolution uses reflect to walk an unknown value's members by
// name.
package introspect

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/cwbudde/go-jexl/internal/types"
)

// ToGo converts a types.Value to a Go value assignable to target.
func ToGo(v types.Value, target reflect.Type) (reflect.Value, error) {
	switch target.Kind() {
	case reflect.Interface:
		if target.NumMethod() == 0 {
			return reflect.ValueOf(FromValue(v)), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(v)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(target).Elem()
		out.SetInt(n)
		return out, nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(v)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(target).Elem()
		out.SetFloat(f)
		return out, nil
	case reflect.String:
		return reflect.ValueOf(v.String()).Convert(target), nil
	case reflect.Bool:
		b, ok := v.(types.BoolValue)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected boolean, got %s", v.Class())
		}
		return reflect.ValueOf(bool(b)).Convert(target), nil
	case reflect.Slice:
		arr, ok := v.(types.ArrayValue)
		var elems []types.Value
		if ok {
			elems = arr.Elements
		} else if lv, ok := v.(*types.ListValue); ok {
			elems = lv.Elements
		} else {
			return reflect.Value{}, fmt.Errorf("expected array-like value, got %s", v.Class())
		}
		out := reflect.MakeSlice(target, len(elems), len(elems))
		for i, e := range elems {
			ev, err := ToGo(e, target.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}

	// Fall back: if v already wraps a host value assignable to target, use
	// it directly (the common case for passing objects back through FFI).
	if obj, ok := v.(types.ObjectValue); ok {
		rv := reflect.ValueOf(obj.Host)
		if rv.Type().AssignableTo(target) {
			return rv, nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", v.Class(), target)
}

func toInt64(v types.Value) (int64, error) {
	switch t := v.(type) {
	case types.IntValue:
		return int64(t), nil
	case types.LongValue:
		return int64(t), nil
	case types.CharValue:
		return int64(t), nil
	case types.FloatValue:
		return int64(t), nil
	case types.BigIntValue:
		return t.V.Int64(), nil
	default:
		return 0, fmt.Errorf("expected numeric value, got %s", v.Class())
	}
}

func toFloat64(v types.Value) (float64, error) {
	switch t := v.(type) {
	case types.IntValue:
		return float64(t), nil
	case types.LongValue:
		return float64(t), nil
	case types.FloatValue:
		return float64(t), nil
	case types.BigIntValue:
		f, _ := new(big.Float).SetInt(t.V).Float64()
		return f, nil
	default:
		return 0, fmt.Errorf("expected numeric value, got %s", v.Class())
	}
}

// FromGo converts an arbitrary Go value (typically a reflect.Call result)
// into a types.Value, the inverse of ToGo.
func FromGo(rv reflect.Value) types.Value {
	if !rv.IsValid() {
		return types.Null
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return types.IntValue(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return types.IntValue(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return types.FloatValue(rv.Float())
	case reflect.String:
		return types.StringValue(rv.String())
	case reflect.Bool:
		return types.BoolValue(rv.Bool())
	case reflect.Slice, reflect.Array:
		elems := make([]types.Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems[i] = FromGo(rv.Index(i))
		}
		return types.ArrayValue{Elements: elems}
	case reflect.Map:
		m := types.NewMap()
		iter := rv.MapRange()
		for iter.Next() {
			m.Set(fmt.Sprintf("%v", iter.Key().Interface()), FromGo(iter.Value()))
		}
		return m
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return types.Null
		}
		return FromGo(rv.Elem())
	default:
		return types.ObjectValue{Host: rv.Interface()}
	}
}

// FromValue unwraps a types.Value into a plain Go `any`, used when handing
// a value to a duck-typed Get/Set method expecting `any` arguments.
func FromValue(v types.Value) any {
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
	case types.ObjectValue:
		return t.Host
	default:
		return v
	}
}
