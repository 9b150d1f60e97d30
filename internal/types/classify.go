package types

// IsNull reports whether v is the null value (or a nil Go interface, which
// the interpreter treats identically).
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NullValue)
	return ok
}

// IsNumeric reports whether v is one of the numeric Value kinds.
func IsNumeric(v Value) bool {
	switch v.(type) {
	case IntValue, LongValue, BigIntValue, FloatValue, BigDecimalValue, CharValue:
		return true
	default:
		return false
	}
}

// IsFloating reports whether v is a floating-point Value (float/double).
func IsFloating(v Value) bool {
	_, ok := v.(FloatValue)
	return ok
}

// IsBigDecimal reports whether v is a BigDecimalValue.
func IsBigDecimal(v Value) bool {
	_, ok := v.(BigDecimalValue)
	return ok
}

// IsBigInt reports whether v is a BigIntValue.
func IsBigInt(v Value) bool {
	_, ok := v.(BigIntValue)
	return ok
}

// IsString reports whether v is a StringValue.
func IsString(v Value) bool {
	_, ok := v.(StringValue)
	return ok
}

// Len reports the "size" of a container-shaped Value, for the Size/Empty
// operators: arrays, lists, maps, sets, and strings. ok is false for
// anything else (the caller falls back to a host size() method).
func Len(v Value) (n int, ok bool) {
	switch t := v.(type) {
	case StringValue:
		return len([]rune(string(t))), true
	case ArrayValue:
		return len(t.Elements), true
	case *ListValue:
		return len(t.Elements), true
	case *MapValue:
		return t.Len(), true
	case *SetValue:
		return t.Len(), true
	default:
		return 0, false
	}
}

// IsEmpty implements the Empty operator: true iff v is null, the empty
// string, a zero-length array, or an empty sequence/map/set.
func IsEmpty(v Value) bool {
	if IsNull(v) {
		return true
	}
	if n, ok := Len(v); ok {
		return n == 0
	}
	return false
}
