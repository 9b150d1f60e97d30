package introspect

import (
	"testing"

	"github.com/cwbudde/go-jexl/internal/types"
)

type point struct {
	X, Y int
}

func (p *point) Sum() int { return p.X + p.Y }

func (p *point) IsOrigin() bool { return p.X == 0 && p.Y == 0 }

func TestGetPropertyGetField(t *testing.T) {
	u := New()
	p := &point{X: 3, Y: 4}
	exec, err := u.GetPropertyGet(p, "X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := exec.Invoke(p, nil)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if v.(types.IntValue) != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}

func TestGetPropertyGetIsAccessor(t *testing.T) {
	u := New()
	p := &point{}
	exec, err := u.GetPropertyGet(p, "origin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := exec.Invoke(p, nil)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if v.(types.BoolValue) != true {
		t.Fatalf("got %v, want true", v)
	}
}

func TestGetMethodArityMatch(t *testing.T) {
	u := New()
	p := &point{X: 1, Y: 2}
	exec, err := u.GetMethod(p, "sum", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := exec.Invoke(p, nil)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if v.(types.IntValue) != 3 {
		t.Fatalf("got %v, want 3", v)
	}
}

func TestGetPropertySetField(t *testing.T) {
	u := New()
	p := &point{}
	exec, err := u.GetPropertySet(p, "X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := exec.Invoke(p, []types.Value{types.IntValue(9)}); err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if p.X != 9 {
		t.Fatalf("got %d, want 9", p.X)
	}
}

func TestTryInvokeFastPathFailsOnShapeChange(t *testing.T) {
	u := New()
	p1 := &point{X: 1, Y: 1}
	exec, err := u.GetPropertyGet(p1, "X")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, ok, err := exec.TryInvoke("not a point", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected TryInvoke to report TRY_FAILED for a mismatched target")
	}
}

func TestGetIteratorOverArray(t *testing.T) {
	arr := types.ArrayValue{Elements: []types.Value{types.IntValue(1), types.IntValue(2)}}
	it, ok := GetIterator(arr)
	if !ok {
		t.Fatalf("expected array to be iterable")
	}
	var sum int64
	for {
		v, more := it.Next()
		if !more {
			break
		}
		sum += int64(v.(types.IntValue))
	}
	if sum != 3 {
		t.Fatalf("got %d, want 3", sum)
	}
}

func TestGetIteratorOverMapYieldsEntries(t *testing.T) {
	m := types.NewMap()
	m.Set("a", types.IntValue(1))
	m.Set("b", types.IntValue(2))
	it, ok := GetIterator(m)
	if !ok {
		t.Fatalf("expected map to be iterable")
	}
	count := 0
	for {
		v, more := it.Next()
		if !more {
			break
		}
		if _, ok := v.(types.MapEntry); !ok {
			t.Fatalf("expected MapEntry, got %T", v)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("got %d entries, want 2", count)
	}
}

func TestGetIteratorOverStringByRune(t *testing.T) {
	it, ok := GetIterator(types.StringValue("ab"))
	if !ok {
		t.Fatalf("expected string to be iterable")
	}
	v, _ := it.Next()
	if v.(types.CharValue) != 'a' {
		t.Fatalf("got %v, want 'a'", v)
	}
}
