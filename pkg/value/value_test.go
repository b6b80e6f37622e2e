package value

import "testing"

func TestTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", Nil, false},
		{"false", False, false},
		{"true", True, true},
		{"zero integer", NewInteger(0), true},
		{"empty string", NewStr(""), true},
		{"empty array", NewArray(), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.v.Truthy(); got != c.want {
				t.Errorf("Truthy() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestIntegerFloatEqual(t *testing.T) {
	if !NewInteger(3).Equal(NewFloat(3.0)) {
		t.Error("Integer(3) should equal Float(3.0)")
	}
	if NewInteger(3).Equal(NewFloat(3.1)) {
		t.Error("Integer(3) should not equal Float(3.1)")
	}
}

func TestArrayCopyIsShallow(t *testing.T) {
	inner := NewArray(NewInteger(1))
	outer := NewArray(inner)
	dup := outer.Copy()

	dup.Elems[0].(*Array).Elems[0] = NewInteger(99)

	if outer.Elems[0].(*Array).Elems[0].(Integer) != 99 {
		t.Error("Copy() should be shallow: nested array must be shared")
	}
	if &dup.Elems[0] == &outer.Elems[0] {
		t.Error("Copy() must allocate a new backing slice")
	}
}

func TestHashOrderPreservedAcrossDelete(t *testing.T) {
	h := NewHash()
	h.Set(NewSymbol("a"), NewInteger(1))
	h.Set(NewSymbol("b"), NewInteger(2))
	h.Set(NewSymbol("c"), NewInteger(3))
	h.Delete(NewSymbol("b"))

	keys := h.Keys()
	if len(keys) != 2 || keys[0].(Symbol) != "a" || keys[1].(Symbol) != "c" {
		t.Errorf("Keys() = %v, want [a c]", keys)
	}
}

func TestHashEqualIgnoresOrder(t *testing.T) {
	h1 := NewHash()
	h1.Set(NewSymbol("a"), NewInteger(1))
	h1.Set(NewSymbol("b"), NewInteger(2))

	h2 := NewHash()
	h2.Set(NewSymbol("b"), NewInteger(2))
	h2.Set(NewSymbol("a"), NewInteger(1))

	if !h1.Equal(h2) {
		t.Error("hashes with same pairs in different insertion order should be equal")
	}
}

func TestRangeInspect(t *testing.T) {
	r := NewRange(NewInteger(1), NewInteger(5), true)
	if r.Inspect() != "1...5" {
		t.Errorf("Inspect() = %q, want 1...5", r.Inspect())
	}
}
