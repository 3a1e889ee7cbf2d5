package vm

import "testing"

// ---------------------------------------------------------------------------
// Immediate tests
// ---------------------------------------------------------------------------

func TestIntegerRoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 43, -12, 1 << 40, -(1 << 40), MaxInteger, MinInteger}

	for _, n := range tests {
		o := Integer(n)
		if !o.IsInteger() {
			t.Errorf("Integer(%d).IsInteger() = false, want true", n)
			continue
		}
		if got := o.Int(); got != n {
			t.Errorf("Integer(%d).Int() = %d, want %d", n, got, n)
		}
		if typ, ok := o.ImmediateType(); !ok || typ != TypeInteger {
			t.Errorf("Integer(%d).ImmediateType() = %v, %v", n, typ, ok)
		}
	}
}

func TestIntegerOutOfRange(t *testing.T) {
	if _, ok := TryInteger(MaxInteger + 1); ok {
		t.Error("TryInteger(MaxInteger+1) should fail")
	}
	if _, ok := TryInteger(MinInteger - 1); ok {
		t.Error("TryInteger(MinInteger-1) should fail")
	}

	defer func() {
		if recover() == nil {
			t.Error("Integer(MaxInteger+1) should panic")
		}
	}()
	Integer(MaxInteger + 1)
}

func TestCharacterRoundTrip(t *testing.T) {
	for _, c := range []rune{'u', 'A', ' ', '\n', 'λ', 0x10FFFF} {
		o := Character(c)
		if !o.IsCharacter() {
			t.Errorf("Character(%q).IsCharacter() = false", c)
			continue
		}
		if o.IsInteger() || o.IsHeap() {
			t.Errorf("Character(%q) misclassified", c)
		}
		if got := o.Rune(); got != c {
			t.Errorf("Character(%q).Rune() = %q", c, got)
		}
	}
}

func TestSpecialValues(t *testing.T) {
	tests := []struct {
		o    Object
		want Type
	}{
		{False, TypeFalse},
		{True, TypeTrue},
		{EmptyList, TypeEmptyList},
		{Undefined, TypeUndefined},
	}

	for _, tc := range tests {
		typ, ok := tc.o.ImmediateType()
		if !ok || typ != tc.want {
			t.Errorf("%#x.ImmediateType() = %v, %v; want %v", uint64(tc.o), typ, ok, tc.want)
		}
		if !tc.o.Immediate() {
			t.Errorf("%v should be immediate", tc.want)
		}
	}

	if Undefined.Defined() {
		t.Error("Undefined.Defined() should be false")
	}
	if !EmptyList.Defined() {
		t.Error("EmptyList.Defined() should be true")
	}
	if False.Truthy() || !EmptyList.Truthy() {
		t.Error("only False is falsy")
	}
	if Boolean(true) != True || Boolean(false) != False {
		t.Error("Boolean mismatch")
	}
}

func TestWrongKindPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"Int on character", func() { Character('a').Int() }},
		{"Rune on integer", func() { Integer(3).Rune() }},
		{"Rune on True", func() { True.Rune() }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s should panic", tc.name)
				}
			}()
			tc.fn()
		})
	}
}

// ---------------------------------------------------------------------------
// Heap value tests
// ---------------------------------------------------------------------------

func TestHeapConstructors(t *testing.T) {
	rt := New(Options{})

	s := rt.MakeString("alpha")
	if rt.Type(s) != TypeString || rt.StringData(s) != "alpha" {
		t.Errorf("string = %v %q", rt.Type(s), rt.StringData(s))
	}

	sym := rt.Symbol("alpha")
	if rt.Type(sym) != TypeSymbol || rt.SymbolName(sym) != "alpha" {
		t.Errorf("symbol = %v %q", rt.Type(sym), rt.SymbolName(sym))
	}
	if sym == s {
		t.Error("symbol and string with the same text must differ")
	}

	p := rt.MakePair(Integer(1), Integer(2))
	if rt.Type(p) != TypePair || rt.Car(p) != Integer(1) || rt.Cdr(p) != Integer(2) {
		t.Errorf("pair = %s", rt.Format(p))
	}

	v := rt.MakeVector([]Object{rt.Symbol("a"), rt.Symbol("b"), rt.Symbol("c"), rt.Symbol("d")})
	if rt.VectorLen(v) != 4 {
		t.Fatalf("VectorLen = %d, want 4", rt.VectorLen(v))
	}
	for i, name := range []string{"a", "b", "c", "d"} {
		if got := rt.VectorRef(v, i); got != rt.Symbol(name) {
			t.Errorf("v[%d] = %s, want %s", i, rt.Format(got), name)
		}
	}

	rt.VectorSet(v, 0, Integer(9))
	if rt.VectorRef(v, 0) != Integer(9) {
		t.Error("VectorSet did not update element")
	}
}

func TestHeaderView(t *testing.T) {
	rt := New(Options{})
	p := rt.MakePair(Integer(1), EmptyList)

	h := rt.Header(p)
	if h.Type != TypePair {
		t.Errorf("Header.Type = %v, want pair", h.Type)
	}
	if h.Mark {
		t.Error("fresh block should be unmarked")
	}
}

func TestIdentityEquality(t *testing.T) {
	rt := New(Options{})
	a := rt.MakePair(Integer(1), EmptyList)
	b := rt.MakePair(Integer(1), EmptyList)

	if a == b {
		t.Error("distinct pairs with equal contents must not be equal")
	}
	if rt.Symbol("x") != rt.Symbol("x") {
		t.Error("symbols with equal names must be equal")
	}
	if Integer(7) != Integer(7) || Character('q') != Character('q') {
		t.Error("immediates compare by value")
	}
}

func TestAccessorWrongVariantPanics(t *testing.T) {
	rt := New(Options{})
	s := rt.MakeString("x")
	p := rt.MakePair(Integer(1), Integer(2))

	tests := []struct {
		name string
		fn   func()
	}{
		{"Car of string", func() { rt.Car(s) }},
		{"Cdr of integer", func() { rt.Cdr(Integer(1)) }},
		{"StringData of pair", func() { rt.StringData(p) }},
		{"SymbolName of string", func() { rt.SymbolName(s) }},
		{"VectorLen of pair", func() { rt.VectorLen(p) }},
		{"Signal of pair", func() { rt.Signal(p) }},
		{"Header of immediate", func() { rt.Header(True) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s should panic", tc.name)
				}
			}()
			tc.fn()
		})
	}
}

func TestCompoundAccessors(t *testing.T) {
	rt := New(Options{})
	l := rt.MakeList([]Object{rt.Symbol("a"), rt.Symbol("b"), rt.Symbol("c")})

	if rt.Cadr(l) != rt.Symbol("b") {
		t.Errorf("Cadr = %s", rt.Format(rt.Cadr(l)))
	}
	if rt.Caddr(l) != rt.Symbol("c") {
		t.Errorf("Caddr = %s", rt.Format(rt.Caddr(l)))
	}
	if rt.Cdddr(l) != EmptyList {
		t.Errorf("Cdddr = %s", rt.Format(rt.Cdddr(l)))
	}
}
