package mvtencode

import "testing"

func TestValueFromAnyAcceptsScalarTypes(t *testing.T) {
	cases := []struct {
		in       any
		wantKind ValueKind
	}{
		{"hello", KindString},
		{true, KindBool},
		{42, KindInt},
		{int64(42), KindInt},
		{3.14, KindDouble},
		{float32(1.5), KindDouble},
	}
	for _, c := range cases {
		v, ok := ValueFromAny(c.in)
		if !ok {
			t.Fatalf("ValueFromAny(%v) rejected", c.in)
		}
		if v.Kind != c.wantKind {
			t.Fatalf("ValueFromAny(%v).Kind = %v, want %v", c.in, v.Kind, c.wantKind)
		}
	}
}

func TestValueFromAnyRejectsNonScalar(t *testing.T) {
	cases := []any{
		nil,
		[]int{1, 2},
		map[string]int{"a": 1},
		struct{}{},
	}
	for _, c := range cases {
		if _, ok := ValueFromAny(c); ok {
			t.Fatalf("ValueFromAny(%v) should have been rejected", c)
		}
	}
}

func TestValueDedupeKeyDistinguishesTypes(t *testing.T) {
	intV, _ := ValueFromAny(int64(1))
	doubleV, _ := ValueFromAny(1.0)
	if intV.dedupeKey() == doubleV.dedupeKey() {
		t.Fatalf("int 1 and double 1.0 must not share a dedupe key, got %q", intV.dedupeKey())
	}
}

func TestValueDedupeKeyStableForEqualValues(t *testing.T) {
	a, _ := ValueFromAny("same")
	b, _ := ValueFromAny("same")
	if a.dedupeKey() != b.dedupeKey() {
		t.Fatalf("equal string values produced different dedupe keys: %q vs %q", a.dedupeKey(), b.dedupeKey())
	}
}

func TestValueDedupeKeyBoolDistinctFromEachOther(t *testing.T) {
	tru, _ := ValueFromAny(true)
	fals, _ := ValueFromAny(false)
	if tru.dedupeKey() == fals.dedupeKey() {
		t.Fatal("true and false must not share a dedupe key")
	}
}
