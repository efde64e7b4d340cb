package hash

import "testing"

type cardPair struct {
	In36, In2 string
	Coupling  int
}

func TestHashStable(t *testing.T) {
	a := Hash(cardPair{"x", "y", 1})
	b := Hash(cardPair{"x", "y", 1})
	if a != b {
		t.Errorf("have %s and %s for equal inputs", a, b)
	}
	if len(a) != 32 {
		t.Errorf("have key length %d, want 32", len(a))
	}
	if c := Hash(cardPair{"x", "y", 2}); c == a {
		t.Error("different inputs hashed to the same key")
	}
}

func TestHashSpewFallback(t *testing.T) {
	type hidden struct{ v int }
	a := Hash(hidden{1})
	b := Hash(hidden{2})
	if a == b {
		t.Error("fallback hash ignored field values")
	}
}
