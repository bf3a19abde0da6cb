package lcg

import "testing"

func TestFirstValue(t *testing.T) {
	g := New(DefaultSeed)
	expected := uint32((uint64(12345)*1103515245 + 12345) % (1 << 31))
	if got := g.Next(); got != expected {
		t.Errorf("expected %d but got %d", expected, got)
	}
	if g.Seed() != expected {
		t.Errorf("seed should track the last value")
	}
}

func TestReproducible(t *testing.T) {
	a := New(DefaultSeed)
	b := New(DefaultSeed)
	for i := 0; i < 1000; i++ {
		x, y := a.Next(), b.Next()
		if x != y {
			t.Fatalf("sequences diverged at %d: %d vs %d", i, x, y)
		}
		if x >= 1<<31 {
			t.Fatalf("value %d out of range at %d", x, i)
		}
	}
}

func TestMatchesWideArithmetic(t *testing.T) {
	g := New(7)
	s := uint64(7)
	for i := 0; i < 100; i++ {
		s = (s*Multiplier + Increment) % (1 << 31)
		if got := g.Next(); uint64(got) != s {
			t.Fatalf("step %d: expected %d but got %d", i, s, got)
		}
	}
}
