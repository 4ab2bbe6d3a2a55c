package rng

import (
	"math"
	"math/rand/v2"
	"testing"
)

var _ rand.Source = (*Xoshiro256PlusPlus)(nil)

func TestNextKnownState(t *testing.T) {
	g := &Xoshiro256PlusPlus{s: [4]uint64{1, 2, 3, 4}}

	want := []uint64{41943041, 58720359}
	for i, w := range want {
		if got := g.Next(); got != w {
			t.Fatalf("draw %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestSeedExpansion(t *testing.T) {
	g := New(0)
	s := g.State()

	if s[0] != 0xe220a8397b1dcdaf {
		t.Fatalf("expected first word 0xe220a8397b1dcdaf, got %#x", s[0])
	}
	for i := 1; i < 4; i++ {
		if s[i] != SplitMix64(s[i-1]) {
			t.Fatalf("word %d is not the mix of word %d", i, i-1)
		}
	}
	if s == [4]uint64{} {
		t.Fatal("seed 0 produced the all-zero state")
	}
}

func TestDeterminism(t *testing.T) {
	seeds := []uint64{0, 1, 42, math.MaxUint64, 0xdeadbeefcafebabe}

	for _, seed := range seeds {
		a := New(seed)
		b := New(seed)
		for i := 0; i < 10000; i++ {
			x, y := a.Next(), b.Next()
			if x != y {
				t.Fatalf("seed %d: streams diverged at draw %d (%d != %d)", seed, i, x, y)
			}
		}
	}
}

func TestDistinctSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)

	same := 0
	for i := 0; i < 1000; i++ {
		if a.Next() == b.Next() {
			same++
		}
	}
	if same > 0 {
		t.Fatalf("expected no equal draws between seeds 1 and 2, got %d", same)
	}
}

func TestReseed(t *testing.T) {
	g := New(7)
	first := g.Next()
	g.Next()

	g.Seed(7)
	if got := g.Next(); got != first {
		t.Fatalf("expected %d after reseed, got %d", first, got)
	}
}

func TestJumpDisjoint(t *testing.T) {
	base := New(12345)
	jumped := base.Clone()
	jumped.Jump()

	seen := make(map[uint64]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		seen[base.Next()] = struct{}{}
	}
	for i := 0; i < 1000; i++ {
		if _, ok := seen[jumped.Next()]; ok {
			t.Fatalf("jumped stream collided with base stream at draw %d", i)
		}
	}
}

func TestJumpCommutesWithNext(t *testing.T) {
	a := New(99)
	b := New(99)

	a.Next()
	a.Jump()

	b.Jump()
	b.Next()

	if a.State() != b.State() {
		t.Fatalf("expected equal states, got %v and %v", a.State(), b.State())
	}
}

func TestJumpDeterministic(t *testing.T) {
	a := New(5)
	b := New(5)
	a.Jump()
	b.Jump()

	if a.State() != b.State() {
		t.Fatal("expected identical state after jump")
	}
	if a.State() == New(5).State() {
		t.Fatal("expected jump to move the state")
	}
}

func TestNormalDrawsThroughRandV2(t *testing.T) {
	r := rand.New(New(2024))

	const n = 200000
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n; i++ {
		z := r.NormFloat64()
		sum += z
		sumSq += z * z
	}
	mean := sum / n
	variance := sumSq/n - mean*mean

	if math.Abs(mean) > 0.01 {
		t.Fatalf("expected mean near 0, got %f", mean)
	}
	if math.Abs(variance-1) > 0.02 {
		t.Fatalf("expected variance near 1, got %f", variance)
	}
}

func TestNewBaseSeedVaries(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 16; i++ {
		seen[NewBaseSeed()] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected base seeds to vary between calls")
	}
}

func TestDeriveSeed(t *testing.T) {
	if got := DeriveSeed(math.MaxUint64, 1); got != 0 {
		t.Fatalf("expected wraparound to 0, got %d", got)
	}
	if got := DeriveSeed(10, 3); got != 13 {
		t.Fatalf("expected 13, got %d", got)
	}
}
