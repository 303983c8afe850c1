package random

import "testing"

func TestDeterministicStreamsRepeat(t *testing.T) {
	a := NewDeterministic("seed", "crates")
	b := NewDeterministic("seed", "crates")
	c := NewDeterministic("seed", "production")
	same := true
	for i := 0; i < 8; i++ {
		va, vb, vc := a.Float64(), b.Float64(), c.Float64()
		if va != vb {
			t.Fatalf("draw %d diverged: %f vs %f", i, va, vb)
		}
		if va != vc {
			same = false
		}
	}
	if same {
		t.Fatalf("expected different labels to produce different streams")
	}
}

func TestIndexStaysInRange(t *testing.T) {
	cases := []struct {
		draw float64
		n    int
		want int
	}{
		{0, 5, 0},
		{0.999999, 5, 4},
		{0.5, 4, 2},
		{0.7, 1, 0},
		{0.7, 0, 0},
	}
	for _, tc := range cases {
		if got := Index(Constant(tc.draw), tc.n); got != tc.want {
			t.Fatalf("Index(%f, %d) = %d, want %d", tc.draw, tc.n, got, tc.want)
		}
	}
}

func TestSequenceCycles(t *testing.T) {
	seq := NewSequence(0.1, 0.2)
	got := []float64{seq.Float64(), seq.Float64(), seq.Float64()}
	if got[0] != 0.1 || got[1] != 0.2 || got[2] != 0.1 {
		t.Fatalf("unexpected draws %v", got)
	}
	if seq.Drawn() != 3 {
		t.Fatalf("expected 3 draws, got %d", seq.Drawn())
	}
	if NewSequence().Float64() != 0 {
		t.Fatalf("expected empty sequence to draw 0")
	}
}
