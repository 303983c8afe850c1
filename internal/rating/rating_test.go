package rating

import (
	"testing"

	"tidepool/server/catalog"
)

func levels(ls ...int) []catalog.Buff {
	out := make([]catalog.Buff, 0, len(ls))
	for _, l := range ls {
		out = append(out, catalog.Buff{Type: catalog.BuffSpeed, Name: "SPEED " + catalog.RomanNumeral(l)})
	}
	return out
}

func TestEvaluateThresholds(t *testing.T) {
	starOnly := []catalog.Buff{{Type: catalog.BuffStar, Name: "STAR V", Level: 5}}
	cases := []struct {
		name   string
		rarity catalog.Rarity
		buffs  []catalog.Buff
		want   int
	}{
		{"no buffs", catalog.RarityCommon, nil, 1},
		{"star only", catalog.RarityCommon, starOnly, 1},
		{"single level I", catalog.RarityCommon, levels(1), 1},
		{"single level II", catalog.RarityCommon, levels(2), 2},
		{"single level V", catalog.RarityCommon, levels(5), 2},
		{"three level V", catalog.RarityCommon, levels(5, 5, 5), 5},
		{"level V diluted", catalog.RarityCommon, levels(5, 5, 5, 1), 4},
		{"star ignored", catalog.RarityCommon, append(levels(5, 5, 5), starOnly...), 5},
		{"mythical partial", catalog.RarityMythical, levels(5, 5, 5, 5), 3},
		{"two mid buffs", catalog.RarityMythical, levels(2, 2), 2},
	}
	for _, tc := range cases {
		if got := Evaluate(tc.rarity, tc.buffs); got != tc.want {
			t.Fatalf("%s: Evaluate = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	buffs := levels(3, 4, 2)
	first := Evaluate(catalog.RarityRare, buffs)
	for i := 0; i < 3; i++ {
		if got := Evaluate(catalog.RarityRare, buffs); got != first {
			t.Fatalf("rating changed between calls: %d then %d", first, got)
		}
	}
}

func TestQualityScore(t *testing.T) {
	if got := QualityScore(catalog.RarityCommon, levels(5, 5, 5)); got != 100 {
		t.Fatalf("expected perfect score, got %d", got)
	}
	if got := QualityScore(catalog.RarityCommon, levels(1)); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
	if got := QualityScore(catalog.RarityCommon, nil); got != 0 {
		t.Fatalf("expected 0 for no buffs, got %d", got)
	}
}

func TestLabel(t *testing.T) {
	if Label(5) != "Exceptional" || Label(1) != "Poor" || Label(0) != "Unknown" {
		t.Fatalf("unexpected labels")
	}
}
