package merge

import (
	"errors"
	"sort"
	"testing"

	"tidepool/server/catalog"
	"tidepool/server/internal/pets"
)

func buffs(t *testing.T, cat *catalog.Catalog, specs ...any) []catalog.Buff {
	t.Helper()
	var out []catalog.Buff
	for i := 0; i < len(specs); i += 2 {
		b, ok := cat.BuffFor(specs[i].(catalog.BuffType), specs[i+1].(int))
		if !ok {
			t.Fatalf("missing buff %v %v", specs[i], specs[i+1])
		}
		out = append(out, b)
	}
	return out
}

func crab(id string, list []catalog.Buff) pets.Pet {
	return pets.Pet{
		ID:             id,
		TemplateKey:    "pet-hermit-crab",
		Rarity:         catalog.RarityCommon,
		MaxGemCapacity: 650,
		CurrentGems:    10,
		Buffs:          list,
	}
}

func ids(list []catalog.Buff) []string {
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	sort.Strings(out)
	return out
}

func TestUnionKeepsHighestLevelPerType(t *testing.T) {
	cat := catalog.Default()
	a := buffs(t, cat, catalog.BuffSpeed, 3, catalog.BuffLuck, 1)
	b := buffs(t, cat, catalog.BuffSpeed, 1, catalog.BuffLuck, 4, catalog.BuffDouble, 2)

	got := UnionBuffs(a, b)
	want := []string{"buff-double-2", "buff-luck-4", "buff-speed-3"}
	if g := ids(got); len(g) != len(want) || g[0] != want[0] || g[1] != want[1] || g[2] != want[2] {
		t.Fatalf("UnionBuffs = %v, want %v", g, want)
	}
	if got[0].Type != catalog.BuffSpeed || got[1].Type != catalog.BuffLuck {
		t.Fatalf("expected target order to be kept, got %v", got)
	}
}

func TestUnionIsCommutativeInBuffSet(t *testing.T) {
	cat := catalog.Default()
	a := buffs(t, cat, catalog.BuffSpeed, 2, catalog.BuffLure, 5, catalog.BuffEcho, 1)
	b := buffs(t, cat, catalog.BuffSpeed, 4, catalog.BuffLure, 3, catalog.BuffCluster, 2)

	ab, ba := ids(UnionBuffs(a, b)), ids(UnionBuffs(b, a))
	if len(ab) != len(ba) {
		t.Fatalf("union sizes differ: %v vs %v", ab, ba)
	}
	for i := range ab {
		if ab[i] != ba[i] {
			t.Fatalf("union differs: %v vs %v", ab, ba)
		}
	}
}

func TestMergeGainingOneStarAddsCanonicalStar(t *testing.T) {
	cat := catalog.Default()
	target := crab("pet-hermit-crab-1-aaa", buffs(t, cat, catalog.BuffSpeed, 2, catalog.BuffLuck, 1))
	source := crab("pet-hermit-crab-2-bbb", buffs(t, cat, catalog.BuffSpeed, 1, catalog.BuffLuck, 2))
	if err := CanMerge(source, target); err != nil {
		t.Fatalf("CanMerge: %v", err)
	}

	res := Merge(source, target, 500, cat)
	if res.Before != 1 || res.After != 2 || !res.StarGained {
		t.Fatalf("unexpected result %+v", res)
	}
	got := res.Pet
	if got.ID != target.ID || res.Consumed != source.ID {
		t.Fatalf("expected target identity to survive, got %s consuming %s", got.ID, res.Consumed)
	}
	if len(got.Buffs) != 3 || got.Buffs[0].ID != "buff-star-2" {
		t.Fatalf("expected star II first, got %v", ids(got.Buffs))
	}
	if !got.Merged || got.StarRating != 2 || got.LastGenerated != 500 {
		t.Fatalf("unexpected merged pet %+v", got)
	}
	if got.EffectiveCapacity() <= target.EffectiveCapacity() {
		t.Fatalf("expected star capacity bonus, got %d", got.EffectiveCapacity())
	}
}

func TestMergeReplacesExistingStar(t *testing.T) {
	cat := catalog.Default()
	target := crab("pet-hermit-crab-1-aaa", buffs(t, cat, catalog.BuffStar, 2, catalog.BuffSpeed, 2, catalog.BuffLuck, 2))
	target.Merged, target.StarRating = true, 2
	source := crab("pet-hermit-crab-2-bbb", buffs(t, cat, catalog.BuffDouble, 3, catalog.BuffLure, 3))

	res := Merge(source, target, 10, cat)
	if res.After != 3 || !res.StarGained {
		t.Fatalf("expected 2 -> 3, got %+v", res)
	}
	stars := 0
	for _, b := range res.Pet.Buffs {
		if b.IsStar() {
			stars++
		}
	}
	if stars != 1 || res.Pet.Buffs[0].ID != "buff-star-3" {
		t.Fatalf("expected exactly star III, got %v", ids(res.Pet.Buffs))
	}
}

func TestMergeWithoutSingleStepGainKeepsStars(t *testing.T) {
	cat := catalog.Default()
	cases := []struct {
		name           string
		target, source []catalog.Buff
		after          int
	}{
		{"unchanged", buffs(t, cat, catalog.BuffSpeed, 1), buffs(t, cat, catalog.BuffSpeed, 1), 1},
		{"jump", buffs(t, cat, catalog.BuffSpeed, 1, catalog.BuffLuck, 1), buffs(t, cat, catalog.BuffDouble, 5, catalog.BuffLure, 5), 3},
	}
	for _, tc := range cases {
		res := Merge(crab("s", tc.source), crab("t", tc.target), 0, cat)
		if res.After != tc.after || res.StarGained {
			t.Fatalf("%s: unexpected result %+v", tc.name, res)
		}
		for _, b := range res.Pet.Buffs {
			if b.IsStar() {
				t.Fatalf("%s: unexpected star buff %s", tc.name, b.ID)
			}
		}
		if !res.Pet.Merged || res.Pet.StarRating != tc.after {
			t.Fatalf("%s: expected merged pet at %d stars, got %+v", tc.name, tc.after, res.Pet)
		}
	}
}

func TestCanMergeReasons(t *testing.T) {
	cat := catalog.Default()
	base := crab("pet-hermit-crab-1-aaa", buffs(t, cat, catalog.BuffSpeed, 1))
	other := crab("pet-hermit-crab-2-bbb", buffs(t, cat, catalog.BuffSpeed, 1))

	locked := other
	locked.Locked = true
	urchin := other
	urchin.TemplateKey = "pet-sea-urchin"
	better := other
	better.Buffs = buffs(t, cat, catalog.BuffSpeed, 3)

	cases := []struct {
		name  string
		other pets.Pet
		want  error
	}{
		{"same", base, ErrSamePet},
		{"locked", locked, ErrLocked},
		{"template", urchin, ErrDifferentTemplate},
		{"rating", better, ErrDifferentRating},
		{"ok", other, nil},
	}
	for _, tc := range cases {
		err := CanMerge(tc.other, base)
		if tc.want == nil {
			if err != nil {
				t.Fatalf("%s: unexpected error %v", tc.name, err)
			}
			continue
		}
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
