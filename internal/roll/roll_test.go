package roll

import (
	"testing"

	"tidepool/server/catalog"
	"tidepool/server/internal/random"
)

func TestRollRespectsRarityLimits(t *testing.T) {
	cat := catalog.Default()
	tables := cat.Tables()
	roller := New(cat, random.NewDeterministic("roll-test", "buffs"))

	for _, rarity := range catalog.Rarities {
		for i := 0; i < 300; i++ {
			buffs := roller.Roll(rarity)
			if len(buffs) < 1 || len(buffs) > tables.MaxCount(rarity) {
				t.Fatalf("%s: rolled %d buffs", rarity, len(buffs))
			}
			seen := make(map[catalog.BuffType]bool)
			for _, b := range buffs {
				if seen[b.Type] {
					t.Fatalf("%s: duplicate buff type %s", rarity, b.Type)
				}
				seen[b.Type] = true
				if tables.TypeWeight(rarity, b.Type) == 0 {
					t.Fatalf("%s: rolled impossible type %s", rarity, b.Type)
				}
				if b.IsStar() {
					t.Fatalf("%s: star buffs must never be rolled", rarity)
				}
			}
		}
	}
}

func TestRollScriptedDraws(t *testing.T) {
	cat := catalog.Default()
	// count 0.9 -> 3; then (type, level) pairs.
	seq := random.NewSequence(0.9, 0.0, 0.0, 0.0, 0.995, 0.30, 0.75)
	buffs := New(cat, seq).Roll(catalog.RarityCommon)
	if len(buffs) != 3 {
		t.Fatalf("expected 3 buffs, got %d", len(buffs))
	}
	if buffs[0].ID != "buff-speed-1" {
		t.Fatalf("expected first slot speed I, got %s", buffs[0].ID)
	}
	if buffs[1].RomanLevel() != 5 {
		t.Fatalf("expected level V from a 0.995 draw, got %s", buffs[1].Name)
	}
	if buffs[2].RomanLevel() != 2 {
		t.Fatalf("expected level II from a 0.75 draw, got %s", buffs[2].Name)
	}
	if seq.Drawn() != 7 {
		t.Fatalf("expected 7 draws, got %d", seq.Drawn())
	}
}

func TestRollFallsBackWhenDefinitionsMissing(t *testing.T) {
	base := catalog.Default()
	var kept []catalog.Buff
	for _, b := range base.Buffs() {
		if b.ID == FallbackBuffID || b.IsStar() {
			kept = append(kept, b)
		}
	}
	cat, err := catalog.New(kept, base.AllGems(), base.Templates(), base.Crates(), base.Tables())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	// count 1, type draw lands on lure, level I: lure I is missing.
	buffs := New(cat, random.NewSequence(0.0, 0.3, 0.0)).Roll(catalog.RarityCommon)
	if len(buffs) != 1 || buffs[0].ID != FallbackBuffID {
		t.Fatalf("expected fallback buff, got %+v", buffs)
	}
}

func TestPickTypeSkipsZeroWeights(t *testing.T) {
	tables := catalog.Default().Tables()
	available := []catalog.BuffType{catalog.BuffSurge, catalog.BuffUnstable, catalog.BuffLuck}
	got, ok := pickType(tables, catalog.RarityCommon, available, 0)
	if !ok || got != catalog.BuffLuck {
		t.Fatalf("expected luck, got %s", got)
	}
	if _, ok := pickType(tables, catalog.RarityCommon, available[:2], 0.5); ok {
		t.Fatalf("expected no pick when every weight is zero")
	}
}
