package pets

import (
	"errors"
	"strings"
	"testing"

	"tidepool/server/catalog"
)

func TestTemplateKeyFromID(t *testing.T) {
	cases := map[string]string{
		"pet-hermit-crab-1700000000000-0.4821":  "pet-hermit-crab",
		"pet-hermit-crab-1700000000-a1b2c3d4e5": "pet-hermit-crab",
		"pet-hermit-crab-3":                     "pet-hermit-crab",
		"pet-hermit-crab-1700000000-42":         "pet-hermit-crab",
		"pet-hermit-crab":                       "pet-hermit-crab",
		"pet-kraken":                            "pet-kraken",
	}
	for id, want := range cases {
		if got := TemplateKeyFromID(id); got != want {
			t.Fatalf("TemplateKeyFromID(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestNewIDIsUniqueAndRecoverable(t *testing.T) {
	a := NewID("pet-sea-urchin", 1700000000)
	b := NewID("pet-sea-urchin", 1700000000)
	if a == b {
		t.Fatalf("expected unique ids, got %q twice", a)
	}
	if !strings.HasPrefix(a, "pet-sea-urchin-1700000000-") {
		t.Fatalf("unexpected id shape %q", a)
	}
	if got := TemplateKeyFromID(a); got != "pet-sea-urchin" {
		t.Fatalf("expected template key to be recoverable from %q, got %q", a, got)
	}
}

func TestEffectiveCapacityAndRating(t *testing.T) {
	cat := catalog.Default()
	tpl, err := cat.Template("pet-hermit-crab")
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	star, _ := cat.StarBuff(3)
	speed, _ := cat.BuffFor(catalog.BuffSpeed, 2)

	pet := NewFromTemplate(tpl, "pet-hermit-crab-1", []catalog.Buff{speed}, 100)
	if pet.EffectiveCapacity() != tpl.MaxGemCapacity {
		t.Fatalf("expected base capacity without star, got %d", pet.EffectiveCapacity())
	}
	if pet.Rating() != 2 {
		t.Fatalf("expected derived rating 2, got %d", pet.Rating())
	}
	if pet.LastGenerated != 100 || pet.CurrentGems != 0 {
		t.Fatalf("unexpected fresh pet %+v", pet)
	}

	pet.Buffs = append([]catalog.Buff{star}, pet.Buffs...)
	bonus, _ := catalog.Find[catalog.Star](star)
	want := int(float64(tpl.MaxGemCapacity)*(1+bonus.CapacityBonus) + 0.5)
	if pet.EffectiveCapacity() != want {
		t.Fatalf("expected star capacity %d, got %d", want, pet.EffectiveCapacity())
	}

	pet.Merged = true
	pet.StarRating = 4
	if pet.Rating() != 4 {
		t.Fatalf("expected stored rating for merged pet, got %d", pet.Rating())
	}
}

func TestStoreKeepsInsertionOrderAndCopies(t *testing.T) {
	store := NewStore()
	for _, id := range []string{"b", "a", "c"} {
		if err := store.Add(Pet{ID: id}); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	if err := store.Add(Pet{ID: "a"}); !errors.Is(err, ErrDuplicatePet) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if ids := store.IDs(); strings.Join(ids, ",") != "b,a,c" {
		t.Fatalf("unexpected order %v", ids)
	}

	p, _ := store.Get("a")
	p.CurrentGems = 9
	if again, _ := store.Get("a"); again.CurrentGems != 0 {
		t.Fatalf("expected Get to return a copy")
	}
	if err := store.Put(p); err != nil {
		t.Fatalf("put: %v", err)
	}
	if again, _ := store.Get("a"); again.CurrentGems != 9 {
		t.Fatalf("expected Put to persist")
	}

	if _, ok := store.Remove("a"); !ok {
		t.Fatalf("expected removal")
	}
	if ids := store.IDs(); strings.Join(ids, ",") != "b,c" || store.Len() != 2 {
		t.Fatalf("unexpected state after removal %v", ids)
	}
	if err := store.Put(Pet{ID: "zz"}); !errors.Is(err, ErrUnknownPet) {
		t.Fatalf("expected unknown pet error, got %v", err)
	}
}

func TestImportLegacy(t *testing.T) {
	save := []byte(`{
		"cash": 5000,
		"pets": [
			{"id": "pet-hermit-crab-1700000000000-0.25", "name": "Hermit Crap", "rarity": "common",
			 "tickTimeRange": [45, 55], "maxGemCapacity": 650, "currentGems": 9000, "lastGenerated": 1700000000,
			 "buffs": [{"id": "buff-speed-1", "name": "SPEED I"}, {"id": "buff-gamble-2", "name": "GAMBLE II", "rarity": "rare"}]},
			{"id": "pet-buff-totem-3", "providesBuffs": []},
			{"id": "pet-unknown-thing-4"}
		],
		"buffs": [{"instanceId": "buff-luck-2-99", "buff": {"id": "buff-luck-2"}, "position": {"x": 1, "y": 2}, "lastMoved": 1700000100}],
		"grid": {"tiles": [[{"position": {"x": 0, "y": 0}, "petId": "pet-hermit-crab-1700000000000-0.25", "unlocked": true}]]}
	}`)
	state, err := ImportLegacy(save, catalog.Default(), 1800000000)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !state.HasCash || state.Cash != 5000 {
		t.Fatalf("unexpected cash %d", state.Cash)
	}
	if len(state.Pets) != 1 || len(state.Skipped) != 2 {
		t.Fatalf("expected 1 pet and 2 skipped, got %s", state)
	}
	pet := state.Pets[0]
	if pet.TemplateKey != "pet-hermit-crab" {
		t.Fatalf("unexpected template key %q", pet.TemplateKey)
	}
	if pet.CurrentGems != 650 {
		t.Fatalf("expected gems clamped to capacity, got %d", pet.CurrentGems)
	}
	if len(pet.Buffs) != 1 || pet.Buffs[0].ID != "buff-speed-1" {
		t.Fatalf("expected only the known buff to survive, got %+v", pet.Buffs)
	}
	if len(state.Buffs) != 1 || !state.Buffs[0].Placed || state.Buffs[0].X != 1 || state.Buffs[0].Y != 2 {
		t.Fatalf("unexpected buffs %+v", state.Buffs)
	}
	if len(state.Tiles) != 1 || state.Tiles[0].PetID != pet.ID || !state.Tiles[0].Unlocked {
		t.Fatalf("unexpected tiles %+v", state.Tiles)
	}

	if _, err := ImportLegacy([]byte(`{"pets": [`), catalog.Default(), 0); !errors.Is(err, ErrInvalidLegacy) {
		t.Fatalf("expected invalid legacy error, got %v", err)
	}
}
