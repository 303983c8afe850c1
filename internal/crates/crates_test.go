package crates

import (
	"errors"
	"testing"

	"tidepool/server/catalog"
	"tidepool/server/internal/random"
)

func downgradeOnlyCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	base := catalog.Default()
	crates := base.Crates()
	for i := range crates {
		switch crates[i].Rarity {
		case catalog.RarityMythical:
			crates[i].Drops = []catalog.Drop{{Kind: catalog.DropDowngrade, DowngradeTo: catalog.RarityEpic, Weight: 100}}
		case catalog.RarityEpic:
			crates[i].Drops = []catalog.Drop{{Kind: catalog.DropDowngrade, DowngradeTo: catalog.RarityCommon, Weight: 100}}
		}
	}
	cat, err := catalog.New(base.Buffs(), base.AllGems(), base.Templates(), crates, base.Tables())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func TestOpenFollowsDowngradeChain(t *testing.T) {
	cat := downgradeOnlyCatalog(t)
	opener := NewOpener(cat, random.NewDeterministic("crates", "downgrade"))
	for i := 0; i < 50; i++ {
		opening, err := opener.Open(catalog.RarityMythical, 1000)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if opening.Resolved != catalog.RarityCommon || opening.Downgrades != 2 {
			t.Fatalf("expected two downgrades to common, got %+v", opening)
		}
		if opening.Pet.Rarity != catalog.RarityCommon {
			t.Fatalf("expected common pet, got %s", opening.Pet.Rarity)
		}
	}
}

func TestOpenCreatesFreshPet(t *testing.T) {
	ids := 0
	opener := NewOpener(catalog.Default(), random.NewDeterministic("crates", "fresh"), WithIDs(func(key string, now int64) string {
		ids++
		return key + "-fixed"
	}))
	opening, err := opener.Open(catalog.RarityRare, 4242)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	pet := opening.Pet
	if ids != 1 || pet.ID != pet.TemplateKey+"-fixed" {
		t.Fatalf("expected injected id, got %q", pet.ID)
	}
	if pet.CurrentGems != 0 || pet.LastGenerated != 4242 || len(pet.Buffs) == 0 {
		t.Fatalf("unexpected fresh pet %+v", pet)
	}
}

func TestOpenScriptedDraw(t *testing.T) {
	cat := catalog.Default()
	crate, _ := cat.Crate(catalog.RarityCommon)
	// The first draw picks the first drop; the rest feed the buff roll.
	opener := NewOpener(cat, random.NewSequence(0, 0, 0, 0))
	opening, err := opener.Open(catalog.RarityCommon, 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if crate.Drops[0].Kind != catalog.DropPet || opening.Pet.TemplateKey != crate.Drops[0].PetID {
		t.Fatalf("expected first drop %+v, got %s", crate.Drops[0], opening.Pet.TemplateKey)
	}
}

func TestOpenUnknownCrate(t *testing.T) {
	opener := NewOpener(catalog.Default(), random.Constant(0.5))
	if _, err := opener.Open(catalog.Rarity("mythic"), 0); !errors.Is(err, catalog.ErrUnknownCrate) {
		t.Fatalf("expected ErrUnknownCrate, got %v", err)
	}
	if _, err := opener.Create("pet-nope", 0); !errors.Is(err, catalog.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestOpenMany(t *testing.T) {
	opener := NewOpener(catalog.Default(), random.NewDeterministic("crates", "many"))
	openings, err := opener.OpenMany(catalog.RarityEpic, 5, 10)
	if err != nil {
		t.Fatalf("open many: %v", err)
	}
	if len(openings) != 5 {
		t.Fatalf("expected 5 openings, got %d", len(openings))
	}
	seen := make(map[string]bool)
	for _, o := range openings {
		if seen[o.Pet.ID] {
			t.Fatalf("duplicate pet id %s", o.Pet.ID)
		}
		seen[o.Pet.ID] = true
	}
	if none, _ := opener.OpenMany(catalog.RarityEpic, 0, 10); len(none) != 0 {
		t.Fatalf("expected no openings for n=0")
	}
}
