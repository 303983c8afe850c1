package catalog

// DropKind distinguishes pet drops from downgrade drops.
type DropKind string

const (
	DropPet       DropKind = "pet"
	DropDowngrade DropKind = "downgrade"
)

// Drop is one weighted entry of a crate's drop table. Pet drops name a
// template; downgrade drops re-open the crate of a lower rarity.
type Drop struct {
	Kind        DropKind `json:"type"`
	PetID       string   `json:"petId,omitempty"`
	DowngradeTo Rarity   `json:"downgradeTo,omitempty"`
	Weight      int      `json:"weight"`
}

type Crate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Rarity      Rarity `json:"rarity"`
	Cost        int64  `json:"cost"`
	Description string `json:"description"`
	Drops       []Drop `json:"drops"`
}

// CrateID is the canonical crate id for a rarity.
func CrateID(rarity Rarity) string {
	return "crate-" + string(rarity)
}

func pet(id string, weight int) Drop {
	return Drop{Kind: DropPet, PetID: id, Weight: weight}
}

func downgrade(to Rarity, weight int) Drop {
	return Drop{Kind: DropDowngrade, DowngradeTo: to, Weight: weight}
}

func defaultCrates() []Crate {
	return []Crate{
		{
			ID:          CrateID(RarityCommon),
			Name:        "Common Crate",
			Rarity:      RarityCommon,
			Cost:        10000,
			Description: "A basic crate containing common pets.",
			Drops: []Drop{
				pet("pet-hermit-crab", 50),
				pet("pet-sea-urchin", 30),
				pet("pet-tarnished-clam", 20),
			},
		},
		{
			ID:          CrateID(RarityRare),
			Name:        "Rare Crate",
			Rarity:      RarityRare,
			Cost:        150000,
			Description: "An improved crate with a chance for rare pets.",
			Drops: []Drop{
				downgrade(RarityCommon, 20),
				pet("pet-polished-snail", 35),
				pet("pet-tide-crawler", 25),
				pet("pet-fracture-crab", 20),
			},
		},
		{
			ID:          CrateID(RarityEpic),
			Name:        "Epic Crate",
			Rarity:      RarityEpic,
			Cost:        3200000,
			Description: "A valuable crate with powerful epic pets inside.",
			Drops: []Drop{
				downgrade(RarityRare, 35),
				pet("pet-gilded-oyster", 35),
				pet("pet-pearl-nautilus", 18),
				pet("pet-shiny-lobster", 12),
			},
		},
		{
			ID:          CrateID(RarityLegendary),
			Name:        "Legendary Crate",
			Rarity:      RarityLegendary,
			Cost:        25000000,
			Description: "A rare crate holding legendary pets.",
			Drops: []Drop{
				downgrade(RarityEpic, 60),
				pet("pet-opaline-scallop", 20),
				pet("pet-crystalline-mantis-shrimp", 12),
				pet("pet-prismatic-spider-crab", 8),
			},
		},
		{
			ID:          CrateID(RarityMythical),
			Name:        "Mythical Crate",
			Rarity:      RarityMythical,
			Cost:        120000000,
			Description: "The rarest crate, home to mythical pets.",
			Drops: []Drop{
				downgrade(RarityLegendary, 80),
				pet("pet-ancient-geodenum-turtle", 10),
				pet("pet-cosmic-trilobite", 6),
				pet("pet-voidwyrm-isopod", 4),
			},
		},
	}
}
