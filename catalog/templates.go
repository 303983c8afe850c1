package catalog

// PetTemplate is the static definition a pet instance is created from.
type PetTemplate struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Rarity         Rarity `json:"rarity"`
	BaseGemRate    int    `json:"baseGemRate"`
	TickTimeRange  [2]int `json:"tickTimeRange"`
	MaxGemCapacity int    `json:"maxGemCapacity"`
	BaseValue      int64  `json:"baseValue"`
}

func defaultTemplates() []PetTemplate {
	tpl := func(id, name string, rarity Rarity, lo, hi, capacity int, value int64) PetTemplate {
		return PetTemplate{
			ID:             id,
			Name:           name,
			Rarity:         rarity,
			BaseGemRate:    1,
			TickTimeRange:  [2]int{lo, hi},
			MaxGemCapacity: capacity,
			BaseValue:      value,
		}
	}
	return []PetTemplate{
		tpl("pet-hermit-crab", "Hermit Crap", RarityCommon, 45, 55, 650, 400),
		tpl("pet-sea-urchin", "Sea Urchin", RarityCommon, 55, 65, 720, 1500),
		tpl("pet-tarnished-clam", "Tarnished Clam", RarityCommon, 65, 75, 800, 3400),

		tpl("pet-polished-snail", "Polished Snail", RarityRare, 95, 105, 400, 40000),
		tpl("pet-tide-crawler", "Tide Crawler", RarityRare, 80, 120, 450, 50000),
		tpl("pet-fracture-crab", "Fracture Crab", RarityRare, 115, 125, 500, 70000),

		tpl("pet-gilded-oyster", "Gilded Oyster", RarityEpic, 200, 220, 200, 300000),
		tpl("pet-pearl-nautilus", "Pearl Nautilus", RarityEpic, 230, 250, 220, 425000),
		tpl("pet-shiny-lobster", "Shiny Lobster", RarityEpic, 260, 280, 250, 600000),

		tpl("pet-opaline-scallop", "Opaline Scallop", RarityLegendary, 350, 370, 120, 3000000),
		tpl("pet-crystalline-mantis-shrimp", "Crystallized Mantis Shrimp", RarityLegendary, 390, 410, 130, 6500000),
		tpl("pet-prismatic-spider-crab", "Prismatic Spider Crab", RarityLegendary, 430, 450, 140, 12000000),

		tpl("pet-ancient-geodenum-turtle", "Ancient Geodenum Turtle", RarityMythical, 540, 580, 80, 30000000),
		tpl("pet-cosmic-trilobite", "Cosmic Trilobite", RarityMythical, 560, 600, 90, 75000000),
		tpl("pet-voidwyrm-isopod", "Voidwyrm Isopod", RarityMythical, 480, 520, 100, 135000000),
	}
}
