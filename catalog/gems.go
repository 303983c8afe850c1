package catalog

// Gem is a produced resource template. TierPercentage weights the gem
// against the other gems of its rarity.
type Gem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Rarity         Rarity `json:"rarity"`
	BaseValue      int64  `json:"baseValue"`
	TierPercentage int    `json:"tierPercentage"`
}

func defaultGems() []Gem {
	return []Gem{
		{ID: "common-1", Name: "Ruststone", Rarity: RarityCommon, BaseValue: 100, TierPercentage: 50},
		{ID: "common-2", Name: "Silvel", Rarity: RarityCommon, BaseValue: 125, TierPercentage: 25},
		{ID: "common-3", Name: "Zincore", Rarity: RarityCommon, BaseValue: 150, TierPercentage: 15},
		{ID: "common-4", Name: "Tin Shard", Rarity: RarityCommon, BaseValue: 175, TierPercentage: 10},

		{ID: "rare-1", Name: "Quartzite", Rarity: RarityRare, BaseValue: 2025, TierPercentage: 75},
		{ID: "rare-2", Name: "Glow Amber", Rarity: RarityRare, BaseValue: 2250, TierPercentage: 25},

		{ID: "epic-1", Name: "Rift Stone", Rarity: RarityEpic, BaseValue: 6750, TierPercentage: 50},
		{ID: "epic-2", Name: "Ember Crystal", Rarity: RarityEpic, BaseValue: 7425, TierPercentage: 35},
		{ID: "epic-3", Name: "Starshine", Rarity: RarityEpic, BaseValue: 8100, TierPercentage: 15},

		{ID: "legendary-1", Name: "Elder Core", Rarity: RarityLegendary, BaseValue: 24300, TierPercentage: 50},
		{ID: "legendary-2", Name: "Prismatic Pearl", Rarity: RarityLegendary, BaseValue: 26325, TierPercentage: 35},
		{ID: "legendary-3", Name: "Solarion Shard", Rarity: RarityLegendary, BaseValue: 28350, TierPercentage: 15},

		{ID: "mythical-1", Name: "Eternal HeartStone", Rarity: RarityMythical, BaseValue: 85050, TierPercentage: 75},
		{ID: "mythical-2", Name: "Iridescent VoidShard", Rarity: RarityMythical, BaseValue: 91125, TierPercentage: 25},
	}
}
