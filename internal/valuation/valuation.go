// Package valuation prices pets for selling.
package valuation

import (
	"math"

	"tidepool/server/catalog"
	"tidepool/server/internal/pets"
)

// levelMultipliers damp high-level buffs on low-rarity pets, indexed by
// level-1.
var levelMultipliers = map[catalog.Rarity][catalog.MaxLevel]float64{
	catalog.RarityCommon:    {1.0, 0.4, 0.15, 0.05, 0.01},
	catalog.RarityRare:      {1.0, 0.7, 0.4, 0.2, 0.10},
	catalog.RarityEpic:      {1.0, 0.8, 0.55, 0.35, 0.25},
	catalog.RarityLegendary: {1.0, 0.9, 0.75, 0.60, 0.50},
	catalog.RarityMythical:  {1.0, 1.0, 1.0, 1.0, 1.0},
}

// LevelMultiplier returns the share of a buff's value a pet of the given
// rarity keeps at the given level.
func LevelMultiplier(rarity catalog.Rarity, level int) float64 {
	if level < 1 || level > catalog.MaxLevel {
		return 1
	}
	table, ok := levelMultipliers[rarity]
	if !ok {
		table = levelMultipliers[catalog.RarityCommon]
	}
	return table[level-1]
}

// BuffValue is one buff's contribution to a pet of the given rarity. Star
// buffs are merge rewards and add nothing.
func BuffValue(b catalog.Buff, rarity catalog.Rarity) int64 {
	if b.IsStar() || b.BaseValue <= 0 {
		return 0
	}
	return int64(math.Round(float64(b.BaseValue) * LevelMultiplier(rarity, b.RomanLevel())))
}

// Value is the sell price of a pet: its template's base value plus every
// intrinsic buff's value. Pets of unknown templates are worth their buffs.
func Value(p pets.Pet, cat *catalog.Catalog) int64 {
	var total int64
	if tpl, err := cat.Template(p.TemplateKey); err == nil {
		total = tpl.BaseValue
	}
	for _, b := range p.Buffs {
		total += BuffValue(b, p.Rarity)
	}
	return total
}
