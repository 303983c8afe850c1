// Package roll assigns random buff sets to freshly created pets.
package roll

import (
	"tidepool/server/catalog"
	"tidepool/server/internal/random"
)

// FallbackBuffID is granted when a roll would otherwise leave a pet empty.
const FallbackBuffID = "buff-speed-1"

// Roller draws buff sets from the catalog's roll tables.
type Roller struct {
	cat *catalog.Catalog
	rng random.Source
}

func New(cat *catalog.Catalog, rng random.Source) *Roller {
	return &Roller{cat: cat, rng: rng}
}

// Roll produces the ordered buff set for a new pet of the given rarity.
// The count, the type of each slot (without replacement) and each level are
// drawn from rarity-specific tables. Slots whose (type, level) has no
// definition are skipped; an empty result receives FallbackBuffID.
func (r *Roller) Roll(rarity catalog.Rarity) []catalog.Buff {
	tables := r.cat.Tables()
	count := tables.Count(rarity, r.rng.Float64())

	used := make(map[catalog.BuffType]bool, count)
	buffs := make([]catalog.Buff, 0, count)
	for i := 0; i < count; i++ {
		available := make([]catalog.BuffType, 0, len(tables.RollableTypes))
		for _, t := range tables.RollableTypes {
			if !used[t] {
				available = append(available, t)
			}
		}
		if len(available) == 0 {
			break
		}
		buffType, ok := pickType(tables, rarity, available, r.rng.Float64())
		if !ok {
			break
		}
		level := tables.Level(rarity, r.rng.Float64())
		if level > catalog.MaxLevel {
			level = catalog.MaxLevel
		}
		b, found := r.cat.BuffFor(buffType, level)
		if !found {
			continue
		}
		buffs = append(buffs, b.Clone())
		used[buffType] = true
	}

	if len(buffs) == 0 {
		if fallback, ok := r.cat.Buff(FallbackBuffID); ok {
			buffs = append(buffs, fallback.Clone())
		}
	}
	return buffs
}

// pickType walks the available types subtracting weights from a draw over
// the total until it drops below zero. Zero-weight types are never chosen.
func pickType(tables catalog.RollTables, rarity catalog.Rarity, available []catalog.BuffType, draw float64) (catalog.BuffType, bool) {
	total := 0
	for _, t := range available {
		total += tables.TypeWeight(rarity, t)
	}
	if total <= 0 {
		return "", false
	}
	remaining := draw * float64(total)
	var last catalog.BuffType
	for _, t := range available {
		w := tables.TypeWeight(rarity, t)
		if w <= 0 {
			continue
		}
		last = t
		remaining -= float64(w)
		if remaining < 0 {
			return t, true
		}
	}
	return last, true
}
