package stats

import (
	"fmt"
	"math"

	"tidepool/server/catalog"
)

// Modifiers is the aggregated view of every buff affecting one pet.
type Modifiers struct {
	TickSpeedMultiplier float64
	BuffEffectiveness   float64
	ValueMultiplier     float64
	TierBonus           float64
	DoubleChance        float64
	TripleChance        float64
	NoGemChance         float64
	SurgeSkipChance     float64
	// SpeedPenalty is kept on the pet for presentation. No current buff
	// changes it.
	SpeedPenalty float64
	// DisableRisks are ordered by catalog.RiskPriority, then by source order.
	DisableRisks []catalog.DisableRisk
	Exhaust      *catalog.Exhaust
}

// Resolve folds a pet's intrinsic buffs and the area buffs covering its tile
// into effective modifiers. Only the pet's own star buff scales
// effectiveness.
func Resolve(intrinsic, area []catalog.Buff, nearby Neighborhood) Modifiers {
	effectiveness := 1.0
	if star, ok := StarOf(intrinsic); ok {
		effectiveness += star.EffectivenessBonus
	}

	comp := NewComponent()
	apply := func(layer Layer, kind SourceKind, i int, b catalog.Buff) {
		id := sourceID(i, b)
		comp.Apply(CommandModifierChange{
			Layer:  layer,
			Source: SourceKey{Kind: kind, ID: id},
			Delta:  deltaFor(b, effectiveness),
		})
		if delta := neighborDelta(b, effectiveness, nearby); !delta.neutral() {
			comp.Apply(CommandModifierChange{
				Layer:  layer,
				Source: SourceKey{Kind: SourceKindNeighbor, ID: id},
				Delta:  delta,
			})
		}
	}
	for i, b := range intrinsic {
		apply(LayerIntrinsic, SourceKindIntrinsic, i, b)
	}
	for i, b := range area {
		apply(LayerArea, SourceKindPlaced, i, b)
	}
	comp.Resolve()

	mods := Modifiers{
		TickSpeedMultiplier: comp.Total(ModTickSpeed),
		BuffEffectiveness:   effectiveness,
		ValueMultiplier:     comp.Total(ModValue),
		TierBonus:           comp.Total(ModTierBonus),
		DoubleChance:        comp.Total(ModDoubleChance),
		TripleChance:        comp.Total(ModTripleChance),
		NoGemChance:         comp.Total(ModNoGemChance),
		SurgeSkipChance:     clamp(comp.Total(ModSurgeSkip), 0, 1),
		SpeedPenalty:        1,
	}

	all := make([]catalog.Buff, 0, len(intrinsic)+len(area))
	all = append(all, intrinsic...)
	all = append(all, area...)
	for _, kind := range catalog.RiskPriority {
		for _, b := range all {
			for _, effect := range b.Effects {
				if r, ok := effect.(catalog.DisableRisk); ok && r.Risk == kind {
					mods.DisableRisks = append(mods.DisableRisks, r)
				}
			}
		}
	}
	for _, b := range all {
		if exhaust, ok := catalog.Find[catalog.Exhaust](b); ok && exhaust.GenerationCount > 0 {
			mods.Exhaust = &exhaust
			break
		}
	}
	return mods
}

func sourceID(index int, b catalog.Buff) string {
	return fmt.Sprintf("%04d:%s", index, b.ID)
}

// StarOf returns the star payload of the first star buff in buffs.
func StarOf(buffs []catalog.Buff) (catalog.Star, bool) {
	for _, b := range buffs {
		if !b.IsStar() {
			continue
		}
		if star, ok := catalog.Find[catalog.Star](b); ok {
			return star, true
		}
	}
	return catalog.Star{}, false
}

// EffectiveCapacity applies the star capacity bonus to a base capacity.
func EffectiveCapacity(maxCapacity int, buffs []catalog.Buff) int {
	bonus := 0.0
	if star, ok := StarOf(buffs); ok {
		bonus = star.CapacityBonus
	}
	return int(math.Round(float64(maxCapacity) * (1 + bonus)))
}

// CompareLevel orders two buffs by Roman level: negative when a is lower,
// zero when equal, positive when a is higher.
func CompareLevel(a, b catalog.Buff) int {
	return a.RomanLevel() - b.RomanLevel()
}
