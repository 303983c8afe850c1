package stats

import "tidepool/server/catalog"

// Neighborhood counts other pets around the evaluated pet.
type Neighborhood interface {
	CountPetsInRadius(radius int) int
}

// NeighborhoodFunc adapts a plain function to Neighborhood.
type NeighborhoodFunc func(radius int) int

func (f NeighborhoodFunc) CountPetsInRadius(radius int) int {
	if f == nil {
		return 0
	}
	return f(radius)
}

// deltaFor translates one buff's own effects into modifier contributions.
// Neighbour-scaled effects come from neighborDelta. Disable risks, exhaust
// cycles and star payloads are not scalar modifiers and are collected
// separately by Resolve.
func deltaFor(b catalog.Buff, effectiveness float64) StatDelta {
	delta := NewStatDelta()
	for _, effect := range b.Effects {
		switch e := effect.(type) {
		case catalog.TickSpeed:
			delta.Mul[ModTickSpeed] *= e.Multiplier
		case catalog.GemValue:
			delta.Mul[ModValue] *= scaleMultiplier(e.Multiplier, effectiveness)
		case catalog.TierChance:
			delta.Add[ModTierBonus] += scaleChance(e.Bonus, effectiveness)
		case catalog.DoubleChance:
			if !b.IsStar() {
				delta.Add[ModDoubleChance] += scaleChance(e.Chance, effectiveness)
			}
		case catalog.TripleChance:
			if !b.IsStar() {
				delta.Add[ModTripleChance] += scaleChance(e.Chance, effectiveness)
			}
		case catalog.NoGemChance:
			delta.Add[ModNoGemChance] += scaleChance(e.Chance, effectiveness)
		case catalog.SurgeSkip:
			delta.Add[ModSurgeSkip] += e.Chance
		case catalog.Exhaust:
			if e.ValueMultiplier > 0 {
				delta.Mul[ModValue] *= scaleMultiplier(e.ValueMultiplier, effectiveness)
			}
		}
	}
	return delta
}

// neighborDelta is the part of b that scales with the pets around the
// evaluated pet.
func neighborDelta(b catalog.Buff, effectiveness float64, nearby Neighborhood) StatDelta {
	delta := NewStatDelta()
	for _, effect := range b.Effects {
		switch e := effect.(type) {
		case catalog.NearbyTierChance:
			count := countNearby(nearby, radiusOf(e.Radius, b))
			delta.Add[ModTierBonus] += scaleChance(e.PerPet, effectiveness) * float64(count)
		case catalog.NearbyValue:
			count := countNearby(nearby, radiusOf(e.Radius, b))
			delta.Mul[ModValue] *= compound(e.PerPet, effectiveness, count)
		}
	}
	return delta
}

func radiusOf(effectRadius int, b catalog.Buff) int {
	if effectRadius > 0 {
		return effectRadius
	}
	return b.AreaRadius
}

func countNearby(nearby Neighborhood, radius int) int {
	if nearby == nil || radius <= 0 {
		return 0
	}
	count := nearby.CountPetsInRadius(radius)
	if count < 0 {
		return 0
	}
	return count
}
