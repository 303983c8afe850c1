// Package production evaluates one production opportunity for a pet.
//
// Evaluation is driven by wall-clock deltas against the pet's anchors
// (LastGenerated, DisabledUntil), so calling Evaluate more or less often
// never changes how much a pet produces over time.
package production

import (
	"math"
	"time"

	"tidepool/server/catalog"
	"tidepool/server/internal/pets"
	"tidepool/server/internal/random"
	"tidepool/server/stats"
)

// DefaultOfflineCap bounds how much elapsed time a restored pet may claim.
const DefaultOfflineCap = 6 * time.Hour

// Outcome is the terminal state of one evaluation.
type Outcome uint8

const (
	OutcomeDisabled Outcome = iota + 1
	OutcomeAtCapacity
	OutcomeIdle
	OutcomeSurgeSkipped
	OutcomeNoGem
	OutcomeProduced
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDisabled:
		return "disabled"
	case OutcomeAtCapacity:
		return "at_capacity"
	case OutcomeIdle:
		return "idle"
	case OutcomeSurgeSkipped:
		return "surge_skipped"
	case OutcomeNoGem:
		return "no_gem"
	case OutcomeProduced:
		return "produced"
	default:
		return "unknown"
	}
}

// Cause names what disabled a pet after production.
type Cause string

const CauseExhaust Cause = "exhaust"

// Result is the updated pet plus what the evaluation yielded. Gems holds one
// entry per produced unit with the value multiplier already applied; it is
// empty for every outcome except OutcomeProduced.
type Result struct {
	Pet        pets.Pet
	Gems       []catalog.Gem
	Outcome    Outcome
	DisabledBy Cause
	Modifiers  stats.Modifiers
}

// Produced reports whether any gem was added.
func (r Result) Produced() bool {
	return r.Outcome == OutcomeProduced && len(r.Gems) > 0
}

// Value is the total value of the produced gems.
func (r Result) Value() int64 {
	var total int64
	for _, g := range r.Gems {
		total += g.BaseValue
	}
	return total
}

// Engine evaluates production against a catalog and a random source.
type Engine struct {
	cat *catalog.Catalog
	rng random.Source
}

func NewEngine(cat *catalog.Catalog, rng random.Source) *Engine {
	return &Engine{cat: cat, rng: rng}
}

// Evaluate advances one pet by at most one production. active holds the
// area buffs covering the pet's tile and nearby counts other pets for
// neighbour-scaled buffs.
//
// Gates apply in order: disabled, at capacity (the anchor is left alone so
// elapsed time keeps accruing), interval not yet elapsed, surge skip (not
// consumed), no-gem (consumed). Only then are tier, gem, unit count and
// disable risks rolled.
func (e *Engine) Evaluate(pet pets.Pet, active []catalog.Buff, nearby stats.Neighborhood, now int64) Result {
	pet = pet.Clone()
	mods := stats.Resolve(pet.Buffs, active, nearby)
	pet.SpeedPenalty = mods.SpeedPenalty
	res := Result{Modifiers: mods}

	if pet.Disabled(now) {
		return res.finish(pet, OutcomeDisabled)
	}
	capacity := pet.EffectiveCapacity()
	if pet.CurrentGems >= capacity {
		return res.finish(pet, OutcomeAtCapacity)
	}
	interval := pet.AverageTick() * mods.TickSpeedMultiplier * mods.SpeedPenalty
	if float64(now-pet.LastGenerated) < interval {
		return res.finish(pet, OutcomeIdle)
	}
	if mods.SurgeSkipChance > 0 && e.rng.Float64() < mods.SurgeSkipChance {
		return res.finish(pet, OutcomeSurgeSkipped)
	}
	if mods.NoGemChance > 0 && e.rng.Float64() < mods.NoGemChance {
		pet.LastGenerated = now
		return res.finish(pet, OutcomeNoGem)
	}

	gem, ok := e.rollGem(pet.Rarity, mods)
	if !ok {
		return res.finish(pet, OutcomeIdle)
	}
	units := e.rollUnits(mods)
	if room := capacity - pet.CurrentGems; units > room {
		units = room
	}

	pet.CurrentGems += units
	pet.StoredValue += gem.BaseValue * int64(units)
	pet.LastGenerated = now
	pet.GenerationCount++
	res.Gems = make([]catalog.Gem, units)
	for i := range res.Gems {
		res.Gems[i] = gem
	}

	for _, risk := range mods.DisableRisks {
		if risk.Chance > 0 && e.rng.Float64() < risk.Chance {
			pet.DisabledUntil = now + risk.Duration
			res.DisabledBy = Cause(risk.Risk)
			break
		}
	}
	if ex := mods.Exhaust; ex != nil && pet.GenerationCount >= ex.GenerationCount {
		pet.DisabledUntil = now + ex.Duration
		pet.GenerationCount = 0
		res.DisabledBy = CauseExhaust
	}
	return res.finish(pet, OutcomeProduced)
}

func (r Result) finish(pet pets.Pet, outcome Outcome) Result {
	r.Pet = pet
	r.Outcome = outcome
	return r
}

// rollGem promotes the tier at most one step, then picks a gem of that tier
// by TierPercentage and applies the value multiplier.
func (e *Engine) rollGem(rarity catalog.Rarity, mods stats.Modifiers) (catalog.Gem, bool) {
	tier := rarity
	chance := e.cat.Tables().TierUpgradeChance[rarity] + mods.TierBonus
	if e.rng.Float64() < chance {
		if next, ok := rarity.Next(); ok {
			tier = next
		}
	}
	gems := e.cat.Gems(tier)
	if len(gems) == 0 {
		gems = e.cat.Gems(rarity)
	}
	total := 0
	for _, g := range gems {
		if g.TierPercentage > 0 {
			total += g.TierPercentage
		}
	}
	if total <= 0 {
		return catalog.Gem{}, false
	}
	pick := e.rng.Float64() * float64(total)
	chosen := gems[0]
	cumulative := 0.0
	for _, g := range gems {
		if g.TierPercentage <= 0 {
			continue
		}
		chosen = g
		cumulative += float64(g.TierPercentage)
		if pick < cumulative {
			break
		}
	}
	if mods.ValueMultiplier != 1 {
		chosen.BaseValue = int64(math.Round(float64(chosen.BaseValue) * mods.ValueMultiplier))
	}
	return chosen, true
}

// rollUnits checks triple first; double gets its own draw only when triple
// does not proc.
func (e *Engine) rollUnits(mods stats.Modifiers) int {
	if mods.TripleChance > 0 && e.rng.Float64() < mods.TripleChance {
		return 3
	}
	if mods.DoubleChance > 0 && e.rng.Float64() < mods.DoubleChance {
		return 2
	}
	return 1
}

// ClampOffline moves a stale LastGenerated anchor forward so a restored pet
// claims at most limit of elapsed time. A non-positive limit disables the cap.
func ClampOffline(pet pets.Pet, now int64, limit time.Duration) pets.Pet {
	if limit <= 0 {
		return pet
	}
	maxElapsed := int64(limit / time.Second)
	if now-pet.LastGenerated > maxElapsed {
		pet.LastGenerated = now - maxElapsed
	}
	return pet
}
