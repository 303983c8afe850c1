package production

import (
	"testing"
	"time"

	"tidepool/server/catalog"
	"tidepool/server/internal/pets"
	"tidepool/server/internal/random"
)

const start = int64(1_700_000_000)

func hermitCrab(t *testing.T, buffs ...catalog.Buff) pets.Pet {
	t.Helper()
	tpl, err := catalog.Default().Template("pet-hermit-crab")
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	return pets.NewFromTemplate(tpl, "pet-hermit-crab-1", buffs, start)
}

func buff(buffType catalog.BuffType, effects ...catalog.Effect) catalog.Buff {
	return catalog.Buff{ID: "buff-test-" + string(buffType), Name: "TEST I", Type: buffType, Level: 1, Effects: effects}
}

// noLuck never promotes tiers and never procs a chance below 0.99.
var noLuck = random.Constant(0.99)

func TestBaseIntervalScenario(t *testing.T) {
	engine := NewEngine(catalog.Default(), noLuck)
	pet := hermitCrab(t)

	res := engine.Evaluate(pet, nil, nil, start+49)
	if res.Outcome != OutcomeIdle || len(res.Gems) != 0 {
		t.Fatalf("expected idle at +49, got %s with %d gems", res.Outcome, len(res.Gems))
	}
	if res.Pet.LastGenerated != start {
		t.Fatalf("idle evaluation moved the anchor")
	}

	res = engine.Evaluate(pet, nil, nil, start+50)
	if res.Outcome != OutcomeProduced || len(res.Gems) != 1 {
		t.Fatalf("expected one gem at +50, got %s with %d gems", res.Outcome, len(res.Gems))
	}
	if res.Pet.CurrentGems != 1 || res.Pet.LastGenerated != start+50 || res.Pet.GenerationCount != 1 {
		t.Fatalf("unexpected pet after production %+v", res.Pet)
	}
	if res.Gems[0].Rarity != catalog.RarityCommon {
		t.Fatalf("expected a common gem, got %s", res.Gems[0].Rarity)
	}
	if res.Pet.StoredValue != res.Value() {
		t.Fatalf("expected stored value %d, got %d", res.Value(), res.Pet.StoredValue)
	}
	if pet.CurrentGems != 0 {
		t.Fatalf("Evaluate mutated its input")
	}
}

func TestDoubleChanceOneAlwaysYieldsTwo(t *testing.T) {
	engine := NewEngine(catalog.Default(), random.NewDeterministic("production", "double"))
	pet := hermitCrab(t, buff(catalog.BuffDouble, catalog.DoubleChance{Chance: 1}))
	now := start
	for i := 0; i < 20; i++ {
		now += 60
		res := engine.Evaluate(pet, nil, nil, now)
		if res.Outcome != OutcomeProduced || len(res.Gems) != 2 {
			t.Fatalf("iteration %d: expected 2 gems, got %s with %d", i, res.Outcome, len(res.Gems))
		}
		pet = res.Pet
	}
}

func TestTriplePreemptsDouble(t *testing.T) {
	engine := NewEngine(catalog.Default(), random.Constant(0.5))
	pet := hermitCrab(t,
		buff(catalog.BuffTriple, catalog.TripleChance{Chance: 1}),
		buff(catalog.BuffDouble, catalog.DoubleChance{Chance: 1}),
	)
	res := engine.Evaluate(pet, nil, nil, start+50)
	if len(res.Gems) != 3 {
		t.Fatalf("expected triple to win, got %d gems", len(res.Gems))
	}
}

func TestExhaustDisablesOnEighthProduction(t *testing.T) {
	engine := NewEngine(catalog.Default(), noLuck)
	pet := hermitCrab(t, buff(catalog.BuffExhaust, catalog.Exhaust{GenerationCount: 8, Duration: 120, ValueMultiplier: 1.5}))
	now := start
	for i := 1; i <= 8; i++ {
		now += 50
		res := engine.Evaluate(pet, nil, nil, now)
		if res.Outcome != OutcomeProduced {
			t.Fatalf("production %d: expected produced, got %s", i, res.Outcome)
		}
		pet = res.Pet
		if i < 8 {
			if pet.GenerationCount != i || pet.DisabledUntil != 0 {
				t.Fatalf("production %d: unexpected state %+v", i, pet)
			}
			continue
		}
		if res.DisabledBy != CauseExhaust || pet.DisabledUntil != now+120 || pet.GenerationCount != 0 {
			t.Fatalf("expected exhaust to fire on production 8, got cause=%q until=%d count=%d", res.DisabledBy, pet.DisabledUntil, pet.GenerationCount)
		}
	}
	res := engine.Evaluate(pet, nil, nil, now+100)
	if res.Outcome != OutcomeDisabled {
		t.Fatalf("expected disabled pet, got %s", res.Outcome)
	}
	if res.Pet.LastGenerated != now {
		t.Fatalf("disabled evaluation moved the anchor")
	}
}

func TestCapacityIsNeverExceeded(t *testing.T) {
	engine := NewEngine(catalog.Default(), random.Constant(0.5))
	pet := hermitCrab(t, buff(catalog.BuffTriple, catalog.TripleChance{Chance: 1}))
	pet.MaxGemCapacity = 4

	res := engine.Evaluate(pet, nil, nil, start+50)
	if res.Pet.CurrentGems != 3 {
		t.Fatalf("expected 3 gems, got %d", res.Pet.CurrentGems)
	}
	res = engine.Evaluate(res.Pet, nil, nil, start+100)
	if res.Pet.CurrentGems != 4 || len(res.Gems) != 1 {
		t.Fatalf("expected clamp to 1 unit, got %d gems (total %d)", len(res.Gems), res.Pet.CurrentGems)
	}
	anchor := res.Pet.LastGenerated
	res = engine.Evaluate(res.Pet, nil, nil, start+500)
	if res.Outcome != OutcomeAtCapacity || res.Pet.LastGenerated != anchor {
		t.Fatalf("expected capped pet to keep its anchor, got %s at %d", res.Outcome, res.Pet.LastGenerated)
	}
}

func TestCapacityInvariantUnderRandomTicks(t *testing.T) {
	cat := catalog.Default()
	engine := NewEngine(cat, random.NewDeterministic("production", "invariant"))
	double, _ := cat.BuffFor(catalog.BuffDouble, 5)
	triple, _ := cat.BuffFor(catalog.BuffTriple, 5)
	surge, _ := cat.BuffFor(catalog.BuffSurge, 3)
	pet := hermitCrab(t, double, triple, surge)
	pet.MaxGemCapacity = 25

	now := start
	for i := 0; i < 2000; i++ {
		now += int64(1 + i%7)
		res := engine.Evaluate(pet, nil, nil, now)
		pet = res.Pet
		if pet.CurrentGems < 0 || pet.CurrentGems > pet.EffectiveCapacity() {
			t.Fatalf("tick %d: gems %d outside [0, %d]", i, pet.CurrentGems, pet.EffectiveCapacity())
		}
		if i%300 == 299 {
			pet.CurrentGems = 0
		}
	}
}

func TestSurgeSkipDoesNotConsumeOpportunity(t *testing.T) {
	engine := NewEngine(catalog.Default(), random.Constant(0.1))
	pet := hermitCrab(t, buff(catalog.BuffSurge, catalog.SurgeSkip{Chance: 0.5, Count: 1}))
	res := engine.Evaluate(pet, nil, nil, start+60)
	if res.Outcome != OutcomeSurgeSkipped || res.Pet.LastGenerated != start {
		t.Fatalf("expected unconsumed skip, got %s anchor=%d", res.Outcome, res.Pet.LastGenerated)
	}
}

func TestNoGemConsumesOpportunity(t *testing.T) {
	engine := NewEngine(catalog.Default(), random.Constant(0.1))
	pet := hermitCrab(t, buff(catalog.BuffUnstable, catalog.NoGemChance{Chance: 0.5}))
	res := engine.Evaluate(pet, nil, nil, start+60)
	if res.Outcome != OutcomeNoGem || res.Pet.LastGenerated != start+60 || len(res.Gems) != 0 {
		t.Fatalf("expected consumed no-gem tick, got %s anchor=%d", res.Outcome, res.Pet.LastGenerated)
	}
}

func TestDisableRiskPriority(t *testing.T) {
	engine := NewEngine(catalog.Default(), random.Constant(0.5))
	pet := hermitCrab(t,
		buff(catalog.BuffStrain, catalog.DisableRisk{Risk: catalog.RiskStrain, Chance: 1, Duration: 300}),
		buff(catalog.BuffOverclock, catalog.DisableRisk{Risk: catalog.RiskOverclock, Chance: 1, Duration: 30}),
	)
	res := engine.Evaluate(pet, nil, nil, start+50)
	if res.DisabledBy != Cause(catalog.RiskOverclock) || res.Pet.DisabledUntil != start+80 {
		t.Fatalf("expected overclock to win, got %q until %d", res.DisabledBy, res.Pet.DisabledUntil)
	}
}

func TestSpeedAndAreaBuffs(t *testing.T) {
	engine := NewEngine(catalog.Default(), noLuck)
	pet := hermitCrab(t, buff(catalog.BuffSpeed, catalog.TickSpeed{Multiplier: 0.5}))
	if res := engine.Evaluate(pet, nil, nil, start+25); res.Outcome != OutcomeProduced {
		t.Fatalf("expected halved interval to produce at +25, got %s", res.Outcome)
	}

	plain := hermitCrab(t)
	area := []catalog.Buff{buff(catalog.BuffLure, catalog.GemValue{Multiplier: 2})}
	base := engine.Evaluate(plain, nil, nil, start+50)
	boosted := engine.Evaluate(plain, area, nil, start+50)
	if boosted.Gems[0].BaseValue != base.Gems[0].BaseValue*2 {
		t.Fatalf("expected area lure to double value, got %d vs %d", boosted.Gems[0].BaseValue, base.Gems[0].BaseValue)
	}
}

func TestTierPromotesOneStep(t *testing.T) {
	engine := NewEngine(catalog.Default(), random.Constant(0))
	res := engine.Evaluate(hermitCrab(t), nil, nil, start+50)
	if res.Gems[0].Rarity != catalog.RarityRare {
		t.Fatalf("expected promotion to rare, got %s", res.Gems[0].Rarity)
	}

	tpl, _ := catalog.Default().Template("pet-voidwyrm-isopod")
	mythical := pets.NewFromTemplate(tpl, "pet-voidwyrm-isopod-1", nil, start)
	res = engine.Evaluate(mythical, nil, nil, start+int64(mythical.AverageTick()))
	if res.Outcome != OutcomeProduced || res.Gems[0].Rarity != catalog.RarityMythical {
		t.Fatalf("expected mythical gem without promotion, got %+v", res)
	}
}

func TestClampOffline(t *testing.T) {
	pet := hermitCrab(t)
	now := start + int64((10 * time.Hour).Seconds())
	clamped := ClampOffline(pet, now, DefaultOfflineCap)
	if now-clamped.LastGenerated != int64(DefaultOfflineCap.Seconds()) {
		t.Fatalf("expected 6h of claimable time, got %ds", now-clamped.LastGenerated)
	}
	if ClampOffline(pet, start+10, DefaultOfflineCap).LastGenerated != start {
		t.Fatalf("expected recent anchor to be untouched")
	}
	if ClampOffline(pet, now, 0).LastGenerated != start {
		t.Fatalf("expected zero cap to disable clamping")
	}
}
