package catalog

import "strings"

const defaultMoveInterval = 5

// starMoveInterval keeps merge rewards from ever relocating.
const starMoveInterval = 999999

type levelRow struct {
	rarity  Rarity
	value   int64
	effects []Effect
}

func series(buffType BuffType, levels ...levelRow) []Buff {
	out := make([]Buff, 0, len(levels))
	label := strings.ToUpper(string(buffType))
	for i, lvl := range levels {
		n := i + 1
		b := Buff{
			ID:           BuffID(buffType, n),
			Name:         label + " " + RomanNumeral(n),
			Rarity:       lvl.rarity,
			Type:         buffType,
			Level:        n,
			BaseValue:    lvl.value,
			MoveInterval: defaultMoveInterval,
			Effects:      lvl.effects,
		}
		for _, effect := range lvl.effects {
			switch e := effect.(type) {
			case NearbyTierChance:
				b.AreaRadius = e.Radius
			case NearbyValue:
				b.AreaRadius = e.Radius
			}
		}
		out = append(out, b)
	}
	return out
}

func fx(effects ...Effect) []Effect { return effects }

func risk(kind RiskKind, chance float64, duration int64) DisableRisk {
	return DisableRisk{Risk: kind, Chance: chance, Duration: duration}
}

func defaultBuffs() []Buff {
	const (
		c = RarityCommon
		r = RarityRare
		e = RarityEpic
		l = RarityLegendary
		m = RarityMythical
	)
	var all []Buff
	all = append(all, series(BuffSpeed,
		levelRow{c, 1000, fx(TickSpeed{0.90})},
		levelRow{c, 2500, fx(TickSpeed{0.80})},
		levelRow{r, 10000, fx(TickSpeed{0.70})},
		levelRow{e, 250000, fx(TickSpeed{0.55})},
		levelRow{l, 8000000, fx(TickSpeed{0.40})},
	)...)
	all = append(all, series(BuffLuck,
		levelRow{c, 1000, fx(TierChance{0.05})},
		levelRow{c, 2500, fx(TierChance{0.10})},
		levelRow{r, 15000, fx(TierChance{0.15})},
		levelRow{e, 400000, fx(TierChance{0.25})},
		levelRow{l, 12000000, fx(TierChance{0.35})},
	)...)
	all = append(all, series(BuffDouble,
		levelRow{c, 1000, fx(DoubleChance{0.05})},
		levelRow{c, 5000, fx(DoubleChance{0.075})},
		levelRow{r, 20000, fx(DoubleChance{0.10})},
		levelRow{e, 500000, fx(DoubleChance{0.15})},
		levelRow{l, 15000000, fx(DoubleChance{0.20})},
	)...)
	all = append(all, series(BuffTriple,
		levelRow{c, 5000, fx(TripleChance{0.025})},
		levelRow{c, 25000, fx(TripleChance{0.0375})},
		levelRow{r, 750000, fx(TripleChance{0.05})},
		levelRow{e, 18000000, fx(TripleChance{0.08})},
		levelRow{l, 35000000, fx(TripleChance{0.10})},
	)...)
	all = append(all, series(BuffLure,
		levelRow{c, 1000, fx(GemValue{1.10})},
		levelRow{c, 2500, fx(GemValue{1.20})},
		levelRow{r, 12000, fx(GemValue{1.35})},
		levelRow{e, 300000, fx(GemValue{1.50})},
		levelRow{l, 9000000, fx(GemValue{1.75})},
	)...)
	all = append(all, series(BuffEcho,
		levelRow{c, 8000, fx(NearbyTierChance{PerPet: 0.01, Radius: 1})},
		levelRow{c, 30000, fx(NearbyTierChance{PerPet: 0.015, Radius: 1})},
		levelRow{r, 700000, fx(NearbyTierChance{PerPet: 0.02, Radius: 1})},
		levelRow{e, 2800000, fx(NearbyTierChance{PerPet: 0.025, Radius: 2})},
		levelRow{l, 21000000, fx(NearbyTierChance{PerPet: 0.03, Radius: 2})},
	)...)
	all = append(all, series(BuffCluster,
		levelRow{c, 8000, fx(NearbyValue{PerPet: 0.03, Radius: 1})},
		levelRow{c, 30000, fx(NearbyValue{PerPet: 0.04, Radius: 1})},
		levelRow{r, 700000, fx(NearbyValue{PerPet: 0.05, Radius: 1})},
		levelRow{e, 2800000, fx(NearbyValue{PerPet: 0.065, Radius: 2})},
		levelRow{l, 21000000, fx(NearbyValue{PerPet: 0.08, Radius: 2})},
	)...)
	all = append(all, series(BuffBurst,
		levelRow{c, 10000, fx(TickSpeed{0.67}, DoubleChance{0.06})},
		levelRow{c, 35000, fx(TickSpeed{0.625}, DoubleChance{0.08})},
		levelRow{r, 800000, fx(TickSpeed{0.588}, DoubleChance{0.10})},
		levelRow{e, 3000000, fx(TickSpeed{0.556}, DoubleChance{0.12})},
		levelRow{l, 22000000, fx(TickSpeed{0.50}, DoubleChance{0.15})},
	)...)
	all = append(all, series(BuffFortune,
		levelRow{c, 12000, fx(TierChance{0.05}, DoubleChance{0.08})},
		levelRow{c, 600000, fx(TierChance{0.08}, DoubleChance{0.10})},
		levelRow{r, 2500000, fx(TierChance{0.10}, DoubleChance{0.12})},
		levelRow{e, 20000000, fx(TierChance{0.12}, DoubleChance{0.14})},
		levelRow{l, 25000000, fx(TierChance{0.15}, DoubleChance{0.16})},
	)...)
	all = append(all, series(BuffJackpot,
		levelRow{c, 1500000, fx(TripleChance{0.03})},
		levelRow{c, 4000000, fx(TripleChance{0.04})},
		levelRow{r, 25000000, fx(TripleChance{0.05})},
		levelRow{e, 38000000, fx(TripleChance{0.06})},
		levelRow{m, 48000000, fx(TripleChance{0.07})},
	)...)
	all = append(all, series(BuffOverdrive,
		levelRow{c, 2000000, fx(TickSpeed{0.67}, DoubleChance{0.08}, TripleChance{0.02})},
		levelRow{c, 5000000, fx(TickSpeed{0.625}, DoubleChance{0.10}, TripleChance{0.03})},
		levelRow{r, 28000000, fx(TickSpeed{0.588}, DoubleChance{0.12}, TripleChance{0.04})},
		levelRow{e, 40000000, fx(TickSpeed{0.556}, DoubleChance{0.14}, TripleChance{0.05})},
		levelRow{m, 47000000, fx(TickSpeed{0.50}, DoubleChance{0.16}, TripleChance{0.06})},
	)...)
	all = append(all, series(BuffOverclock,
		levelRow{c, 15000, fx(TickSpeed{0.50}, risk(RiskOverclock, 0.10, 80))},
		levelRow{c, 900000, fx(TickSpeed{0.44}, risk(RiskOverclock, 0.0875, 75))},
		levelRow{r, 3500000, fx(TickSpeed{0.40}, risk(RiskOverclock, 0.075, 70))},
		levelRow{e, 24000000, fx(TickSpeed{0.33}, risk(RiskOverclock, 0.06, 60))},
		levelRow{m, 42000000, fx(TickSpeed{0.25}, risk(RiskOverclock, 0.05, 50))},
	)...)
	all = append(all, series(BuffUnstable,
		levelRow{c, 1200000, fx(TripleChance{0.10}, DoubleChance{0.20}, NoGemChance{0.15})},
		levelRow{c, 3800000, fx(TripleChance{0.10625}, DoubleChance{0.2125}, NoGemChance{0.1375})},
		levelRow{r, 23000000, fx(TripleChance{0.1125}, DoubleChance{0.225}, NoGemChance{0.125})},
		levelRow{e, 32000000, fx(TripleChance{0.11875}, DoubleChance{0.2375}, NoGemChance{0.1125})},
		levelRow{m, 40000000, fx(TripleChance{0.125}, DoubleChance{0.25}, NoGemChance{0.10})},
	)...)
	all = append(all, series(BuffSurge,
		levelRow{c, 800000, fx(TickSpeed{0.67}, SurgeSkip{0.10, 1})},
		levelRow{c, 2800000, fx(TickSpeed{0.57}, SurgeSkip{0.12, 1})},
		levelRow{r, 19000000, fx(TickSpeed{0.50}, SurgeSkip{0.15, 2})},
		levelRow{e, 28000000, fx(TickSpeed{0.40}, SurgeSkip{0.18, 2})},
		levelRow{m, 38000000, fx(TickSpeed{0.33}, SurgeSkip{0.20, 2})},
	)...)
	all = append(all, series(BuffFrenzy,
		levelRow{c, 1500000, fx(DoubleChance{1.0})},
		levelRow{c, 4500000, fx(DoubleChance{1.0})},
		levelRow{r, 26000000, fx(DoubleChance{1.0})},
		levelRow{e, 34000000, fx(DoubleChance{1.0})},
		levelRow{m, 44000000, fx(DoubleChance{1.0})},
	)...)
	all = append(all, series(BuffStrain,
		levelRow{c, 900000, fx(TierChance{0.10}, risk(RiskStrain, 0.20, 100))},
		levelRow{c, 3000000, fx(TierChance{0.15}, risk(RiskStrain, 0.18, 95))},
		levelRow{r, 20000000, fx(TierChance{0.20}, risk(RiskStrain, 0.16, 90))},
		levelRow{e, 29000000, fx(TierChance{0.27}, risk(RiskStrain, 0.14, 80))},
		levelRow{m, 39000000, fx(TierChance{0.35}, risk(RiskStrain, 0.12, 70))},
	)...)
	all = append(all, series(BuffBurnout,
		levelRow{c, 1000000, fx(TickSpeed{0.80}, GemValue{1.15}, risk(RiskBurnout, 0.24, 90))},
		levelRow{c, 3200000, fx(TickSpeed{0.70}, GemValue{1.25}, risk(RiskBurnout, 0.22, 85))},
		levelRow{r, 21000000, fx(TickSpeed{0.60}, GemValue{1.35}, risk(RiskBurnout, 0.20, 80))},
		levelRow{e, 30000000, fx(TickSpeed{0.52}, GemValue{1.45}, risk(RiskBurnout, 0.18, 75))},
		levelRow{m, 40000000, fx(TickSpeed{0.45}, GemValue{1.60}, risk(RiskBurnout, 0.16, 70))},
	)...)
	all = append(all, series(BuffMeltdown,
		levelRow{l, 26000000, fx(TripleChance{1.0})},
		levelRow{l, 33000000, fx(TripleChance{1.0})},
		levelRow{m, 41000000, fx(TripleChance{1.0})},
		levelRow{m, 45000000, fx(TripleChance{1.0})},
		levelRow{m, 49000000, fx(TripleChance{1.0})},
	)...)
	all = append(all, series(BuffHyperdrive,
		levelRow{l, 30000000, fx(TickSpeed{0.50}, DoubleChance{0.10}, TierChance{0.02}, risk(RiskHyperdrive, 0.20, 120))},
		levelRow{l, 36000000, fx(TickSpeed{0.44}, DoubleChance{0.12}, TripleChance{0.02}, TierChance{0.025}, risk(RiskHyperdrive, 0.23, 140))},
		levelRow{m, 42000000, fx(TickSpeed{0.40}, DoubleChance{0.15}, TripleChance{0.03}, TierChance{0.03}, risk(RiskHyperdrive, 0.26, 160))},
		levelRow{m, 44000000, fx(TickSpeed{0.33}, DoubleChance{0.20}, TripleChance{0.08}, TierChance{0.05}, risk(RiskHyperdrive, 0.25, 140))},
		levelRow{m, 50000000, fx(TickSpeed{0.28}, DoubleChance{0.25}, TripleChance{0.12}, TierChance{0.08}, risk(RiskHyperdrive, 0.22, 120))},
	)...)
	all = append(all, series(BuffExhaust,
		levelRow{c, 1100000, fx(TickSpeed{0.80}, Exhaust{GenerationCount: 4, Duration: 30, ValueMultiplier: 1.5})},
		levelRow{c, 3400000, fx(TickSpeed{0.70}, Exhaust{GenerationCount: 5, Duration: 33, ValueMultiplier: 1.75})},
		levelRow{r, 22000000, fx(TickSpeed{0.60}, Exhaust{GenerationCount: 6, Duration: 36, ValueMultiplier: 2.0})},
		levelRow{e, 31000000, fx(TickSpeed{0.50}, Exhaust{GenerationCount: 7, Duration: 40, ValueMultiplier: 2.25})},
		levelRow{m, 41000000, fx(TickSpeed{0.40}, Exhaust{GenerationCount: 8, Duration: 45, ValueMultiplier: 2.5})},
	)...)
	all = append(all, starBuffs()...)
	return all
}

func starBuffs() []Buff {
	rows := []struct {
		level         int
		value         int64
		capacity      float64
		effectiveness float64
		speed         float64
	}{
		{2, 100000, 0.25, 0.15, 0.90},
		{3, 5000000, 0.50, 0.35, 0.80},
		{4, 50000000, 1.50, 0.60, 0.70},
		{5, 250000000, 2.50, 1.00, 0.60},
	}
	out := make([]Buff, 0, len(rows))
	for _, row := range rows {
		out = append(out, Buff{
			ID:           BuffID(BuffStar, row.level),
			Name:         "STAR " + RomanNumeral(row.level),
			Rarity:       RarityMythical,
			Type:         BuffStar,
			Level:        row.level,
			BaseValue:    row.value,
			MoveInterval: starMoveInterval,
			Effects: fx(
				Star{Level: row.level, CapacityBonus: row.capacity, EffectivenessBonus: row.effectiveness},
				TickSpeed{row.speed},
			),
		})
	}
	return out
}
