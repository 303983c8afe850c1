package catalog

// BuffTier groups buff types that share a roll weight.
type BuffTier string

const (
	TierBasic    BuffTier = "basic"
	TierAdvanced BuffTier = "advanced"
	TierPremium  BuffTier = "premium"
	TierUltimate BuffTier = "ultimate"
	TierExtreme  BuffTier = "extreme"
)

// RollTables holds every rarity-dependent distribution used when rolling a
// new pet and when producing gems.
type RollTables struct {
	// CountBreakpoints are cumulative percentages. A roll below the i-th
	// breakpoint yields i+1 buffs; past the last one yields len+1.
	CountBreakpoints map[Rarity][]float64
	// LevelBreakpoints are cumulative probabilities for levels 1..4; past
	// the last one yields level 5.
	LevelBreakpoints map[Rarity][]float64
	TierWeights      map[Rarity]map[BuffTier]int
	TypeTiers        map[BuffType]BuffTier
	// RollableTypes fixes the iteration order of weighted type selection.
	RollableTypes []BuffType
	// TierUpgradeChance is the base chance a pet of the given rarity
	// produces a gem one rarity higher.
	TierUpgradeChance map[Rarity]float64
}

// Count maps a uniform draw in [0,1) to a buff count.
func (t RollTables) Count(rarity Rarity, roll float64) int {
	breakpoints, ok := t.CountBreakpoints[rarity]
	if !ok {
		return 1
	}
	scaled := roll * 100
	for i, bp := range breakpoints {
		if scaled < bp {
			return i + 1
		}
	}
	return len(breakpoints) + 1
}

// Level maps a uniform draw in [0,1) to a buff level.
func (t RollTables) Level(rarity Rarity, roll float64) int {
	breakpoints, ok := t.LevelBreakpoints[rarity]
	if !ok {
		breakpoints = []float64{0.50, 0.75, 0.90, 0.97}
	}
	for i, bp := range breakpoints {
		if roll < bp {
			return i + 1
		}
	}
	return len(breakpoints) + 1
}

// TypeWeight returns the integer roll weight of buffType for a pet rarity.
func (t RollTables) TypeWeight(rarity Rarity, buffType BuffType) int {
	tier, ok := t.TypeTiers[buffType]
	if !ok {
		tier = TierExtreme
	}
	return t.TierWeights[rarity][tier]
}

// MaxCount is the largest buff count a fresh pet of this rarity can roll.
func (t RollTables) MaxCount(rarity Rarity) int {
	return len(t.CountBreakpoints[rarity]) + 1
}

func defaultTables() RollTables {
	return RollTables{
		CountBreakpoints: map[Rarity][]float64{
			RarityCommon:    {50, 85},
			RarityRare:      {30, 60, 85},
			RarityEpic:      {20, 45, 70, 90},
			RarityLegendary: {15, 35, 55, 75, 90},
			RarityMythical:  {10, 25, 42, 60, 78, 92},
		},
		LevelBreakpoints: map[Rarity][]float64{
			RarityCommon:    {0.70, 0.90, 0.97, 0.995},
			RarityRare:      {0.50, 0.80, 0.93, 0.98},
			RarityEpic:      {0.40, 0.62, 0.80, 0.95},
			RarityLegendary: {0.35, 0.56, 0.76, 0.925},
			RarityMythical:  {0.30, 0.50, 0.70, 0.90},
		},
		// Weights are percentages scaled by ten so the rarest rows stay
		// integral. Common pets never roll ultimate or extreme types.
		TierWeights: map[Rarity]map[BuffTier]int{
			RarityCommon:    {TierBasic: 1000, TierAdvanced: 50, TierPremium: 10, TierUltimate: 0, TierExtreme: 0},
			RarityRare:      {TierBasic: 700, TierAdvanced: 250, TierPremium: 40, TierUltimate: 10, TierExtreme: 1},
			RarityEpic:      {TierBasic: 400, TierAdvanced: 300, TierPremium: 250, TierUltimate: 40, TierExtreme: 10},
			RarityLegendary: {TierBasic: 150, TierAdvanced: 250, TierPremium: 300, TierUltimate: 200, TierExtreme: 100},
			RarityMythical:  {TierBasic: 50, TierAdvanced: 150, TierPremium: 300, TierUltimate: 300, TierExtreme: 200},
		},
		TypeTiers: map[BuffType]BuffTier{
			BuffLure:       TierBasic,
			BuffSpeed:      TierBasic,
			BuffLuck:       TierBasic,
			BuffDouble:     TierBasic,
			BuffTriple:     TierAdvanced,
			BuffBurst:      TierAdvanced,
			BuffFortune:    TierAdvanced,
			BuffCluster:    TierPremium,
			BuffEcho:       TierPremium,
			BuffOverclock:  TierPremium,
			BuffJackpot:    TierPremium,
			BuffOverdrive:  TierPremium,
			BuffUnstable:   TierUltimate,
			BuffSurge:      TierExtreme,
			BuffFrenzy:     TierExtreme,
			BuffStrain:     TierExtreme,
			BuffBurnout:    TierExtreme,
			BuffMeltdown:   TierExtreme,
			BuffHyperdrive: TierExtreme,
			BuffExhaust:    TierExtreme,
		},
		RollableTypes: []BuffType{
			BuffSpeed, BuffLure, BuffLuck, BuffDouble,
			BuffTriple, BuffEcho, BuffCluster, BuffOverclock,
			BuffUnstable, BuffSurge, BuffFrenzy, BuffStrain,
			BuffBurnout, BuffMeltdown, BuffHyperdrive, BuffExhaust,
			BuffBurst, BuffFortune, BuffJackpot, BuffOverdrive,
		},
		TierUpgradeChance: map[Rarity]float64{
			RarityCommon:    0.10,
			RarityRare:      0.075,
			RarityEpic:      0.05,
			RarityLegendary: 0.025,
			RarityMythical:  0,
		},
	}
}
