package catalog

import (
	"strconv"
	"strings"
)

// BuffType names a family of buffs sharing the same effect shape.
type BuffType string

const (
	BuffSpeed      BuffType = "speed"
	BuffLuck       BuffType = "luck"
	BuffDouble     BuffType = "double"
	BuffTriple     BuffType = "triple"
	BuffLure       BuffType = "lure"
	BuffEcho       BuffType = "echo"
	BuffCluster    BuffType = "cluster"
	BuffOverclock  BuffType = "overclock"
	BuffUnstable   BuffType = "unstable"
	BuffSurge      BuffType = "surge"
	BuffFrenzy     BuffType = "frenzy"
	BuffStrain     BuffType = "strain"
	BuffBurnout    BuffType = "burnout"
	BuffMeltdown   BuffType = "meltdown"
	BuffHyperdrive BuffType = "hyperdrive"
	BuffExhaust    BuffType = "exhaust"
	BuffBurst      BuffType = "burst"
	BuffFortune    BuffType = "fortune"
	BuffJackpot    BuffType = "jackpot"
	BuffOverdrive  BuffType = "overdrive"
	BuffStar       BuffType = "star"
)

// MaxLevel is the highest buff level for every rollable type.
const MaxLevel = 5

// Buff is an immutable buff definition. Effects carries only the variants
// that apply to the buff's type, so an absent variant means "no effect".
type Buff struct {
	ID           string
	Name         string
	Rarity       Rarity
	Type         BuffType
	Level        int
	BaseValue    int64
	AreaRadius   int
	MoveInterval int64
	Effects      []Effect
}

// EffectKind tags each Effect variant.
type EffectKind uint8

const (
	EffectTickSpeed EffectKind = iota + 1
	EffectGemValue
	EffectTierChance
	EffectDoubleChance
	EffectTripleChance
	EffectNoGemChance
	EffectNearbyTierChance
	EffectNearbyValue
	EffectDisableRisk
	EffectSurgeSkip
	EffectExhaust
	EffectStar
)

// Effect is the sealed sum type over buff effect payloads.
type Effect interface {
	Kind() EffectKind
	sealed()
}

// TickSpeed scales the production interval; values below 1 are faster.
type TickSpeed struct{ Multiplier float64 }

// GemValue scales produced gem value.
type GemValue struct{ Multiplier float64 }

// TierChance adds to the chance of promoting a gem one rarity step.
type TierChance struct{ Bonus float64 }

type DoubleChance struct{ Chance float64 }

type TripleChance struct{ Chance float64 }

// NoGemChance consumes a production opportunity without output.
type NoGemChance struct{ Chance float64 }

// NearbyTierChance adds tier chance per other pet inside Radius.
type NearbyTierChance struct {
	PerPet float64
	Radius int
}

// NearbyValue compounds gem value per other pet inside Radius.
type NearbyValue struct {
	PerPet float64
	Radius int
}

// RiskKind identifies which disable-risk buff family a DisableRisk came from.
type RiskKind string

const (
	RiskOverclock  RiskKind = "overclock"
	RiskBurnout    RiskKind = "burnout"
	RiskStrain     RiskKind = "strain"
	RiskHyperdrive RiskKind = "hyperdrive"
)

// RiskPriority is the fixed evaluation order for probabilistic disables.
var RiskPriority = []RiskKind{RiskOverclock, RiskBurnout, RiskStrain, RiskHyperdrive}

// DisableRisk disables the pet for Duration seconds with probability Chance
// after a successful production.
type DisableRisk struct {
	Risk     RiskKind
	Chance   float64
	Duration int64
}

// SurgeSkip skips a production opportunity without consuming it.
type SurgeSkip struct {
	Chance float64
	Count  int
}

// Exhaust disables the pet every GenerationCount productions and boosts value.
type Exhaust struct {
	GenerationCount int
	Duration        int64
	ValueMultiplier float64
}

// Star is the merge reward payload.
type Star struct {
	Level              int
	CapacityBonus      float64
	EffectivenessBonus float64
}

func (TickSpeed) Kind() EffectKind        { return EffectTickSpeed }
func (GemValue) Kind() EffectKind         { return EffectGemValue }
func (TierChance) Kind() EffectKind       { return EffectTierChance }
func (DoubleChance) Kind() EffectKind     { return EffectDoubleChance }
func (TripleChance) Kind() EffectKind     { return EffectTripleChance }
func (NoGemChance) Kind() EffectKind      { return EffectNoGemChance }
func (NearbyTierChance) Kind() EffectKind { return EffectNearbyTierChance }
func (NearbyValue) Kind() EffectKind      { return EffectNearbyValue }
func (DisableRisk) Kind() EffectKind      { return EffectDisableRisk }
func (SurgeSkip) Kind() EffectKind        { return EffectSurgeSkip }
func (Exhaust) Kind() EffectKind          { return EffectExhaust }
func (Star) Kind() EffectKind             { return EffectStar }

func (TickSpeed) sealed()        {}
func (GemValue) sealed()         {}
func (TierChance) sealed()       {}
func (DoubleChance) sealed()     {}
func (TripleChance) sealed()     {}
func (NoGemChance) sealed()      {}
func (NearbyTierChance) sealed() {}
func (NearbyValue) sealed()      {}
func (DisableRisk) sealed()      {}
func (SurgeSkip) sealed()        {}
func (Exhaust) sealed()          {}
func (Star) sealed()             {}

// Find returns the first effect of type T carried by b.
func Find[T Effect](b Buff) (T, bool) {
	for _, effect := range b.Effects {
		if typed, ok := effect.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

// Has reports whether b carries an effect of the given kind.
func (b Buff) Has(kind EffectKind) bool {
	for _, effect := range b.Effects {
		if effect.Kind() == kind {
			return true
		}
	}
	return false
}

func (b Buff) IsStar() bool {
	return b.Type == BuffStar
}

// RomanLevel returns the buff's level, falling back to the Roman numeral
// suffix of its name when Level is unset.
func (b Buff) RomanLevel() int {
	if b.Level > 0 {
		return b.Level
	}
	return ParseLevel(b.Name)
}

// Clone copies the effect slice so callers can hold the buff independently.
func (b Buff) Clone() Buff {
	cloned := b
	if len(b.Effects) > 0 {
		cloned.Effects = append([]Effect(nil), b.Effects...)
	}
	return cloned
}

var romanLevels = map[string]int{"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5}

// ParseLevel reads a trailing Roman numeral (I..V) from a buff name. Names
// without one are level 1.
func ParseLevel(name string) int {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return 1
	}
	if level, ok := romanLevels[strings.ToUpper(fields[len(fields)-1])]; ok {
		return level
	}
	return 1
}

// RomanNumeral is the inverse of ParseLevel for levels 1..5.
func RomanNumeral(level int) string {
	switch level {
	case 1:
		return "I"
	case 2:
		return "II"
	case 3:
		return "III"
	case 4:
		return "IV"
	case 5:
		return "V"
	default:
		return ""
	}
}

// BuffID is the canonical id for a (type, level) pair.
func BuffID(buffType BuffType, level int) string {
	return "buff-" + string(buffType) + "-" + strconv.Itoa(level)
}
