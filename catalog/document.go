package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BuffDocument is the sparse on-disk form of a buff. Only the fields relevant
// to the buff's type are present. The struct is exported so the schema
// generator can reflect over the designer-facing contract.
type BuffDocument struct {
	ID           string   `json:"id" jsonschema:"title=Buff ID,description=Canonical identifier such as buff-speed-3.,pattern=^buff-[a-z]+-[0-9]+$,required"`
	Name         string   `json:"name" jsonschema:"title=Display name,description=Name ending in a Roman numeral level.,required"`
	Rarity       Rarity   `json:"rarity" jsonschema:"enum=common,enum=rare,enum=epic,enum=legendary,enum=mythical,required"`
	Type         BuffType `json:"type" jsonschema:"title=Buff type,required"`
	Level        int      `json:"level,omitempty" jsonschema:"minimum=1,maximum=5"`
	BaseValue    int64    `json:"baseValue" jsonschema:"minimum=0"`
	AreaRadius   int      `json:"areaRadius,omitempty" jsonschema:"minimum=0,description=Chebyshev radius; 0 affects only the holder."`
	MoveInterval int64    `json:"moveInterval" jsonschema:"minimum=0,description=Seconds between relocations when placed standalone."`

	TickSpeedMultiplier    *float64 `json:"tickSpeedMultiplier,omitempty" jsonschema:"exclusiveMinimum=0"`
	GemValueMultiplier     *float64 `json:"gemValueMultiplier,omitempty" jsonschema:"exclusiveMinimum=0"`
	NextTierChanceBonus    *float64 `json:"nextTierChanceBonus,omitempty" jsonschema:"minimum=0"`
	DoubleGemChance        *float64 `json:"doubleGemChance,omitempty" jsonschema:"minimum=0"`
	TripleGemChance        *float64 `json:"tripleGemChance,omitempty" jsonschema:"minimum=0"`
	NoGemChance            *float64 `json:"noGemChance,omitempty" jsonschema:"minimum=0"`
	TierChancePerNearbyPet *float64 `json:"tierChancePerNearbyPet,omitempty" jsonschema:"minimum=0"`
	ValuePerNearbyPet      *float64 `json:"valuePerNearbyPet,omitempty" jsonschema:"minimum=0"`

	OverclockFailChance       *float64 `json:"overclockFailChance,omitempty" jsonschema:"minimum=0,maximum=1"`
	OverclockDisableDuration  *int64   `json:"overclockDisableDuration,omitempty" jsonschema:"minimum=0"`
	BurnoutFailChance         *float64 `json:"burnoutFailChance,omitempty" jsonschema:"minimum=0,maximum=1"`
	BurnoutDisableDuration    *int64   `json:"burnoutDisableDuration,omitempty" jsonschema:"minimum=0"`
	StrainFailChance          *float64 `json:"strainFailChance,omitempty" jsonschema:"minimum=0,maximum=1"`
	StrainDisableDuration     *int64   `json:"strainDisableDuration,omitempty" jsonschema:"minimum=0"`
	HyperdriveFailChance      *float64 `json:"hyperdriveFailChance,omitempty" jsonschema:"minimum=0,maximum=1"`
	HyperdriveDisableDuration *int64   `json:"hyperdriveDisableDuration,omitempty" jsonschema:"minimum=0"`

	SurgeSkipChance *float64 `json:"surgeSkipChance,omitempty" jsonschema:"minimum=0,maximum=1"`
	SurgeSkipCount  *int     `json:"surgeSkipCount,omitempty" jsonschema:"minimum=0"`

	ExhaustGenerationCount *int     `json:"exhaustGenerationCount,omitempty" jsonschema:"minimum=1"`
	ExhaustDisableDuration *int64   `json:"exhaustDisableDuration,omitempty" jsonschema:"minimum=0"`
	ExhaustValueMultiplier *float64 `json:"exhaustValueMultiplier,omitempty" jsonschema:"exclusiveMinimum=0"`

	StarLevel              *int     `json:"starLevel,omitempty" jsonschema:"minimum=2,maximum=5"`
	CapacityBonus          *float64 `json:"capacityBonus,omitempty" jsonschema:"minimum=0"`
	BuffEffectivenessBonus *float64 `json:"buffEffectivenessBonus,omitempty" jsonschema:"minimum=0"`
}

// ToDocument flattens the tagged variant form into the sparse document.
func ToDocument(b Buff) BuffDocument {
	doc := BuffDocument{
		ID:           b.ID,
		Name:         b.Name,
		Rarity:       b.Rarity,
		Type:         b.Type,
		Level:        b.Level,
		BaseValue:    b.BaseValue,
		AreaRadius:   b.AreaRadius,
		MoveInterval: b.MoveInterval,
	}
	for _, effect := range b.Effects {
		switch e := effect.(type) {
		case TickSpeed:
			doc.TickSpeedMultiplier = ptr(e.Multiplier)
		case GemValue:
			doc.GemValueMultiplier = ptr(e.Multiplier)
		case TierChance:
			doc.NextTierChanceBonus = ptr(e.Bonus)
		case DoubleChance:
			doc.DoubleGemChance = ptr(e.Chance)
		case TripleChance:
			doc.TripleGemChance = ptr(e.Chance)
		case NoGemChance:
			doc.NoGemChance = ptr(e.Chance)
		case NearbyTierChance:
			doc.TierChancePerNearbyPet = ptr(e.PerPet)
			doc.AreaRadius = e.Radius
		case NearbyValue:
			doc.ValuePerNearbyPet = ptr(e.PerPet)
			doc.AreaRadius = e.Radius
		case DisableRisk:
			chance, duration := ptr(e.Chance), ptr(e.Duration)
			switch e.Risk {
			case RiskOverclock:
				doc.OverclockFailChance, doc.OverclockDisableDuration = chance, duration
			case RiskBurnout:
				doc.BurnoutFailChance, doc.BurnoutDisableDuration = chance, duration
			case RiskStrain:
				doc.StrainFailChance, doc.StrainDisableDuration = chance, duration
			case RiskHyperdrive:
				doc.HyperdriveFailChance, doc.HyperdriveDisableDuration = chance, duration
			}
		case SurgeSkip:
			doc.SurgeSkipChance = ptr(e.Chance)
			doc.SurgeSkipCount = ptr(e.Count)
		case Exhaust:
			doc.ExhaustGenerationCount = ptr(e.GenerationCount)
			doc.ExhaustDisableDuration = ptr(e.Duration)
			if e.ValueMultiplier != 0 {
				doc.ExhaustValueMultiplier = ptr(e.ValueMultiplier)
			}
		case Star:
			doc.StarLevel = ptr(e.Level)
			doc.CapacityBonus = ptr(e.CapacityBonus)
			doc.BuffEffectivenessBonus = ptr(e.EffectivenessBonus)
		}
	}
	return doc
}

// FromDocument builds the tagged variant form. Missing fields produce no
// effect; a document with unknown rarity or no id is rejected.
func FromDocument(doc BuffDocument) (Buff, error) {
	id := strings.TrimSpace(doc.ID)
	if id == "" {
		return Buff{}, fmt.Errorf("catalog: buff missing id")
	}
	if !doc.Rarity.Valid() {
		return Buff{}, fmt.Errorf("catalog: buff %q has unknown rarity %q", id, doc.Rarity)
	}
	b := Buff{
		ID:           id,
		Name:         doc.Name,
		Rarity:       doc.Rarity,
		Type:         doc.Type,
		Level:        doc.Level,
		BaseValue:    doc.BaseValue,
		AreaRadius:   doc.AreaRadius,
		MoveInterval: doc.MoveInterval,
	}
	if b.Level == 0 {
		if doc.StarLevel != nil {
			b.Level = *doc.StarLevel
		} else {
			b.Level = ParseLevel(doc.Name)
		}
	}

	if doc.StarLevel != nil || doc.CapacityBonus != nil || doc.BuffEffectivenessBonus != nil {
		b.Effects = append(b.Effects, Star{
			Level:              deref(doc.StarLevel, b.Level),
			CapacityBonus:      deref(doc.CapacityBonus, 0),
			EffectivenessBonus: deref(doc.BuffEffectivenessBonus, 0),
		})
	}
	if doc.TickSpeedMultiplier != nil {
		b.Effects = append(b.Effects, TickSpeed{Multiplier: *doc.TickSpeedMultiplier})
	}
	if doc.GemValueMultiplier != nil {
		b.Effects = append(b.Effects, GemValue{Multiplier: *doc.GemValueMultiplier})
	}
	if doc.NextTierChanceBonus != nil {
		b.Effects = append(b.Effects, TierChance{Bonus: *doc.NextTierChanceBonus})
	}
	if doc.DoubleGemChance != nil {
		b.Effects = append(b.Effects, DoubleChance{Chance: *doc.DoubleGemChance})
	}
	if doc.TripleGemChance != nil {
		b.Effects = append(b.Effects, TripleChance{Chance: *doc.TripleGemChance})
	}
	if doc.NoGemChance != nil {
		b.Effects = append(b.Effects, NoGemChance{Chance: *doc.NoGemChance})
	}
	if doc.TierChancePerNearbyPet != nil {
		b.Effects = append(b.Effects, NearbyTierChance{PerPet: *doc.TierChancePerNearbyPet, Radius: doc.AreaRadius})
	}
	if doc.ValuePerNearbyPet != nil {
		b.Effects = append(b.Effects, NearbyValue{PerPet: *doc.ValuePerNearbyPet, Radius: doc.AreaRadius})
	}
	risks := []struct {
		kind     RiskKind
		chance   *float64
		duration *int64
	}{
		{RiskOverclock, doc.OverclockFailChance, doc.OverclockDisableDuration},
		{RiskBurnout, doc.BurnoutFailChance, doc.BurnoutDisableDuration},
		{RiskStrain, doc.StrainFailChance, doc.StrainDisableDuration},
		{RiskHyperdrive, doc.HyperdriveFailChance, doc.HyperdriveDisableDuration},
	}
	for _, risk := range risks {
		if risk.chance == nil {
			continue
		}
		b.Effects = append(b.Effects, DisableRisk{Risk: risk.kind, Chance: *risk.chance, Duration: deref(risk.duration, 0)})
	}
	if doc.SurgeSkipChance != nil {
		b.Effects = append(b.Effects, SurgeSkip{Chance: *doc.SurgeSkipChance, Count: deref(doc.SurgeSkipCount, 1)})
	}
	if doc.ExhaustGenerationCount != nil {
		b.Effects = append(b.Effects, Exhaust{
			GenerationCount: *doc.ExhaustGenerationCount,
			Duration:        deref(doc.ExhaustDisableDuration, 0),
			ValueMultiplier: deref(doc.ExhaustValueMultiplier, 0),
		})
	}
	return b, nil
}

// MarshalJSON encodes the buff in its sparse document form.
func (b Buff) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToDocument(b))
}

// UnmarshalJSON decodes the sparse document form.
func (b *Buff) UnmarshalJSON(data []byte) error {
	var doc BuffDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	decoded, err := FromDocument(doc)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
