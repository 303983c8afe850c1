package catalog

import "github.com/invopop/jsonschema"

// OverridesDocument models the designer overrides file accepted by
// WithOverrides. It exists for schema generation and editor tooling; the
// loader itself reads the file path by path.
type OverridesDocument struct {
	Crates            map[string]CrateOverride    `json:"crates,omitempty" jsonschema:"description=Keyed by rarity or crate id."`
	Templates         map[string]TemplateOverride `json:"templates,omitempty" jsonschema:"description=Keyed by pet template id."`
	Gems              map[string]GemOverride      `json:"gems,omitempty" jsonschema:"description=Keyed by gem id."`
	Buffs             []BuffDocument              `json:"buffs,omitempty" jsonschema:"description=Buff definitions that replace or extend the built-in set."`
	TierUpgradeChance map[string]float64          `json:"tierUpgradeChance,omitempty" jsonschema:"description=Base gem tier upgrade chance keyed by pet rarity."`
}

type CrateOverride struct {
	Cost  *int64 `json:"cost,omitempty" jsonschema:"minimum=0"`
	Drops []Drop `json:"drops,omitempty"`
}

type TemplateOverride struct {
	Name           *string `json:"name,omitempty"`
	MaxGemCapacity *int    `json:"maxGemCapacity,omitempty" jsonschema:"minimum=1"`
	BaseValue      *int64  `json:"baseValue,omitempty" jsonschema:"minimum=0"`
	TickTimeRange  []int   `json:"tickTimeRange,omitempty" jsonschema:"minItems=2,maxItems=2"`
}

type GemOverride struct {
	BaseValue      *int64 `json:"baseValue,omitempty" jsonschema:"minimum=0"`
	TierPercentage *int   `json:"tierPercentage,omitempty" jsonschema:"minimum=0"`
}

// Schema reflects the overrides document into a JSON schema.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(OverridesDocument))
	schema.Title = "Tidepool Catalog Overrides"
	schema.Description = "Designer overrides applied on top of the built-in pet, crate, gem, and buff catalog."
	return schema
}
