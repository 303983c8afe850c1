package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

var (
	ErrUnknownTemplate = errors.New("catalog: unknown pet template")
	ErrUnknownCrate    = errors.New("catalog: unknown crate")
	ErrUnknownBuff     = errors.New("catalog: unknown buff")
)

// Catalog is the immutable set of definitions the engines read from. It is
// safe for concurrent use once constructed.
type Catalog struct {
	buffs         map[string]Buff
	buffOrder     []string
	gems          map[Rarity][]Gem
	templates     map[string]PetTemplate
	templateOrder []string
	crates        map[Rarity]Crate
	tables        RollTables
}

// Default returns the built-in catalog. It panics if the built-in data is
// inconsistent, which the package tests guard against.
func Default() *Catalog {
	cat, err := New(defaultBuffs(), defaultGems(), defaultTemplates(), defaultCrates(), defaultTables())
	if err != nil {
		panic(err)
	}
	return cat
}

// New indexes and validates the supplied definitions.
func New(buffs []Buff, gems []Gem, templates []PetTemplate, crates []Crate, tables RollTables) (*Catalog, error) {
	c := &Catalog{
		buffs:     make(map[string]Buff, len(buffs)),
		gems:      make(map[Rarity][]Gem),
		templates: make(map[string]PetTemplate, len(templates)),
		crates:    make(map[Rarity]Crate, len(crates)),
		tables:    tables,
	}
	for _, b := range buffs {
		if _, dup := c.buffs[b.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate buff id %q", b.ID)
		}
		c.buffs[b.ID] = b.Clone()
		c.buffOrder = append(c.buffOrder, b.ID)
	}
	for _, g := range gems {
		if !g.Rarity.Valid() {
			return nil, fmt.Errorf("catalog: gem %q has unknown rarity %q", g.ID, g.Rarity)
		}
		c.gems[g.Rarity] = append(c.gems[g.Rarity], g)
	}
	for _, tpl := range templates {
		if _, dup := c.templates[tpl.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate template id %q", tpl.ID)
		}
		c.templates[tpl.ID] = tpl
		c.templateOrder = append(c.templateOrder, tpl.ID)
	}
	for _, crate := range crates {
		if _, dup := c.crates[crate.Rarity]; dup {
			return nil, fmt.Errorf("catalog: duplicate crate for rarity %q", crate.Rarity)
		}
		crate.Drops = append([]Drop(nil), crate.Drops...)
		c.crates[crate.Rarity] = crate
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks cross references: drop tables name known templates,
// downgrades strictly lower rarity, and every rarity has gems to roll.
func (c *Catalog) Validate() error {
	for _, rarity := range Rarities {
		total := 0
		for _, g := range c.gems[rarity] {
			if g.TierPercentage < 0 {
				return fmt.Errorf("catalog: gem %q has negative weight", g.ID)
			}
			total += g.TierPercentage
		}
		if total <= 0 {
			return fmt.Errorf("catalog: no weighted gems for rarity %q", rarity)
		}
	}
	for _, tpl := range c.templates {
		if !tpl.Rarity.Valid() {
			return fmt.Errorf("catalog: template %q has unknown rarity %q", tpl.ID, tpl.Rarity)
		}
		if tpl.TickTimeRange[0] <= 0 || tpl.TickTimeRange[1] < tpl.TickTimeRange[0] {
			return fmt.Errorf("catalog: template %q has invalid tick range %v", tpl.ID, tpl.TickTimeRange)
		}
		if tpl.MaxGemCapacity <= 0 {
			return fmt.Errorf("catalog: template %q has non-positive capacity", tpl.ID)
		}
	}
	for rarity, crate := range c.crates {
		total := 0
		for _, drop := range crate.Drops {
			if drop.Weight < 0 {
				return fmt.Errorf("catalog: crate %q has negative weight", crate.ID)
			}
			total += drop.Weight
			switch drop.Kind {
			case DropPet:
				if _, ok := c.templates[drop.PetID]; !ok {
					return fmt.Errorf("catalog: crate %q drops %w %q", crate.ID, ErrUnknownTemplate, drop.PetID)
				}
			case DropDowngrade:
				if drop.DowngradeTo.Index() < 0 || drop.DowngradeTo.Index() >= rarity.Index() {
					return fmt.Errorf("catalog: crate %q downgrade to %q does not lower rarity", crate.ID, drop.DowngradeTo)
				}
				if _, ok := c.crates[drop.DowngradeTo]; !ok {
					return fmt.Errorf("catalog: crate %q downgrades to missing %w %q", crate.ID, ErrUnknownCrate, drop.DowngradeTo)
				}
			default:
				return fmt.Errorf("catalog: crate %q has unknown drop type %q", crate.ID, drop.Kind)
			}
		}
		if total <= 0 {
			return fmt.Errorf("catalog: crate %q has no weighted drops", crate.ID)
		}
	}
	return nil
}

func (c *Catalog) Tables() RollTables {
	return c.tables
}

func (c *Catalog) Buff(id string) (Buff, bool) {
	b, ok := c.buffs[id]
	if !ok {
		return Buff{}, false
	}
	return b.Clone(), true
}

// LookupBuff is Buff with a descriptive error for unknown ids.
func (c *Catalog) LookupBuff(id string) (Buff, error) {
	if b, ok := c.Buff(id); ok {
		return b, nil
	}
	return Buff{}, fmt.Errorf("%w %q%s", ErrUnknownBuff, id, suggestion(id, c.buffOrder))
}

// BuffFor returns the definition for a (type, level) pair.
func (c *Catalog) BuffFor(buffType BuffType, level int) (Buff, bool) {
	return c.Buff(BuffID(buffType, level))
}

// StarBuff returns the canonical merge reward for a star rating in [2,5].
func (c *Catalog) StarBuff(rating int) (Buff, bool) {
	if rating < 2 || rating > 5 {
		return Buff{}, false
	}
	return c.BuffFor(BuffStar, rating)
}

// Buffs returns every buff in definition order.
func (c *Catalog) Buffs() []Buff {
	out := make([]Buff, 0, len(c.buffOrder))
	for _, id := range c.buffOrder {
		out = append(out, c.buffs[id].Clone())
	}
	return out
}

func (c *Catalog) Template(id string) (PetTemplate, error) {
	tpl, ok := c.templates[id]
	if !ok {
		return PetTemplate{}, fmt.Errorf("%w %q%s", ErrUnknownTemplate, id, suggestion(id, c.templateOrder))
	}
	return tpl, nil
}

func (c *Catalog) Templates() []PetTemplate {
	out := make([]PetTemplate, 0, len(c.templateOrder))
	for _, id := range c.templateOrder {
		out = append(out, c.templates[id])
	}
	return out
}

func (c *Catalog) Crate(rarity Rarity) (Crate, error) {
	crate, ok := c.crates[rarity]
	if !ok {
		known := make([]string, 0, len(c.crates))
		for r := range c.crates {
			known = append(known, string(r))
		}
		sort.Strings(known)
		return Crate{}, fmt.Errorf("%w %q%s", ErrUnknownCrate, rarity, suggestion(string(rarity), known))
	}
	crate.Drops = append([]Drop(nil), crate.Drops...)
	return crate, nil
}

// CrateByID accepts either "crate-<rarity>" or a bare rarity.
func (c *Catalog) CrateByID(id string) (Crate, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(id), "crate-")
	return c.Crate(Rarity(strings.ToLower(trimmed)))
}

// Crates returns crates from lowest to highest rarity.
func (c *Catalog) Crates() []Crate {
	out := make([]Crate, 0, len(c.crates))
	for _, rarity := range Rarities {
		if crate, ok := c.crates[rarity]; ok {
			crate.Drops = append([]Drop(nil), crate.Drops...)
			out = append(out, crate)
		}
	}
	return out
}

// Gems returns the gems of one rarity in definition order.
func (c *Catalog) Gems(rarity Rarity) []Gem {
	return append([]Gem(nil), c.gems[rarity]...)
}

// AllGems returns every gem from lowest to highest rarity.
func (c *Catalog) AllGems() []Gem {
	var out []Gem
	for _, rarity := range Rarities {
		out = append(out, c.gems[rarity]...)
	}
	return out
}

// Suggest returns the closest known candidate to input, or "" when nothing is
// close enough to be a plausible typo.
func Suggest(input string, candidates []string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	best := ""
	bestDist := -1
	for _, candidate := range candidates {
		dist := levenshtein.ComputeDistance(input, strings.ToLower(candidate))
		if dist > suggestionLimit(len(candidate)) {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && candidate < best) {
			best = candidate
			bestDist = dist
		}
	}
	return best
}

func suggestionLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 10:
		return 2
	default:
		return length / 4
	}
}

func suggestion(input string, candidates []string) string {
	if match := Suggest(input, candidates); match != "" {
		return fmt.Sprintf(" (did you mean %q?)", match)
	}
	return ""
}
