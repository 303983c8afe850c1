package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

// Load returns the default catalog with the override files applied in order.
// Missing files are skipped so a development overlay can be optional.
func Load(paths ...string) (*Catalog, error) {
	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		sources = append(sources, fileSource{path: trimmed})
	}
	return loadSources(Default(), sources...)
}

func loadSources(base *Catalog, sources ...source) (*Catalog, error) {
	cat := base
	for _, src := range sources {
		data, err := src.Load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("catalog: failed loading %s: %w", src.Path(), err)
		}
		next, err := cat.WithOverrides(data)
		if err != nil {
			return nil, fmt.Errorf("catalog: failed applying %s: %w", src.Path(), err)
		}
		cat = next
	}
	return cat, nil
}

// WithOverrides returns a new catalog with the designer overrides in data
// applied. Recognised top-level keys are crates, templates, gems, buffs and
// tierUpgradeChance; anything else is ignored.
func (c *Catalog) WithOverrides(data []byte) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("catalog: overrides are not valid JSON")
	}
	doc := gjson.ParseBytes(data)

	buffs := c.Buffs()
	gems := c.AllGems()
	templates := c.Templates()
	crates := c.Crates()
	tables := c.tables.clone()

	var err error
	if buffs, err = overrideBuffs(buffs, doc.Get("buffs")); err != nil {
		return nil, err
	}
	if err = overrideGems(gems, doc.Get("gems")); err != nil {
		return nil, err
	}
	if err = overrideTemplates(c, templates, doc.Get("templates")); err != nil {
		return nil, err
	}
	if err = overrideCrates(crates, doc.Get("crates")); err != nil {
		return nil, err
	}
	if chances := doc.Get("tierUpgradeChance"); chances.Exists() {
		var ferr error
		chances.ForEach(func(key, value gjson.Result) bool {
			rarity, perr := ParseRarity(key.String())
			if perr != nil {
				ferr = perr
				return false
			}
			tables.TierUpgradeChance[rarity] = value.Float()
			return true
		})
		if ferr != nil {
			return nil, ferr
		}
	}
	return New(buffs, gems, templates, crates, tables)
}

func overrideBuffs(buffs []Buff, list gjson.Result) ([]Buff, error) {
	if !list.Exists() {
		return buffs, nil
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("catalog: buffs override must be an array")
	}
	index := make(map[string]int, len(buffs))
	for i, b := range buffs {
		index[b.ID] = i
	}
	for _, item := range list.Array() {
		var doc BuffDocument
		if err := json.Unmarshal([]byte(item.Raw), &doc); err != nil {
			return nil, fmt.Errorf("catalog: decode buff override: %w", err)
		}
		b, err := FromDocument(doc)
		if err != nil {
			return nil, err
		}
		if i, ok := index[b.ID]; ok {
			buffs[i] = b
			continue
		}
		index[b.ID] = len(buffs)
		buffs = append(buffs, b)
	}
	return buffs, nil
}

func overrideGems(gems []Gem, overrides gjson.Result) error {
	if !overrides.Exists() {
		return nil
	}
	index := make(map[string]int, len(gems))
	for i, g := range gems {
		index[g.ID] = i
	}
	var err error
	overrides.ForEach(func(key, value gjson.Result) bool {
		i, ok := index[key.String()]
		if !ok {
			err = fmt.Errorf("catalog: override for unknown gem %q", key.String())
			return false
		}
		if v := value.Get("baseValue"); v.Exists() {
			gems[i].BaseValue = v.Int()
		}
		if v := value.Get("tierPercentage"); v.Exists() {
			gems[i].TierPercentage = int(v.Int())
		}
		return true
	})
	return err
}

func overrideTemplates(c *Catalog, templates []PetTemplate, overrides gjson.Result) error {
	if !overrides.Exists() {
		return nil
	}
	index := make(map[string]int, len(templates))
	for i, tpl := range templates {
		index[tpl.ID] = i
	}
	var err error
	overrides.ForEach(func(key, value gjson.Result) bool {
		i, ok := index[key.String()]
		if !ok {
			_, err = c.Template(key.String())
			return false
		}
		tpl := &templates[i]
		if v := value.Get("name"); v.Exists() {
			tpl.Name = v.String()
		}
		if v := value.Get("maxGemCapacity"); v.Exists() {
			tpl.MaxGemCapacity = int(v.Int())
		}
		if v := value.Get("baseValue"); v.Exists() {
			tpl.BaseValue = v.Int()
		}
		if v := value.Get("tickTimeRange"); v.Exists() {
			bounds := v.Array()
			if len(bounds) != 2 {
				err = fmt.Errorf("catalog: template %q tickTimeRange needs two values", tpl.ID)
				return false
			}
			tpl.TickTimeRange = [2]int{int(bounds[0].Int()), int(bounds[1].Int())}
		}
		return true
	})
	return err
}

func overrideCrates(crates []Crate, overrides gjson.Result) error {
	if !overrides.Exists() {
		return nil
	}
	index := make(map[Rarity]int, len(crates))
	for i, crate := range crates {
		index[crate.Rarity] = i
	}
	var err error
	overrides.ForEach(func(key, value gjson.Result) bool {
		rarity, perr := ParseRarity(strings.TrimPrefix(key.String(), "crate-"))
		if perr != nil {
			err = fmt.Errorf("%w %q", ErrUnknownCrate, key.String())
			return false
		}
		i, ok := index[rarity]
		if !ok {
			err = fmt.Errorf("%w %q", ErrUnknownCrate, key.String())
			return false
		}
		crate := &crates[i]
		if v := value.Get("cost"); v.Exists() {
			crate.Cost = v.Int()
		}
		if v := value.Get("drops"); v.Exists() {
			var drops []Drop
			if derr := json.Unmarshal([]byte(v.Raw), &drops); derr != nil {
				err = fmt.Errorf("catalog: decode drops for %s: %w", crate.ID, derr)
				return false
			}
			crate.Drops = drops
		}
		return true
	})
	return err
}

func (t RollTables) clone() RollTables {
	cloned := t
	cloned.TierUpgradeChance = make(map[Rarity]float64, len(t.TierUpgradeChance))
	for k, v := range t.TierUpgradeChance {
		cloned.TierUpgradeChance[k] = v
	}
	cloned.RollableTypes = append([]BuffType(nil), t.RollableTypes...)
	return cloned
}
