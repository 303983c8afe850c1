// Package crates resolves crate openings into new pets.
package crates

import (
	"errors"
	"fmt"

	"tidepool/server/catalog"
	"tidepool/server/internal/pets"
	"tidepool/server/internal/random"
	"tidepool/server/internal/roll"
)

// ErrEmptyDropTable is returned when a crate has no positive-weight drop.
var ErrEmptyDropTable = errors.New("crates: empty drop table")

// IDFunc generates an instance id for a pet of the given template.
type IDFunc func(templateKey string, now int64) string

// Opening describes one resolved crate.
type Opening struct {
	Pet pets.Pet `json:"pet"`
	// Requested is the rarity of the crate that was opened; Resolved is the
	// crate that finally produced the pet after downgrades.
	Requested  catalog.Rarity `json:"requested"`
	Resolved   catalog.Rarity `json:"resolved"`
	Downgrades int            `json:"downgrades,omitempty"`
}

// Opener draws from drop tables and rolls buffs for the resulting pet.
type Opener struct {
	cat    *catalog.Catalog
	rng    random.Source
	roller *roll.Roller
	newID  IDFunc
}

type Option func(*Opener)

// WithIDs overrides instance id generation.
func WithIDs(fn IDFunc) Option {
	return func(o *Opener) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func NewOpener(cat *catalog.Catalog, rng random.Source, opts ...Option) *Opener {
	o := &Opener{
		cat:    cat,
		rng:    rng,
		roller: roll.New(cat, rng),
		newID:  pets.NewID,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open resolves one crate of the given rarity. Downgrade entries re-open
// the lower crate; the chain terminates because catalog validation only
// admits downgrades that strictly lower rarity.
func (o *Opener) Open(rarity catalog.Rarity, now int64) (Opening, error) {
	opening := Opening{Requested: rarity}
	current := rarity
	for depth := 0; depth <= len(catalog.Rarities); depth++ {
		crate, err := o.cat.Crate(current)
		if err != nil {
			return Opening{}, err
		}
		drop, err := o.draw(crate)
		if err != nil {
			return Opening{}, err
		}
		if drop.Kind == catalog.DropDowngrade {
			if drop.DowngradeTo.Index() >= current.Index() {
				return Opening{}, fmt.Errorf("crates: %s downgrades to %s", crate.ID, drop.DowngradeTo)
			}
			current = drop.DowngradeTo
			opening.Downgrades++
			continue
		}
		pet, err := o.instantiate(drop.PetID, now)
		if err != nil {
			return Opening{}, err
		}
		opening.Pet = pet
		opening.Resolved = current
		return opening, nil
	}
	return Opening{}, fmt.Errorf("crates: downgrade chain from %s did not terminate", rarity)
}

// OpenMany opens n crates in sequence and stops at the first error.
func (o *Opener) OpenMany(rarity catalog.Rarity, n int, now int64) ([]Opening, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]Opening, 0, n)
	for i := 0; i < n; i++ {
		opening, err := o.Open(rarity, now)
		if err != nil {
			return out, err
		}
		out = append(out, opening)
	}
	return out, nil
}

// Create instantiates a template directly, rolling its buffs. Unknown
// template ids are caller errors.
func (o *Opener) Create(templateID string, now int64) (pets.Pet, error) {
	return o.instantiate(templateID, now)
}

func (o *Opener) instantiate(templateID string, now int64) (pets.Pet, error) {
	tpl, err := o.cat.Template(templateID)
	if err != nil {
		return pets.Pet{}, err
	}
	buffs := o.roller.Roll(tpl.Rarity)
	return pets.NewFromTemplate(tpl, o.newID(tpl.ID, now), buffs, now), nil
}

func (o *Opener) draw(crate catalog.Crate) (catalog.Drop, error) {
	total := 0
	for _, d := range crate.Drops {
		if d.Weight > 0 {
			total += d.Weight
		}
	}
	if total <= 0 {
		return catalog.Drop{}, fmt.Errorf("%w: %s", ErrEmptyDropTable, crate.ID)
	}
	pick := o.rng.Float64() * float64(total)
	cumulative := 0.0
	var last catalog.Drop
	for _, d := range crate.Drops {
		if d.Weight <= 0 {
			continue
		}
		last = d
		cumulative += float64(d.Weight)
		if pick < cumulative {
			return d, nil
		}
	}
	return last, nil
}
