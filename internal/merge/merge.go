// Package merge combines two pets of the same template into one upgraded pet.
package merge

import (
	"errors"
	"fmt"

	"tidepool/server/catalog"
	"tidepool/server/internal/pets"
	"tidepool/server/internal/rating"
	"tidepool/server/stats"
)

var (
	ErrSamePet           = errors.New("merge: a pet cannot merge with itself")
	ErrDifferentTemplate = errors.New("merge: pets come from different templates")
	ErrDifferentRating   = errors.New("merge: pets have different star ratings")
	ErrLocked            = errors.New("merge: pet is locked")
)

// Result describes one completed merge.
type Result struct {
	Pet        pets.Pet `json:"pet"`
	Consumed   string   `json:"consumed"`
	Before     int      `json:"before"`
	After      int      `json:"after"`
	StarGained bool     `json:"starGained,omitempty"`
}

// CanMerge reports why source and target cannot be merged, or nil when they
// can.
func CanMerge(source, target pets.Pet) error {
	if source.ID == target.ID {
		return ErrSamePet
	}
	if source.Locked {
		return fmt.Errorf("%w: %s", ErrLocked, source.ID)
	}
	if target.Locked {
		return fmt.Errorf("%w: %s", ErrLocked, target.ID)
	}
	if templateOf(source) != templateOf(target) {
		return fmt.Errorf("%w: %s vs %s", ErrDifferentTemplate, templateOf(source), templateOf(target))
	}
	if a, b := source.Rating(), target.Rating(); a != b {
		return fmt.Errorf("%w: %d vs %d", ErrDifferentRating, a, b)
	}
	return nil
}

func templateOf(p pets.Pet) string {
	if p.TemplateKey != "" {
		return p.TemplateKey
	}
	return pets.TemplateKeyFromID(p.ID)
}

// UnionBuffs keeps the highest-level buff of every type found in either
// list. Types keep the position of their first appearance, target first,
// and a tie keeps the buff seen first.
func UnionBuffs(target, source []catalog.Buff) []catalog.Buff {
	out := make([]catalog.Buff, 0, len(target)+len(source))
	index := make(map[catalog.BuffType]int, len(target)+len(source))
	for _, list := range [][]catalog.Buff{target, source} {
		for _, b := range list {
			i, ok := index[b.Type]
			if !ok {
				index[b.Type] = len(out)
				out = append(out, b.Clone())
				continue
			}
			if stats.CompareLevel(b, out[i]) > 0 {
				out[i] = b.Clone()
			}
		}
	}
	return out
}

// Merge folds source into target. The caller removes source and stores the
// returned pet as one step; preconditions are checked with CanMerge.
func Merge(source, target pets.Pet, now int64, cat *catalog.Catalog) Result {
	before := rating.Evaluate(target.Rarity, target.Buffs)
	buffs := UnionBuffs(target.Buffs, source.Buffs)
	after := rating.Evaluate(target.Rarity, buffs)

	gained := false
	if after == before+1 && after >= 2 && after <= rating.MaxStars {
		if star, ok := cat.StarBuff(after); ok {
			buffs = withStar(buffs, star)
			gained = true
		}
	}

	merged := target.Clone()
	merged.Buffs = buffs
	merged.Merged = true
	merged.StarRating = after
	merged.LastGenerated = now
	if capacity := merged.EffectiveCapacity(); merged.CurrentGems > capacity {
		merged.CurrentGems = capacity
	}
	return Result{Pet: merged, Consumed: source.ID, Before: before, After: after, StarGained: gained}
}

// withStar drops every star buff and puts star first.
func withStar(buffs []catalog.Buff, star catalog.Buff) []catalog.Buff {
	out := make([]catalog.Buff, 0, len(buffs)+1)
	out = append(out, star.Clone())
	for _, b := range buffs {
		if !b.IsStar() {
			out = append(out, b)
		}
	}
	return out
}
