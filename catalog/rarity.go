package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRarity = errors.New("catalog: unknown rarity")

// Rarity ranks pets, buffs, gems, and crates.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityMythical  Rarity = "mythical"
)

// Rarities lists every rarity from lowest to highest.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary, RarityMythical}

// Index returns the position of r in Rarities, or -1 when unknown.
func (r Rarity) Index() int {
	for i, candidate := range Rarities {
		if candidate == r {
			return i
		}
	}
	return -1
}

func (r Rarity) Valid() bool {
	return r.Index() >= 0
}

// Next returns the rarity one step above r. The second value is false at the
// top of the ladder or for unknown rarities.
func (r Rarity) Next() (Rarity, bool) {
	idx := r.Index()
	if idx < 0 || idx >= len(Rarities)-1 {
		return r, false
	}
	return Rarities[idx+1], true
}

// ParseRarity accepts any casing and surrounding whitespace.
func ParseRarity(raw string) (Rarity, error) {
	candidate := Rarity(strings.ToLower(strings.TrimSpace(raw)))
	if !candidate.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownRarity, raw)
	}
	return candidate, nil
}
