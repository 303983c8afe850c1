// Package oddsim opens crates in bulk and tallies what came out, so drop
// tables can be checked against the odds designers expect.
package oddsim

import (
	"errors"
	"fmt"
	"strconv"

	"tidepool/server/catalog"
	"tidepool/server/internal/crates"
	"tidepool/server/internal/random"
)

// MaxCount bounds a single simulation.
const MaxCount = 100_000

var ErrInvalidCount = errors.New("oddsim: count out of range")

type Request struct {
	Rarity catalog.Rarity `json:"rarity"`
	Count  int            `json:"count"`
	Seed   string         `json:"seed"`
}

// Report holds the histograms of one run. Buff counts include every buff
// rolled, so a pet with three buffs adds three entries.
type Report struct {
	Rarity     catalog.Rarity `json:"rarity"`
	Count      int            `json:"count"`
	Seed       string         `json:"seed"`
	Templates  map[string]int `json:"templates"`
	Resolved   map[string]int `json:"resolved"`
	Buffs      map[string]int `json:"buffs"`
	Stars      map[string]int `json:"stars"`
	Downgrades int            `json:"downgrades"`
}

// Simulate opens req.Count crates with a stream seeded from req.Seed. The
// same request always produces the same report.
func Simulate(cat *catalog.Catalog, req Request) (Report, error) {
	if req.Count <= 0 || req.Count > MaxCount {
		return Report{}, fmt.Errorf("%w: %d (max %d)", ErrInvalidCount, req.Count, MaxCount)
	}
	if req.Seed == "" {
		req.Seed = random.DefaultSeed
	}

	opener := crates.NewOpener(cat, random.NewDeterministic(req.Seed, "odds"), crates.WithIDs(func(templateKey string, _ int64) string {
		return templateKey
	}))

	report := Report{
		Rarity:    req.Rarity,
		Count:     req.Count,
		Seed:      req.Seed,
		Templates: make(map[string]int),
		Resolved:  make(map[string]int),
		Buffs:     make(map[string]int),
		Stars:     make(map[string]int),
	}
	for i := 0; i < req.Count; i++ {
		opening, err := opener.Open(req.Rarity, 0)
		if err != nil {
			return Report{}, err
		}
		report.Templates[opening.Pet.TemplateKey]++
		report.Resolved[string(opening.Resolved)]++
		report.Downgrades += opening.Downgrades
		report.Stars[strconv.Itoa(opening.Pet.Rating())]++
		for _, b := range opening.Pet.Buffs {
			report.Buffs[b.ID]++
		}
	}
	return report, nil
}
