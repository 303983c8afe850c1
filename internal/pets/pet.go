// Package pets holds the pet instance model and the in-memory pet store.
package pets

import (
	"tidepool/server/catalog"
	"tidepool/server/internal/rating"
	"tidepool/server/stats"
)

// Pet is one producing instance created from a catalog template. Times are
// unix seconds.
type Pet struct {
	ID              string         `json:"id"`
	TemplateKey     string         `json:"templateKey"`
	Name            string         `json:"name"`
	Rarity          catalog.Rarity `json:"rarity"`
	BaseGemRate     int            `json:"baseGemRate"`
	TickTimeRange   [2]int         `json:"tickTimeRange"`
	MaxGemCapacity  int            `json:"maxGemCapacity"`
	CurrentGems     int            `json:"currentGems"`
	StoredValue     int64          `json:"storedValue"`
	Buffs           []catalog.Buff `json:"buffs"`
	LastGenerated   int64          `json:"lastGenerated"`
	GenerationCount int            `json:"generationCount"`
	DisabledUntil   int64          `json:"disabledUntil,omitempty"`
	Locked          bool           `json:"locked,omitempty"`
	Merged          bool           `json:"merged,omitempty"`
	StarRating      int            `json:"starRating,omitempty"`
	SpeedPenalty    float64        `json:"currentSpeedPenalty,omitempty"`
}

// NewFromTemplate instantiates a pet with an empty gem store anchored at now.
func NewFromTemplate(tpl catalog.PetTemplate, id string, buffs []catalog.Buff, now int64) Pet {
	rate := tpl.BaseGemRate
	if rate <= 0 {
		rate = 1
	}
	return Pet{
		ID:             id,
		TemplateKey:    tpl.ID,
		Name:           tpl.Name,
		Rarity:         tpl.Rarity,
		BaseGemRate:    rate,
		TickTimeRange:  tpl.TickTimeRange,
		MaxGemCapacity: tpl.MaxGemCapacity,
		Buffs:          cloneBuffs(buffs),
		LastGenerated:  now,
		SpeedPenalty:   1,
	}
}

// EffectiveCapacity is the gem capacity after the star capacity bonus.
func (p Pet) EffectiveCapacity() int {
	return stats.EffectiveCapacity(p.MaxGemCapacity, p.Buffs)
}

// Rating returns the stored star rating of merged pets and derives it for
// everything else.
func (p Pet) Rating() int {
	if p.Merged && p.StarRating >= rating.MinStars {
		return p.StarRating
	}
	return rating.Evaluate(p.Rarity, p.Buffs)
}

// AverageTick is the nominal production interval in seconds.
func (p Pet) AverageTick() float64 {
	return float64(p.TickTimeRange[0]+p.TickTimeRange[1]) / 2
}

func (p Pet) Disabled(now int64) bool {
	return now < p.DisabledUntil
}

// StarBuff returns the pet's star buff, if any.
func (p Pet) StarBuff() (catalog.Buff, bool) {
	for _, b := range p.Buffs {
		if b.IsStar() {
			return b, true
		}
	}
	return catalog.Buff{}, false
}

func (p Pet) Clone() Pet {
	cloned := p
	cloned.Buffs = cloneBuffs(p.Buffs)
	return cloned
}

func cloneBuffs(buffs []catalog.Buff) []catalog.Buff {
	if len(buffs) == 0 {
		return nil
	}
	out := make([]catalog.Buff, len(buffs))
	for i, b := range buffs {
		out[i] = b.Clone()
	}
	return out
}
