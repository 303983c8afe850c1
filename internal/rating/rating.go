// Package rating scores a pet's buff set into a 1-5 star rating.
package rating

import (
	"math"

	"tidepool/server/catalog"
)

const (
	MinStars = 1
	MaxStars = 5
)

var requiredLevelV = map[catalog.Rarity]int{
	catalog.RarityCommon:    3,
	catalog.RarityRare:      4,
	catalog.RarityEpic:      5,
	catalog.RarityLegendary: 7,
	catalog.RarityMythical:  9,
}

// RequiredLevelV is the number of level V buffs a pet of the given rarity
// needs for five stars.
func RequiredLevelV(rarity catalog.Rarity) int {
	if n, ok := requiredLevelV[rarity]; ok {
		return n
	}
	return 3
}

type summary struct {
	count    int
	levelV   int
	avgLevel float64
	required int
}

func summarize(rarity catalog.Rarity, buffs []catalog.Buff) summary {
	s := summary{required: RequiredLevelV(rarity)}
	total := 0
	for _, b := range buffs {
		if b.IsStar() {
			continue
		}
		level := b.RomanLevel()
		s.count++
		total += level
		if level == catalog.MaxLevel {
			s.levelV++
		}
	}
	if s.count > 0 {
		s.avgLevel = float64(total) / float64(s.count)
	}
	return s
}

// Evaluate returns the star rating of a buff set. Star buffs are ignored;
// a set without other buffs rates 1.
func Evaluate(rarity catalog.Rarity, buffs []catalog.Buff) int {
	s := summarize(rarity, buffs)
	if s.count == 0 {
		return MinStars
	}
	progress := float64(s.count) / float64(s.required)
	ceilOf := func(f float64) int {
		return int(math.Ceil(float64(s.required) * f))
	}

	switch {
	case s.levelV >= s.required && s.avgLevel >= 4.5:
		return 5
	case (progress >= 0.75 && s.avgLevel >= 3.5) || s.levelV >= ceilOf(0.75):
		return 4
	case (progress >= 0.50 && s.avgLevel >= 2.5) || s.levelV >= ceilOf(0.4):
		return 3
	case (progress >= 0.33 && s.avgLevel >= 2.0) || (s.count >= 2 && s.avgLevel >= 2.0):
		return 2
	default:
		return MinStars
	}
}

// QualityScore is a 0-100 display score: up to 70 points for level V
// progress and up to 30 for average level.
func QualityScore(rarity catalog.Rarity, buffs []catalog.Buff) int {
	s := summarize(rarity, buffs)
	if s.count == 0 {
		return 0
	}
	levelV := math.Min(70, float64(s.levelV)/float64(s.required)*70)
	avg := s.avgLevel / catalog.MaxLevel * 30
	return int(math.Round(levelV + avg))
}

var labels = [...]string{"", "Poor", "Fair", "Good", "Great", "Exceptional"}

// Label describes a star rating. Out-of-range values are "Unknown".
func Label(stars int) string {
	if stars < MinStars || stars > MaxStars {
		return "Unknown"
	}
	return labels[stars]
}
