package stats

import "math"

// scaleMultiplier stretches the bonus portion of a multiplier by the
// effectiveness factor: 1.20 at 1.35 becomes 1.27.
func scaleMultiplier(multiplier, effectiveness float64) float64 {
	return 1 + (multiplier-1)*effectiveness
}

func scaleChance(chance, effectiveness float64) float64 {
	return chance * effectiveness
}

// compound applies a per-neighbour bonus once per counted pet.
func compound(perPet, effectiveness float64, count int) float64 {
	if count <= 0 {
		return 1
	}
	return math.Pow(1+perPet*effectiveness, float64(count))
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
