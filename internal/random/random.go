package random

import (
	"hash/fnv"
	"math/rand"
	"sync"
)

// DefaultSeed roots every deterministic stream when no seed is configured.
const DefaultSeed = "tidepool"

// Source yields uniform draws in [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// DeterministicSeedValue hashes a root seed and a stream label into a seed.
func DeterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

// NewDeterministic returns an independent stream per (rootSeed, label).
func NewDeterministic(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(DeterministicSeedValue(rootSeed, label)))
}

// Index maps a draw onto [0, n). It returns 0 when n <= 1.
func Index(src Source, n int) int {
	if n <= 1 {
		return 0
	}
	idx := int(src.Float64() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// Locked serialises access to a Source shared by several goroutines.
type Locked struct {
	mu  sync.Mutex
	src Source
}

func NewLocked(src Source) *Locked {
	return &Locked{src: src}
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// Sequence replays scripted draws, cycling when exhausted. An empty sequence
// always returns 0.
type Sequence struct {
	draws []float64
	next  int
}

func NewSequence(draws ...float64) *Sequence {
	return &Sequence{draws: append([]float64(nil), draws...)}
}

func (s *Sequence) Float64() float64 {
	if len(s.draws) == 0 {
		return 0
	}
	v := s.draws[s.next%len(s.draws)]
	s.next++
	return v
}

// Drawn reports how many values have been consumed.
func (s *Sequence) Drawn() int {
	return s.next
}

// Constant always returns the same draw.
type Constant float64

func (c Constant) Float64() float64 {
	return float64(c)
}
