package stats

import "sort"

// ModifierID enumerates the scalar production modifiers tracked by the
// aggregator.
type ModifierID uint8

const (
	ModTickSpeed ModifierID = iota
	ModValue
	ModTierBonus
	ModDoubleChance
	ModTripleChance
	ModNoGemChance
	ModSurgeSkip

	ModCount
)

// multiplicative reports whether a modifier folds by product rather than sum.
func (id ModifierID) multiplicative() bool {
	return id == ModTickSpeed || id == ModValue
}

// Layer describes the precedence order in which buff sources are folded.
type Layer uint8

const (
	LayerIntrinsic Layer = iota
	LayerArea

	LayerCount
)

// SourceKind identifies the origin of a modifier for deterministic ordering.
type SourceKind uint8

const (
	SourceKindIntrinsic SourceKind = iota
	SourceKindPlaced
	// SourceKindNeighbor carries the share of a buff that scales with the
	// pets around its holder.
	SourceKindNeighbor
)

// SourceKey uniquely identifies a modifier source inside a layer.
type SourceKey struct {
	Kind SourceKind
	ID   string
}

// ValueSet stores one value per modifier.
type ValueSet [ModCount]float64

// LayerStack caches the folded contributions of one layer.
type LayerStack struct {
	add ValueSet
	mul ValueSet
}

// StatDelta captures the additive and multiplicative contribution of a source.
type StatDelta struct {
	Add ValueSet
	Mul ValueSet
}

// neutral reports whether the delta leaves every modifier unchanged.
func (d StatDelta) neutral() bool {
	for i := range d.Add {
		if d.Add[i] != 0 || d.Mul[i] != 1 {
			return false
		}
	}
	return true
}

// CommandModifierChange sets the contribution of one source. Applying the
// same source again replaces its delta.
type CommandModifierChange struct {
	Layer  Layer
	Source SourceKey
	Delta  StatDelta
}

// Component owns the modifier sources for one pet and caches the totals.
type Component struct {
	layers  [LayerCount]LayerStack
	sources map[Layer]map[SourceKey]StatDelta
	totals  ValueSet
}

// NewComponent returns a component with neutral totals.
func NewComponent() Component {
	c := Component{sources: make(map[Layer]map[SourceKey]StatDelta)}
	for layer := Layer(0); layer < LayerCount; layer++ {
		c.layers[layer].mul = unitValueSet()
	}
	c.totals = neutralTotals()
	return c
}

// NewStatDelta creates a delta with neutral multiplicative values.
func NewStatDelta() StatDelta {
	return StatDelta{Mul: unitValueSet()}
}

// Apply records the command's delta and refolds the affected layer.
func (c *Component) Apply(change CommandModifierChange) {
	if c == nil || c.sources == nil || change.Layer >= LayerCount {
		return
	}
	if c.sources[change.Layer] == nil {
		c.sources[change.Layer] = make(map[SourceKey]StatDelta)
	}
	c.sources[change.Layer][change.Source] = change.Delta
	c.rebuildLayerStack(change.Layer)
}

// Resolve folds all layers in order: each layer adds, then multiplies.
func (c *Component) Resolve() {
	if c == nil {
		return
	}
	total := neutralTotals()
	for layer := Layer(0); layer < LayerCount; layer++ {
		stack := &c.layers[layer]
		for i := range total {
			total[i] = (total[i] + stack.add[i]) * stack.mul[i]
		}
	}
	c.totals = total
}

// Total returns the resolved value of one modifier.
func (c *Component) Total(id ModifierID) float64 {
	if id >= ModCount {
		return 0
	}
	return c.totals[id]
}

func (c *Component) rebuildLayerStack(layer Layer) {
	stack := &c.layers[layer]
	stack.add = ValueSet{}
	stack.mul = unitValueSet()
	entries := c.sources[layer]
	keys := make([]SourceKey, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].ID < keys[j].ID
	})
	for _, key := range keys {
		delta := entries[key]
		for i := range stack.add {
			stack.add[i] += delta.Add[i]
			stack.mul[i] *= delta.Mul[i]
		}
	}
}

func neutralTotals() ValueSet {
	var vs ValueSet
	for id := ModifierID(0); id < ModCount; id++ {
		if id.multiplicative() {
			vs[id] = 1
		}
	}
	return vs
}

func unitValueSet() ValueSet {
	var vs ValueSet
	for i := range vs {
		vs[i] = 1
	}
	return vs
}
