package grid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tidepool/server/catalog"
	"tidepool/server/internal/random"
)

var (
	ErrUnknownBuff   = errors.New("grid: unknown buff instance")
	ErrDuplicateBuff = errors.New("grid: duplicate buff instance")
)

// PlacedBuff is one copy of a standalone buff. A nil Position means the
// buff sits in the inventory.
type PlacedBuff struct {
	InstanceID string       `json:"instanceId"`
	Buff       catalog.Buff `json:"buff"`
	Position   *Position    `json:"position,omitempty"`
	LastMoved  int64        `json:"lastMoved,omitempty"`
}

func (b PlacedBuff) Placed() bool {
	return b.Position != nil
}

// Covers reports whether pos lies inside the buff's square of effect. A buff
// without an area radius is self-only and reaches no other tile.
func (b PlacedBuff) Covers(pos Position) bool {
	if b.Position == nil || b.Buff.AreaRadius <= 0 {
		return false
	}
	return b.Position.Chebyshev(pos) <= b.Buff.AreaRadius
}

func (b PlacedBuff) clone() PlacedBuff {
	out := b
	out.Buff = b.Buff.Clone()
	if b.Position != nil {
		p := *b.Position
		out.Position = &p
	}
	return out
}

// NewInstanceID returns a unique instance id for a copy of buffID.
func NewInstanceID(buffID string) string {
	return buffID + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// AddBuff stores a new inventory copy of b. An empty instanceID is
// generated.
func (g *Grid) AddBuff(b catalog.Buff, instanceID string) (PlacedBuff, error) {
	if instanceID == "" {
		instanceID = NewInstanceID(b.ID)
	}
	if _, exists := g.buffs[instanceID]; exists {
		return PlacedBuff{}, fmt.Errorf("%w: %s", ErrDuplicateBuff, instanceID)
	}
	placed := &PlacedBuff{InstanceID: instanceID, Buff: b.Clone()}
	g.buffs[instanceID] = placed
	g.order = append(g.order, instanceID)
	return placed.clone(), nil
}

// PlaceBuff puts an inventory buff (or moves a placed one) onto an unlocked
// tile holding neither a pet nor another buff.
func (g *Grid) PlaceBuff(instanceID string, pos Position, now int64) (PlacedBuff, error) {
	b, ok := g.buffs[instanceID]
	if !ok {
		return PlacedBuff{}, fmt.Errorf("%w: %s", ErrUnknownBuff, instanceID)
	}
	if err := g.checkTile(pos); err != nil {
		return PlacedBuff{}, err
	}
	if other, ok := g.buffAt(pos); ok && other != instanceID {
		return PlacedBuff{}, fmt.Errorf("%w: %s holds buff %s", ErrTileOccupied, pos, other)
	}
	p := pos
	b.Position = &p
	b.LastMoved = now
	return b.clone(), nil
}

// RemoveBuff returns a placed buff to the inventory.
func (g *Grid) RemoveBuff(instanceID string) (PlacedBuff, error) {
	b, ok := g.buffs[instanceID]
	if !ok {
		return PlacedBuff{}, fmt.Errorf("%w: %s", ErrUnknownBuff, instanceID)
	}
	b.Position = nil
	b.LastMoved = 0
	return b.clone(), nil
}

func (g *Grid) Buff(instanceID string) (PlacedBuff, bool) {
	b, ok := g.buffs[instanceID]
	if !ok {
		return PlacedBuff{}, false
	}
	return b.clone(), true
}

// Buffs returns every buff copy, placed or not, in insertion order.
func (g *Grid) Buffs() []PlacedBuff {
	out := make([]PlacedBuff, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.buffs[id].clone())
	}
	return out
}

// PlacedBuffs returns only the buffs that sit on a tile.
func (g *Grid) PlacedBuffs() []PlacedBuff {
	var out []PlacedBuff
	for _, id := range g.order {
		if b := g.buffs[id]; b.Placed() {
			out = append(out, b.clone())
		}
	}
	return out
}

// BuffsInRange returns the placed buffs whose square of effect contains pos.
func (g *Grid) BuffsInRange(pos Position) []PlacedBuff {
	var out []PlacedBuff
	for _, id := range g.order {
		if b := g.buffs[id]; b.Covers(pos) {
			out = append(out, b.clone())
		}
	}
	return out
}

func (g *Grid) buffAt(pos Position) (string, bool) {
	for _, id := range g.order {
		if b := g.buffs[id]; b.Position != nil && *b.Position == pos {
			return id, true
		}
	}
	return "", false
}

// Relocation moves one placed buff. Stay is set when no free tile was
// available; the buff's timer still restarts.
type Relocation struct {
	InstanceID string   `json:"instanceId"`
	From       Position `json:"from"`
	To         Position `json:"to"`
	Stay       bool     `json:"stay,omitempty"`
}

// DueRelocations plans a teleport for every placed buff whose move interval
// has elapsed. Targets are unlocked tiles without a pet or buff, other than
// the buff's own tile, evaluated against the grid as it is now; tiles
// claimed earlier in the plan are excluded.
func (g *Grid) DueRelocations(now int64, rng random.Source) []Relocation {
	taken := make(map[Position]bool)
	for _, id := range g.order {
		if b := g.buffs[id]; b.Position != nil {
			taken[*b.Position] = true
		}
	}
	var plan []Relocation
	for _, id := range g.order {
		b := g.buffs[id]
		if b.Position == nil || b.Buff.MoveInterval <= 0 || now-b.LastMoved < b.Buff.MoveInterval {
			continue
		}
		from := *b.Position
		var free []Position
		for _, tile := range g.tiles {
			if tile.Unlocked && tile.PetID == "" && !taken[tile.Position] && tile.Position != from {
				free = append(free, tile.Position)
			}
		}
		if len(free) == 0 {
			plan = append(plan, Relocation{InstanceID: id, From: from, To: from, Stay: true})
			continue
		}
		to := free[random.Index(rng, len(free))]
		taken[to] = true
		delete(taken, from)
		plan = append(plan, Relocation{InstanceID: id, From: from, To: to})
	}
	return plan
}

// ApplyRelocations commits a plan from DueRelocations. Entries whose target
// is no longer free keep their tile.
func (g *Grid) ApplyRelocations(plan []Relocation, now int64) []Relocation {
	applied := make([]Relocation, 0, len(plan))
	for _, r := range plan {
		b, ok := g.buffs[r.InstanceID]
		if !ok || b.Position == nil {
			continue
		}
		b.LastMoved = now
		if !r.Stay {
			tile, _ := g.Tile(r.To)
			other, occupied := g.buffAt(r.To)
			if tile.Unlocked && tile.PetID == "" && (!occupied || other == r.InstanceID) {
				to := r.To
				b.Position = &to
			} else {
				r.Stay = true
				r.To = r.From
			}
		}
		applied = append(applied, r)
	}
	return applied
}
