package grid

import "fmt"

// State is the serialisable form of a grid.
type State struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Tiles  []Tile       `json:"tiles"`
	Buffs  []PlacedBuff `json:"buffs"`
}

// Snapshot copies the grid into its serialisable form.
func (g *Grid) Snapshot() State {
	return State{
		Width:  g.width,
		Height: g.height,
		Tiles:  g.Tiles(),
		Buffs:  g.Buffs(),
	}
}

// FromState rebuilds a grid. Tiles missing from the state keep their
// defaults from New.
func FromState(s State) (*Grid, error) {
	g := New(s.Width, s.Height)
	for _, tile := range s.Tiles {
		if !g.InBounds(tile.Position) {
			return nil, fmt.Errorf("%w: tile %s", ErrOutOfBounds, tile.Position)
		}
		idx := g.index(tile.Position)
		g.tiles[idx].Unlocked = tile.Unlocked
		if tile.Price > 0 {
			g.tiles[idx].Price = tile.Price
		}
		if tile.PetID != "" {
			if _, dup := g.pets[tile.PetID]; dup {
				return nil, fmt.Errorf("%w: %s", ErrAlreadyOnMap, tile.PetID)
			}
			g.tiles[idx].PetID = tile.PetID
			g.pets[tile.PetID] = idx
		}
	}
	for _, b := range s.Buffs {
		added, err := g.AddBuff(b.Buff, b.InstanceID)
		if err != nil {
			return nil, err
		}
		if b.Position != nil {
			stored := g.buffs[added.InstanceID]
			p := *b.Position
			if !g.InBounds(p) {
				return nil, fmt.Errorf("%w: buff %s at %s", ErrOutOfBounds, b.InstanceID, p)
			}
			stored.Position = &p
			stored.LastMoved = b.LastMoved
		}
	}
	return g, nil
}
