// Package grid is the spatial store: tile occupancy, unlock state and the
// standalone buffs placed on tiles. Tiles live in one flat slice indexed by
// y*width+x; pets are referenced by id only.
package grid

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrOutOfBounds  = errors.New("grid: position out of bounds")
	ErrTileLocked   = errors.New("grid: tile locked")
	ErrTileOccupied = errors.New("grid: tile occupied")
	ErrNotPlaced    = errors.New("grid: pet not placed")
	ErrAlreadyOnMap = errors.New("grid: pet already placed")
)

// Position addresses a tile.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Chebyshev returns max(|dx|, |dy|).
func (p Position) Chebyshev(o Position) int {
	dx := p.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Tile is one grid cell. Price is zero for tiles that start unlocked.
type Tile struct {
	Position Position `json:"position"`
	PetID    string   `json:"petId,omitempty"`
	Unlocked bool     `json:"unlocked"`
	Price    int64    `json:"price,omitempty"`
}

var ringPrices = map[int]int64{
	2: 10_000_000,
	3: 125_000_000,
	4: 500_000_000,
}

// PriceForDistance is the unlock price of a tile at the given Chebyshev
// distance from the centre.
func PriceForDistance(distance int) int64 {
	if distance < 2 {
		return 0
	}
	if price, ok := ringPrices[distance]; ok {
		return price
	}
	return int64(math.Round(1_000_000 * math.Pow(3, float64(distance-1))))
}

// Grid owns tile occupancy and placed buffs. It is not safe for concurrent
// use; the owner serialises access.
type Grid struct {
	width  int
	height int
	tiles  []Tile
	pets   map[string]int
	buffs  map[string]*PlacedBuff
	order  []string
}

// New builds a width x height grid with the centre 3x3 unlocked and ring
// prices on every other tile.
func New(width, height int) *Grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	g := &Grid{
		width:  width,
		height: height,
		tiles:  make([]Tile, width*height),
		pets:   make(map[string]int),
		buffs:  make(map[string]*PlacedBuff),
	}
	center := Position{X: width / 2, Y: height / 2}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pos := Position{X: x, Y: y}
			distance := pos.Chebyshev(center)
			tile := Tile{Position: pos, Unlocked: distance <= 1}
			if !tile.Unlocked {
				tile.Price = PriceForDistance(distance)
			}
			g.tiles[g.index(pos)] = tile
		}
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) index(pos Position) int {
	return pos.Y*g.width + pos.X
}

// InBounds reports whether pos addresses a tile.
func (g *Grid) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < g.width && pos.Y >= 0 && pos.Y < g.height
}

func (g *Grid) Tile(pos Position) (Tile, bool) {
	if !g.InBounds(pos) {
		return Tile{}, false
	}
	return g.tiles[g.index(pos)], true
}

// Tiles returns a copy of every tile in row-major order.
func (g *Grid) Tiles() []Tile {
	return append([]Tile(nil), g.tiles...)
}

// OccupantAt returns the pet on (x, y), if any.
func (g *Grid) OccupantAt(x, y int) (string, bool) {
	tile, ok := g.Tile(Position{X: x, Y: y})
	if !ok || tile.PetID == "" {
		return "", false
	}
	return tile.PetID, true
}

// PositionOf returns where a pet is placed.
func (g *Grid) PositionOf(petID string) (Position, bool) {
	idx, ok := g.pets[petID]
	if !ok {
		return Position{}, false
	}
	return g.tiles[idx].Position, true
}

// Unlock marks a tile usable.
func (g *Grid) Unlock(pos Position) error {
	if !g.InBounds(pos) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	g.tiles[g.index(pos)].Unlocked = true
	return nil
}

// PlacePet puts an unplaced pet on an empty unlocked tile.
func (g *Grid) PlacePet(petID string, pos Position) error {
	if _, placed := g.pets[petID]; placed {
		return fmt.Errorf("%w: %s", ErrAlreadyOnMap, petID)
	}
	if err := g.checkFree(pos); err != nil {
		return err
	}
	idx := g.index(pos)
	g.tiles[idx].PetID = petID
	g.pets[petID] = idx
	return nil
}

// RemovePet clears a pet's tile and returns where it was.
func (g *Grid) RemovePet(petID string) (Position, bool) {
	idx, ok := g.pets[petID]
	if !ok {
		return Position{}, false
	}
	g.tiles[idx].PetID = ""
	delete(g.pets, petID)
	return g.tiles[idx].Position, true
}

// MovePet relocates a placed pet onto an empty unlocked tile.
func (g *Grid) MovePet(petID string, to Position) error {
	from, ok := g.pets[petID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotPlaced, petID)
	}
	if g.InBounds(to) && g.index(to) == from {
		return nil
	}
	if err := g.checkFree(to); err != nil {
		return err
	}
	g.tiles[from].PetID = ""
	idx := g.index(to)
	g.tiles[idx].PetID = petID
	g.pets[petID] = idx
	return nil
}

// checkFree reports whether a pet may stand on pos: the tile must be
// unlocked and hold neither a pet nor a placed buff.
func (g *Grid) checkFree(pos Position) error {
	if err := g.checkTile(pos); err != nil {
		return err
	}
	if id, ok := g.buffAt(pos); ok {
		return fmt.Errorf("%w: %s holds buff %s", ErrTileOccupied, pos, id)
	}
	return nil
}

func (g *Grid) checkTile(pos Position) error {
	if !g.InBounds(pos) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	tile := g.tiles[g.index(pos)]
	if !tile.Unlocked {
		return fmt.Errorf("%w: %s", ErrTileLocked, pos)
	}
	if tile.PetID != "" {
		return fmt.Errorf("%w: %s holds %s", ErrTileOccupied, pos, tile.PetID)
	}
	return nil
}

// CountPetsInRadius counts pets within Chebyshev radius of pos, excluding
// excludeID.
func (g *Grid) CountPetsInRadius(pos Position, radius int, excludeID string) int {
	if radius < 0 {
		return 0
	}
	count := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := Position{X: pos.X + dx, Y: pos.Y + dy}
			if !g.InBounds(p) {
				continue
			}
			if id := g.tiles[g.index(p)].PetID; id != "" && id != excludeID {
				count++
			}
		}
	}
	return count
}

// Occupied lists tiles holding a pet in row-major order.
func (g *Grid) Occupied() []Tile {
	var out []Tile
	for _, tile := range g.tiles {
		if tile.PetID != "" {
			out = append(out, tile)
		}
	}
	return out
}
