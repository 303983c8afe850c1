package grid

import (
	"errors"
	"testing"

	"tidepool/server/catalog"
	"tidepool/server/internal/random"
)

func TestNewUnlocksCentreAndPricesRings(t *testing.T) {
	g := New(9, 9)
	centre, _ := g.Tile(Position{X: 4, Y: 4})
	corner, _ := g.Tile(Position{X: 3, Y: 3})
	ring2, _ := g.Tile(Position{X: 2, Y: 4})
	ring4, _ := g.Tile(Position{X: 0, Y: 0})
	if !centre.Unlocked || !corner.Unlocked || centre.Price != 0 {
		t.Fatalf("expected centre 3x3 unlocked and free")
	}
	if ring2.Unlocked || ring2.Price != 10_000_000 {
		t.Fatalf("unexpected ring 2 tile %+v", ring2)
	}
	if ring4.Price != 500_000_000 {
		t.Fatalf("unexpected ring 4 price %d", ring4.Price)
	}
	if PriceForDistance(5) != 81_000_000 {
		t.Fatalf("unexpected fallback price %d", PriceForDistance(5))
	}
}

func TestPetPlacementRules(t *testing.T) {
	g := New(5, 5)
	if err := g.PlacePet("a", Position{X: 2, Y: 2}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := g.PlacePet("b", Position{X: 2, Y: 2}); !errors.Is(err, ErrTileOccupied) {
		t.Fatalf("expected occupied error, got %v", err)
	}
	if err := g.PlacePet("b", Position{X: 0, Y: 0}); !errors.Is(err, ErrTileLocked) {
		t.Fatalf("expected locked error, got %v", err)
	}
	if err := g.PlacePet("b", Position{X: 9, Y: 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected bounds error, got %v", err)
	}
	if err := g.PlacePet("a", Position{X: 1, Y: 1}); !errors.Is(err, ErrAlreadyOnMap) {
		t.Fatalf("expected already placed error, got %v", err)
	}
	if err := g.MovePet("a", Position{X: 1, Y: 1}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if id, ok := g.OccupantAt(1, 1); !ok || id != "a" {
		t.Fatalf("expected a at (1,1)")
	}
	if _, ok := g.OccupantAt(2, 2); ok {
		t.Fatalf("expected old tile to be cleared")
	}
	if pos, ok := g.RemovePet("a"); !ok || pos != (Position{X: 1, Y: 1}) {
		t.Fatalf("unexpected removal %v %v", pos, ok)
	}
	if err := g.MovePet("a", Position{X: 2, Y: 2}); !errors.Is(err, ErrNotPlaced) {
		t.Fatalf("expected not placed error, got %v", err)
	}
}

func TestCountPetsInRadiusExcludesSelf(t *testing.T) {
	g := New(5, 5)
	for id, pos := range map[string]Position{"self": {2, 2}, "n1": {1, 1}, "n2": {3, 2}, "far": {0, 0}} {
		_ = g.Unlock(pos)
		if err := g.PlacePet(id, pos); err != nil {
			t.Fatalf("place %s: %v", id, err)
		}
	}
	if got := g.CountPetsInRadius(Position{X: 2, Y: 2}, 1, "self"); got != 2 {
		t.Fatalf("expected 2 neighbours, got %d", got)
	}
	if got := g.CountPetsInRadius(Position{X: 2, Y: 2}, 2, "self"); got != 3 {
		t.Fatalf("expected 3 neighbours at radius 2, got %d", got)
	}
	if got := len(g.Occupied()); got != 4 {
		t.Fatalf("expected 4 occupied tiles, got %d", got)
	}
}

func TestBuffsInRangeUsesChebyshevSquare(t *testing.T) {
	g := New(7, 7)
	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			_ = g.Unlock(Position{X: x, Y: y})
		}
	}
	wide := catalog.Buff{ID: "buff-echo-1", Type: catalog.BuffEcho, AreaRadius: 2}
	plain := catalog.Buff{ID: "buff-speed-1", Type: catalog.BuffSpeed, AreaRadius: 1}
	w, _ := g.AddBuff(wide, "")
	p, _ := g.AddBuff(plain, "speed-copy")
	if _, err := g.PlaceBuff(w.InstanceID, Position{X: 3, Y: 3}, 10); err != nil {
		t.Fatalf("place wide: %v", err)
	}
	if _, err := g.PlaceBuff(p.InstanceID, Position{X: 0, Y: 0}, 10); err != nil {
		t.Fatalf("place plain: %v", err)
	}
	if _, err := g.PlaceBuff(p.InstanceID, Position{X: 3, Y: 3}, 10); !errors.Is(err, ErrTileOccupied) {
		t.Fatalf("expected buff-occupied error, got %v", err)
	}

	if got := g.BuffsInRange(Position{X: 5, Y: 1}); len(got) != 1 || got[0].InstanceID != w.InstanceID {
		t.Fatalf("expected only the wide buff at (5,1), got %+v", got)
	}
	if got := g.BuffsInRange(Position{X: 6, Y: 3}); len(got) != 0 {
		t.Fatalf("expected nothing outside radius, got %+v", got)
	}
	if got := g.BuffsInRange(Position{X: 1, Y: 1}); len(got) != 2 {
		t.Fatalf("expected both buffs at (1,1), got %d", len(got))
	}

	if _, err := g.RemoveBuff(p.InstanceID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(g.PlacedBuffs()) != 1 || len(g.Buffs()) != 2 {
		t.Fatalf("expected removed buff back in inventory")
	}
}

func TestSelfOnlyBuffCoversNoNeighbour(t *testing.T) {
	g := New(5, 5)
	b, _ := g.AddBuff(catalog.Buff{ID: "buff-speed-1", Type: catalog.BuffSpeed}, "")
	if _, err := g.PlaceBuff(b.InstanceID, Position{X: 1, Y: 1}, 0); err != nil {
		t.Fatalf("place: %v", err)
	}
	for _, pos := range []Position{{X: 2, Y: 2}, {X: 1, Y: 2}, {X: 1, Y: 1}} {
		if got := g.BuffsInRange(pos); len(got) != 0 {
			t.Fatalf("expected radius-0 buff to reach nothing at %s, got %+v", pos, got)
		}
	}
}

func TestPetCannotStandOnPlacedBuff(t *testing.T) {
	g := New(5, 5)
	b, _ := g.AddBuff(catalog.Buff{ID: "buff-lure-1", Type: catalog.BuffLure}, "")
	if _, err := g.PlaceBuff(b.InstanceID, Position{X: 2, Y: 2}, 0); err != nil {
		t.Fatalf("place buff: %v", err)
	}
	if err := g.PlacePet("a", Position{X: 2, Y: 2}); !errors.Is(err, ErrTileOccupied) {
		t.Fatalf("expected buff tile to reject a pet, got %v", err)
	}
	if err := g.PlacePet("a", Position{X: 1, Y: 2}); err != nil {
		t.Fatalf("place pet: %v", err)
	}
	if err := g.MovePet("a", Position{X: 2, Y: 2}); !errors.Is(err, ErrTileOccupied) {
		t.Fatalf("expected move onto buff tile to fail, got %v", err)
	}
	if _, err := g.PlaceBuff(b.InstanceID, Position{X: 2, Y: 2}, 5); err != nil {
		t.Fatalf("expected buff to stay placeable on its own tile, got %v", err)
	}
}

func TestRelocationPlanAndApply(t *testing.T) {
	g := New(3, 3)
	mover := catalog.Buff{ID: "buff-speed-1", Type: catalog.BuffSpeed, MoveInterval: 5}
	b, _ := g.AddBuff(mover, "mover")
	if _, err := g.PlaceBuff(b.InstanceID, Position{X: 0, Y: 0}, 100); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := g.PlacePet("pet", Position{X: 1, Y: 1}); err != nil {
		t.Fatalf("place pet: %v", err)
	}

	if plan := g.DueRelocations(104, random.Constant(0)); len(plan) != 0 {
		t.Fatalf("expected nothing due before the interval, got %+v", plan)
	}
	plan := g.DueRelocations(105, random.Constant(0))
	if len(plan) != 1 || plan[0].Stay {
		t.Fatalf("expected one move, got %+v", plan)
	}
	if plan[0].To == (Position{X: 0, Y: 0}) || plan[0].To == (Position{X: 1, Y: 1}) {
		t.Fatalf("relocation picked an occupied tile %s", plan[0].To)
	}
	applied := g.ApplyRelocations(plan, 105)
	moved, _ := g.Buff("mover")
	if len(applied) != 1 || *moved.Position != plan[0].To || moved.LastMoved != 105 {
		t.Fatalf("relocation not applied: %+v", moved)
	}

	// A full grid keeps the buff in place but restarts its timer.
	full := New(1, 1)
	only, _ := full.AddBuff(mover, "")
	_, _ = full.PlaceBuff(only.InstanceID, Position{X: 0, Y: 0}, 0)
	plan = full.DueRelocations(10, random.Constant(0.5))
	if len(plan) != 1 || !plan[0].Stay {
		t.Fatalf("expected a stay entry, got %+v", plan)
	}
	full.ApplyRelocations(plan, 10)
	if stayed, _ := full.Buff(only.InstanceID); stayed.LastMoved != 10 {
		t.Fatalf("expected timer restart, got %d", stayed.LastMoved)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := New(5, 5)
	_ = g.PlacePet("pet", Position{X: 2, Y: 2})
	b, _ := g.AddBuff(catalog.Buff{ID: "buff-luck-1", Type: catalog.BuffLuck}, "luck")
	_, _ = g.PlaceBuff(b.InstanceID, Position{X: 1, Y: 2}, 7)
	_, _ = g.AddBuff(catalog.Buff{ID: "buff-speed-1", Type: catalog.BuffSpeed}, "spare")

	restored, err := FromState(g.Snapshot())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if pos, ok := restored.PositionOf("pet"); !ok || pos != (Position{X: 2, Y: 2}) {
		t.Fatalf("pet position lost")
	}
	luck, _ := restored.Buff("luck")
	if luck.Position == nil || *luck.Position != (Position{X: 1, Y: 2}) || luck.LastMoved != 7 {
		t.Fatalf("placed buff lost: %+v", luck)
	}
	if spare, ok := restored.Buff("spare"); !ok || spare.Placed() {
		t.Fatalf("inventory buff lost: %+v", spare)
	}
}
