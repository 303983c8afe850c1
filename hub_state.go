package server

import (
	"context"
	"fmt"

	"tidepool/server/internal/grid"
	"tidepool/server/internal/pets"
	"tidepool/server/internal/production"
	"tidepool/server/internal/telemetry"
	"tidepool/server/logging"
	logginglifecycle "tidepool/server/logging/lifecycle"
)

// State is the persisted form of a hub.
type State struct {
	Cash    int64      `json:"cash"`
	Tick    uint64     `json:"tick"`
	Pets    []pets.Pet `json:"pets"`
	Grid    grid.State `json:"grid"`
	SavedAt int64      `json:"savedAt"`
}

// Snapshot copies the hub into its persisted form.
func (h *Hub) Snapshot() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return State{
		Cash:    h.cash,
		Tick:    h.tick,
		Pets:    h.store.All(),
		Grid:    h.grid.Snapshot(),
		SavedAt: h.nowUnix(),
	}
}

// Pets returns every pet with its placement, in store order.
func (h *Hub) Pets() []PetView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.petViewsLocked()
}

func (h *Hub) petViewsLocked() []PetView {
	now := h.nowUnix()
	all := h.store.All()
	out := make([]PetView, 0, len(all))
	for _, pet := range all {
		view := PetView{
			Pet:      pet,
			Stars:    pet.Rating(),
			Capacity: pet.EffectiveCapacity(),
			Disabled: pet.Disabled(now),
		}
		if pos, ok := h.grid.PositionOf(pet.ID); ok {
			p := pos
			view.Position = &p
		}
		out = append(out, view)
	}
	return out
}

// StateMessage builds the message broadcast to subscribers.
func (h *Hub) StateMessage() StateMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stateMessageLocked()
}

func (h *Hub) stateMessageLocked() StateMessage {
	return StateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Tick:       h.tick,
		ServerTime: h.cfg.Now().UnixMilli(),
		Cash:       h.cash,
		Pets:       h.petViewsLocked(),
		Grid:       h.grid.Snapshot(),
	}
}

// Restore replaces the hub's state. Production anchors older than the
// offline cap are moved forward and stored gems are clamped to capacity.
func (h *Hub) Restore(ctx context.Context, st State) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	clamped, err := h.restoreLocked(st)
	if err != nil {
		return err
	}
	h.tick = st.Tick
	h.publishRestoredLocked(ctx, "snapshot", 0, clamped)
	return nil
}

// ImportLegacy loads a save written by the browser client. Pets that do not
// map to a template are skipped and reported.
func (h *Hub) ImportLegacy(ctx context.Context, raw []byte) (pets.LegacyState, error) {
	legacy, err := pets.ImportLegacy(raw, h.cat, h.nowUnix())
	if err != nil {
		return pets.LegacyState{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	st := State{Cash: h.cash, Pets: legacy.Pets}
	if legacy.HasCash {
		st.Cash = legacy.Cash
	}
	st.Grid = grid.State{Width: h.cfg.GridWidth, Height: h.cfg.GridHeight}
	for _, tile := range legacy.Tiles {
		st.Grid.Width = max(st.Grid.Width, tile.X+1)
		st.Grid.Height = max(st.Grid.Height, tile.Y+1)
		st.Grid.Tiles = append(st.Grid.Tiles, grid.Tile{
			Position: grid.Position{X: tile.X, Y: tile.Y},
			PetID:    tile.PetID,
			Unlocked: tile.Unlocked,
		})
	}
	for _, lb := range legacy.Buffs {
		b := grid.PlacedBuff{InstanceID: lb.InstanceID, Buff: lb.Buff, LastMoved: lb.LastMoved}
		if lb.Placed {
			b.Position = &grid.Position{X: lb.X, Y: lb.Y}
		}
		st.Grid.Buffs = append(st.Grid.Buffs, b)
	}
	clamped, err := h.restoreLocked(st)
	if err != nil {
		return legacy, err
	}
	h.publishRestoredLocked(ctx, "legacy", len(legacy.Skipped), clamped)
	return legacy, nil
}

func (h *Hub) restoreLocked(st State) (int, error) {
	now := h.nowUnix()
	store := pets.NewStore()
	clamped := 0
	for _, pet := range st.Pets {
		before := pet.LastGenerated
		pet = production.ClampOffline(pet, now, h.cfg.OfflineCap)
		if pet.LastGenerated != before {
			clamped++
		}
		if capacity := pet.EffectiveCapacity(); pet.CurrentGems > capacity {
			pet.CurrentGems = capacity
		}
		if err := store.Add(pet); err != nil {
			return 0, fmt.Errorf("restore: %w", err)
		}
	}

	gs := st.Grid
	if gs.Width <= 0 || gs.Height <= 0 {
		gs.Width, gs.Height = h.cfg.GridWidth, h.cfg.GridHeight
	}
	tiles := make([]grid.Tile, 0, len(gs.Tiles))
	for _, tile := range gs.Tiles {
		if tile.PetID != "" {
			if _, ok := store.Get(tile.PetID); !ok {
				h.logger.Printf("restore: dropping tile %s reference to unknown pet %s", tile.Position, tile.PetID)
				tile.PetID = ""
			}
		}
		tiles = append(tiles, tile)
	}
	gs.Tiles = tiles
	g, err := grid.FromState(gs)
	if err != nil {
		return 0, fmt.Errorf("restore: %w", err)
	}

	h.cash = max(st.Cash, 0)
	h.store = store
	h.grid = g
	clear(h.stalled)
	h.metrics.Store(telemetry.MetricPets, uint64(store.Len()))
	return clamped, nil
}

func (h *Hub) publishRestoredLocked(ctx context.Context, source string, skipped, clamped int) {
	logginglifecycle.StateRestored(ctx, h.publisher, h.tick, logging.WorldRef(), logginglifecycle.StateRestoredPayload{
		Source:  source,
		Pets:    h.store.Len(),
		Buffs:   len(h.grid.Buffs()),
		Skipped: skipped,
		Clamped: clamped,
	}, nil)
}
