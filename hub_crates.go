package server

import (
	"context"
	"fmt"
	"math"

	"tidepool/server/catalog"
	"tidepool/server/internal/merge"
	"tidepool/server/internal/pets"
	"tidepool/server/internal/telemetry"
	"tidepool/server/logging"
	loggingcrates "tidepool/server/logging/crates"
	loggingeconomy "tidepool/server/logging/economy"
)

// MaxCratesPerPurchase bounds a single OpenCrates call.
const MaxCratesPerPurchase = 1_000

// OpenCrate buys and opens a single crate.
func (h *Hub) OpenCrate(ctx context.Context, rarity catalog.Rarity) (Purchase, error) {
	return h.OpenCrates(ctx, rarity, 1)
}

// OpenCrates buys count crates of one rarity. Cash is only charged once
// every crate resolved; with auto-merge enabled the unplaced pets are then
// merged pairwise until no pair qualifies.
func (h *Hub) OpenCrates(ctx context.Context, rarity catalog.Rarity, count int) (Purchase, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if count <= 0 || count > MaxCratesPerPurchase {
		return Purchase{}, fmt.Errorf("%w: %d (max %d)", ErrInvalidCount, count, MaxCratesPerPurchase)
	}
	crateRef := logging.EntityRef{ID: catalog.CrateID(rarity), Kind: logging.EntityKindCrate}
	rejected := func(err error) error {
		loggingcrates.CrateOpenFailed(ctx, h.publisher, h.tick, crateRef, loggingcrates.CrateOpenFailedPayload{
			Rarity: string(rarity),
			Count:  count,
			Reason: err.Error(),
		}, nil)
		return err
	}

	crate, err := h.cat.Crate(rarity)
	if err != nil {
		return Purchase{}, rejected(err)
	}
	if crate.Cost > 0 && int64(count) > math.MaxInt64/crate.Cost {
		return Purchase{}, rejected(fmt.Errorf("%w: %d crates at %d overflow", ErrInvalidCount, count, crate.Cost))
	}
	total := crate.Cost * int64(count)
	if h.cash < total {
		return Purchase{}, rejected(fmt.Errorf("%w: need %d, have %d", ErrInsufficientCash, total, h.cash))
	}

	now := h.nowUnix()
	openings, err := h.opener.OpenMany(rarity, count, now)
	if err != nil {
		return Purchase{}, rejected(err)
	}

	h.cash -= total
	loggingeconomy.CashSpent(ctx, h.publisher, h.tick, crateRef, loggingeconomy.CashSpentPayload{
		Reason:  "crate",
		Amount:  total,
		Balance: h.cash,
	}, nil)

	purchase := Purchase{Rarity: rarity, Count: count, Cost: total}
	for _, opening := range openings {
		pet := opening.Pet
		if err := h.store.Add(pet); err != nil {
			h.logger.Printf("crate %s produced duplicate pet id %s: %v", crate.ID, pet.ID, err)
			continue
		}
		buffIDs := make([]string, 0, len(pet.Buffs))
		for _, b := range pet.Buffs {
			buffIDs = append(buffIDs, b.ID)
		}
		loggingcrates.CrateOpened(ctx, h.publisher, h.tick, logging.PetRef(pet.ID), loggingcrates.CrateOpenedPayload{
			Requested:  string(opening.Requested),
			Resolved:   string(opening.Resolved),
			Downgrades: opening.Downgrades,
			Template:   pet.TemplateKey,
			Buffs:      buffIDs,
			Price:      crate.Cost,
		}, nil)
		h.metrics.Add(telemetry.MetricCratesOpened, 1)
		purchase.Openings = append(purchase.Openings, opening)
	}

	if h.cfg.AutoMerge {
		purchase.Merges = h.autoMergeLocked(ctx)
	}
	h.metrics.Store(telemetry.MetricPets, uint64(h.store.Len()))
	purchase.Balance = h.cash
	return purchase, nil
}

// AutoMerge runs the inventory merge pass on demand.
func (h *Hub) AutoMerge(ctx context.Context) []merge.Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.autoMergeLocked(ctx)
}

// autoMergeLocked repeatedly merges the first qualifying pair of unplaced
// pets, in store order, until none is left.
func (h *Hub) autoMergeLocked(ctx context.Context) []merge.Result {
	var results []merge.Result
	for {
		source, target, ok := h.nextInventoryPairLocked()
		if !ok {
			return results
		}
		results = append(results, h.mergeLocked(ctx, source, target, true))
	}
}

func (h *Hub) nextInventoryPairLocked() (pets.Pet, pets.Pet, bool) {
	var inventory []pets.Pet
	for _, pet := range h.store.All() {
		if _, placed := h.grid.PositionOf(pet.ID); !placed {
			inventory = append(inventory, pet)
		}
	}
	for i := range inventory {
		for j := i + 1; j < len(inventory); j++ {
			if merge.CanMerge(inventory[i], inventory[j]) == nil {
				return inventory[i], inventory[j], true
			}
		}
	}
	return pets.Pet{}, pets.Pet{}, false
}
