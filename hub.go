// Package server holds the player-state container: one Hub owns the cash
// balance, the pet store, the grid and its buffs, and the subscribers that
// receive state after every tick.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"tidepool/server/catalog"
	"tidepool/server/internal/crates"
	"tidepool/server/internal/grid"
	"tidepool/server/internal/merge"
	"tidepool/server/internal/pets"
	"tidepool/server/internal/production"
	"tidepool/server/internal/random"
	"tidepool/server/internal/rating"
	"tidepool/server/internal/telemetry"
	"tidepool/server/internal/valuation"
	"tidepool/server/logging"
	loggingeconomy "tidepool/server/logging/economy"
	loggingmerge "tidepool/server/logging/merge"
)

var (
	ErrUnknownPet       = pets.ErrUnknownPet
	ErrTileLocked       = grid.ErrTileLocked
	ErrTileOccupied     = grid.ErrTileOccupied
	ErrNotPlaced        = grid.ErrNotPlaced
	ErrUnknownBuff      = grid.ErrUnknownBuff
	ErrPetLocked        = errors.New("server: pet is locked")
	ErrInsufficientCash = errors.New("server: insufficient cash")
	ErrInvalidCount     = errors.New("server: crate count must be positive")
)

// Hub serialises every mutation of one player's state behind a single
// mutex. Tick evaluates production and buff relocation against the state
// as it stood when the tick began.
type Hub struct {
	mu        sync.Mutex
	cfg       HubConfig
	cat       *catalog.Catalog
	cash      int64
	store     *pets.Store
	grid      *grid.Grid
	opener    *crates.Opener
	engine    *production.Engine
	moves     random.Source
	tick      uint64
	stalled   map[string]bool
	publisher logging.Publisher
	logger    telemetry.Logger
	metrics   telemetry.Metrics

	subMu       sync.Mutex
	subscribers map[string]*subscriber
	nextSub     atomic.Uint64
}

// NewHub builds a hub with the default configuration.
func NewHub(pub logging.Publisher) *Hub {
	return NewHubWithConfig(DefaultHubConfig(), pub)
}

// NewHubWithConfig builds a hub with an empty pet store and a fresh grid.
// A nil publisher disables event logging.
func NewHubWithConfig(cfg HubConfig, pub logging.Publisher) *Hub {
	cfg = cfg.normalized()
	h := &Hub{
		cfg:         cfg,
		cat:         cfg.Catalog,
		cash:        cfg.StartingCash,
		store:       pets.NewStore(),
		grid:        grid.New(cfg.GridWidth, cfg.GridHeight),
		stalled:     make(map[string]bool),
		publisher:   pub,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		subscribers: make(map[string]*subscriber),
	}
	stream := func(label string) random.Source {
		if cfg.Random != nil {
			return cfg.Random
		}
		return random.NewDeterministic(cfg.Seed, label)
	}
	var opts []crates.Option
	if cfg.IDs != nil {
		opts = append(opts, crates.WithIDs(cfg.IDs))
	}
	h.opener = crates.NewOpener(h.cat, stream("crates"), opts...)
	h.engine = production.NewEngine(h.cat, stream("production"))
	h.moves = stream("relocation")
	return h
}

// Config returns the normalised configuration.
func (h *Hub) Config() HubConfig {
	return h.cfg
}

// Catalog returns the static game data the hub was built with.
func (h *Hub) Catalog() *catalog.Catalog {
	return h.cat
}

func (h *Hub) nowUnix() int64 {
	return h.cfg.Now().Unix()
}

func (h *Hub) Cash() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cash
}

// Pet returns a copy of one pet.
func (h *Hub) Pet(id string) (pets.Pet, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.petLocked(id)
}

func (h *Hub) petLocked(id string) (pets.Pet, error) {
	pet, ok := h.store.Get(id)
	if !ok {
		return pets.Pet{}, fmt.Errorf("%w: %s", ErrUnknownPet, id)
	}
	return pet, nil
}

// PlacePet puts an inventory pet on a tile. Dropping it on a pet it can
// merge with merges the two instead.
func (h *Hub) PlacePet(ctx context.Context, petID string, pos grid.Position) (MoveResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pet, err := h.petLocked(petID)
	if err != nil {
		return MoveResult{}, err
	}
	if _, placed := h.grid.PositionOf(petID); placed {
		return MoveResult{}, fmt.Errorf("%w: %s", grid.ErrAlreadyOnMap, petID)
	}
	if res, merged, err := h.mergeOntoLocked(ctx, pet, pos); merged || err != nil {
		return res, err
	}
	if err := h.grid.PlacePet(petID, pos); err != nil {
		return MoveResult{}, err
	}
	pet.LastGenerated = h.nowUnix()
	h.putLocked(pet)
	return MoveResult{PetID: petID, Position: pos}, nil
}

// MovePet moves a placed pet to another tile, or merges it into the pet on
// that tile when the two can merge.
func (h *Hub) MovePet(ctx context.Context, petID string, to grid.Position) (MoveResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pet, err := h.petLocked(petID)
	if err != nil {
		return MoveResult{}, err
	}
	if pet.Locked {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrPetLocked, petID)
	}
	if _, placed := h.grid.PositionOf(petID); !placed {
		return MoveResult{}, fmt.Errorf("%w: %s", ErrNotPlaced, petID)
	}
	if res, merged, err := h.mergeOntoLocked(ctx, pet, to); merged || err != nil {
		return res, err
	}
	if err := h.grid.MovePet(petID, to); err != nil {
		return MoveResult{}, err
	}
	return MoveResult{PetID: petID, Position: to}, nil
}

// mergeOntoLocked merges pet into the occupant of pos when there is one and
// the pair qualifies. It reports merged=false when the caller should fall
// back to a plain placement.
func (h *Hub) mergeOntoLocked(ctx context.Context, pet pets.Pet, pos grid.Position) (MoveResult, bool, error) {
	occupant, ok := h.grid.OccupantAt(pos.X, pos.Y)
	if !ok || occupant == pet.ID {
		return MoveResult{}, false, nil
	}
	target, err := h.petLocked(occupant)
	if err != nil {
		return MoveResult{}, false, nil
	}
	if merge.CanMerge(pet, target) != nil {
		return MoveResult{}, false, nil
	}
	res := h.mergeLocked(ctx, pet, target, false)
	return MoveResult{PetID: target.ID, Position: pos, Merge: &res}, true, nil
}

// putLocked writes pet back to the store. A pet that left the store in the
// meantime stays gone.
func (h *Hub) putLocked(pet pets.Pet) {
	if err := h.store.Put(pet); err != nil {
		h.logger.Printf("tick %d: failed to store pet %s: %v", h.tick, pet.ID, err)
	}
}

// MergePets folds source into target.
func (h *Hub) MergePets(ctx context.Context, sourceID, targetID string) (merge.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	source, err := h.petLocked(sourceID)
	if err != nil {
		return merge.Result{}, err
	}
	target, err := h.petLocked(targetID)
	if err != nil {
		return merge.Result{}, err
	}
	if err := merge.CanMerge(source, target); err != nil {
		loggingmerge.MergeRejected(ctx, h.publisher, h.tick, logging.PetRef(targetID), loggingmerge.MergeRejectedPayload{Source: sourceID, Reason: err.Error()}, nil)
		return merge.Result{}, err
	}
	return h.mergeLocked(ctx, source, target, false), nil
}

// mergeLocked removes source from the grid and the store and stores the
// merged target in the same critical section.
func (h *Hub) mergeLocked(ctx context.Context, source, target pets.Pet, automatic bool) merge.Result {
	res := merge.Merge(source, target, h.nowUnix(), h.cat)
	h.grid.RemovePet(source.ID)
	h.store.Remove(source.ID)
	delete(h.stalled, source.ID)
	h.putLocked(res.Pet)

	buffIDs := make([]string, 0, len(res.Pet.Buffs))
	for _, b := range res.Pet.Buffs {
		buffIDs = append(buffIDs, b.ID)
	}
	loggingmerge.PetsMerged(ctx, h.publisher, h.tick, logging.PetRef(res.Pet.ID), loggingmerge.PetsMergedPayload{
		Consumed:   res.Consumed,
		Before:     res.Before,
		After:      res.After,
		StarGained: res.StarGained,
		Buffs:      buffIDs,
		Automatic:  automatic,
	}, nil)
	h.metrics.Add(telemetry.MetricMerges, 1)
	h.metrics.Store(telemetry.MetricPets, uint64(h.store.Len()))
	return res
}

// RemovePetFromGrid returns a placed pet to the inventory.
func (h *Hub) RemovePetFromGrid(ctx context.Context, petID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.petLocked(petID); err != nil {
		return err
	}
	if _, ok := h.grid.RemovePet(petID); !ok {
		return fmt.Errorf("%w: %s", ErrNotPlaced, petID)
	}
	delete(h.stalled, petID)
	return nil
}

// SellPet removes an unlocked pet and credits its valuation.
func (h *Hub) SellPet(ctx context.Context, petID string) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pet, err := h.petLocked(petID)
	if err != nil {
		return 0, err
	}
	if pet.Locked {
		return 0, fmt.Errorf("%w: %s", ErrPetLocked, petID)
	}
	price := valuation.Value(pet, h.cat)
	h.grid.RemovePet(petID)
	h.store.Remove(petID)
	delete(h.stalled, petID)
	h.cash += price

	loggingeconomy.PetSold(ctx, h.publisher, h.tick, logging.PetRef(petID), loggingeconomy.PetSoldPayload{Price: price, Balance: h.cash}, nil)
	h.metrics.Store(telemetry.MetricPets, uint64(h.store.Len()))
	return price, nil
}

// ToggleLock flips a pet's lock and returns the new state.
func (h *Hub) ToggleLock(ctx context.Context, petID string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pet, ok := h.store.Ref(petID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownPet, petID)
	}
	pet.Locked = !pet.Locked
	return pet.Locked, nil
}

// CollectGems cashes in a pet's stored gems.
func (h *Hub) CollectGems(ctx context.Context, petID string) (Collection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pet, ok := h.store.Ref(petID)
	if !ok {
		return Collection{}, fmt.Errorf("%w: %s", ErrUnknownPet, petID)
	}
	if pet.CurrentGems == 0 {
		return Collection{PetID: petID, Balance: h.cash}, nil
	}
	value := pet.StoredValue
	if value <= 0 {
		value = int64(pet.CurrentGems) * legacyGemValue
	}
	out := Collection{PetID: petID, Gems: pet.CurrentGems, Value: value}
	pet.CurrentGems = 0
	pet.StoredValue = 0
	delete(h.stalled, petID)
	h.cash += value
	out.Balance = h.cash

	loggingeconomy.GemsCollected(ctx, h.publisher, h.tick, logging.PetRef(petID), loggingeconomy.GemsCollectedPayload{Gems: out.Gems, Value: value, Balance: h.cash}, nil)
	return out, nil
}

// Rating scores a pet.
func (h *Hub) Rating(petID string) (RatingReport, error) {
	pet, err := h.Pet(petID)
	if err != nil {
		return RatingReport{}, err
	}
	stars := pet.Rating()
	return RatingReport{
		PetID:    petID,
		Stars:    stars,
		Label:    rating.Label(stars),
		Quality:  rating.QualityScore(pet.Rarity, pet.Buffs),
		Capacity: pet.EffectiveCapacity(),
		Value:    valuation.Value(pet, h.cat),
	}, nil
}

// GrantBuff adds an inventory copy of a catalog buff.
func (h *Hub) GrantBuff(ctx context.Context, buffID string) (grid.PlacedBuff, error) {
	b, err := h.cat.LookupBuff(buffID)
	if err != nil {
		return grid.PlacedBuff{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grid.AddBuff(b, "")
}

// PlaceBuff puts an inventory buff on a tile, or moves a placed one.
func (h *Hub) PlaceBuff(ctx context.Context, instanceID string, pos grid.Position) (grid.PlacedBuff, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grid.PlaceBuff(instanceID, pos, h.nowUnix())
}

// RemoveBuff returns a placed buff to the inventory.
func (h *Hub) RemoveBuff(ctx context.Context, instanceID string) (grid.PlacedBuff, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grid.RemoveBuff(instanceID)
}

// TickCount returns the number of completed ticks.
func (h *Hub) TickCount() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tick
}
