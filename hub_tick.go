package server

import (
	"context"
	"time"

	"tidepool/server/catalog"
	"tidepool/server/internal/grid"
	"tidepool/server/internal/pets"
	"tidepool/server/internal/production"
	"tidepool/server/internal/telemetry"
	"tidepool/server/logging"
	loggingproduction "tidepool/server/logging/production"
	loggingsimulation "tidepool/server/logging/simulation"
	"tidepool/server/stats"
)

// TickReport summarises one Tick.
type TickReport struct {
	Tick      uint64            `json:"tick"`
	Evaluated int               `json:"evaluated"`
	Produced  int               `json:"produced"`
	Gems      int               `json:"gems"`
	Value     int64             `json:"value"`
	Disabled  []string          `json:"disabled,omitempty"`
	Relocated []grid.Relocation `json:"relocated,omitempty"`
}

type placedPet struct {
	pet pets.Pet
	pos grid.Position
}

// Tick advances every placed pet by at most one production and then moves
// the placed buffs whose interval elapsed. All pets are evaluated against
// the state as it stood when the tick began.
func (h *Hub) Tick(ctx context.Context, now time.Time) TickReport {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tick++
	unix := now.Unix()
	report := TickReport{Tick: h.tick}

	placed := h.placedPetsLocked()
	results := make([]production.Result, 0, len(placed))
	for _, entry := range placed {
		active := h.activeBuffsLocked(entry, placed)
		pos, id := entry.pos, entry.pet.ID
		nearby := stats.NeighborhoodFunc(func(radius int) int {
			return h.grid.CountPetsInRadius(pos, radius, id)
		})
		results = append(results, h.engine.Evaluate(entry.pet, active, nearby, unix))
	}

	for _, res := range results {
		h.putLocked(res.Pet)
		h.publishProductionLocked(ctx, res, &report)
	}
	report.Evaluated = len(results)

	plan := h.grid.DueRelocations(unix, h.moves)
	for _, r := range h.grid.ApplyRelocations(plan, unix) {
		loggingsimulation.BuffRelocated(ctx, h.publisher, h.tick, logging.BuffRef(r.InstanceID), loggingsimulation.BuffRelocatedPayload{
			FromX: r.From.X,
			FromY: r.From.Y,
			ToX:   r.To.X,
			ToY:   r.To.Y,
			Stay:  r.Stay,
		}, nil)
		if !r.Stay {
			h.metrics.Add(telemetry.MetricBuffsRelocated, 1)
		}
		report.Relocated = append(report.Relocated, r)
	}

	h.metrics.Add(telemetry.MetricTicks, 1)
	return report
}

func (h *Hub) placedPetsLocked() []placedPet {
	occupied := h.grid.Occupied()
	out := make([]placedPet, 0, len(occupied))
	for _, tile := range occupied {
		pet, ok := h.store.Get(tile.PetID)
		if !ok {
			h.logger.Printf("tick %d: tile %s references missing pet %s", h.tick, tile.Position, tile.PetID)
			continue
		}
		out = append(out, placedPet{pet: pet, pos: tile.Position})
	}
	return out
}

// activeBuffsLocked gathers the area buffs reaching entry: placed buffs
// covering its tile, then area-radius buffs carried by other placed pets in
// range.
func (h *Hub) activeBuffsLocked(entry placedPet, placed []placedPet) []catalog.Buff {
	var active []catalog.Buff
	for _, b := range h.grid.BuffsInRange(entry.pos) {
		active = append(active, b.Buff)
	}
	for _, other := range placed {
		if other.pet.ID == entry.pet.ID {
			continue
		}
		distance := other.pos.Chebyshev(entry.pos)
		for _, b := range other.pet.Buffs {
			if b.AreaRadius > 0 && !b.IsStar() && distance <= b.AreaRadius {
				active = append(active, b)
			}
		}
	}
	return active
}

func (h *Hub) publishProductionLocked(ctx context.Context, res production.Result, report *TickReport) {
	pet := res.Pet
	actor := logging.PetRef(pet.ID)
	capacity := pet.EffectiveCapacity()

	switch res.Outcome {
	case production.OutcomeAtCapacity:
		if !h.stalled[pet.ID] {
			h.stalled[pet.ID] = true
			loggingproduction.CapacityReached(ctx, h.publisher, h.tick, actor, loggingproduction.CapacityReachedPayload{CurrentGems: pet.CurrentGems, Capacity: capacity}, nil)
		}
		return
	case production.OutcomeProduced:
		gemIDs := make([]string, 0, len(res.Gems))
		for _, g := range res.Gems {
			gemIDs = append(gemIDs, g.ID)
		}
		value := res.Value()
		loggingproduction.GemsProduced(ctx, h.publisher, h.tick, actor, loggingproduction.GemsProducedPayload{
			Gems:        gemIDs,
			Value:       value,
			CurrentGems: pet.CurrentGems,
			Capacity:    capacity,
		}, nil)
		h.metrics.Add(telemetry.MetricGemsProduced, uint64(len(res.Gems)))
		report.Produced++
		report.Gems += len(res.Gems)
		report.Value += value
	}
	if pet.CurrentGems < capacity {
		delete(h.stalled, pet.ID)
	}

	if res.DisabledBy != "" {
		loggingproduction.PetDisabled(ctx, h.publisher, h.tick, actor, loggingproduction.PetDisabledPayload{
			Cause:         string(res.DisabledBy),
			DisabledUntil: pet.DisabledUntil,
		}, nil)
		h.metrics.Add(telemetry.MetricPetsDisabled, 1)
		report.Disabled = append(report.Disabled, pet.ID)
	}
}
