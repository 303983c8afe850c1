package production

import (
	"context"

	"tidepool/server/logging"
)

const (
	// EventGemsProduced is emitted when a placed pet produces gems.
	EventGemsProduced logging.EventType = "production.gems_produced"
	// EventPetDisabled is emitted when a risk or exhaust cycle disables a pet.
	EventPetDisabled logging.EventType = "production.pet_disabled"
	// EventCapacityReached is emitted the first tick a pet stalls at capacity.
	EventCapacityReached logging.EventType = "production.capacity_reached"
)

// GemsProducedPayload describes one successful production.
type GemsProducedPayload struct {
	Gems        []string `json:"gems"`
	Value       int64    `json:"value"`
	CurrentGems int      `json:"currentGems"`
	Capacity    int      `json:"capacity"`
}

// PetDisabledPayload describes why and until when a pet is disabled.
type PetDisabledPayload struct {
	Cause         string `json:"cause"`
	DisabledUntil int64  `json:"disabledUntil"`
}

// CapacityReachedPayload captures the stalled gem count.
type CapacityReachedPayload struct {
	CurrentGems int `json:"currentGems"`
	Capacity    int `json:"capacity"`
}

func GemsProduced(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload GemsProducedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventGemsProduced,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

func PetDisabled(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PetDisabledPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventPetDisabled,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

func CapacityReached(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CapacityReachedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventCapacityReached,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
