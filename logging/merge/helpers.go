package merge

import (
	"context"

	"tidepool/server/logging"
)

const (
	// EventPetsMerged is emitted when one pet is folded into another.
	EventPetsMerged logging.EventType = "merge.pets_merged"
	// EventMergeRejected is emitted when a requested merge fails its checks.
	EventMergeRejected logging.EventType = "merge.rejected"
)

// PetsMergedPayload captures the rating change of a merge.
type PetsMergedPayload struct {
	Consumed   string   `json:"consumed"`
	Before     int      `json:"before"`
	After      int      `json:"after"`
	StarGained bool     `json:"starGained"`
	Buffs      []string `json:"buffs"`
	Automatic  bool     `json:"automatic,omitempty"`
}

type MergeRejectedPayload struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// PetsMerged targets the consumed pet; the actor is the survivor.
func PetsMerged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PetsMergedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventPetsMerged,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{logging.PetRef(payload.Consumed)},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}

func MergeRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MergeRejectedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventMergeRejected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGameplay,
		Payload:  payload,
		Extra:    extra,
	})
}
