package crates

import (
	"context"

	"tidepool/server/logging"
)

const (
	// EventCrateOpened is emitted for every pet a crate yields.
	EventCrateOpened logging.EventType = "crates.opened"
	// EventCrateOpenFailed is emitted when a purchase is rejected.
	EventCrateOpenFailed logging.EventType = "crates.open_failed"
)

// CrateOpenedPayload describes the pet a crate produced.
type CrateOpenedPayload struct {
	Requested  string   `json:"requested"`
	Resolved   string   `json:"resolved"`
	Downgrades int      `json:"downgrades,omitempty"`
	Template   string   `json:"template"`
	Buffs      []string `json:"buffs"`
	Price      int64    `json:"price"`
}

// CrateOpenFailedPayload describes a rejected purchase.
type CrateOpenFailedPayload struct {
	Rarity string `json:"rarity"`
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

func CrateOpened(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CrateOpenedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventCrateOpened,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	})
}

func CrateOpenFailed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CrateOpenFailedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventCrateOpenFailed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	})
}
