package economy

import (
	"context"

	"tidepool/server/logging"
)

const (
	// EventGemsCollected is emitted when a pet's stored gems are cashed in.
	EventGemsCollected logging.EventType = "economy.gems_collected"
	// EventPetSold is emitted when a pet is sold for cash.
	EventPetSold logging.EventType = "economy.pet_sold"
	// EventCashSpent is emitted when a purchase debits the balance.
	EventCashSpent logging.EventType = "economy.cash_spent"
)

type GemsCollectedPayload struct {
	Gems    int   `json:"gems"`
	Value   int64 `json:"value"`
	Balance int64 `json:"balance"`
}

type PetSoldPayload struct {
	Price   int64 `json:"price"`
	Balance int64 `json:"balance"`
}

type CashSpentPayload struct {
	Reason  string `json:"reason"`
	Amount  int64  `json:"amount"`
	Balance int64  `json:"balance"`
}

func GemsCollected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload GemsCollectedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventGemsCollected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	})
}

func PetSold(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PetSoldPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventPetSold,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	})
}

func CashSpent(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CashSpentPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventCashSpent,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryEconomy,
		Payload:  payload,
		Extra:    extra,
	})
}
