package simulation

import (
	"context"

	"tidepool/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when one scheduler tick takes longer than its interval.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventBuffRelocated is emitted when a placed buff teleports to another tile.
	EventBuffRelocated logging.EventType = "simulation.buff_relocated"
)

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
	Streak         uint64  `json:"streak"`
}

type BuffRelocatedPayload struct {
	FromX int  `json:"fromX"`
	FromY int  `json:"fromY"`
	ToX   int  `json:"toX"`
	ToY   int  `json:"toY"`
	Stay  bool `json:"stay,omitempty"`
}

// TickBudgetOverrun publishes a warning when the scheduler exceeds its tick interval.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityWarn,
		Category: "simulation",
		Payload:  payload,
		Extra:    extra,
	})
}

func BuffRelocated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BuffRelocatedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventBuffRelocated,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: "simulation",
		Payload:  payload,
		Extra:    extra,
	})
}
