package lifecycle

import (
	"context"

	"tidepool/server/logging"
)

const (
	// EventClientConnected is emitted when a state subscriber connects.
	EventClientConnected logging.EventType = "lifecycle.client_connected"
	// EventClientDisconnected is emitted when a state subscriber leaves.
	EventClientDisconnected logging.EventType = "lifecycle.client_disconnected"
	// EventStateRestored is emitted after a snapshot or legacy save is loaded.
	EventStateRestored logging.EventType = "lifecycle.state_restored"
	// EventSchedulerStarted is emitted when the tick loop starts.
	EventSchedulerStarted logging.EventType = "lifecycle.scheduler_started"
	// EventSchedulerStopped is emitted once the tick loop has exited.
	EventSchedulerStopped logging.EventType = "lifecycle.scheduler_stopped"
)

type ClientConnectedPayload struct {
	RemoteAddr string `json:"remoteAddr,omitempty"`
}

type ClientDisconnectedPayload struct {
	Reason string `json:"reason"`
}

// StateRestoredPayload summarises what was loaded.
type StateRestoredPayload struct {
	Source  string `json:"source"`
	Pets    int    `json:"pets"`
	Buffs   int    `json:"buffs"`
	Skipped int    `json:"skipped,omitempty"`
	Clamped int    `json:"clamped,omitempty"`
}

type SchedulerStartedPayload struct {
	IntervalMillis int64 `json:"intervalMillis"`
}

type SchedulerStoppedPayload struct {
	Ticks uint64 `json:"ticks"`
}

func ClientConnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ClientConnectedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventClientConnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}

func ClientDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ClientDisconnectedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventClientDisconnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}

func StateRestored(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload StateRestoredPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventStateRestored,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}

func SchedulerStarted(ctx context.Context, pub logging.Publisher, tick uint64, payload SchedulerStartedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventSchedulerStarted,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}

func SchedulerStopped(ctx context.Context, pub logging.Publisher, tick uint64, payload SchedulerStoppedPayload, extra map[string]any) {
	logging.Emit(ctx, pub, logging.Event{
		Type:     EventSchedulerStopped,
		Tick:     tick,
		Actor:    logging.WorldRef(),
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}
