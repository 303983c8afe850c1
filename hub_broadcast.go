package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tidepool/server/internal/telemetry"
	"tidepool/server/logging"
	logginglifecycle "tidepool/server/logging/lifecycle"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type subscriber struct {
	conn Conn
	mu   sync.Mutex
}

func clientRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindClient}
}

// Subscribe registers a connection for state broadcasts and returns its id
// together with the current state.
func (h *Hub) Subscribe(ctx context.Context, conn Conn, remoteAddr string) (string, StateMessage) {
	id := fmt.Sprintf("client-%d", h.nextSub.Add(1))

	h.subMu.Lock()
	h.subscribers[id] = &subscriber{conn: conn}
	count := len(h.subscribers)
	h.subMu.Unlock()

	h.metrics.Store(telemetry.MetricSubscribers, uint64(count))
	logginglifecycle.ClientConnected(ctx, h.publisher, h.TickCount(), clientRef(id), logginglifecycle.ClientConnectedPayload{RemoteAddr: remoteAddr}, nil)
	return id, h.StateMessage()
}

// Unsubscribe drops a subscriber and closes its connection.
func (h *Hub) Unsubscribe(ctx context.Context, id, reason string) {
	h.subMu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	count := len(h.subscribers)
	h.subMu.Unlock()
	if !ok {
		return
	}

	sub.mu.Lock()
	sub.conn.Close()
	sub.mu.Unlock()
	h.metrics.Store(telemetry.MetricSubscribers, uint64(count))
	logginglifecycle.ClientDisconnected(ctx, h.publisher, h.TickCount(), clientRef(id), logginglifecycle.ClientDisconnectedPayload{Reason: reason}, nil)
}

// SubscriberCount returns the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	return len(h.subscribers)
}

// Broadcast sends the current state to every subscriber. Subscribers whose
// write fails are dropped.
func (h *Hub) Broadcast(ctx context.Context) {
	data, err := json.Marshal(h.StateMessage())
	if err != nil {
		h.logger.Printf("failed to marshal state message: %v", err)
		return
	}

	h.subMu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.subMu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(h.cfg.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			h.logger.Printf("failed to send update to %s: %v", id, err)
			h.Unsubscribe(ctx, id, "write failed")
		}
	}
}

// CloseSubscribers disconnects everyone, used on shutdown.
func (h *Hub) CloseSubscribers(ctx context.Context) {
	h.subMu.Lock()
	ids := make([]string, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	h.subMu.Unlock()
	for _, id := range ids {
		h.Unsubscribe(ctx, id, "shutdown")
	}
}
