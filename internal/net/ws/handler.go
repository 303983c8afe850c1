// Package ws streams hub state to websocket clients.
package ws

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"

	"tidepool/server"
)

const writeWait = 10 * time.Second

type HandlerConfig struct {
	Logger *log.Logger
}

// Handler upgrades requests and keeps each connection subscribed to the hub
// until the client goes away.
type Handler struct {
	hub      *server.Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:      hub,
		logger:   logger,
		upgrader: upgrader,
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	ctx := r.Context()
	sess := newSession(conn)
	id, initial := h.hub.Subscribe(ctx, sess, r.RemoteAddr)

	writeJSON := func(payload any) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			h.logger.Printf("failed to marshal message for %s: %v", id, err)
			return true
		}
		sess.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sess.WriteMessage(websocket.TextMessage, data); err != nil {
			h.hub.Unsubscribe(ctx, id, "write failed")
			return false
		}
		return true
	}

	if !writeJSON(initial) {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Unsubscribe(ctx, id, "read closed")
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", id, err)
			continue
		}

		switch msg.Type {
		case "heartbeat":
			now := time.Now()
			ack := heartbeatMessage{
				Ver:        server.ProtocolVersion,
				Type:       "heartbeat",
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
			}
			if msg.SentAt > 0 {
				ack.RTTMillis = max(now.UnixMilli()-msg.SentAt, 0)
			}
			if !writeJSON(ack) {
				return
			}
		case "resync":
			if !writeJSON(h.hub.StateMessage()) {
				return
			}
		default:
			h.logger.Printf("unknown message type %q from %s", msg.Type, id)
		}
	}
}
