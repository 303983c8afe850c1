package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tidepool/server"
	"tidepool/server/catalog"
)

func dial(t *testing.T, hub *server.Hub) *websocket.Conn {
	t.Helper()
	handler := NewHandler(hub, HandlerConfig{})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) server.StateMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	var msg server.StateMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	return msg
}

func TestHandleSendsInitialStateAndBroadcasts(t *testing.T) {
	hub := server.NewHub(nil)
	conn := dial(t, hub)

	initial := readState(t, conn)
	if initial.Type != "state" || initial.Cash != server.DefaultHubConfig().StartingCash {
		t.Fatalf("unexpected initial state %+v", initial)
	}

	if _, err := hub.OpenCrate(context.Background(), catalog.RarityCommon); err != nil {
		t.Fatalf("open crate: %v", err)
	}
	hub.Broadcast(context.Background())

	next := readState(t, conn)
	if len(next.Pets) != 1 || next.Cash != initial.Cash-10_000 {
		t.Fatalf("expected purchase reflected in broadcast, got cash=%d pets=%d", next.Cash, len(next.Pets))
	}
}

func TestHandleAnswersHeartbeat(t *testing.T) {
	hub := server.NewHub(nil)
	conn := dial(t, hub)
	readState(t, conn)

	sentAt := time.Now().UnixMilli()
	if err := conn.WriteJSON(clientMessage{Type: "heartbeat", SentAt: sentAt}); err != nil {
		t.Fatalf("send heartbeat: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ack heartbeatMessage
	if err := conn.ReadJSON(&ack); err != nil {
		t.Fatalf("read heartbeat ack: %v", err)
	}
	if ack.Type != "heartbeat" || ack.ClientTime != sentAt || ack.RTTMillis < 0 {
		t.Fatalf("unexpected heartbeat ack %+v", ack)
	}
}

func TestHandleUnsubscribesOnClose(t *testing.T) {
	hub := server.NewHub(nil)
	conn := dial(t, hub)
	readState(t, conn)
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected one subscriber, got %d", hub.SubscriberCount())
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber was not removed after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
