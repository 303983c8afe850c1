package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tidepool/server/internal/telemetry"
	logginglifecycle "tidepool/server/logging/lifecycle"
)

type recordingSubscriberConn struct {
	mu        sync.Mutex
	deadlines []time.Time
	frames    [][]byte
	types     []int
	closed    bool
	fail      bool
}

func (c *recordingSubscriberConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.types = append(c.types, messageType)
	c.frames = append(c.frames, append([]byte(nil), data...))
	return nil
}

func (c *recordingSubscriberConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deadlines = append(c.deadlines, t)
	return nil
}

func (c *recordingSubscriberConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestBroadcastSendsStateWithDeadline(t *testing.T) {
	h := newHubHarness(t, nil)
	ctx := context.Background()
	h.seed(t, 42, testPet(t, "crab", "pet-hermit-crab"))
	h.place(t, "crab", 2, 2)

	conn := &recordingSubscriberConn{}
	id, initial := h.hub.Subscribe(ctx, conn, "127.0.0.1:1")
	if id == "" || initial.Cash != 42 || len(initial.Pets) != 1 {
		t.Fatalf("unexpected initial state id=%q %+v", id, initial)
	}

	h.hub.Tick(ctx, h.advance(50*time.Second))
	h.hub.Broadcast(ctx)

	if len(conn.frames) != 1 || conn.types[0] != websocket.TextMessage {
		t.Fatalf("expected one text frame, got %d", len(conn.frames))
	}
	if want := h.now.Add(writeWait); !conn.deadlines[0].Equal(want) {
		t.Fatalf("expected deadline %s, got %s", want, conn.deadlines[0])
	}
	var msg StateMessage
	if err := json.Unmarshal(conn.frames[0], &msg); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if msg.Type != "state" || msg.Tick != 1 || msg.Ver != ProtocolVersion {
		t.Fatalf("unexpected header %+v", msg)
	}
	if len(msg.Pets) != 1 || msg.Pets[0].CurrentGems != 1 || msg.Pets[0].Position == nil {
		t.Fatalf("expected produced gem in broadcast, got %+v", msg.Pets)
	}
	if len(msg.Grid.Tiles) != 25 {
		t.Fatalf("expected full grid, got %d tiles", len(msg.Grid.Tiles))
	}
}

func TestBroadcastDropsFailingSubscribers(t *testing.T) {
	h := newHubHarness(t, nil)
	ctx := context.Background()

	good := &recordingSubscriberConn{}
	bad := &recordingSubscriberConn{fail: true}
	h.hub.Subscribe(ctx, good, "")
	h.hub.Subscribe(ctx, bad, "")
	if got := h.metrics.Snapshot()[telemetry.MetricSubscribers]; got != 2 {
		t.Fatalf("expected 2 subscribers counted, got %d", got)
	}

	h.hub.Broadcast(ctx)
	if h.hub.SubscriberCount() != 1 || !bad.closed || good.closed {
		t.Fatalf("expected only the failing subscriber dropped")
	}
	disconnects := h.events.OfType(logginglifecycle.EventClientDisconnected)
	if len(disconnects) != 1 {
		t.Fatalf("expected one disconnect event, got %d", len(disconnects))
	}

	h.hub.CloseSubscribers(ctx)
	if h.hub.SubscriberCount() != 0 || !good.closed {
		t.Fatalf("expected every subscriber closed on shutdown")
	}
}
