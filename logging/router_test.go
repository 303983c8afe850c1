package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"tidepool/server/logging"
	"tidepool/server/logging/merge"
	"tidepool/server/logging/production"
	"tidepool/server/logging/sinks"
)

func fixedClock() logging.Clock {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return logging.ClockFunc(func() time.Time { return at })
}

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("close router: %v", err)
	}
}

func TestRouterDeliversFilteredEventsWithFields(t *testing.T) {
	memory := sinks.NewMemorySink()
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"service": "test"}
	router, err := logging.NewRouter(fixedClock(), cfg, []logging.NamedSink{{Name: logging.SinkMemory, Sink: memory}})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	ctx := context.Background()
	production.GemsProduced(ctx, router, 3, logging.PetRef("pet-a"), production.GemsProducedPayload{Gems: []string{"gem-pearl"}, Value: 5}, nil)
	production.PetDisabled(ctx, router, 3, logging.PetRef("pet-a"), production.PetDisabledPayload{Cause: "strain", DisabledUntil: 90}, nil)
	merge.PetsMerged(ctx, router, 4, logging.PetRef("pet-b"), merge.PetsMergedPayload{Consumed: "pet-a", Before: 1, After: 2}, map[string]any{"service": "override"})
	router.Publish(ctx, logging.Event{})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 2 {
		t.Fatalf("expected debug event to be filtered, got %d events", len(events))
	}
	if events[0].Type != production.EventPetDisabled || events[0].Extra["service"] != "test" {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	if !events[0].Time.Equal(fixedClock().Now()) {
		t.Fatalf("expected router clock to stamp events, got %s", events[0].Time)
	}
	merged := memory.OfType(merge.EventPetsMerged)
	if len(merged) != 1 || merged[0].Extra["service"] != "override" {
		t.Fatalf("expected event fields to win over router fields, got %+v", merged)
	}
	if len(merged[0].Targets) != 1 || merged[0].Targets[0].ID != "pet-a" {
		t.Fatalf("expected consumed pet as target, got %+v", merged[0].Targets)
	}
	if stats := router.Stats(); stats.EventsTotal != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestWithFieldsDoesNotMutateCaller(t *testing.T) {
	var got []logging.Event
	base := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		got = append(got, event)
	})
	pub := logging.WithFields(base, map[string]any{"hub": "main"})
	extra := map[string]any{"k": 1}
	pub.Publish(context.Background(), logging.Event{Type: "x", Extra: extra})

	if len(got) != 1 || got[0].Extra["hub"] != "main" {
		t.Fatalf("expected field to be added, got %+v", got)
	}
	if _, leaked := extra["hub"]; leaked {
		t.Fatalf("expected caller map to stay untouched")
	}
	if logging.WithFields(nil, nil) == nil {
		t.Fatalf("expected nop publisher for nil input")
	}
}

func TestSinksFormatEvents(t *testing.T) {
	var console, structured bytes.Buffer
	event := logging.Event{
		Type:     production.EventGemsProduced,
		Tick:     7,
		Actor:    logging.PetRef("pet-a"),
		Severity: logging.SeverityWarn,
		Payload:  map[string]int{"value": 3},
	}

	c := sinks.NewConsoleSink(&console, logging.ConsoleConfig{})
	if err := c.Write(event); err != nil {
		t.Fatalf("console write: %v", err)
	}
	line := console.String()
	for _, want := range []string{"[production.gems_produced]", "tick=7", "actor=pet:pet-a", "severity=warn", `payload={"value":3}`} {
		if !strings.Contains(line, want) {
			t.Fatalf("console line %q missing %q", line, want)
		}
	}

	j := sinks.NewJSON(&structured, 0)
	if err := j.Write(event); err != nil {
		t.Fatalf("json write: %v", err)
	}
	if err := j.Close(context.Background()); err != nil {
		t.Fatalf("json close: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(structured.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if decoded["type"] != string(production.EventGemsProduced) || decoded["tick"].(float64) != 7 {
		t.Fatalf("unexpected json event %v", decoded)
	}
}

func TestParseHelpers(t *testing.T) {
	if sev, err := logging.ParseSeverity(" WARN "); err != nil || sev != logging.SeverityWarn {
		t.Fatalf("ParseSeverity = %v, %v", sev, err)
	}
	if _, err := logging.ParseSeverity("loud"); err == nil {
		t.Fatalf("expected unknown severity to fail")
	}
	if names := logging.ParseSinks("console, JSON,,"); len(names) != 2 || names[1] != "json" {
		t.Fatalf("ParseSinks = %v", names)
	}
}
