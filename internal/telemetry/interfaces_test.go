package telemetry

import (
	"bytes"
	"log"
	"testing"
)

func TestWrapLogger(t *testing.T) {
	t.Run("nil logger", func(t *testing.T) {
		logger := WrapLogger(nil)
		logger.Printf("ignored %d", 42)
	})

	t.Run("forwards to logger", func(t *testing.T) {
		var buf bytes.Buffer
		base := log.New(&buf, "", 0)
		logger := WrapLogger(base)
		logger.Printf("hello %s", "world")
		if got := buf.String(); got != "hello world\n" {
			t.Fatalf("unexpected log output: %q", got)
		}
	})
}

func TestCounters(t *testing.T) {
	counters := NewCounters()
	counters.Add(MetricGemsProduced, 2)
	counters.Store(MetricGemsProduced, 5)
	counters.Add(MetricGemsProduced, 3)
	counters.Store(MetricPets, 4)

	snapshot := counters.Snapshot()
	if got := snapshot[MetricGemsProduced]; got != 8 {
		t.Fatalf("unexpected metric value: %d", got)
	}
	if keys := counters.Keys(); len(keys) != 2 || keys[0] != MetricGemsProduced {
		t.Fatalf("unexpected keys %v", keys)
	}

	var zero Counters
	zero.Add("lazy", 1)
	if zero.Snapshot()["lazy"] != 1 {
		t.Fatalf("expected zero value to be usable")
	}

	var nilCounters *Counters
	nilCounters.Add("ignored", 1)
	NopMetrics().Store("ignored", 1)
}
