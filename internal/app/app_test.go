package app

import (
	"strings"
	"testing"

	"peek-and-poke/sidecar/internal/telemetry"
	"peek-and-poke/sidecar/logging"
	"peek-and-poke/sidecar/logging/sinks"
)

func TestWebsocketURLDerivesScheme(t *testing.T) {
	if got := websocketURL("127.0.0.1:8000"); got != "ws://127.0.0.1:8000" {
		t.Fatalf("expected derived ws scheme, got %q", got)
	}
	if got := websocketURL("wss://inspector.local/sync"); got != "wss://inspector.local/sync" {
		t.Fatalf("explicit scheme should pass through unchanged, got %q", got)
	}
}

func TestLogMetricsReportsSortedCounters(t *testing.T) {
	metrics := telemetry.NewMemoryMetrics()
	metrics.Add("sync_envelopes_sent_total", 3)
	metrics.Add("transport_datagrams_sent_total", 5)

	capture := sinks.NewMemory()
	router := logging.NewRouter(logging.LevelDebug, capture)
	logMetrics(router, metrics)

	events := capture.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 metric lines, got %d", len(events))
	}
	if !strings.Contains(events[0].Message, "sync_envelopes_sent_total=3") {
		t.Fatalf("unexpected first metric line %q", events[0].Message)
	}
	if !strings.Contains(events[1].Message, "transport_datagrams_sent_total=5") {
		t.Fatalf("unexpected second metric line %q", events[1].Message)
	}
}
