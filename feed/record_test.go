package feed

import (
	"testing"

	"github.com/kbukum/livefeed/httpclient/sse"
)

func TestClassifyDecodesJSON(t *testing.T) {
	rec := Classify(&sse.Event{
		ID:    "42",
		Event: "tick",
		Data:  `{"n":7}`,
	})

	if rec.ID != "42" {
		t.Errorf("expected id 42, got %q", rec.ID)
	}
	if rec.Event != "tick" {
		t.Errorf("expected event tick, got %q", rec.Event)
	}
	obj, ok := rec.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded object, got %T", rec.Data)
	}
	if obj["n"] != float64(7) {
		t.Errorf("expected n=7, got %v", obj["n"])
	}
	if rec.Raw != `{"n":7}` {
		t.Errorf("raw payload not preserved: %q", rec.Raw)
	}
	if rec.Time.IsZero() {
		t.Error("expected a timestamp")
	}
}

func TestClassifyPassesThroughNonJSON(t *testing.T) {
	rec := Classify(&sse.Event{Data: "plain text"})

	if rec.Data != "plain text" {
		t.Errorf("expected raw string passthrough, got %v", rec.Data)
	}
	if rec.Event != sse.DefaultEvent {
		t.Errorf("expected default event name, got %q", rec.Event)
	}
}

func TestClassifyNeverErrors(t *testing.T) {
	// Truncated JSON is data, not a failure.
	rec := Classify(&sse.Event{Event: "x", Data: `{"broken":`})
	if rec.Data != `{"broken":` {
		t.Errorf("expected raw passthrough of invalid JSON, got %v", rec.Data)
	}
}

func TestMetaRecord(t *testing.T) {
	rec := metaRecord(EventMeta, "connected")
	if rec.Event != EventMeta {
		t.Errorf("expected event %q, got %q", EventMeta, rec.Event)
	}
	if rec.Data != "connected" {
		t.Errorf("expected data connected, got %v", rec.Data)
	}
	if rec.Raw != "" {
		t.Errorf("synthesized record should have no raw payload, got %q", rec.Raw)
	}
}
