package feed

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/livefeed/logger"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	cfg := Config{
		BaseURL:       "http://127.0.0.1:0",
		Token:         "test-token",
		AutoReconnect: true,
	}
	m, err := New(cfg, append([]Option{WithLogger(logger.Nop())}, opts...)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func newConnectedManager(t *testing.T, baseURL string) *Manager {
	t.Helper()
	cfg := Config{
		BaseURL:       baseURL,
		Token:         "test-token",
		AutoReconnect: true,
	}
	m, err := New(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Short backoff keeps reconnect tests fast.
	m.machine.backoff = func(int) time.Duration { return 5 * time.Millisecond }
	return m
}

func waitForState(t *testing.T, m *Manager, want State) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if m.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %v, still %v", want, m.State())
}

func waitForRecord(t *testing.T, m *Manager, match func(Record) bool) Record {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, rec := range m.Records() {
			if match(rec) {
				return rec
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for record, have %v", m.Records())
	return Record{}
}

// sseHandler writes the given frames and holds the stream open until
// the client disconnects.
func sseHandler(frames string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != streamPath {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("t") != "test-token" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("clientId") == "" {
			http.Error(w, "missing clientId", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, frames)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}
}

func TestManagerConnectReceivesFrames(t *testing.T) {
	frames := "event: tick\ndata: {\"n\":1}\n\nid: 7\ndata: plain\n\n"
	srv := httptest.NewServer(sseHandler(frames))
	defer srv.Close()

	m := newConnectedManager(t, srv.URL)
	if err := m.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Disconnect()

	waitForState(t, m, StateOpen)

	tick := waitForRecord(t, m, func(r Record) bool { return r.Event == "tick" })
	obj, ok := tick.Data.(map[string]any)
	if !ok || obj["n"] != float64(1) {
		t.Errorf("expected decoded tick payload, got %v", tick.Data)
	}

	plain := waitForRecord(t, m, func(r Record) bool { return r.ID == "7" })
	if plain.Event != "message" {
		t.Errorf("expected default event name, got %q", plain.Event)
	}
	if plain.Data != "plain" {
		t.Errorf("expected raw passthrough, got %v", plain.Data)
	}

	connected := waitForRecord(t, m, func(r Record) bool {
		if r.Event != EventMeta {
			return false
		}
		obj, ok := r.Data.(map[string]any)
		return ok && obj["status"] == "connected"
	})
	obj = connected.Data.(map[string]any)
	endpoint, _ := obj["endpoint"].(string)
	if !strings.Contains(endpoint, streamPath) {
		t.Errorf("expected the endpoint in the connected record, got %q", endpoint)
	}
}

func TestManagerReconnectsAfterStreamEnd(t *testing.T) {
	var connects atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connects.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		if n == 1 {
			// First stream dies right away.
			return
		}
		fmt.Fprint(w, "data: back\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	m := newConnectedManager(t, srv.URL)
	if err := m.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Disconnect()

	waitForRecord(t, m, func(r Record) bool { return r.Data == "back" })
	waitForState(t, m, StateOpen)

	if got := connects.Load(); got < 2 {
		t.Errorf("expected a reconnect, saw %d connections", got)
	}
	if m.Attempts() != 0 {
		t.Errorf("expected attempt counter reset after reopen, got %d", m.Attempts())
	}

	// The failure itself was recorded.
	waitForRecord(t, m, func(r Record) bool {
		if r.Event != EventMeta {
			return false
		}
		obj, ok := r.Data.(map[string]any)
		return ok && obj["error"] != nil
	})
}

func TestManagerRetriesFailedConnect(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	m := newConnectedManager(t, srv.URL)
	if err := m.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Disconnect()

	waitForState(t, m, StateOpen)
	if got := hits.Load(); got < 3 {
		t.Errorf("expected at least 3 attempts, saw %d", got)
	}
}

func TestManagerSingleLiveHandle(t *testing.T) {
	var active, total atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		total.Add(1)
		active.Add(1)
		defer active.Add(-1)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	m := newConnectedManager(t, srv.URL)
	for i := 0; i < 3; i++ {
		if err := m.Connect(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	defer m.Disconnect()

	waitForState(t, m, StateOpen)

	// Superseded handles are cancelled; only the newest stays up.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if total.Load() >= 1 && active.Load() == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := active.Load(); got != 1 {
		t.Errorf("expected exactly 1 live connection, got %d", got)
	}
}

func TestManagerDisconnectStopsReconnects(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := newConnectedManager(t, srv.URL)
	if err := m.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Let at least one failed attempt land, then disconnect.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && hits.Load() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	m.Disconnect()

	if m.State() != StateClosed {
		t.Fatalf("expected closed, got %v", m.State())
	}
	// Give any attempt already in flight time to land.
	time.Sleep(30 * time.Millisecond)
	settled := hits.Load()
	time.Sleep(50 * time.Millisecond)
	if got := hits.Load(); got != settled {
		t.Errorf("reconnects continued after disconnect: %d -> %d", settled, got)
	}
}

func TestManagerConnectSynchronousFailure(t *testing.T) {
	m := newTestManager(t)
	m.cfg.BaseURL = "http://127.0.0.1:0/%zz"

	err := m.Connect()
	if err == nil {
		t.Fatal("expected an error")
	}
	if m.State() != StateIdle {
		t.Errorf("expected state to stay idle, got %v", m.State())
	}
	if got := m.Status(); got != "failed to create stream" {
		t.Errorf("expected failed to create stream, got %q", got)
	}
	waitForRecord(t, m, func(r Record) bool {
		return r.Event == EventMeta && r.Data == "failed to create stream"
	})
}

func TestManagerNoReconnectWhenDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		// Stream ends immediately.
	}))
	defer srv.Close()

	cfg := Config{BaseURL: srv.URL, AutoReconnect: false}
	m, err := New(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Connect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitForState(t, m, StateErroring)
	if got := m.Status(); got != "error" {
		t.Errorf("expected error status, got %q", got)
	}
	if m.Attempts() != 1 {
		t.Errorf("expected 1 attempt, got %d", m.Attempts())
	}
}

func TestManagerRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected an error for missing base URL")
	}
	if _, err := New(Config{BaseURL: "ftp://x"}); err == nil {
		t.Error("expected an error for non-http scheme")
	}
}
