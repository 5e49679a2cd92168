package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/livefeed/component"
	"github.com/kbukum/livefeed/logger"
)

func TestComponentStartWithoutAutoConnect(t *testing.T) {
	m := newTestManager(t)
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.State() != StateIdle {
		t.Errorf("expected idle without auto connect, got %v", m.State())
	}
}

func TestComponentStartAutoConnects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	cfg := Config{BaseURL: srv.URL, AutoConnect: true, AutoReconnect: true}
	m, err := New(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer m.Disconnect()

	waitForState(t, m, StateOpen)
}

func TestComponentStopDisconnects(t *testing.T) {
	m := newTestManager(t)
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.State() != StateClosed {
		t.Errorf("expected closed after stop, got %v", m.State())
	}
}

func TestComponentHealth(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	tests := []struct {
		state State
		want  component.HealthStatus
	}{
		{StateIdle, component.StatusHealthy},
		{StateOpen, component.StatusHealthy},
		{StateClosed, component.StatusHealthy},
		{StateConnecting, component.StatusDegraded},
		{StateBackingOff, component.StatusDegraded},
		{StateErroring, component.StatusUnhealthy},
	}
	for _, tt := range tests {
		m.machine.state = tt.state
		if got := m.Health(ctx).Status; got != tt.want {
			t.Errorf("state %v: health %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestComponentHealthCreateFailed(t *testing.T) {
	m := newTestManager(t)
	m.createFailed = true

	h := m.Health(context.Background())
	if h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy, got %v", h.Status)
	}
	if h.Message != "failed to create stream" {
		t.Errorf("unexpected message %q", h.Message)
	}
}

func TestComponentHealthCarriesLastError(t *testing.T) {
	m := newTestManager(t)
	m.machine.state = StateBackingOff
	m.machine.lastErr = errors.New("connection refused")

	h := m.Health(context.Background())
	if !strings.Contains(h.Message, "connection refused") {
		t.Errorf("expected last error in message, got %q", h.Message)
	}
}

func TestComponentDescribe(t *testing.T) {
	m := newTestManager(t)
	d := m.Describe()
	if d.Type != "feed-client" {
		t.Errorf("unexpected type %q", d.Type)
	}
	if !strings.HasSuffix(d.Details, streamPath) {
		t.Errorf("expected stream path in details, got %q", d.Details)
	}
}
