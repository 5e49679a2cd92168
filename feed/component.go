package feed

import (
	"context"
	"strings"

	"github.com/kbukum/livefeed/component"
)

// The Manager plugs into a component host: Start connects when
// AutoConnect is set, Stop disconnects, Health reflects the connection
// state.

var (
	_ component.Component   = (*Manager)(nil)
	_ component.Describable = (*Manager)(nil)
)

// Name implements component.Component.
func (m *Manager) Name() string { return "feed" }

// Start implements component.Component. With AutoConnect set it opens
// the stream; otherwise the manager stays idle until Connect.
func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.AutoConnect {
		return nil
	}
	return m.Connect()
}

// Stop implements component.Component.
func (m *Manager) Stop(ctx context.Context) error {
	m.Disconnect()
	return nil
}

// Health implements component.Component. Open is healthy, a pending
// reconnect is degraded, a dead connection is unhealthy, and states
// without a connection request (idle, closed) are healthy since the
// component is doing exactly what was asked of it.
func (m *Manager) Health(ctx context.Context) component.Health {
	m.mu.Lock()
	state := m.machine.state
	lastErr := m.machine.lastErr
	failed := m.createFailed
	m.mu.Unlock()

	h := component.Health{Name: m.Name()}
	switch {
	case failed:
		h.Status = component.StatusUnhealthy
		h.Message = "failed to create stream"
	case state == StateOpen, state == StateIdle, state == StateClosed:
		h.Status = component.StatusHealthy
	case state == StateConnecting, state == StateBackingOff:
		h.Status = component.StatusDegraded
		if lastErr != nil {
			h.Message = lastErr.Error()
		}
	default:
		h.Status = component.StatusUnhealthy
		if lastErr != nil {
			h.Message = lastErr.Error()
		}
	}
	return h
}

// Describe implements component.Describable.
func (m *Manager) Describe() component.Description {
	return component.Description{
		Name:    "Live Feed",
		Type:    "feed-client",
		Details: strings.TrimRight(m.cfg.BaseURL, "/") + streamPath,
	}
}
