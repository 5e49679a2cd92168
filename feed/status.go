package feed

import (
	"fmt"
	"time"
)

// Status returns the human-readable connection status. A synchronous
// handle creation failure overrides the state text until the next
// connect attempt.
func (m *Manager) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createFailed {
		return "failed to create stream"
	}

	switch m.machine.state {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting..."
	case StateOpen:
		return "open"
	case StateErroring:
		return "error"
	case StateBackingOff:
		return fmt.Sprintf("retrying in %ds", retrySeconds(m.machine.deadline, m.machine.now()))
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// retrySeconds reports whole seconds until the retry deadline, rounded
// up so a freshly scheduled 2s delay reads "retrying in 2s", never 1.
func retrySeconds(deadline, now time.Time) int {
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0
	}
	secs := int((remaining + time.Second - 1) / time.Second)
	return secs
}
