package feed

import "time"

// The machine is the pure half of the connection manager: it maps
// (state, input) to (next state, side-effect intents) without touching
// I/O. The Manager executes the intents.
//
// Every stream handle and backoff timer is tagged with the generation
// it was created under. Inputs carrying a stale generation are
// no-ops, which is what guards against duplicate reconnects and
// callbacks from superseded handles.

// input is an event fed into the machine.
type input interface{ isInput() }

type inputConnect struct{}
type inputOpened struct {
	gen      uint64
	endpoint string
}
type inputStreamError struct {
	gen uint64
	err error
}
type inputRetryTimer struct{ gen uint64 }
type inputDisconnect struct{}

func (inputConnect) isInput()     {}
func (inputOpened) isInput()      {}
func (inputStreamError) isInput() {}
func (inputRetryTimer) isInput()  {}
func (inputDisconnect) isInput()  {}

// effect is a side-effect intent produced by a transition.
type effect interface{ isEffect() }

// effectOpenStream opens a new stream handle under generation gen.
type effectOpenStream struct{ gen uint64 }

// effectReleaseStream closes the current handle, if any.
type effectReleaseStream struct{}

// effectCancelTimer stops a pending backoff timer, if any.
type effectCancelTimer struct{}

// effectScheduleRetry arms a backoff timer for generation gen.
type effectScheduleRetry struct {
	gen     uint64
	attempt int
	delay   time.Duration
}

// effectEmit appends a synthesized record to the buffer.
type effectEmit struct{ rec Record }

func (effectOpenStream) isEffect()    {}
func (effectReleaseStream) isEffect() {}
func (effectCancelTimer) isEffect()   {}
func (effectScheduleRetry) isEffect() {}
func (effectEmit) isEffect()          {}

// machine holds the connection state. Not safe for concurrent use;
// the Manager serializes access.
type machine struct {
	state      State
	attempt    int
	generation uint64
	deadline   time.Time
	lastErr    error

	autoReconnect bool
	backoff       func(attempt int) time.Duration
	now           func() time.Time
}

func newMachine(autoReconnect bool) *machine {
	return &machine{
		state:         StateIdle,
		autoReconnect: autoReconnect,
		backoff:       reconnectDelay,
		now:           time.Now,
	}
}

// step applies one input and returns the side-effect intents, in order.
func (m *machine) step(in input) []effect {
	switch in := in.(type) {
	case inputConnect:
		return m.onConnect()
	case inputOpened:
		return m.onOpened(in)
	case inputStreamError:
		return m.onStreamError(in)
	case inputRetryTimer:
		return m.onRetryTimer(in)
	case inputDisconnect:
		return m.onDisconnect()
	default:
		return nil
	}
}

// onConnect handles an explicit connect request from any state. An
// active handle is always torn down first so at most one handle lives
// at a time.
func (m *machine) onConnect() []effect {
	var effects []effect
	if m.hasHandle() {
		effects = append(effects, effectReleaseStream{})
	}
	if m.state == StateBackingOff {
		effects = append(effects, effectCancelTimer{})
	}

	m.generation++
	m.state = StateConnecting
	m.lastErr = nil
	return append(effects, effectOpenStream{gen: m.generation})
}

// onOpened handles the transport reporting an established stream.
func (m *machine) onOpened(in inputOpened) []effect {
	if in.gen != m.generation || m.state != StateConnecting {
		return nil
	}
	m.state = StateOpen
	m.attempt = 0
	return []effect{effectEmit{rec: metaRecord(EventMeta, map[string]any{
		"status":   "connected",
		"endpoint": in.endpoint,
	})}}
}

// onStreamError handles an asynchronous stream failure.
func (m *machine) onStreamError(in inputStreamError) []effect {
	if in.gen != m.generation || !m.hasHandle() {
		return nil
	}

	m.attempt++
	m.state = StateErroring
	m.lastErr = in.err

	effects := []effect{
		effectReleaseStream{},
		effectEmit{rec: metaRecord(EventMeta, map[string]any{
			"error":   in.err.Error(),
			"attempt": m.attempt,
		})},
	}

	if !m.autoReconnect {
		return effects
	}

	delay := m.backoff(m.attempt)
	m.state = StateBackingOff
	m.deadline = m.now().Add(delay)
	return append(effects, effectScheduleRetry{
		gen:     m.generation,
		attempt: m.attempt,
		delay:   delay,
	})
}

// onRetryTimer handles a backoff deadline elapsing. A timer from a
// superseded generation must not re-establish anything.
func (m *machine) onRetryTimer(in inputRetryTimer) []effect {
	if in.gen != m.generation || m.state != StateBackingOff {
		return nil
	}
	m.generation++
	m.state = StateConnecting
	return []effect{effectOpenStream{gen: m.generation}}
}

// onDisconnect handles an explicit disconnect. Idempotent.
func (m *machine) onDisconnect() []effect {
	var effects []effect
	if m.hasHandle() {
		effects = append(effects, effectReleaseStream{})
	}
	if m.state == StateBackingOff {
		effects = append(effects, effectCancelTimer{})
	}
	m.generation++
	m.state = StateClosed
	return effects
}

// hasHandle reports whether the current state owns a transport handle.
func (m *machine) hasHandle() bool {
	switch m.state {
	case StateConnecting, StateOpen, StateErroring:
		return true
	default:
		return false
	}
}

// acceptsFrames reports whether incoming frames should be dispatched.
func (m *machine) acceptsFrames(gen uint64) bool {
	return gen == m.generation && m.hasHandle()
}
