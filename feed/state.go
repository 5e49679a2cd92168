package feed

// State is the connection lifecycle state.
type State int

const (
	// StateIdle means no connection has been requested yet.
	StateIdle State = iota
	// StateConnecting means a stream handle is being established.
	StateConnecting
	// StateOpen means the stream is established and delivering frames.
	StateOpen
	// StateErroring means the stream failed and no retry is pending.
	StateErroring
	// StateBackingOff means a reconnect is scheduled.
	StateBackingOff
	// StateClosed means the connection was explicitly disconnected.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateErroring:
		return "erroring"
	case StateBackingOff:
		return "backing-off"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
