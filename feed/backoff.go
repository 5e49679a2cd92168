package feed

import "time"

const (
	backoffBase = time.Second
	backoffCap  = 30 * time.Second
	// Exponent clamp; beyond this the cap dominates anyway.
	backoffMaxShift = 6
)

// reconnectDelay returns the backoff delay before reconnect attempt n
// (n >= 1): 1s, 2s, 4s, 8s, 16s, then capped at 30s forever.
func reconnectDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	shift := attempt - 1
	if shift > backoffMaxShift {
		shift = backoffMaxShift
	}
	delay := backoffBase << shift
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay
}
