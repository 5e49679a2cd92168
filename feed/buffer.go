package feed

import "sync"

// Buffer is a bounded, newest-first record history. Push prepends and
// silently evicts the oldest records beyond the cap.
type Buffer struct {
	mu      sync.RWMutex
	cap     int
	records []Record
}

// NewBuffer creates a buffer holding at most capacity records.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultBufferSize
	}
	return &Buffer{cap: capacity}
}

// Push prepends a record and returns the number of evicted records.
func (b *Buffer) Push(rec Record) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	evicted := 0
	if len(b.records) < b.cap {
		b.records = append(b.records, Record{})
	} else {
		// Full: the oldest record falls off the tail.
		evicted = 1
	}
	copy(b.records[1:], b.records)
	b.records[0] = rec
	return evicted
}

// Snapshot returns a copy of the buffer contents, newest first.
func (b *Buffer) Snapshot() []Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// Len returns the number of buffered records.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records)
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cap
}
