package feed

import (
	"encoding/json"
	"time"

	"github.com/kbukum/livefeed/httpclient/sse"
)

// Reserved event names for records the client synthesizes itself.
const (
	// EventMeta marks connection lifecycle notices (connected, stream
	// error, retry scheduled).
	EventMeta = "meta"
	// EventSendResult carries the parsed response of a successful
	// side-channel send.
	EventSendResult = "manual-send-result"
	// EventSendError carries a side-channel parse or request failure.
	EventSendError = "manual-send-error"
)

// Record is one entry in the feed buffer: either a classified server
// frame or a synthesized meta record. Immutable once created.
type Record struct {
	// ID is the server's last-event-id, when present. Recorded but not
	// used to resume a stream.
	ID string `json:"id,omitempty"`
	// Event is the event name. Never empty; unlabelled frames are
	// "message".
	Event string `json:"event"`
	// Data is the decoded JSON payload, or the raw string when the
	// payload is not valid JSON.
	Data any `json:"data"`
	// Raw is the payload exactly as received. Empty for synthesized
	// records.
	Raw string `json:"raw,omitempty"`
	// Time is when the record was created.
	Time time.Time `json:"time"`
}

// Classify converts a wire frame into a Record. Payload decoding is
// best-effort: anything that is not valid JSON passes through as the
// raw string, never as an error.
func Classify(ev *sse.Event) Record {
	name := ev.Event
	if name == "" {
		name = sse.DefaultEvent
	}

	var data any
	if err := json.Unmarshal([]byte(ev.Data), &data); err != nil {
		data = ev.Data
	}

	return Record{
		ID:    ev.ID,
		Event: name,
		Data:  data,
		Raw:   ev.Data,
		Time:  time.Now(),
	}
}

// metaRecord synthesizes a client-side record under a reserved event
// name.
func metaRecord(event string, data any) Record {
	return Record{
		Event: event,
		Data:  data,
		Time:  time.Now(),
	}
}
