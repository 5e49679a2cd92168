// Package sse provides a reader for the Server-Sent Events wire format.
package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// DefaultEvent is the event name the protocol assigns to frames that
// carry no "event:" field.
const DefaultEvent = "message"

// Event represents a single server-sent event.
type Event struct {
	// ID is the last-event-id (from the "id:" line). Empty when absent.
	ID string
	// Event is the event name (from the "event:" line). DefaultEvent
	// when the server omits it.
	Event string
	// Data is the event payload. Multi-line data is joined with newlines.
	Data string
	// Retry is the server-suggested reconnection delay in milliseconds
	// (from the "retry:" line). -1 when absent.
	Retry int
}

// Reader reads server-sent events from a stream.
type Reader struct {
	r    *bufio.Reader
	body io.ReadCloser
}

// NewReader creates an SSE reader from a streaming response body.
func NewReader(body io.ReadCloser) *Reader {
	return &Reader{
		// Generous buffer: single data lines can carry whole JSON documents.
		r:    bufio.NewReaderSize(body, 64*1024),
		body: body,
	}
}

// Next returns the next event. Returns io.EOF when the stream ends.
func (r *Reader) Next() (*Event, error) {
	ev := Event{Event: DefaultEvent, Retry: -1}
	var data []string

	for {
		line, err := r.readLine()
		if err != nil {
			if err == io.EOF && len(data) > 0 {
				// Stream ended mid-frame; dispatch what we have.
				ev.Data = strings.Join(data, "\n")
				return &ev, nil
			}
			return nil, err
		}

		// A blank line dispatches the accumulated frame.
		if line == "" {
			if len(data) == 0 {
				continue
			}
			ev.Data = strings.Join(data, "\n")
			return &ev, nil
		}

		// Comment lines are heartbeat padding; not observable as events.
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := splitField(line)
		switch field {
		case "data":
			data = append(data, value)
		case "event":
			ev.Event = value
		case "id":
			ev.ID = value
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil {
				ev.Retry = ms
			}
		}
	}
}

// Close releases the underlying stream.
func (r *Reader) Close() error {
	return r.body.Close()
}

// readLine reads one line, tolerating both \n and \r\n terminators.
func (r *Reader) readLine() (string, error) {
	line, err := r.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// splitField parses a single SSE line into field and value. A line
// without a colon is a field name with an empty value. A single space
// after the colon is stripped per the SSE specification.
func splitField(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	if value != "" && value[0] == ' ' {
		value = value[1:]
	}
	return field, value
}
