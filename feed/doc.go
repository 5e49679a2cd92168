// Package feed implements the livefeed connection manager: a
// long-lived Server-Sent-Events subscription with automatic
// reconnection, a bounded newest-first record buffer, and a
// side-channel for broadcasting JSON payloads to the same server.
//
// The Manager owns at most one live stream handle at a time. Stream
// failures never propagate to the consumer; they become state
// transitions, status text, and meta records in the buffer.
//
//	mgr, err := feed.New(feed.Config{
//	    BaseURL:       "https://feed.example.com",
//	    Token:         token,
//	    AutoReconnect: true,
//	})
//	mgr.Connect()
//	...
//	for _, rec := range mgr.Records() {
//	    fmt.Println(rec.Event, rec.Data)
//	}
package feed
