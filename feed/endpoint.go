package feed

import (
	"math/rand"
	"net/http"
	"strconv"
	"strings"
)

const (
	streamPath    = "/sse"
	broadcastPath = "/broadcast"
)

// Endpoint identifies one connection attempt: the server origin plus
// the query parameters the stream is opened with. Immutable; a new
// client id is generated for every (re)connect.
type Endpoint struct {
	BaseURL  string
	Token    string
	ClientID string
}

// newEndpoint creates an endpoint with a fresh random client id.
func newEndpoint(baseURL, token string) Endpoint {
	return Endpoint{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Token:    token,
		ClientID: strconv.FormatInt(rand.Int63(), 10),
	}
}

// refresh returns a copy with a newly generated client id. Every
// stream attempt, including backoff retries, identifies itself with a
// fresh id.
func (e Endpoint) refresh() Endpoint {
	e.ClientID = strconv.FormatInt(rand.Int63(), 10)
	return e
}

// check verifies that a stream request can actually be constructed
// from the endpoint. Runs synchronously before any goroutine is
// spawned, so a malformed URL fails the connect call itself.
func (e Endpoint) check() error {
	_, err := http.NewRequest(http.MethodGet, e.BaseURL+streamPath, nil)
	return err
}

// streamQuery returns the query parameters for the stream request.
func (e Endpoint) streamQuery() map[string]string {
	return map[string]string{
		"t":        e.Token,
		"clientId": e.ClientID,
	}
}

// String returns a loggable description of the endpoint. The token is
// omitted.
func (e Endpoint) String() string {
	return e.BaseURL + streamPath + "?clientId=" + e.ClientID
}
