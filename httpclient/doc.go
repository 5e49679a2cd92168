// Package httpclient provides the HTTP transport primitive for
// livefeed: buffered request/response exchanges and long-lived
// streaming responses with Server-Sent Events support.
//
// The feed package builds its connection manager on top of this
// client; it can also be used standalone.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://feed.example.com",
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/broadcast",
//	    Body:   map[string]string{"text": "hello"},
//	})
//
// # Streaming
//
//	stream, err := client.DoStream(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/sse",
//	    Query:  map[string]string{"t": token, "clientId": id},
//	})
//	defer stream.Close()
//	for {
//	    ev, err := stream.SSE.Next()
//	    ...
//	}
package httpclient
