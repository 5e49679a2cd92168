package feed

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/livefeed/errors"
	"github.com/kbukum/livefeed/httpclient"
	"github.com/kbukum/livefeed/logger"
)

// Send posts a JSON payload to the broadcast side-channel. The payload
// is parsed before anything leaves the process: malformed JSON is
// recorded as a send error and no request is made. The outcome, either
// the server's response or the failure, lands in the record buffer.
//
// Send is independent of the stream connection. It works in any state,
// including closed, and never changes the connection state.
func (m *Manager) Send(ctx context.Context, payload string) error {
	ctx, span := m.startSendSpan(ctx)
	defer span.End()

	var body json.RawMessage
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		appErr := apperrors.Validation("payload is not valid JSON").WithCause(err)
		m.recordSend(ctx, metaRecord(EventSendError, map[string]any{
			"error":   appErr.Message,
			"payload": payload,
		}), "parse_error")
		m.log.Warn("send rejected", logger.ErrorFields("send", appErr))
		return appErr
	}

	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("request.id", requestID))

	resp, err := m.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   broadcastPath,
		Query:  map[string]string{"t": m.cfg.Token},
		Headers: map[string]string{
			"X-Request-ID": requestID,
		},
		Body: body,
	})
	if err != nil {
		m.recordSend(ctx, metaRecord(EventSendError, map[string]any{
			"error":      err.Error(),
			"request_id": requestID,
		}), "request_error")
		m.log.WithError(err).Error("send failed", logger.Fields("request_id", requestID))
		return err
	}

	var result any
	if jsonErr := json.Unmarshal(resp.Body, &result); jsonErr != nil {
		result = string(resp.Body)
	}
	m.recordSend(ctx, metaRecord(EventSendResult, map[string]any{
		"status":     resp.StatusCode,
		"response":   result,
		"request_id": requestID,
	}), "ok")
	m.log.Debug("send ok", logger.Fields("request_id", requestID, "status", resp.StatusCode))
	return nil
}

// startSendSpan opens a span for the send when a tracer is configured.
// Without one, the span from the incoming context is reused, which is
// a no-op span when the context carries none.
func (m *Manager) startSendSpan(ctx context.Context) (context.Context, trace.Span) {
	if m.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return m.tracer.Start(ctx, "feed.send")
}

// recordSend buffers a send outcome record and counts it.
func (m *Manager) recordSend(ctx context.Context, rec Record, outcome string) {
	m.mu.Lock()
	m.pushLocked(rec)
	m.mu.Unlock()
	m.metrics.RecordSend(ctx, outcome)
}
